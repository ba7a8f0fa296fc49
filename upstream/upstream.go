// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package upstream - outbound calls to the peer endpoints of another node
package upstream

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bitmark-inc/docledger/block"
	"github.com/bitmark-inc/docledger/fault"
	"github.com/bitmark-inc/docledger/util"
)

// DefaultTimeout - bound on each outbound call
const DefaultTimeout = 5 * time.Second

// peer endpoint paths
const (
	RegisterNodePath = "/register-node"
	SyncNodesPath    = "/sync-nodes"
	ReceiveBlockPath = "/receive-block"
	BlocksPath       = "/blocks"
)

// RegisterArguments - body of a register request
type RegisterArguments struct {
	NodeURL string `json:"nodeUrl"`
}

// SyncArguments - body of a sync request
type SyncArguments struct {
	Nodes []string `json:"nodes"`
}

// Client - calls to a remote node identified by its base URL
type Client interface {
	Register(ctx context.Context, target string, self string) error
	SyncNodes(ctx context.Context, target string, nodes []string) error
	SendBlock(ctx context.Context, target string, b block.Block) error
	FetchChain(ctx context.Context, target string) ([]block.Block, error)
}

type client struct {
	http    *http.Client
	timeout time.Duration
}

// New - HTTP client, every call is bounded by timeout
func New(timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &client{
		http: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Register - ask target to register self as a peer
func (c *client) Register(ctx context.Context, target string, self string) error {
	args := RegisterArguments{
		NodeURL: self,
	}
	return c.post(ctx, target, RegisterNodePath, args)
}

// SyncNodes - give target a list of peers to merge
func (c *client) SyncNodes(ctx context.Context, target string, nodes []string) error {
	args := SyncArguments{
		Nodes: nodes,
	}
	return c.post(ctx, target, SyncNodesPath, args)
}

// SendBlock - deliver a block to target
func (c *client) SendBlock(ctx context.Context, target string, b block.Block) error {
	return c.post(ctx, target, ReceiveBlockPath, b)
}

// FetchChain - read target's full chain
func (c *client) FetchChain(ctx context.Context, target string) ([]block.Block, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var blocks []block.Block
	err := util.FetchJSON(ctx, c.http, join(target, BlocksPath), &blocks)
	if nil != err {
		return nil, wrap(target, err)
	}
	return blocks, nil
}

func (c *client) post(ctx context.Context, target string, path string, args interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := util.PostJSON(ctx, c.http, join(target, path), args, nil)
	if nil != err {
		return wrap(target, err)
	}
	return nil
}

func join(target string, path string) string {
	return strings.TrimRight(target, "/") + path
}

func wrap(target string, err error) error {
	if _, ok := err.(*util.StatusError); ok {
		return fmt.Errorf("%w: %s: %s", fault.PeerStatus, target, err)
	}
	return fmt.Errorf("%w: %s: %s", fault.PeerUnreachable, target, err)
}
