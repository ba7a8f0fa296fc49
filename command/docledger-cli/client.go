// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bitmark-inc/docledger/announce"
	"github.com/bitmark-inc/docledger/util"
)

// nodeClient - JSON calls to one node
type nodeClient struct {
	base    string
	timeout time.Duration
	http    *http.Client
}

func newNodeClient(base string, timeout time.Duration) (*nodeClient, error) {
	base = announce.Normalise(base)
	if err := announce.CheckURL(base); nil != err {
		return nil, fmt.Errorf("node: %q  error: %s", base, err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &nodeClient{
		base:    base,
		timeout: timeout,
		http:    &http.Client{},
	}, nil
}

func (n *nodeClient) get(path string, query url.Values, reply interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	u := n.base + path
	if 0 != len(query) {
		u += "?" + query.Encode()
	}
	return remoteError(util.FetchJSON(ctx, n.http, u, reply))
}

func (n *nodeClient) post(path string, args interface{}, reply interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	return remoteError(util.PostJSON(ctx, n.http, n.base+path, args, reply))
}

func (n *nodeClient) upload(path string, fields map[string]string, fileName string, contentType string, content io.Reader, reply interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	file := util.FilePart{
		Field:       "document",
		FileName:    fileName,
		ContentType: contentType,
		Content:     content,
	}
	return remoteError(util.PostMultipart(ctx, n.http, n.base+path, fields, file, reply))
}

// replace a status error with the node's own message when it has one
func remoteError(err error) error {
	var se *util.StatusError
	if !errors.As(err, &se) {
		return err
	}
	var e struct {
		Code    int    `json:"code"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if nil != json.Unmarshal([]byte(se.Body), &e) {
		return err
	}
	switch {
	case "" != e.Error:
		return fmt.Errorf("node status: %d  error: %s", se.StatusCode, e.Error)
	case "" != e.Message:
		return fmt.Errorf("node status: %d  error: %s", se.StatusCode, e.Message)
	}
	return err
}
