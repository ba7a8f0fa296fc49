// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"context"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/docledger/block"
	"github.com/bitmark-inc/docledger/counter"
	"github.com/bitmark-inc/docledger/fault"
	"github.com/bitmark-inc/docledger/upstream"
)

// counter names
const (
	BroadcastSent     = "broadcast-sent"
	BroadcastFailed   = "broadcast-failed"
	BlocksReceived    = "blocks-received"
	BlocksRejected    = "blocks-rejected"
	ChainsFetched     = "chains-fetched"
	ChainsUnreachable = "chains-unreachable"
	ChainsInvalid     = "chains-invalid"
	ChainsAdopted     = "chains-adopted"
)

// Ledger - the parts of the local chain gossip needs
type Ledger interface {
	Receive(candidate block.Block) error
	Replace(candidate []block.Block) (bool, error)
	Length() int
	Validators() block.Validators
}

// Peers - source of the current peer set
type Peers interface {
	Self() string
	Peers() []string
}

// Gossip - outbound broadcast, inbound receive and conflict resolution
type Gossip struct {
	log      *logger.L
	ledger   Ledger
	peers    Peers
	client   upstream.Client
	timeout  time.Duration
	counters *counter.Set
}

// New - gossip for a ledger over the given peer set
func New(ledger Ledger, peers Peers, client upstream.Client, timeout time.Duration) (*Gossip, error) {
	log := logger.New("peer")
	if nil == log {
		return nil, fault.InvalidLoggerChannel
	}
	if timeout <= 0 {
		timeout = upstream.DefaultTimeout
	}
	return &Gossip{
		log:      log,
		ledger:   ledger,
		peers:    peers,
		client:   client,
		timeout:  timeout,
		counters: counter.NewSet(),
	}, nil
}

// Counters - gossip statistics
func (g *Gossip) Counters() map[string]uint64 {
	return g.counters.Snapshot()
}

// Broadcast - send b to every peer except self, each delivery has its
// own timeout and failures are logged, there is no retry
//
// returns after every delivery has settled
func (g *Gossip) Broadcast(b block.Block) {
	self := g.peers.Self()

	var wg sync.WaitGroup
	for _, p := range g.peers.Peers() {
		if p == self {
			continue
		}
		wg.Add(1)
		go func(p string) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
			defer cancel()

			if err := g.client.SendBlock(ctx, p, b); nil != err {
				g.counters.Increment(BroadcastFailed)
				g.log.Warnf("broadcast block: %d  to: %s  error: %s", b.Index, p, err)
				return
			}
			g.counters.Increment(BroadcastSent)
			g.log.Debugf("broadcast block: %d  to: %s", b.Index, p)
		}(p)
	}
	wg.Wait()
}

// Receive - validate a block from a peer and append it without
// re-broadcasting
func (g *Gossip) Receive(b block.Block) error {
	if err := g.ledger.Receive(b); nil != err {
		g.counters.Increment(BlocksRejected)
		return err
	}
	g.counters.Increment(BlocksReceived)
	return nil
}

type fetched struct {
	peer   string
	blocks []block.Block
	err    error
}

// ResolveConflicts - adopt the longest valid chain among the peers if
// it is strictly longer than the local chain
//
// chains are fetched concurrently without holding the ledger lock and
// evaluated in sorted peer order; returns whether the local chain was
// replaced and the resulting local length
func (g *Gossip) ResolveConflicts(ctx context.Context) (bool, int) {
	self := g.peers.Self()
	peers := g.peers.Peers()

	results := make([]fetched, len(peers))

	var wg sync.WaitGroup
	for i, p := range peers {
		if p == self {
			results[i] = fetched{peer: p, err: fault.SelfRegistration}
			continue
		}
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, g.timeout)
			defer cancel()
			blocks, err := g.client.FetchChain(cctx, p)
			results[i] = fetched{peer: p, blocks: blocks, err: err}
		}(i, p)
	}
	wg.Wait()

	validators := g.ledger.Validators()
	bestLength := g.ledger.Length()
	var best []block.Block
	bestPeer := ""

	for _, r := range results {
		if nil != r.err {
			if fault.SelfRegistration != r.err {
				g.counters.Increment(ChainsUnreachable)
				g.log.Warnf("fetch chain from: %s  error: %s", r.peer, r.err)
			}
			continue
		}
		g.counters.Increment(ChainsFetched)

		if len(r.blocks) <= bestLength {
			g.log.Debugf("chain from: %s  length: %d  not longer than: %d", r.peer, len(r.blocks), bestLength)
			continue
		}
		if err := block.ValidateChain(r.blocks, validators); nil != err {
			g.counters.Increment(ChainsInvalid)
			g.log.Warnf("chain from: %s  length: %d  invalid: %s", r.peer, len(r.blocks), err)
			continue
		}
		best = r.blocks
		bestLength = len(r.blocks)
		bestPeer = r.peer
	}

	if nil == best {
		return false, g.ledger.Length()
	}

	replaced, err := g.ledger.Replace(best)
	if nil != err {
		g.log.Errorf("replace with chain from: %s  error: %s", bestPeer, err)
	}
	if replaced {
		g.counters.Increment(ChainsAdopted)
		g.log.Infof("adopted chain from: %s  length: %d", bestPeer, bestLength)
	}
	return replaced, g.ledger.Length()
}
