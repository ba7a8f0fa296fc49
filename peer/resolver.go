// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"context"
	"time"

	"github.com/bitmark-inc/docledger/background"
)

type resolver struct {
	gossip   *Gossip
	interval time.Duration
}

// NewResolver - background process running conflict resolution at a
// fixed interval
func NewResolver(g *Gossip, interval time.Duration) background.Process {
	return &resolver{
		gossip:   g,
		interval: interval,
	}
}

// Run - background processing interface
func (r *resolver) Run(_ interface{}, shutdown <-chan struct{}) {
	log := r.gossip.log
	log.Infof("resolver starting…  interval: %v", r.interval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-shutdown
		cancel()
	}()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-ticker.C:
			resolved, length := r.gossip.ResolveConflicts(ctx)
			log.Debugf("periodic resolve: resolved: %t  length: %d", resolved, length)
		}
	}
	log.Info("resolver stopped")
}
