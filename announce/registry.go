// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package announce

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/docledger/fault"
	"github.com/bitmark-inc/docledger/upstream"
)

// Registry - peer set with the registration handshake
type Registry struct {
	sync.RWMutex

	log    *logger.L
	self   string
	peers  map[string]struct{}
	client upstream.Client
}

// New - empty registry for a node reachable at self
func New(self string, client upstream.Client) (*Registry, error) {
	self = Normalise(self)
	if err := CheckURL(self); nil != err {
		return nil, fault.InvalidPublicURL
	}

	log := logger.New("announce")
	if nil == log {
		return nil, fault.InvalidLoggerChannel
	}

	return &Registry{
		log:    log,
		self:   self,
		peers:  make(map[string]struct{}),
		client: client,
	}, nil
}

// Normalise - canonical form of a node URL
func Normalise(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}

// CheckURL - a node URL must be absolute http or https with a host
func CheckURL(u string) error {
	parsed, err := url.Parse(u)
	if nil != err {
		return fault.InvalidNodeURL
	}
	if ("http" != parsed.Scheme && "https" != parsed.Scheme) || "" == parsed.Host {
		return fault.InvalidNodeURL
	}
	return nil
}

// Self - this node's URL
func (r *Registry) Self() string {
	return r.self
}

// Peers - sorted copy of the peer set
func (r *Registry) Peers() []string {
	r.RLock()
	defer r.RUnlock()
	return r.sortedLocked()
}

// Count - number of peers
func (r *Registry) Count() int {
	r.RLock()
	defer r.RUnlock()
	return len(r.peers)
}

func (r *Registry) sortedLocked() []string {
	list := make([]string, 0, len(r.peers))
	for p := range r.peers {
		list = append(list, p)
	}
	sort.Strings(list)
	return list
}

// add under lock, true if it was new
func (r *Registry) add(u string) bool {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.peers[u]; ok {
		return false
	}
	r.peers[u] = struct{}{}
	return true
}

// Register - add a peer and, if it is new, run the handshake:
//
//   1. ask the new peer to register this node
//   2. send the new peer the full peer set
//   3. tell every other peer about the new peer
//
// each step is best effort: failures are logged and the peer stays
// registered; no lock is held during the outbound calls
func (r *Registry) Register(ctx context.Context, nodeURL string) ([]string, error) {
	nodeURL = Normalise(nodeURL)
	if "" == nodeURL {
		return nil, fault.MissingField
	}
	if nodeURL == r.self {
		return nil, fault.SelfRegistration
	}
	if err := CheckURL(nodeURL); nil != err {
		return nil, err
	}

	if !r.add(nodeURL) {
		return r.Peers(), nil
	}
	r.log.Infof("registered peer: %s", nodeURL)

	if err := r.client.Register(ctx, nodeURL, r.self); nil != err {
		r.log.Warnf("register self with: %s  error: %s", nodeURL, err)
	}

	peers := r.Peers()
	if err := r.client.SyncNodes(ctx, nodeURL, peers); nil != err {
		r.log.Warnf("sync peers to: %s  error: %s", nodeURL, err)
	}

	var wg sync.WaitGroup
	for _, p := range peers {
		if p == nodeURL {
			continue
		}
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			if err := r.client.SyncNodes(ctx, p, []string{nodeURL}); nil != err {
				r.log.Warnf("announce: %s  to: %s  error: %s", nodeURL, p, err)
			}
		}(p)
	}
	wg.Wait()

	return r.Peers(), nil
}

// Sync - merge urls into the peer set without any outbound calls
//
// self, blank and malformed entries are skipped
func (r *Registry) Sync(urls []string) []string {
	r.Lock()
	defer r.Unlock()

	for _, u := range urls {
		u = Normalise(u)
		if "" == u || u == r.self {
			continue
		}
		if nil != CheckURL(u) {
			r.log.Debugf("sync: ignore malformed url: %q", u)
			continue
		}
		if _, ok := r.peers[u]; !ok {
			r.peers[u] = struct{}{}
			r.log.Infof("synced peer: %s", u)
		}
	}
	return r.sortedLocked()
}

// Bootstrap - ask each bootstrap node to register this node
//
// the remote handshake calls back with register and sync, which fills
// the local set
func (r *Registry) Bootstrap(ctx context.Context, urls []string) int {
	n := 0
	for _, u := range urls {
		u = Normalise(u)
		if "" == u || u == r.self {
			continue
		}
		if err := r.client.Register(ctx, u, r.self); nil != err {
			r.log.Warnf("bootstrap: %s  error: %s", u, err)
			continue
		}
		r.log.Infof("bootstrap: registered with: %s", u)
		n += 1
	}
	return n
}
