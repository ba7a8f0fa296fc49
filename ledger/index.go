// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/docledger/block"
)

const (
	idPrefix   = "id:"
	hashPrefix = "hash:"
)

// secondary index from document id and content hash to chain position
//
// entries never expire and the first block to claim a key keeps it,
// matching a forward scan of the chain
type lookupIndex struct {
	c *cache.Cache
}

func newLookupIndex() *lookupIndex {
	return &lookupIndex{
		c: cache.New(cache.NoExpiration, 0),
	}
}

func (l *lookupIndex) add(position int, b block.Block) {
	doc := b.Document()
	if nil == doc {
		return
	}
	// Add fails if the key exists, keeping the earliest block
	_ = l.c.Add(idPrefix+doc.DocumentID, position, cache.NoExpiration)
	_ = l.c.Add(hashPrefix+doc.DocumentHash, position, cache.NoExpiration)
}

func (l *lookupIndex) rebuild(chain []block.Block) {
	l.c.Flush()
	for i, b := range chain {
		l.add(i, b)
	}
}

func (l *lookupIndex) byID(documentID string) (int, bool) {
	return l.get(idPrefix + documentID)
}

func (l *lookupIndex) byHash(documentHash string) (int, bool) {
	return l.get(hashPrefix + documentHash)
}

func (l *lookupIndex) get(key string) (int, bool) {
	v, found := l.c.Get(key)
	if !found {
		return 0, false
	}
	return v.(int), true
}
