// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"fmt"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/docledger/block"
	"github.com/bitmark-inc/docledger/fault"
	"github.com/bitmark-inc/docledger/storage"
)

// Broadcaster - receives every block appended locally, after the
// writer lock is released
type Broadcaster interface {
	Broadcast(b block.Block)
}

// Blockchain - the chain owned by one node
type Blockchain struct {
	sync.RWMutex

	log         *logger.L
	nodeName    string
	validators  block.Validators
	store       storage.Store
	chain       []block.Block
	index       *lookupIndex
	broadcaster Broadcaster
}

// New - restore the chain from store, creating genesis if the store
// is empty
//
// stored hashes that do not match their recomputed value are logged
// and replaced by the recomputed value; a store that cannot be read is
// an error, it is never overwritten
func New(nodeName string, validators block.Validators, store storage.Store) (*Blockchain, error) {
	if "" == nodeName {
		return nil, fault.MissingNodeName
	}

	log := logger.New("ledger")
	if nil == log {
		return nil, fault.InvalidLoggerChannel
	}

	stored, err := store.Load()
	if nil != err {
		log.Criticalf("load chain error: %s", err)
		return nil, err
	}

	chain := make([]block.Block, 0, len(stored)+1)
	for _, b := range stored {
		rebuilt := block.Rebuild(b)
		if rebuilt.Hash != b.Hash {
			log.Warnf("%s: block: %d  stored: %q  computed: %q", fault.ChainCorruption, b.Index, b.Hash, rebuilt.Hash)
		}
		chain = append(chain, rebuilt)
	}

	if 0 == len(chain) {
		chain = append(chain, block.Genesis())
		if err := store.Save(chain); nil != err {
			log.Criticalf("save genesis error: %s", err)
			return nil, err
		}
		log.Info("created genesis block")
	}

	bc := &Blockchain{
		log:        log,
		nodeName:   nodeName,
		validators: validators,
		store:      store,
		chain:      chain,
		index:      newLookupIndex(),
	}
	bc.index.rebuild(chain)

	log.Infof("restored chain: %s  length: %d", nodeName, len(chain))
	return bc, nil
}

// SetBroadcaster - install the receiver of locally appended blocks
func (bc *Blockchain) SetBroadcaster(b Broadcaster) {
	bc.Lock()
	bc.broadcaster = b
	bc.Unlock()
}

// NodeName - identity of the owning node
func (bc *Blockchain) NodeName() string {
	return bc.nodeName
}

// Validators - the allow-list this chain validates against
func (bc *Blockchain) Validators() block.Validators {
	return bc.validators
}

// Latest - last block
func (bc *Blockchain) Latest() block.Block {
	bc.RLock()
	defer bc.RUnlock()
	return bc.chain[len(bc.chain)-1]
}

// Length - number of blocks including genesis
func (bc *Blockchain) Length() int {
	bc.RLock()
	defer bc.RUnlock()
	return len(bc.chain)
}

// Blocks - copy of the whole chain
func (bc *Blockchain) Blocks() []block.Block {
	bc.RLock()
	defer bc.RUnlock()
	return append([]block.Block(nil), bc.chain...)
}

// Documents - every block that carries a document record
func (bc *Blockchain) Documents() []block.Block {
	bc.RLock()
	defer bc.RUnlock()

	result := make([]block.Block, 0, len(bc.chain))
	for _, b := range bc.chain {
		if nil != b.Document() {
			result = append(result, b)
		}
	}
	return result
}

// Verify - validate the local chain
func (bc *Blockchain) Verify() error {
	bc.RLock()
	defer bc.RUnlock()
	return block.ValidateChain(bc.chain, bc.validators)
}

// Append - add a locally produced block and broadcast it
func (bc *Blockchain) Append(candidate block.Block) error {
	bc.Lock()
	err := bc.appendLocked(candidate)
	broadcaster := bc.broadcaster
	bc.Unlock()

	if nil != err {
		return err
	}
	if nil != broadcaster {
		broadcaster.Broadcast(candidate)
	}
	return nil
}

// Receive - add a block produced by a peer, it is not re-broadcast
func (bc *Blockchain) Receive(candidate block.Block) error {
	bc.Lock()
	defer bc.Unlock()
	return bc.appendLocked(candidate)
}

// Seal - create the next block for doc against the latest block and
// append it, all under the writer lock
//
// a document id that is already on the chain is rejected
func (bc *Blockchain) Seal(doc *block.Document, validator string, timestamp int64) (block.Block, error) {
	if nil == doc {
		return block.Block{}, fault.MissingField
	}

	bc.Lock()
	if _, found := bc.index.byID(doc.DocumentID); found {
		bc.Unlock()
		return block.Block{}, fmt.Errorf("%w: %q", fault.DocumentExists, doc.DocumentID)
	}

	latest := bc.chain[len(bc.chain)-1]
	b := block.New(latest.Index+1, timestamp, block.Data{Document: doc}, latest.Hash, validator)

	err := bc.appendLocked(b)
	broadcaster := bc.broadcaster
	bc.Unlock()

	if nil != err {
		return block.Block{}, err
	}
	if nil != broadcaster {
		broadcaster.Broadcast(b)
	}
	return b, nil
}

// must hold the write lock
func (bc *Blockchain) appendLocked(candidate block.Block) error {
	latest := bc.chain[len(bc.chain)-1]

	checks := block.Check(candidate, latest, bc.validators)
	bc.log.Debugf("validate block: %d  hash valid: %t  previous hash valid: %t  validator valid: %t",
		candidate.Index, checks.Hash, checks.PreviousHash, checks.Validator)

	if err := block.ValidateSuccessor(candidate, latest, bc.validators); nil != err {
		bc.log.Warnf("reject block: %s", err)
		return err
	}

	bc.chain = append(bc.chain, candidate)
	if err := bc.store.Save(bc.chain); nil != err {
		bc.chain = bc.chain[:len(bc.chain)-1]
		bc.log.Errorf("persist block: %d  error: %s", candidate.Index, err)
		return err
	}
	bc.index.add(len(bc.chain)-1, candidate)

	bc.log.Infof("appended block: %d  hash: %s  validator: %s", candidate.Index, candidate.Hash, candidate.Validator)
	return nil
}

// Replace - adopt candidate if it is still strictly longer than the
// local chain and valid
//
// returns false with no error if the local chain grew in the meantime
func (bc *Blockchain) Replace(candidate []block.Block) (bool, error) {
	bc.Lock()
	defer bc.Unlock()

	if len(candidate) <= len(bc.chain) {
		bc.log.Infof("replace skipped: candidate length: %d  local length: %d", len(candidate), len(bc.chain))
		return false, nil
	}
	if err := block.ValidateChain(candidate, bc.validators); nil != err {
		bc.log.Warnf("replace rejected: %s", err)
		return false, err
	}

	chain := append([]block.Block(nil), candidate...)
	if err := bc.store.Save(chain); nil != err {
		bc.log.Errorf("persist replacement error: %s", err)
		return false, err
	}

	bc.log.Infof("replaced chain: old length: %d  new length: %d", len(bc.chain), len(chain))
	bc.chain = chain
	bc.index.rebuild(chain)
	return true, nil
}

// Lookup - first block carrying documentID
func (bc *Blockchain) Lookup(documentID string) (block.Block, bool) {
	bc.RLock()
	defer bc.RUnlock()

	i, found := bc.index.byID(documentID)
	if !found {
		return block.Block{}, false
	}
	return bc.chain[i], true
}

// LookupByHash - first block whose document has the given content
// fingerprint
func (bc *Blockchain) LookupByHash(documentHash string) (block.Block, bool) {
	bc.RLock()
	defer bc.RUnlock()

	i, found := bc.index.byHash(documentHash)
	if !found {
		return block.Block{}, false
	}
	return bc.chain[i], true
}
