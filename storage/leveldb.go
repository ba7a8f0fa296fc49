// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/bitmark-inc/docledger/block"
)

// key layout:
//   'B' ++ big endian uint64 index  → JSON block
//   'N'                             → big endian uint64 block count
//   0x00 "VERSION"                  → big endian uint64 database version
const (
	blockPrefix = 'B'
	countKey    = 'N'

	currentDBVersion = 0x100
)

var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

// LevelDBStore - chain held in a LevelDB database
type LevelDBStore struct {
	sync.Mutex
	db *leveldb.DB
}

// NewLevelDB - open or create the database
func NewLevelDB(name string, readOnly bool) (*LevelDBStore, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, ioFailure("open leveldb", err)
	}

	version, err := getUint64(db, versionKey)
	if nil != err {
		db.Close()
		return nil, err
	}
	if version > currentDBVersion {
		db.Close()
		return nil, ioFailure("open leveldb", fmt.Errorf("database version: %d > current version: %d", version, currentDBVersion))
	}
	if 0 == version && !readOnly {
		if err := db.Put(versionKey, uint64Bytes(currentDBVersion), &ldb_opt.WriteOptions{Sync: true}); nil != err {
			db.Close()
			return nil, ioFailure("write version", err)
		}
	}

	return &LevelDBStore{
		db: db,
	}, nil
}

// Load - read blocks 0 .. count-1
func (l *LevelDBStore) Load() ([]block.Block, error) {
	l.Lock()
	defer l.Unlock()

	count, err := getUint64(l.db, []byte{countKey})
	if nil != err {
		return nil, err
	}

	blocks := make([]block.Block, 0, count)
	for i := uint64(0); i < count; i++ {
		data, err := l.db.Get(blockKey(i), nil)
		if nil != err {
			return nil, ioFailure(fmt.Sprintf("read block %d", i), err)
		}
		var b block.Block
		if err := json.Unmarshal(data, &b); nil != err {
			return nil, ioFailure(fmt.Sprintf("decode block %d", i), err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// Save - write the chain as one synced batch, removing any keys
// beyond the new length
func (l *LevelDBStore) Save(blocks []block.Block) error {
	l.Lock()
	defer l.Unlock()

	oldCount, err := getUint64(l.db, []byte{countKey})
	if nil != err {
		return err
	}

	batch := new(leveldb.Batch)
	for i, b := range blocks {
		data, err := json.Marshal(b)
		if nil != err {
			return ioFailure("encode", err)
		}
		batch.Put(blockKey(uint64(i)), data)
	}
	for i := uint64(len(blocks)); i < oldCount; i++ {
		batch.Delete(blockKey(i))
	}
	batch.Put([]byte{countKey}, uint64Bytes(uint64(len(blocks))))

	if err := l.db.Write(batch, &ldb_opt.WriteOptions{Sync: true}); nil != err {
		return ioFailure("write batch", err)
	}
	return nil
}

// Close - release the database
func (l *LevelDBStore) Close() error {
	l.Lock()
	defer l.Unlock()
	if nil == l.db {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

func blockKey(index uint64) []byte {
	key := make([]byte, 9)
	key[0] = blockPrefix
	binary.BigEndian.PutUint64(key[1:], index)
	return key
}

func uint64Bytes(n uint64) []byte {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, n)
	return buffer
}

// missing key reads as zero
func getUint64(db *leveldb.DB, key []byte) (uint64, error) {
	value, err := db.Get(key, nil)
	if leveldb.ErrNotFound == err {
		return 0, nil
	}
	if nil != err {
		return 0, ioFailure("read", err)
	}
	if len(value) < 8 {
		return 0, ioFailure("read", fmt.Errorf("short record for key: %x", key))
	}
	return binary.BigEndian.Uint64(value[:8]), nil
}
