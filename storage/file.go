// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/bitmark-inc/docledger/block"
	"github.com/bitmark-inc/docledger/util"
)

// FileStore - chain as an indented JSON array in a single file
type FileStore struct {
	sync.Mutex
	name string
}

// NewFile - store backed by the named file, the directory is created
// if missing
func NewFile(name string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(name), 0700); nil != err {
		return nil, ioFailure("create directory", err)
	}
	return &FileStore{
		name: name,
	}, nil
}

// Name - path of the backing file
func (f *FileStore) Name() string {
	return f.name
}

// Load - read the chain, a missing file is an empty chain
func (f *FileStore) Load() ([]block.Block, error) {
	f.Lock()
	defer f.Unlock()

	data, err := ioutil.ReadFile(f.name)
	if os.IsNotExist(err) {
		return []block.Block{}, nil
	}
	if nil != err {
		return nil, ioFailure("read", err)
	}

	var blocks []block.Block
	if err := json.Unmarshal(data, &blocks); nil != err {
		return nil, ioFailure("decode", err)
	}
	return blocks, nil
}

// Save - replace the file contents atomically
func (f *FileStore) Save(blocks []block.Block) error {
	data, err := json.MarshalIndent(blocks, "", "  ")
	if nil != err {
		return ioFailure("encode", err)
	}

	f.Lock()
	defer f.Unlock()

	if err := util.WriteFileAtomic(f.name, data, 0600); nil != err {
		return ioFailure("write", err)
	}
	return nil
}

// Close - nothing is held open
func (f *FileStore) Close() error {
	return nil
}
