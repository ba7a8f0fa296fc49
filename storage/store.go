// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bitmark-inc/docledger/block"
	"github.com/bitmark-inc/docledger/fault"
)

// supported database types
const (
	TypeFile    = "file"
	TypeLevelDB = "leveldb"
)

// file names inside the node directory
const (
	fileName    = "blockchain.json"
	levelDBName = "blockchain.leveldb"
)

// Store - persistence of a chain
//
// Load returns an empty slice and no error when nothing is stored yet
type Store interface {
	Load() ([]block.Block, error)
	Save(blocks []block.Block) error
	Close() error
}

// Open - open the store of the given type in directory
func Open(databaseType string, directory string) (Store, error) {
	switch strings.ToLower(databaseType) {
	case "", TypeFile:
		return NewFile(filepath.Join(directory, fileName))
	case TypeLevelDB:
		return NewLevelDB(filepath.Join(directory, levelDBName), false)
	default:
		return nil, fmt.Errorf("%w: %q", fault.UnsupportedDatabaseType, databaseType)
	}
}

// OpenReadOnly - like Open but the store refuses writes
func OpenReadOnly(databaseType string, directory string) (Store, error) {
	switch strings.ToLower(databaseType) {
	case "", TypeFile:
		return NewFile(filepath.Join(directory, fileName))
	case TypeLevelDB:
		return NewLevelDB(filepath.Join(directory, levelDBName), true)
	default:
		return nil, fmt.Errorf("%w: %q", fault.UnsupportedDatabaseType, databaseType)
	}
}

func ioFailure(action string, err error) error {
	return fmt.Errorf("%w: %s: %s", fault.IOFailure, action, err)
}
