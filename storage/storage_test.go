// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/docledger/fault"
	"github.com/bitmark-inc/docledger/fixtures"
	"github.com/bitmark-inc/docledger/storage"
)

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "storage")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}
	return dir
}

func TestStoreTypes(t *testing.T) {
	for _, databaseType := range []string{storage.TypeFile, storage.TypeLevelDB} {
		dir := tempDir(t)

		s, err := storage.Open(databaseType, filepath.Join(dir, "node1"))
		assert.Nil(t, err, "%s: open", databaseType)

		blocks, err := s.Load()
		assert.Nil(t, err, "%s: empty load", databaseType)
		assert.Equal(t, 0, len(blocks), "%s: new store not empty", databaseType)

		chain := fixtures.MakeChain(5, "DOC", "node1")
		err = s.Save(chain)
		assert.Nil(t, err, "%s: save", databaseType)

		blocks, err = s.Load()
		assert.Nil(t, err, "%s: load", databaseType)
		assert.Equal(t, chain, blocks, "%s: chain changed", databaseType)

		// a shorter chain replaces the longer one completely
		err = s.Save(chain[:2])
		assert.Nil(t, err, "%s: save shorter", databaseType)
		assert.Nil(t, s.Close(), "%s: close", databaseType)

		s, err = storage.Open(databaseType, filepath.Join(dir, "node1"))
		assert.Nil(t, err, "%s: reopen", databaseType)
		blocks, err = s.Load()
		assert.Nil(t, err, "%s: reload", databaseType)
		assert.Equal(t, chain[:2], blocks, "%s: stale blocks survived", databaseType)
		assert.Nil(t, s.Close(), "%s: close", databaseType)

		os.RemoveAll(dir)
	}
}

func TestOpenUnsupported(t *testing.T) {
	_, err := storage.Open("mongodb", "/tmp")
	assert.True(t, fault.IsErrInvalid(err), "wrong error: %v", err)
}

func TestFileLayout(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	s, err := storage.Open(storage.TypeFile, filepath.Join(dir, "node1"))
	assert.Nil(t, err, "open")

	err = s.Save(fixtures.MakeChain(1, "DOC", "node1"))
	assert.Nil(t, err, "save")

	data, err := ioutil.ReadFile(filepath.Join(dir, "node1", "blockchain.json"))
	assert.Nil(t, err, "read file")
	assert.Contains(t, string(data), "\n  {\n    \"index\": 0,", "not indented JSON")
}

func TestFileCorrupt(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	name := filepath.Join(dir, "blockchain.json")
	err := ioutil.WriteFile(name, []byte("[{\"index\": 0,"), 0600)
	assert.Nil(t, err, "write corrupt file")

	s, err := storage.NewFile(name)
	assert.Nil(t, err, "new file store")

	_, err = s.Load()
	assert.True(t, fault.IsErrIO(err), "corrupt file not reported: %v", err)
}

func TestFileFailedSaveKeepsPrevious(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	name := filepath.Join(dir, "node1", "blockchain.json")
	s, err := storage.NewFile(name)
	assert.Nil(t, err, "new file store")

	chain := fixtures.MakeChain(3, "DOC", "node1")
	assert.Nil(t, s.Save(chain), "first save")

	// make the directory unwritable so the temporary file cannot be created
	err = os.Chmod(filepath.Dir(name), 0500)
	assert.Nil(t, err, "chmod")
	defer os.Chmod(filepath.Dir(name), 0700)

	if nil == ioutil.WriteFile(filepath.Join(filepath.Dir(name), "probe"), nil, 0600) {
		t.Skip("directory permissions not enforced for this user")
	}

	err = s.Save(fixtures.MakeChain(5, "DOC", "node1"))
	assert.True(t, fault.IsErrIO(err), "failed save not reported: %v", err)

	blocks, err := s.Load()
	assert.Nil(t, err, "load after failed save")
	assert.Equal(t, chain, blocks, "previous chain damaged")
}

func TestLevelDBReadOnly(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	_, err := storage.OpenReadOnly(storage.TypeLevelDB, dir)
	assert.True(t, fault.IsErrIO(err), "missing read only database opened: %v", err)

	s, err := storage.Open(storage.TypeLevelDB, dir)
	assert.Nil(t, err, "create")
	chain := fixtures.MakeChain(2, "DOC", "node1")
	assert.Nil(t, s.Save(chain), "save")
	assert.Nil(t, s.Close(), "close")

	s, err = storage.OpenReadOnly(storage.TypeLevelDB, dir)
	assert.Nil(t, err, "open read only")
	defer s.Close()

	blocks, err := s.Load()
	assert.Nil(t, err, "load")
	assert.Equal(t, chain, blocks, "chain changed")
}
