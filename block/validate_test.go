// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/docledger/block"
	"github.com/bitmark-inc/docledger/fault"
	"github.com/bitmark-inc/docledger/fixtures"
)

var validators = block.NewValidators("validator1", "validator2", "genesis", "node1")

func TestValidateBlock(t *testing.T) {
	latest := block.Genesis()
	good := fixtures.Next(latest, "DOC-1", "node1")

	assert.Nil(t, block.ValidateBlock(good, latest, validators), "good block rejected")
	assert.True(t, block.IsValidBlock(good, latest, validators), "good block rejected")

	badHash := good
	badHash.Hash = "00"
	badLink := block.New(1, good.Timestamp, good.DocumentData, "ffff", "node1")
	badValidator := block.New(1, good.Timestamp, good.DocumentData, latest.Hash, "mallory")

	items := []struct {
		name  string
		b     block.Block
		fault error
	}{
		{"hash", badHash, fault.HashMismatch},
		{"link", badLink, fault.PreviousHashMismatch},
		{"validator", badValidator, fault.UnauthorisedValidator},
	}
	for _, item := range items {
		err := block.ValidateBlock(item.b, latest, validators)
		assert.True(t, errors.Is(err, item.fault), "%s: wrong error: %v", item.name, err)
		assert.True(t, fault.IsErrInvalidBlock(err), "%s: wrong class: %v", item.name, err)
		assert.False(t, block.IsValidBlock(item.b, latest, validators), "%s: accepted", item.name)
	}
}

func TestValidateBlockReportsLinkage(t *testing.T) {
	latest := block.Genesis()
	b := block.New(1, 1, block.Data{Marker: "x"}, "stale", "node1")

	err := block.ValidateBlock(b, latest, validators)

	var ve *block.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("not a validation error: %v", err)
	}
	assert.Equal(t, latest.Hash, ve.Expected, "wrong expected")
	assert.Equal(t, "stale", ve.Received, "wrong received")
}

func TestValidateBlockGenesisForm(t *testing.T) {
	latest := fixtures.MakeChain(3, "DOC", "node1")[2]

	// index zero skips the hash and linkage checks
	g := block.Genesis()
	g.Hash = "anything"
	assert.Nil(t, block.ValidateBlock(g, latest, validators), "genesis form rejected")

	notGenesis := block.Genesis()
	notGenesis.Validator = "node1"
	assert.True(t, errors.Is(block.ValidateBlock(notGenesis, latest, validators), fault.InvalidGenesis), "wrong genesis validator accepted")

	notGenesis = block.Genesis()
	notGenesis.PreviousHash = latest.Hash
	assert.True(t, errors.Is(block.ValidateBlock(notGenesis, latest, validators), fault.InvalidGenesis), "wrong genesis previous hash accepted")
}

func TestCheck(t *testing.T) {
	latest := block.Genesis()
	b := block.New(1, 1, block.Data{Marker: "x"}, "stale", "node1")

	checks := block.Check(b, latest, validators)
	assert.Equal(t, block.Checks{Hash: true, PreviousHash: false, Validator: true}, checks, "wrong checks")
}

func TestValidateSuccessor(t *testing.T) {
	latest := block.Genesis()
	skip := block.New(2, 1, block.Data{Marker: "x"}, latest.Hash, "node1")

	err := block.ValidateSuccessor(skip, latest, validators)
	assert.True(t, errors.Is(err, fault.IndexMismatch), "index gap accepted: %v", err)

	next := fixtures.Next(latest, "DOC-1", "node1")
	assert.Nil(t, block.ValidateSuccessor(next, latest, validators), "successor rejected")
}

func TestValidateChain(t *testing.T) {
	chain := fixtures.MakeChain(5, "DOC", "validator1")
	assert.Nil(t, block.ValidateChain(chain, validators), "good chain rejected")
	assert.True(t, block.IsValidChain(chain[:1], validators), "genesis only chain rejected")

	assert.Equal(t, fault.EmptyChain, block.ValidateChain(nil, validators), "empty chain accepted")

	// first block is not inspected
	odd := append([]block.Block{}, chain...)
	odd[0].Validator = "mallory"
	odd[0].Hash = "zz"
	odd[1] = block.New(odd[1].Index, odd[1].Timestamp, odd[1].DocumentData, "zz", odd[1].Validator)
	odd[2] = block.New(odd[2].Index, odd[2].Timestamp, odd[2].DocumentData, odd[1].Hash, odd[2].Validator)
	odd[3] = block.New(odd[3].Index, odd[3].Timestamp, odd[3].DocumentData, odd[2].Hash, odd[3].Validator)
	odd[4] = block.New(odd[4].Index, odd[4].Timestamp, odd[4].DocumentData, odd[3].Hash, odd[4].Validator)
	assert.Nil(t, block.ValidateChain(odd, validators), "chain rejected because of its first block")
}

func TestValidateChainFailures(t *testing.T) {
	chain := fixtures.MakeChain(4, "DOC", "validator1")

	tamperedData := append([]block.Block{}, chain...)
	doc := *tamperedData[2].Document()
	doc.Title = "forged"
	tamperedData[2].DocumentData = block.Data{Document: &doc}

	broken := append([]block.Block{}, chain...)
	broken[3] = block.New(3, broken[3].Timestamp, broken[3].DocumentData, "elsewhere", "validator1")

	foreign := fixtures.MakeChain(4, "DOC", "mallory")

	items := []struct {
		name  string
		chain []block.Block
		index int
		fault error
	}{
		{"tampered data", tamperedData, 2, fault.HashMismatch},
		{"broken link", broken, 3, fault.PreviousHashMismatch},
		{"unauthorised", foreign, 1, fault.UnauthorisedValidator},
	}
	for _, item := range items {
		err := block.ValidateChain(item.chain, validators)
		var ve *block.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: not a validation error: %v", item.name, err)
			continue
		}
		assert.Equal(t, item.index, ve.Index, "%s: wrong index", item.name)
		assert.True(t, errors.Is(err, item.fault), "%s: wrong fault: %v", item.name, err)
	}
}
