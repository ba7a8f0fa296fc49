// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/docledger/block"
)

const genesisHash = "336fe6e44b2744e618e0315ef1cc974fb9b52482905d580cb6f35c6c7885cd6f"

func TestGenesis(t *testing.T) {
	g := block.Genesis()

	assert.Equal(t, 0, g.Index, "wrong index")
	assert.Equal(t, int64(0), g.Timestamp, "wrong timestamp")
	assert.Equal(t, block.GenesisMarker, g.DocumentData.Marker, "wrong marker")
	assert.Nil(t, g.Document(), "genesis has a document")
	assert.Equal(t, "0", g.PreviousHash, "wrong previous hash")
	assert.Equal(t, "genesis", g.Validator, "wrong validator")
	assert.Equal(t, genesisHash, g.Hash, "wrong hash")
	assert.Equal(t, g, block.Genesis(), "genesis is not deterministic")
}

func TestDocumentHash(t *testing.T) {
	doc := &block.Document{
		DocumentID:         "DOC-1",
		Title:              "Degree <BSc>",
		Issuer:             "Uni & Co",
		Recipient:          "Ana",
		IssueDate:          "2024-01-02",
		DocumentHash:       "ab",
		FilePath:           "00:11",
		Timestamp:          1700000000001,
		VerificationStatus: true,
	}
	b := block.New(1, 1700000000000, block.Data{Document: doc}, "prev", "node1")

	assert.Equal(t, "cb772898d19458b592fcef3b33f0bf7799edf3c1b580ab7d33c10df9d4340bd8", b.Hash, "wrong hash")
	assert.Equal(t, b.Hash, b.CalculateHash(), "recompute differs")
}

func TestHashCoversFields(t *testing.T) {
	b := block.New(3, 1700000000000, block.Data{Document: &block.Document{DocumentID: "A"}}, "prev", "node1")

	changed := []block.Block{
		block.New(4, b.Timestamp, b.DocumentData, b.PreviousHash, b.Validator),
		block.New(b.Index, b.Timestamp+1, b.DocumentData, b.PreviousHash, b.Validator),
		block.New(b.Index, b.Timestamp, block.Data{Document: &block.Document{DocumentID: "B"}}, b.PreviousHash, b.Validator),
		block.New(b.Index, b.Timestamp, b.DocumentData, "other", b.Validator),
		block.New(b.Index, b.Timestamp, b.DocumentData, b.PreviousHash, "node2"),
	}
	for i, c := range changed {
		assert.NotEqual(t, b.Hash, c.Hash, "%d: hash did not change", i)
	}
}

func TestJSON(t *testing.T) {
	g := block.Genesis()
	buffer, err := json.Marshal(g)
	assert.Nil(t, err, "marshal genesis")
	assert.Contains(t, string(buffer), `"documentData":"Genesis Block - Document Validation System"`, "marker not a string")

	var decoded block.Block
	err = json.Unmarshal(buffer, &decoded)
	assert.Nil(t, err, "unmarshal genesis")
	assert.Equal(t, g, decoded, "genesis changed")

	wire := `{"index":1,"timestamp":5,"documentData":{"documentId":"X-1","title":"T","issuer":"I","recipient":"R","issueDate":"2024-01-01","documentHash":"h","filePath":"p","timestamp":5,"verificationStatus":true},"previousHash":"` + genesisHash + `","validator":"node1","hash":"abc"}`
	err = json.Unmarshal([]byte(wire), &decoded)
	assert.Nil(t, err, "unmarshal document block")
	assert.Equal(t, "X-1", decoded.Document().DocumentID, "wrong id")
	assert.Equal(t, "abc", decoded.Hash, "stored hash must be kept as received")

	err = json.Unmarshal([]byte(`{"index":1,"documentData":null}`), &decoded)
	assert.Nil(t, err, "null data")
	assert.Nil(t, decoded.Document(), "null data gave a document")
}

func TestRebuild(t *testing.T) {
	b := block.New(1, 10, block.Data{Marker: "x"}, "p", "v")
	tampered := b
	tampered.Hash = "not-the-hash"

	assert.Equal(t, b, block.Rebuild(tampered), "rebuild did not restore the hash")
}

func TestValidators(t *testing.T) {
	v := block.NewValidators("validator1", "", "genesis", "validator1", "node1")

	assert.True(t, v.Contains("validator1"), "missing validator1")
	assert.True(t, v.Contains("node1"), "missing node1")
	assert.False(t, v.Contains(""), "blank accepted")
	assert.False(t, v.Contains("mallory"), "unknown accepted")
	assert.Equal(t, []string{"genesis", "node1", "validator1"}, v.List(), "wrong list")
}
