// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"

	"github.com/bitmark-inc/docledger/fault"
)

// genesis constants
const (
	GenesisMarker       = "Genesis Block - Document Validation System"
	GenesisPreviousHash = "0"
	GenesisValidator    = "genesis"
)

// Block - one entry in the ledger
type Block struct {
	Index        int    `json:"index"`
	Timestamp    int64  `json:"timestamp"`
	DocumentData Data   `json:"documentData"`
	PreviousHash string `json:"previousHash"`
	Validator    string `json:"validator"`
	Hash         string `json:"hash"`
}

// New - create a block with its hash computed from the fields
func New(index int, timestamp int64, data Data, previousHash string, validator string) Block {
	b := Block{
		Index:        index,
		Timestamp:    timestamp,
		DocumentData: data,
		PreviousHash: previousHash,
		Validator:    validator,
	}
	b.Hash = b.CalculateHash()
	return b
}

// Genesis - the fixed first block of every chain
func Genesis() Block {
	return New(0, 0, Data{Marker: GenesisMarker}, GenesisPreviousHash, GenesisValidator)
}

// Rebuild - recreate a block from its stored fields, ignoring the
// stored hash
func Rebuild(b Block) Block {
	return New(b.Index, b.Timestamp, b.DocumentData, b.PreviousHash, b.Validator)
}

// CalculateHash - hex SHA-256 of:
//   decimal index ++ previousHash ++ decimal timestamp ++ JSON(documentData) ++ validator
func (b Block) CalculateHash() string {
	var buffer bytes.Buffer
	buffer.WriteString(strconv.Itoa(b.Index))
	buffer.WriteString(b.PreviousHash)
	buffer.WriteString(strconv.FormatInt(b.Timestamp, 10))
	buffer.Write(b.DocumentData.canonical())
	buffer.WriteString(b.Validator)

	digest := sha256.Sum256(buffer.Bytes())
	return hex.EncodeToString(digest[:])
}

// IsGenesis - true for the block at index zero
func (b Block) IsGenesis() bool {
	return 0 == b.Index
}

// Document - the record of a document, nil for genesis
func (b Block) Document() *Document {
	return b.DocumentData.Document
}

// Data - either the genesis marker or a document record
type Data struct {
	Marker   string
	Document *Document
}

// Document - an anchored document, field order is the hashing order
type Document struct {
	DocumentID         string `json:"documentId"`
	Title              string `json:"title"`
	Issuer             string `json:"issuer"`
	Recipient          string `json:"recipient"`
	IssueDate          string `json:"issueDate"`
	DocumentHash       string `json:"documentHash"`
	FilePath           string `json:"filePath"`
	Timestamp          int64  `json:"timestamp"`
	VerificationStatus bool   `json:"verificationStatus"`
}

// MarshalJSON - marker as a JSON string, document as an object
func (d Data) MarshalJSON() ([]byte, error) {
	return d.canonical(), nil
}

// UnmarshalJSON - accept either a string or an object
func (d *Data) UnmarshalJSON(s []byte) error {
	s = bytes.TrimSpace(s)
	*d = Data{}
	switch {
	case 0 == len(s) || bytes.Equal(s, []byte("null")):
		return nil
	case '"' == s[0]:
		return json.Unmarshal(s, &d.Marker)
	default:
		doc := &Document{}
		if err := json.Unmarshal(s, doc); nil != err {
			return err
		}
		d.Document = doc
		return nil
	}
}

// canonical encoding: no HTML escaping, no trailing newline
func (d Data) canonical() []byte {
	var v interface{} = d.Marker
	if nil != d.Document {
		v = d.Document
	}

	var buffer bytes.Buffer
	enc := json.NewEncoder(&buffer)
	enc.SetEscapeHTML(false)
	// only plain strings, ints and bools are encoded
	fault.PanicIfError("encode document data", enc.Encode(v))
	return bytes.TrimRight(buffer.Bytes(), "\n")
}
