// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fixtures

import (
	"fmt"

	"github.com/bitmark-inc/docledger/block"
	"github.com/bitmark-inc/docledger/fingerprint"
)

// BaseTimestamp - first timestamp used by generated chains
const BaseTimestamp = int64(1700000000000)

// Document - a deterministic record for id
func Document(id string) *block.Document {
	return &block.Document{
		DocumentID:         id,
		Title:              "Title of " + id,
		Issuer:             "Example University",
		Recipient:          "Ana Recipient",
		IssueDate:          "2024-01-02",
		DocumentHash:       fingerprint.Sum([]byte("content of " + id)).String(),
		FilePath:           "00112233445566778899aabbccddeeff:00",
		Timestamp:          BaseTimestamp,
		VerificationStatus: true,
	}
}

// Next - a valid successor of previous
func Next(previous block.Block, id string, validator string) block.Block {
	return block.New(
		previous.Index+1,
		previous.Timestamp+1000,
		block.Data{Document: Document(id)},
		previous.Hash,
		validator,
	)
}

// MakeChain - genesis followed by n-1 document blocks from validator,
// ids are prefix-1, prefix-2, ...
func MakeChain(n int, prefix string, validator string) []block.Block {
	chain := []block.Block{block.Genesis()}
	for i := 1; i < n; i++ {
		previous := chain[i-1]
		b := Next(previous, fmt.Sprintf("%s-%d", prefix, i), validator)
		if 1 == i {
			b = block.New(1, BaseTimestamp, b.DocumentData, previous.Hash, validator)
		}
		chain = append(chain, b)
	}
	return chain
}
