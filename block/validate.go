// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"fmt"

	"github.com/bitmark-inc/docledger/fault"
)

// ValidationError - why a block was rejected, with the values compared
type ValidationError struct {
	Index    int
	Err      error
	Expected string
	Received string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("block %d: %s: expected: %q received: %q", e.Index, e.Err, e.Expected, e.Received)
}

// Unwrap - the fault instance
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func reject(index int, err error, expected string, received string) *ValidationError {
	return &ValidationError{
		Index:    index,
		Err:      err,
		Expected: expected,
		Received: received,
	}
}

// Checks - individual results of block validation
type Checks struct {
	Hash         bool
	PreviousHash bool
	Validator    bool
}

// Check - run each block check independently against the latest
// block, for diagnostics
func Check(candidate Block, latest Block, validators Validators) Checks {
	return Checks{
		Hash:         candidate.Hash == candidate.CalculateHash(),
		PreviousHash: candidate.PreviousHash == latest.Hash,
		Validator:    validators.Contains(candidate.Validator),
	}
}

// ValidateBlock - decide whether candidate may follow latest
//
// index zero is only accepted in genesis form, hash contents are not
// checked for it
func ValidateBlock(candidate Block, latest Block, validators Validators) error {
	if candidate.IsGenesis() {
		if GenesisValidator != candidate.Validator {
			return reject(0, fault.InvalidGenesis, GenesisValidator, candidate.Validator)
		}
		if GenesisPreviousHash != candidate.PreviousHash {
			return reject(0, fault.InvalidGenesis, GenesisPreviousHash, candidate.PreviousHash)
		}
		return nil
	}

	if h := candidate.CalculateHash(); h != candidate.Hash {
		return reject(candidate.Index, fault.HashMismatch, h, candidate.Hash)
	}
	if candidate.PreviousHash != latest.Hash {
		return reject(candidate.Index, fault.PreviousHashMismatch, latest.Hash, candidate.PreviousHash)
	}
	if !validators.Contains(candidate.Validator) {
		return reject(candidate.Index, fault.UnauthorisedValidator, "", candidate.Validator)
	}
	return nil
}

// IsValidBlock - boolean form of ValidateBlock
func IsValidBlock(candidate Block, latest Block, validators Validators) bool {
	return nil == ValidateBlock(candidate, latest, validators)
}

// ValidateSuccessor - ValidateBlock plus index continuity
func ValidateSuccessor(candidate Block, latest Block, validators Validators) error {
	if candidate.Index != latest.Index+1 {
		return reject(candidate.Index, fault.IndexMismatch, fmt.Sprintf("%d", latest.Index+1), fmt.Sprintf("%d", candidate.Index))
	}
	return ValidateBlock(candidate, latest, validators)
}

// ValidateChain - check a whole chain
//
// the first block is accepted as is, every later block must carry its
// recomputed hash, link to its predecessor, follow it by one index and
// name an allowed validator
func ValidateChain(blocks []Block, validators Validators) error {
	if 0 == len(blocks) {
		return fault.EmptyChain
	}

	for i := 1; i < len(blocks); i++ {
		current := blocks[i]
		previous := blocks[i-1]

		if h := Rebuild(current).Hash; h != current.Hash {
			return reject(i, fault.HashMismatch, h, current.Hash)
		}
		if current.PreviousHash != previous.Hash {
			return reject(i, fault.PreviousHashMismatch, previous.Hash, current.PreviousHash)
		}
		if current.Index != previous.Index+1 {
			return reject(i, fault.IndexMismatch, fmt.Sprintf("%d", previous.Index+1), fmt.Sprintf("%d", current.Index))
		}
		if !validators.Contains(current.Validator) {
			return reject(i, fault.UnauthorisedValidator, "", current.Validator)
		}
	}
	return nil
}

// IsValidChain - boolean form of ValidateChain
func IsValidChain(blocks []Block, validators Validators) bool {
	return nil == ValidateChain(blocks, validators)
}
