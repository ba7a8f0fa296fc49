// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fingerprint - content identity of documents
//
// a fingerprint is the SHA-256 digest of the raw bytes, rendered as
// lowercase hex, so it can be checked on the command line with
// sha256sum
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/bitmark-inc/docledger/fault"
)

// Fingerprint - SHA-256 of a document's contents
type Fingerprint [sha256.Size]byte

// Sum - fingerprint a byte slice
func Sum(data []byte) Fingerprint {
	return sha256.Sum256(data)
}

// FromReader - fingerprint a stream without buffering it
func FromReader(r io.Reader) (Fingerprint, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); nil != err {
		return Fingerprint{}, fmt.Errorf("%w: %s", fault.IOFailure, err)
	}
	var fp Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp, nil
}

// FromFile - fingerprint a file on disk
func FromFile(name string) (Fingerprint, error) {
	f, err := os.Open(name)
	if nil != err {
		return Fingerprint{}, fmt.Errorf("%w: %s", fault.IOFailure, err)
	}
	defer f.Close()
	return FromReader(f)
}

// Parse - convert a hex string to a fingerprint
func Parse(s string) (Fingerprint, error) {
	var fp Fingerprint
	err := fp.UnmarshalText([]byte(s))
	return fp, err
}

// String - lowercase hex
func (fp Fingerprint) String() string {
	return hex.EncodeToString(fp[:])
}

// MarshalText - convert fingerprint to hex text
func (fp Fingerprint) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(len(fp)))
	hex.Encode(buffer, fp[:])
	return buffer, nil
}

// UnmarshalText - convert hex text into a fingerprint
func (fp *Fingerprint) UnmarshalText(s []byte) error {
	if hex.EncodedLen(len(fp)) != len(s) {
		return fault.InvalidFingerprint
	}
	if _, err := hex.Decode(fp[:], s); nil != err {
		return fault.InvalidFingerprint
	}
	return nil
}
