// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package confidential

import (
	"crypto/rand"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/argon2"

	"github.com/bitmark-inc/docledger/fault"
)

// KeySize - AES-256
const KeySize = 32

// SaltSize - bytes of random salt for key derivation
const SaltSize = 32

// argon2id parameters
const (
	argonTime    = 5
	argonMemory  = 1 << 16
	argonThreads = 4
)

// Key - symmetric key
type Key [KeySize]byte

// NewKey - random key
func NewKey() (Key, error) {
	var k Key
	if _, err := io.ReadFull(rand.Reader, k[:]); nil != err {
		return Key{}, err
	}
	return k, nil
}

// ParseKey - key from 64 hex characters
func ParseKey(s string) (Key, error) {
	var k Key
	buffer, err := hex.DecodeString(s)
	if nil != err || KeySize != len(buffer) {
		return Key{}, fault.InvalidKey
	}
	copy(k[:], buffer)
	return k, nil
}

// DeriveKey - stretch a passphrase into a key
//
// salt is supplied by configuration, it is never defaulted
func DeriveKey(passphrase string, salt []byte) (Key, error) {
	if "" == passphrase || 0 == len(salt) {
		return Key{}, fault.MissingEncryptionKey
	}
	var k Key
	copy(k[:], argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, KeySize))
	return k, nil
}

// MakeSalt - random salt for DeriveKey
func MakeSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); nil != err {
		return nil, err
	}
	return salt, nil
}

// String - hex form of the key
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}
