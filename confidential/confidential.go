// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package confidential - reversible wrapping of short secrets such as
// storage paths
//
// wrapped form is hex(iv) ":" hex(ciphertext) using AES-256-CBC with
// PKCS#7 padding and a fresh random IV for every call
package confidential

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/bitmark-inc/docledger/fault"
)

const separator = ":"

// Wrap - encrypt plaintext under key
func Wrap(plaintext string, key Key) (string, error) {
	block, err := aes.NewCipher(key[:])
	if nil != err {
		return "", fmt.Errorf("%w: %s", fault.InvalidKey, err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err = io.ReadFull(rand.Reader, iv); nil != err {
		return "", fmt.Errorf("%w: %s", fault.IOFailure, err)
	}

	padded := pad([]byte(plaintext))
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + separator + hex.EncodeToString(ciphertext), nil
}

// Unwrap - reverse Wrap
//
// any malformed input or wrong key gives fault.DecryptionFailure
func Unwrap(wrapped string, key Key) (string, error) {
	parts := strings.SplitN(wrapped, separator, 2)
	if 2 != len(parts) {
		return "", fault.DecryptionFailure
	}

	iv, err := hex.DecodeString(parts[0])
	if nil != err || aes.BlockSize != len(iv) {
		return "", fault.DecryptionFailure
	}
	ciphertext, err := hex.DecodeString(parts[1])
	if nil != err || 0 == len(ciphertext) || 0 != len(ciphertext)%aes.BlockSize {
		return "", fault.DecryptionFailure
	}

	block, err := aes.NewCipher(key[:])
	if nil != err {
		return "", fault.DecryptionFailure
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, ok := unpad(plaintext)
	if !ok {
		return "", fault.DecryptionFailure
	}
	return string(unpadded), nil
}

func pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	return append(append([]byte{}, data...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte) ([]byte, bool) {
	if 0 == len(data) {
		return nil, false
	}
	n := int(data[len(data)-1])
	if n < 1 || n > aes.BlockSize || n > len(data) {
		return nil, false
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, false
		}
	}
	return data[:len(data)-n], true
}
