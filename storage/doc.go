// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - durable copies of a node's chain
//
// a store holds the whole chain and is rewritten on every mutation,
// Save must not return until the data is durable
package storage
