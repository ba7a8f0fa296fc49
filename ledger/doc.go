// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - a node's copy of the document chain
//
// all mutations (append, seal, receive, replace) are serialised by a
// single writer lock that covers validation against the latest block,
// the in-memory change and persistence; readers get copies
package ledger
