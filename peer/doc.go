// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package peer - block gossip between nodes
//
// locally appended blocks are pushed to every known peer, blocks from
// peers are validated against the local tip, and forks are settled by
// adopting the longest valid chain seen among the peers
package peer
