// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpc - JSON over HTTP interface of a node
//
// peer endpoints (register, sync, receive, blocks, resolve) are used
// by other nodes; document endpoints accept uploads and answer
// verification queries
package rpc
