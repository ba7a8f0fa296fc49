// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package announce - the set of peers this node gossips with
//
// peers are identified by base URL; the set never contains this
// node's own URL and is not persisted, it is rebuilt at start from
// bootstrap nodes, DNS TXT records and incoming registrations
package announce
