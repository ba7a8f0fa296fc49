// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"sort"
)

// Validators - immutable set of identities allowed to produce blocks
type Validators struct {
	names map[string]struct{}
}

// NewValidators - build the set, blank names are ignored
func NewValidators(names ...string) Validators {
	v := Validators{
		names: make(map[string]struct{}, len(names)),
	}
	for _, name := range names {
		if "" != name {
			v.names[name] = struct{}{}
		}
	}
	return v
}

// Contains - membership test
func (v Validators) Contains(name string) bool {
	_, ok := v.names[name]
	return ok
}

// List - sorted members
func (v Validators) List() []string {
	list := make([]string, 0, len(v.names))
	for name := range v.names {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}
