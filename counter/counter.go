// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package counter

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Counter - type to denote a counter that can be synchronously incremented or decremented
// just a 64 bit unsigned integer
type Counter uint64

// Increment - add 1 to a counter, returns new value
func (ic *Counter) Increment() uint64 {
	return atomic.AddUint64((*uint64)(ic), 1)
}

// Decrement - subtract 1 from a counter, returns new value
func (ic *Counter) Decrement() uint64 {
	return atomic.AddUint64((*uint64)(ic), ^uint64(0))
}

// Uint64 - returns current value
func (ic *Counter) Uint64() uint64 {
	return atomic.LoadUint64((*uint64)(ic))
}

// IsZero - check if zero
func (ic *Counter) IsZero() bool {
	return 0 == atomic.LoadUint64((*uint64)(ic))
}

// Set - a group of named counters, created on first use
type Set struct {
	sync.RWMutex
	counters map[string]*Counter
}

// NewSet - create an empty set
func NewSet() *Set {
	return &Set{
		counters: make(map[string]*Counter),
	}
}

// Get - return the named counter, creating it if necessary
func (s *Set) Get(name string) *Counter {
	s.RLock()
	c, ok := s.counters[name]
	s.RUnlock()
	if ok {
		return c
	}

	s.Lock()
	defer s.Unlock()
	c, ok = s.counters[name]
	if !ok {
		c = new(Counter)
		s.counters[name] = c
	}
	return c
}

// Increment - shortcut to increment a named counter
func (s *Set) Increment(name string) uint64 {
	return s.Get(name).Increment()
}

// Snapshot - current values of all counters
func (s *Set) Snapshot() map[string]uint64 {
	s.RLock()
	defer s.RUnlock()

	result := make(map[string]uint64, len(s.counters))
	for name, c := range s.counters {
		result[name] = c.Uint64()
	}
	return result
}

// Names - sorted counter names
func (s *Set) Names() []string {
	s.RLock()
	defer s.RUnlock()

	names := make([]string, 0, len(s.counters))
	for name := range s.counters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
