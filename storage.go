// Copyright 2025 The cuCollections Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cuco

import (
	"runtime"
	"sync/atomic"
)

// bucketSize is the number of slots per window. A window is the unit of
// probing: a tile examines all of a window's slots before advancing its
// probe sequence.
const bucketSize = 2

// Per-slot lifecycle. Transitions are one-way: empty -> busy -> full. A busy
// slot has been claimed by a winning insert whose pair is not yet published.
const (
	slotEmpty uint32 = iota
	slotBusy
	slotFull
)

// Pair is a key/value element of a StaticMap.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Window is a fixed-size group of slots laid out contiguously, together with
// one atomic state word per slot. The state word carries the concurrency
// discipline: an insert claims a slot by compare-and-swapping its state from
// empty to busy, writes the pair, and publishes it with a release store of
// full. A reader that observes full therefore observes the complete pair.
type Window[K comparable, V any] struct {
	states [bucketSize]atomic.Uint32
	slots  [bucketSize]Pair[K, V]
}

// Allocator provides the backing memory for a map's slot table. The default
// allocator uses make() and lets the GC reclaim the windows.
type Allocator[K comparable, V any] interface {
	// AllocWindows returns a slice equivalent to make([]Window[K,V], n), or
	// an error if the memory cannot be provided.
	AllocWindows(n int) ([]Window[K, V], error)

	// FreeWindows can optionally release memory returned by AllocWindows.
	FreeWindows(w []Window[K, V])
}

type defaultAllocator[K comparable, V any] struct{}

func (defaultAllocator[K, V]) AllocWindows(n int) ([]Window[K, V], error) {
	return make([]Window[K, V], n), nil
}

func (defaultAllocator[K, V]) FreeWindows(w []Window[K, V]) {
}

// storageRef is a non-owning view of a slot table, usable by Ref copies.
type storageRef[K comparable, V any] struct {
	windows []Window[K, V]
}

func (s storageRef[K, V]) numWindows() int {
	return len(s.windows)
}

// waitState returns the state of the given slot, spinning past busy: a busy
// slot is owned by a winner that is about to publish, so the caller only
// ever sees empty or full.
func (s storageRef[K, V]) waitState(w, slot int) uint32 {
	st := s.windows[w].states[slot].Load()
	for st == slotBusy {
		runtime.Gosched()
		st = s.windows[w].states[slot].Load()
	}
	return st
}

// slot returns the pair stored at the given slot. Valid only after
// waitState reported the slot full.
func (s storageRef[K, V]) slot(w, slot int) Pair[K, V] {
	return s.windows[w].slots[slot]
}

// tryInstall attempts to claim the given empty slot and publish p into it.
// It returns false if another insert won the slot; the caller re-examines
// the slot's contents via waitState and slot.
func (s storageRef[K, V]) tryInstall(w, slot int, p Pair[K, V]) bool {
	win := &s.windows[w]
	if !win.states[slot].CompareAndSwap(slotEmpty, slotBusy) {
		return false
	}
	win.slots[slot] = p
	win.states[slot].Store(slotFull)
	return true
}

// resetWindows fills every slot of windows [first,last) with the sentinel
// pair and marks it empty. Used by construction-time initialization, which
// runs before any other work ordered on the creation stream.
func (s storageRef[K, V]) resetWindows(first, last int, emptyKey K, emptyValue V) {
	for w := first; w < last; w++ {
		win := &s.windows[w]
		for i := 0; i < bucketSize; i++ {
			win.slots[i] = Pair[K, V]{Key: emptyKey, Value: emptyValue}
			win.states[i].Store(slotEmpty)
		}
	}
}
