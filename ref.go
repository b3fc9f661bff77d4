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

import "fmt"

// RefOp identifies an operation a Ref is allowed to perform. A Ref is
// requested for an explicit operation set (see StaticMap.Ref), which
// documents at the call site what the handle will be used for.
type RefOp uint8

const (
	OpInsert RefOp = 1 << iota
	OpContains
	OpFind
)

// KeyEqual decides whether two keys are equal. It is never called with the
// empty-key sentinel on either side by map-internal probing.
type KeyEqual[K comparable] func(a, b K) bool

// Ref is a value-type view of a StaticMap usable by caller-spawned workers.
// It combines the sentinels, the key-equality predicate, the probing scheme,
// and a view of the slot storage; it references but does not own the table.
// A Ref is freely copyable and must not outlive its map.
//
// All Ref operations are safe for concurrent use, including concurrently
// with bulk operations on the parent map, subject to the stream-ordering
// rules described in the package documentation.
type Ref[K comparable, V any] struct {
	emptyKey   K
	emptyValue V
	keyEqual   KeyEqual[K]
	probing    ProbingScheme[K]
	storage    storageRef[K, V]
	ops        RefOp
}

// insertResult distinguishes a duplicate from a full table; both surface as
// a false Insert return.
type insertResult uint8

const (
	insertOK insertResult = iota
	insertDuplicate
	insertExhausted
)

// Insert inserts key/value if key is not already present. It returns false
// if the key was present, and also — silently — if the probe sequence
// visited every window without finding a free slot; in the latter case the
// element is lost. Callers are expected to keep the load factor below 1.
//
// When inserts of equal keys race, exactly one wins; the losers return
// false without modifying the table.
func (r Ref[K, V]) Insert(key K, value V) bool {
	return r.insert(key, value) == insertOK
}

func (r Ref[K, V]) insert(key K, value V) insertResult {
	r.checkOp(OpInsert)
	r.checkKey(key)

	n := r.storage.numWindows()
	seq := r.probing.probe(key, n)
	for probed := 0; probed < n; probed++ {
		w := seq.offset
		for s := 0; s < bucketSize; {
			if r.storage.waitState(w, s) == slotFull {
				if r.keyEqual(r.storage.slot(w, s).Key, key) {
					return insertDuplicate
				}
				s++
				continue
			}
			if r.storage.tryInstall(w, s, Pair[K, V]{Key: key, Value: value}) {
				return insertOK
			}
			// Lost the race for this slot. Re-examine it: racing inserts
			// of equal keys scan windows in the same order and target the
			// same first empty slot, so the loser finds the winner's key
			// here and reports a duplicate.
		}
		seq = seq.next()
	}
	return insertExhausted
}

// Contains reports whether key is present.
func (r Ref[K, V]) Contains(key K) bool {
	r.checkOp(OpContains)
	r.checkKey(key)

	n := r.storage.numWindows()
	seq := r.probing.probe(key, n)
	for probed := 0; probed < n; probed++ {
		w := seq.offset
		for s := 0; s < bucketSize; s++ {
			if r.storage.waitState(w, s) == slotEmpty {
				return false
			}
			if r.keyEqual(r.storage.slot(w, s).Key, key) {
				return true
			}
		}
		seq = seq.next()
	}
	return false
}

// Find returns the value paired with key, or the empty-value sentinel if
// key is not present.
func (r Ref[K, V]) Find(key K) V {
	r.checkOp(OpFind)
	r.checkKey(key)

	n := r.storage.numWindows()
	seq := r.probing.probe(key, n)
	for probed := 0; probed < n; probed++ {
		w := seq.offset
		for s := 0; s < bucketSize; s++ {
			if r.storage.waitState(w, s) == slotEmpty {
				return r.emptyValue
			}
			if p := r.storage.slot(w, s); r.keyEqual(p.Key, key) {
				return p.Value
			}
		}
		seq = seq.next()
	}
	return r.emptyValue
}

// EmptyKeySentinel returns the reserved key marking empty slots.
func (r Ref[K, V]) EmptyKeySentinel() K {
	return r.emptyKey
}

// EmptyValueSentinel returns the value Find reports for absent keys.
func (r Ref[K, V]) EmptyValueSentinel() V {
	return r.emptyValue
}

func (r Ref[K, V]) checkOp(op RefOp) {
	if invariants && r.ops&op == 0 {
		panic(fmt.Sprintf("cuco: ref does not include operation %b", op))
	}
}

func (r Ref[K, V]) checkKey(key K) {
	if invariants && r.keyEqual(key, r.emptyKey) {
		panic("cuco: empty-key sentinel used as a key")
	}
}
