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
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// StaticMap is a fixed-capacity, insert-only hash map from K to V driven by
// bulk operations on streams. The slot table is allocated at construction
// and initialized asynchronously on the creation stream; the table never
// resizes and entries are never deleted or updated.
//
// Every bulk operation exists in a synchronous form, which waits on the
// stream before returning, and an asynchronous form suffixed Async, which
// only submits work. Outputs of asynchronous forms must not be read before
// the stream has been synchronized. Counting inserts are synchronous only,
// because the count has to be transported back to the caller.
//
// The zero value is not usable; construct with NewStaticMap.
type StaticMap[K comparable, V any] struct {
	emptyKey   K
	emptyValue V
	keyEqual   KeyEqual[K]
	probing    ProbingScheme[K]
	allocator  Allocator[K, V]
	// stream is the creation stream; slot-table initialization and
	// deallocation are ordered on it.
	stream *Stream
	log    *zap.Logger
	cgSize int

	windows []Window[K, V]
}

// NewStaticMap constructs a map with at least the requested capacity in
// slots. emptyKey and emptyValue are the sentinels marking empty slots; the
// empty key is reserved and must never be supplied as a live key. The slot
// table is allocated immediately and initialized on stream; the constructor
// returns before that initialization completes, so work that depends on it
// must be ordered on the same stream or behind an explicit synchronize.
func NewStaticMap[K comparable, V any](
	capacity int, emptyKey K, emptyValue V, stream *Stream, options ...option[K, V],
) (*StaticMap[K, V], error) {
	if capacity < 1 {
		return nil, errors.Wrapf(ErrInvalidCapacity, "requested %d", capacity)
	}
	if stream == nil {
		return nil, errors.New("cuco: nil stream")
	}

	m := &StaticMap[K, V]{
		emptyKey:   emptyKey,
		emptyValue: emptyValue,
		keyEqual:   func(a, b K) bool { return a == b },
		allocator:  defaultAllocator[K, V]{},
		stream:     stream,
		log:        zap.NewNop(),
		cgSize:     4,
	}
	for _, op := range options {
		op.apply(m)
	}
	if m.probing == nil {
		m.probing = NewDoubleHashing[K](nil, nil)
	}
	switch m.cgSize {
	case 1, 2, 4, 8, 16, 32:
	default:
		return nil, errors.Wrapf(ErrInvalidCGSize, "got %d", m.cgSize)
	}

	numWindows := m.probing.windowExtent((capacity + bucketSize - 1) / bucketSize)
	windows, err := m.allocator.AllocWindows(numWindows)
	if err != nil {
		return nil, errors.Wrapf(ErrOutOfMemory, "allocating %d windows: %s", numWindows, err)
	}
	m.windows = windows

	st := m.storageRef()
	stream.Submit(func() error {
		return initializeN(st, emptyKey, emptyValue, m.cgSize)
	})

	m.log.Debug("created static map",
		zap.Int("capacity", m.Capacity()),
		zap.Int("windows", numWindows),
		zap.Int("cgSize", m.cgSize),
		zap.String("stream", stream.ID()))
	return m, nil
}

// Close releases the slot table back to the allocator, ordering the release
// behind all work previously submitted to the creation stream, and waits
// for it. Using the map or any Ref after Close is invalid. Close is
// idempotent.
func (m *StaticMap[K, V]) Close() error {
	if m.windows != nil {
		w := m.windows
		m.windows = nil
		m.stream.Submit(func() error {
			m.allocator.FreeWindows(w)
			return nil
		})
		m.log.Debug("closed static map", zap.String("stream", m.stream.ID()))
	}
	return m.stream.Synchronize()
}

// Insert inserts all pairs whose keys are not already present and returns
// the number of newly inserted elements. A returned count lower than the
// number of distinct new keys means some probe sequences were exhausted and
// those elements were dropped; see the package documentation on load
// factor.
func (m *StaticMap[K, V]) Insert(pairs []Pair[K, V], stream *Stream) (int, error) {
	return insertOnStream[K, V, bool](m, pairs, nil, nil, stream)
}

// InsertAsync submits the inserts of Insert without counting successes.
func (m *StaticMap[K, V]) InsertAsync(pairs []Pair[K, V], stream *Stream) {
	if len(pairs) == 0 {
		return
	}
	ref := m.refAll()
	stream.Submit(func() error {
		return insertIfN[K, V, bool](ref, pairs, nil, nil, nil, m.cgSize)
	})
}

// InsertIf inserts pairs[i] for every i where pred(stencil[i]) holds and
// returns the number of newly inserted elements.
func InsertIf[K comparable, V any, S any](
	m *StaticMap[K, V], pairs []Pair[K, V], stencil []S, pred func(S) bool, stream *Stream,
) (int, error) {
	if err := checkStencil(len(pairs), len(stencil)); err != nil {
		return 0, err
	}
	return insertOnStream(m, pairs, stencil, pred, stream)
}

// InsertIfAsync submits the inserts of InsertIf without counting successes.
func InsertIfAsync[K comparable, V any, S any](
	m *StaticMap[K, V], pairs []Pair[K, V], stencil []S, pred func(S) bool, stream *Stream,
) error {
	if err := checkStencil(len(pairs), len(stencil)); err != nil {
		return err
	}
	if len(pairs) == 0 {
		return nil
	}
	ref := m.refAll()
	stream.Submit(func() error {
		return insertIfN(ref, pairs, stencil, pred, nil, m.cgSize)
	})
	return nil
}

// insertOnStream is the counting insert shared by Insert and InsertIf. A
// nil stencil inserts every row.
func insertOnStream[K comparable, V any, S any](
	m *StaticMap[K, V], pairs []Pair[K, V], stencil []S, pred func(S) bool, stream *Stream,
) (int, error) {
	if len(pairs) == 0 {
		return 0, nil
	}
	var counter counterStorage
	counter.reset(stream)
	ref := m.refAll()
	stream.Submit(func() error {
		return insertIfN(ref, pairs, stencil, pred, &counter, m.cgSize)
	})
	count, exhausted, err := counter.loadToHost(stream)
	if exhausted > 0 {
		m.log.Warn("probe sequences exhausted, elements dropped",
			zap.Int("dropped", exhausted),
			zap.Int("inserted", count),
			zap.String("stream", stream.ID()))
	}
	return count, err
}

// Contains writes out[i] = true iff keys[i] is present, then waits on the
// stream.
func (m *StaticMap[K, V]) Contains(keys []K, out []bool, stream *Stream) error {
	if err := m.ContainsAsync(keys, out, stream); err != nil {
		return err
	}
	return stream.Synchronize()
}

// ContainsAsync submits the membership test of Contains. out must not be
// read before the stream is synchronized.
func (m *StaticMap[K, V]) ContainsAsync(keys []K, out []bool, stream *Stream) error {
	if err := checkOutput(len(keys), len(out)); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	ref := m.refAll()
	stream.Submit(func() error {
		return containsIfN[K, V, bool](ref, keys, nil, nil, out, m.cgSize)
	})
	return nil
}

// ContainsIf writes out[i] = true iff keys[i] is present and
// pred(stencil[i]) holds; gated-out rows are written false. Waits on the
// stream.
func ContainsIf[K comparable, V any, S any](
	m *StaticMap[K, V], keys []K, stencil []S, pred func(S) bool, out []bool, stream *Stream,
) error {
	if err := ContainsIfAsync(m, keys, stencil, pred, out, stream); err != nil {
		return err
	}
	return stream.Synchronize()
}

// ContainsIfAsync submits the membership test of ContainsIf.
func ContainsIfAsync[K comparable, V any, S any](
	m *StaticMap[K, V], keys []K, stencil []S, pred func(S) bool, out []bool, stream *Stream,
) error {
	if err := checkOutput(len(keys), len(out)); err != nil {
		return err
	}
	if err := checkStencil(len(keys), len(stencil)); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	ref := m.refAll()
	stream.Submit(func() error {
		return containsIfN(ref, keys, stencil, pred, out, m.cgSize)
	})
	return nil
}

// Find writes out[i] = value paired with keys[i], or the empty-value
// sentinel for absent keys, then waits on the stream.
func (m *StaticMap[K, V]) Find(keys []K, out []V, stream *Stream) error {
	if err := m.FindAsync(keys, out, stream); err != nil {
		return err
	}
	return stream.Synchronize()
}

// FindAsync submits the lookups of Find. out must not be read before the
// stream is synchronized.
func (m *StaticMap[K, V]) FindAsync(keys []K, out []V, stream *Stream) error {
	if err := checkOutput(len(keys), len(out)); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	ref := m.refAll()
	stream.Submit(func() error {
		return findN(ref, keys, out, m.cgSize)
	})
	return nil
}

// RetrieveAll appends every filled slot's pair to dst, in unspecified
// order, and returns the extended slice after waiting on the stream.
func (m *StaticMap[K, V]) RetrieveAll(dst []Pair[K, V], stream *Stream) ([]Pair[K, V], error) {
	buf := make([]Pair[K, V], m.Capacity())
	var n int
	st := m.storageRef()
	stream.Submit(func() error {
		var err error
		n, err = retrieveAllN(st, buf, m.cgSize)
		return err
	})
	if err := stream.Synchronize(); err != nil {
		return dst, err
	}
	return append(dst, buf[:n]...), nil
}

// Size counts the filled slots after waiting on the stream.
func (m *StaticMap[K, V]) Size(stream *Stream) (int, error) {
	var n int
	st := m.storageRef()
	stream.Submit(func() error {
		var err error
		n, err = sizeN(st, m.cgSize)
		return err
	})
	if err := stream.Synchronize(); err != nil {
		return 0, err
	}
	return n, nil
}

// Capacity returns the total number of slots. It is at least the capacity
// requested at construction and never changes.
func (m *StaticMap[K, V]) Capacity() int {
	return len(m.windows) * bucketSize
}

// EmptyKeySentinel returns the reserved key marking empty slots.
func (m *StaticMap[K, V]) EmptyKeySentinel() K {
	return m.emptyKey
}

// EmptyValueSentinel returns the value Find reports for absent keys.
func (m *StaticMap[K, V]) EmptyValueSentinel() V {
	return m.emptyValue
}

// Ref returns a copyable view of the map restricted to the requested
// operations, for use in caller-spawned workers. At least one operation
// must be named.
func (m *StaticMap[K, V]) Ref(ops ...RefOp) Ref[K, V] {
	if len(ops) == 0 {
		panic("cuco: no operations specified")
	}
	var mask RefOp
	for _, op := range ops {
		mask |= op
	}
	r := m.refAll()
	r.ops = mask
	return r
}

// refAll is the unrestricted ref used by the map's own kernels.
func (m *StaticMap[K, V]) refAll() Ref[K, V] {
	return Ref[K, V]{
		emptyKey:   m.emptyKey,
		emptyValue: m.emptyValue,
		keyEqual:   m.keyEqual,
		probing:    m.probing,
		storage:    m.storageRef(),
		ops:        OpInsert | OpContains | OpFind,
	}
}

func (m *StaticMap[K, V]) storageRef() storageRef[K, V] {
	return storageRef[K, V]{windows: m.windows}
}

func checkOutput(in, out int) error {
	if out < in {
		return errors.Wrapf(ErrShortOutput, "%d results into %d", in, out)
	}
	return nil
}

func checkStencil(in, stencil int) error {
	if stencil < in {
		return errors.Wrapf(ErrShortStencil, "%d inputs gated by %d", in, stencil)
	}
	return nil
}
