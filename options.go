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

import "go.uber.org/zap"

// option provides an interface to do work on a StaticMap while it is being
// created.
type option[K comparable, V any] interface {
	apply(m *StaticMap[K, V])
}

type keyEqualOption[K comparable, V any] struct {
	eq KeyEqual[K]
}

func (op keyEqualOption[K, V]) apply(m *StaticMap[K, V]) {
	m.keyEqual = op.eq
}

// WithKeyEqual is an option to specify the key-equality predicate. The
// default is ==.
func WithKeyEqual[K comparable, V any](eq KeyEqual[K]) option[K, V] {
	return keyEqualOption[K, V]{eq}
}

type probingOption[K comparable, V any] struct {
	scheme ProbingScheme[K]
}

func (op probingOption[K, V]) apply(m *StaticMap[K, V]) {
	m.probing = op.scheme
}

// WithProbingScheme is an option to specify the probing scheme. The default
// is double hashing over the runtime map hasher.
func WithProbingScheme[K comparable, V any](scheme ProbingScheme[K]) option[K, V] {
	return probingOption[K, V]{scheme}
}

type allocatorOption[K comparable, V any] struct {
	allocator Allocator[K, V]
}

func (op allocatorOption[K, V]) apply(m *StaticMap[K, V]) {
	m.allocator = op.allocator
}

// WithAllocator is an option to specify the Allocator backing the slot
// table. If the allocator manages memory manually, StaticMap.Close must be
// called to ensure FreeWindows runs.
func WithAllocator[K comparable, V any](allocator Allocator[K, V]) option[K, V] {
	return allocatorOption[K, V]{allocator}
}

type cgSizeOption[K comparable, V any] struct {
	cgSize int
}

func (op cgSizeOption[K, V]) apply(m *StaticMap[K, V]) {
	m.cgSize = op.cgSize
}

// WithCGSize is an option to set the cooperative group size, the dispatch
// granularity of bulk operations. Must be one of 1, 2, 4, 8, 16, 32. Larger
// values widen the worker grid for a given input length.
func WithCGSize[K comparable, V any](cgSize int) option[K, V] {
	return cgSizeOption[K, V]{cgSize}
}

type loggerOption[K comparable, V any] struct {
	log *zap.Logger
}

func (op loggerOption[K, V]) apply(m *StaticMap[K, V]) {
	m.log = op.log
}

// WithLogger is an option to supply a logger for lifecycle events and
// insert-shortfall warnings. The default discards everything.
func WithLogger[K comparable, V any](log *zap.Logger) option[K, V] {
	return loggerOption[K, V]{log}
}
