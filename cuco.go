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

// Package cuco provides a fixed-capacity, insert-only concurrent hash map
// built for bulk operations.
//
// A StaticMap[K,V] is an open-addressing hash table whose capacity is chosen
// at construction and never changes. The slot table is organized as windows
// of a small fixed number of slots; a probe sequence walks windows until it
// finds the key, finds an empty slot, or has visited every window. Concurrent
// insertion is disciplined by a per-slot atomic state word: a slot is claimed
// with a compare-and-swap and its key/value pair is published with a release
// store, so a filled slot is observed with its value complete. Once filled, a
// slot never empties and its contents never change.
//
// Bulk operations (Insert, Contains, Find, RetrieveAll, Size) are submitted
// to a Stream, an ordered queue of asynchronous work. Each bulk operation has
// a synchronous form that waits on the stream and an asynchronous form that
// returns immediately; the caller synchronizes before reading outputs. Within
// a bulk operation the input range is strided across a grid of worker
// goroutines sized from the input length.
//
// An insert that walks the full probe sequence without finding a free slot
// fails silently: the element is dropped and the failure is visible only as a
// shortfall in the count returned by Insert or InsertIf. Callers should size
// capacity at roughly 1.5x their expected number of unique keys to keep the
// load factor well below 1.
//
// The empty-key sentinel is reserved. Supplying it as a live key is undefined
// behavior; builds with the "invariants" tag panic on it.
package cuco
