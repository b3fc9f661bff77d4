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

import "github.com/pkg/errors"

var (
	// ErrInvalidCapacity is returned by NewStaticMap when the requested
	// capacity is not a positive number.
	ErrInvalidCapacity = errors.New("cuco: invalid capacity")

	// ErrInvalidCGSize is returned by NewStaticMap when the cooperative
	// group size is not one of 1, 2, 4, 8, 16, 32.
	ErrInvalidCGSize = errors.New("cuco: invalid cooperative group size")

	// ErrOutOfMemory is returned by NewStaticMap when the allocator fails
	// to provide the slot table.
	ErrOutOfMemory = errors.New("cuco: out of memory")

	// ErrShortOutput is returned by a bulk operation whose output slice is
	// shorter than its input range, before any work is submitted.
	ErrShortOutput = errors.New("cuco: output shorter than input")

	// ErrShortStencil is returned by a stencil-gated bulk operation whose
	// stencil is shorter than its input range.
	ErrShortStencil = errors.New("cuco: stencil shorter than input")
)
