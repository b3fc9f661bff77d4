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
	"encoding/binary"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// Hasher hashes a key with a seed. A probing scheme derives window indices
// and probe steps from the hash, so different seeds must yield effectively
// independent hash values for the same key.
type Hasher[K comparable] func(key K, seed uint64) uint64

// RuntimeHasher returns a Hasher backed by the hash function the Go runtime
// uses for map[K]struct{}. The function is extracted by reaching into the
// internals of the map type. This might break in a future version of Go, but
// is likely fixable unless the runtime does something drastic.
func RuntimeHasher[K comparable]() Hasher[K] {
	fn := getRuntimeHasher[K]()
	return func(key K, seed uint64) uint64 {
		return uint64(fn(noescape(unsafe.Pointer(&key)), uintptr(seed)))
	}
}

// XXHasher returns a Hasher that applies xxHash64 to the key's in-memory
// representation. It is valid only for key types whose equality is bytewise:
// fixed-size types without pointers, strings, interfaces, or padding.
func XXHasher[K comparable]() Hasher[K] {
	return func(key K, seed uint64) uint64 {
		var seedBytes [8]byte
		binary.LittleEndian.PutUint64(seedBytes[:], seed)
		var d xxhash.Digest
		d.Reset()
		_, _ = d.Write(seedBytes[:])
		_, _ = d.Write(unsafe.Slice((*byte)(unsafe.Pointer(&key)), unsafe.Sizeof(key)))
		return d.Sum64()
	}
}

// hashFn matches the signature of the hash functions stored in the runtime's
// map type descriptors.
type hashFn func(unsafe.Pointer, uintptr) uintptr

func getRuntimeHasher[K comparable]() hashFn {
	a := any((map[K]struct{})(nil))
	return (*rtEface)(unsafe.Pointer(&a)).typ.hasher
}

// rtEface mirrors runtime.eface.
type rtEface struct {
	typ *rtMapType
	val unsafe.Pointer
}

// rtMapType mirrors the prefix of internal/abi.MapType.
type rtMapType struct {
	rtType
	key    *rtType
	elem   *rtType
	bucket *rtType
	// hasher computes the hash of the key at the supplied pointer using the
	// supplied seed.
	hasher func(unsafe.Pointer, uintptr) uintptr
}

// rtType mirrors internal/abi.Type.
type rtType struct {
	size       uintptr
	ptrBytes   uintptr
	hash       uint32
	tflag      uint8
	align      uint8
	fieldAlign uint8
	kind       uint8
	equal      func(unsafe.Pointer, unsafe.Pointer) bool
	gcData     *byte
	str        int32
	ptrToThis  int32
}

// noescape hides a pointer from escape analysis. noescape is the identity
// function but escape analysis doesn't think the output depends on the
// input. noescape is inlined and currently compiles down to zero
// instructions.
// USE CAREFULLY!
//
//go:nosplit
//go:nocheckptr
func noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0)
}
