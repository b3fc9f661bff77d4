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
	"fmt"
	"math/bits"
	"math/rand"
)

// ProbingScheme maps a key to a lazy sequence of window indices. The
// sequence visits every window of the table exactly once, so a probe that
// neither finds its key nor an empty slot terminates after numWindows steps.
//
// The two implementations are LinearProbing and DoubleHashing. The interface
// is not implementable outside this package.
type ProbingScheme[K comparable] interface {
	// windowExtent rounds minWindows up so the scheme's preconditions on
	// the window count hold.
	windowExtent(minWindows int) int
	// probe starts a probe sequence for key over numWindows windows, where
	// numWindows was produced by windowExtent.
	probe(key K, numWindows int) probeSeq
}

// probeSeq maintains the state of a probe sequence. The sequence is
//
//	w(i) = (start + i*step) mod numWindows
//
// which is a permutation of {0,...,numWindows-1} whenever step and
// numWindows are coprime. Linear probing uses step=1; double hashing pairs a
// prime numWindows with step in [1,numWindows-1].
type probeSeq struct {
	numWindows int
	offset     int
	step       int
}

func (s probeSeq) next() probeSeq {
	s.offset = (s.offset + s.step) % s.numWindows
	return s
}

func (s probeSeq) String() string {
	return fmt.Sprintf("numWindows=%d offset=%d step=%d", s.numWindows, s.offset, s.step)
}

// LinearProbing probes windows consecutively starting from hash(key). It
// requires a power-of-two window count so the modular walk wraps cleanly.
type LinearProbing[K comparable] struct {
	hash Hasher[K]
	seed uint64
}

// NewLinearProbing returns a linear probing scheme using the supplied
// hasher. Passing nil selects the runtime map hasher.
func NewLinearProbing[K comparable](hash Hasher[K]) *LinearProbing[K] {
	if hash == nil {
		hash = RuntimeHasher[K]()
	}
	return &LinearProbing[K]{hash: hash, seed: rand.Uint64()}
}

func (p *LinearProbing[K]) windowExtent(minWindows int) int {
	return nextPowerOfTwo(minWindows)
}

func (p *LinearProbing[K]) probe(key K, numWindows int) probeSeq {
	h := p.hash(key, p.seed)
	return probeSeq{
		numWindows: numWindows,
		// numWindows is a power of two.
		offset: int(h & uint64(numWindows-1)),
		step:   1,
	}
}

// DoubleHashing derives the probe step from a second hash of the key, which
// spreads colliding keys across distinct sequences. It requires a prime
// window count so every step is coprime to it.
type DoubleHashing[K comparable] struct {
	hash1 Hasher[K]
	hash2 Hasher[K]
	seed1 uint64
	seed2 uint64
}

// NewDoubleHashing returns a double hashing scheme. hash1 positions the
// start of the sequence and hash2 selects the step. Passing nil for either
// selects the runtime map hasher with an independent seed.
func NewDoubleHashing[K comparable](hash1, hash2 Hasher[K]) *DoubleHashing[K] {
	if hash1 == nil {
		hash1 = RuntimeHasher[K]()
	}
	if hash2 == nil {
		hash2 = RuntimeHasher[K]()
	}
	return &DoubleHashing[K]{
		hash1: hash1,
		hash2: hash2,
		seed1: rand.Uint64(),
		seed2: rand.Uint64(),
	}
}

func (p *DoubleHashing[K]) windowExtent(minWindows int) int {
	return nextPrime(minWindows)
}

func (p *DoubleHashing[K]) probe(key K, numWindows int) probeSeq {
	h1 := p.hash1(key, p.seed1)
	step := 1
	if numWindows > 2 {
		// numWindows is prime, so any step in [1,numWindows-1] is coprime
		// to it and the sequence visits every window.
		step = 1 + int(p.hash2(key, p.seed2)%uint64(numWindows-1))
	}
	return probeSeq{
		numWindows: numWindows,
		offset:     int(h1 % uint64(numWindows)),
		step:       step,
	}
}

// nextPowerOfTwo returns the smallest power of two >= n.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// nextPrime returns the smallest prime >= n.
func nextPrime(n int) int {
	if n <= 2 {
		return 2
	}
	for p := n | 1; ; p += 2 {
		if isPrime(p) {
			return p
		}
	}
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := 3; d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}
