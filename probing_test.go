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
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWindowExtent(t *testing.T) {
	linear := NewLinearProbing[int](nil)
	double := NewDoubleHashing[int](nil, nil)

	testCases := []struct {
		minWindows     int
		expectedLinear int
		expectedDouble int
	}{
		{1, 1, 2},
		{2, 2, 2},
		{3, 4, 3},
		{4, 4, 5},
		{512, 512, 521},
		{1000, 1024, 1009},
	}
	for _, c := range testCases {
		require.EqualValues(t, c.expectedLinear, linear.windowExtent(c.minWindows))
		require.EqualValues(t, c.expectedDouble, double.windowExtent(c.minWindows))
	}
}

func TestNextPrime(t *testing.T) {
	testCases := []struct {
		n        int
		expected int
	}{
		{0, 2}, {1, 2}, {2, 2}, {3, 3}, {4, 5}, {8, 11}, {9, 11},
		{100, 101}, {7918, 7919}, {7920, 7927},
	}
	for _, c := range testCases {
		require.EqualValues(t, c.expected, nextPrime(c.n))
	}
}

// genSeq walks a probe sequence for n steps and returns the visited window
// indices.
func genSeq(seq probeSeq, n int) []int {
	vals := make([]int, n)
	for i := 0; i < n; i++ {
		vals[i] = seq.offset
		seq = seq.next()
	}
	return vals
}

func TestProbeSeqPermutation(t *testing.T) {
	// Walking numWindows steps of any probe sequence must visit every
	// window exactly once.
	check := func(t *testing.T, scheme ProbingScheme[int], numWindows int) {
		for i := 0; i < 100; i++ {
			vals := genSeq(scheme.probe(rand.Int(), numWindows), numWindows)
			sort.Ints(vals)
			for w := 0; w < numWindows; w++ {
				require.EqualValues(t, w, vals[w])
			}
		}
	}

	t.Run("linear", func(t *testing.T) {
		scheme := NewLinearProbing[int](nil)
		for _, min := range []int{1, 2, 7, 64, 511} {
			check(t, scheme, scheme.windowExtent(min))
		}
	})
	t.Run("doubleHashing", func(t *testing.T) {
		scheme := NewDoubleHashing[int](nil, nil)
		for _, min := range []int{1, 2, 7, 64, 511} {
			check(t, scheme, scheme.windowExtent(min))
		}
	})
}

func TestProbeSeqDeterministic(t *testing.T) {
	scheme := NewDoubleHashing[int](nil, nil)
	n := scheme.windowExtent(128)
	for i := 0; i < 100; i++ {
		k := rand.Int()
		require.Equal(t, genSeq(scheme.probe(k, n), n), genSeq(scheme.probe(k, n), n))
	}
}

func TestXXHasherSeeds(t *testing.T) {
	h := XXHasher[uint64]()
	// Different seeds must decorrelate the same key, and the hash must be
	// stable for a given seed.
	require.Equal(t, h(42, 1), h(42, 1))
	require.NotEqual(t, h(42, 1), h(42, 2))
	require.NotEqual(t, h(42, 1), h(43, 1))
}
