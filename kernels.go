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

	"golang.org/x/sync/errgroup"
)

// Launch geometry. A bulk operation is dispatched as a grid of worker
// goroutines; tiles within the grid stride the input range. The grid is
// sized so the total number of tiles covers the input.
const (
	defaultBlockSize = 128
	defaultStride    = 4
)

// gridSize returns the number of workers for n logical items at the given
// cooperative group size.
func gridSize(cgSize, n int) int {
	g := (cgSize*n + defaultStride*defaultBlockSize - 1) / (defaultStride * defaultBlockSize)
	if g < 1 {
		g = 1
	}
	return g
}

// launch runs fn(worker) for each worker in a grid of the given size and
// waits for all of them.
func launch(grid int, fn func(worker int) error) error {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for w := 0; w < grid; w++ {
		w := w
		g.Go(func() error {
			return fn(w)
		})
	}
	return g.Wait()
}

// insertIfN inserts in[i] for every i where pred(stencil[i]) holds. A nil
// stencil means every row. Successful and exhausted inserts are tallied in
// counter when one is supplied.
func insertIfN[K comparable, V any, S any](
	ref Ref[K, V], in []Pair[K, V], stencil []S, pred func(S) bool,
	counter *counterStorage, cgSize int,
) error {
	grid := gridSize(cgSize, len(in))
	return launch(grid, func(worker int) error {
		for i := worker; i < len(in); i += grid {
			if stencil != nil && !pred(stencil[i]) {
				continue
			}
			res := ref.insert(in[i].Key, in[i].Value)
			if counter != nil {
				switch res {
				case insertOK:
					counter.count.Add(1)
				case insertExhausted:
					counter.exhausted.Add(1)
				}
			}
		}
		return nil
	})
}

// containsIfN writes out[i] = Contains(keys[i]) for every i where
// pred(stencil[i]) holds, and false for every gated-out row. A nil stencil
// means every row.
func containsIfN[K comparable, V any, S any](
	ref Ref[K, V], keys []K, stencil []S, pred func(S) bool,
	out []bool, cgSize int,
) error {
	grid := gridSize(cgSize, len(keys))
	return launch(grid, func(worker int) error {
		for i := worker; i < len(keys); i += grid {
			if stencil != nil && !pred(stencil[i]) {
				out[i] = false
				continue
			}
			out[i] = ref.Contains(keys[i])
		}
		return nil
	})
}

// findN writes out[i] = Find(keys[i]) for every i.
func findN[K comparable, V any](ref Ref[K, V], keys []K, out []V, cgSize int) error {
	grid := gridSize(cgSize, len(keys))
	return launch(grid, func(worker int) error {
		for i := worker; i < len(keys); i += grid {
			out[i] = ref.Find(keys[i])
		}
		return nil
	})
}

// retrieveAllN copies every filled slot's pair into buf, in unspecified
// order, and returns the number written. buf must hold at least as many
// elements as the table has slots.
func retrieveAllN[K comparable, V any](st storageRef[K, V], buf []Pair[K, V], cgSize int) (int, error) {
	grid := gridSize(cgSize, st.numWindows())
	var cursor atomic.Int64
	err := launch(grid, func(worker int) error {
		for w := worker; w < st.numWindows(); w += grid {
			for s := 0; s < bucketSize; s++ {
				if st.waitState(w, s) != slotFull {
					continue
				}
				buf[cursor.Add(1)-1] = st.slot(w, s)
			}
		}
		return nil
	})
	return int(cursor.Load()), err
}

// sizeN counts the filled slots of the table.
func sizeN[K comparable, V any](st storageRef[K, V], cgSize int) (int, error) {
	grid := gridSize(cgSize, st.numWindows())
	var count atomic.Int64
	err := launch(grid, func(worker int) error {
		var local int64
		for w := worker; w < st.numWindows(); w += grid {
			for s := 0; s < bucketSize; s++ {
				if st.waitState(w, s) == slotFull {
					local++
				}
			}
		}
		count.Add(local)
		return nil
	})
	return int(count.Load()), err
}

// initializeN fills every slot of the table with the sentinel pair.
func initializeN[K comparable, V any](st storageRef[K, V], emptyKey K, emptyValue V, cgSize int) error {
	grid := gridSize(cgSize, st.numWindows())
	chunk := (st.numWindows() + grid - 1) / grid
	return launch(grid, func(worker int) error {
		first := worker * chunk
		last := min(first+chunk, st.numWindows())
		if first < last {
			st.resetWindows(first, last, emptyKey, emptyValue)
		}
		return nil
	})
}
