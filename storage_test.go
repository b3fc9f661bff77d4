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
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTryInstall(t *testing.T) {
	st := storageRef[int, int]{windows: make([]Window[int, int], 4)}
	st.resetWindows(0, 4, -1, -1)

	require.EqualValues(t, slotEmpty, st.waitState(1, 0))
	require.True(t, st.tryInstall(1, 0, Pair[int, int]{Key: 7, Value: 70}))
	require.EqualValues(t, slotFull, st.waitState(1, 0))
	require.Equal(t, Pair[int, int]{Key: 7, Value: 70}, st.slot(1, 0))

	// A filled slot cannot be claimed again.
	require.False(t, st.tryInstall(1, 0, Pair[int, int]{Key: 8, Value: 80}))
	require.Equal(t, Pair[int, int]{Key: 7, Value: 70}, st.slot(1, 0))

	// Other slots of the window are unaffected.
	require.EqualValues(t, slotEmpty, st.waitState(1, 1))
}

func TestTryInstallRace(t *testing.T) {
	// Many goroutines race to claim the same slot; exactly one must win and
	// every loser must observe the winner's published pair.
	const racers = 32
	st := storageRef[int, int]{windows: make([]Window[int, int], 1)}
	st.resetWindows(0, 1, -1, -1)

	var wg sync.WaitGroup
	wins := make([]bool, racers)
	for r := 0; r < racers; r++ {
		r := r
		wg.Add(1)
		go func() {
			defer wg.Done()
			if st.tryInstall(0, 0, Pair[int, int]{Key: r, Value: r * 10}) {
				wins[r] = true
			} else {
				require.EqualValues(t, slotFull, st.waitState(0, 0))
				p := st.slot(0, 0)
				require.EqualValues(t, p.Key*10, p.Value)
			}
		}()
	}
	wg.Wait()

	var winners int
	for r := 0; r < racers; r++ {
		if wins[r] {
			winners++
			require.Equal(t, Pair[int, int]{Key: r, Value: r * 10}, st.slot(0, 0))
		}
	}
	require.EqualValues(t, 1, winners)
}

func TestResetWindows(t *testing.T) {
	st := storageRef[int, int]{windows: make([]Window[int, int], 8)}
	st.resetWindows(0, 8, -1, -2)
	for w := 0; w < 8; w++ {
		for s := 0; s < bucketSize; s++ {
			require.EqualValues(t, slotEmpty, st.waitState(w, s))
			require.Equal(t, Pair[int, int]{Key: -1, Value: -2}, st.slot(w, s))
		}
	}
}
