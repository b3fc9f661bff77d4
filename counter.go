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

import "sync/atomic"

// counterStorage tallies the outcome of a counting bulk insert. It is
// created per call: reset on the stream before the kernel runs, incremented
// by winning tiles while it runs, and transported back to the caller after a
// synchronize. The exhausted word counts inserts that walked the full probe
// sequence without finding a free slot; those elements are dropped and the
// count shortfall is their only trace besides a log line.
type counterStorage struct {
	count     atomic.Int64
	exhausted atomic.Int64
}

func (c *counterStorage) reset(stream *Stream) {
	stream.Submit(func() error {
		c.count.Store(0)
		c.exhausted.Store(0)
		return nil
	})
}

// loadToHost synchronizes the stream and returns the tallies.
func (c *counterStorage) loadToHost(stream *Stream) (count, exhausted int, err error) {
	err = stream.Synchronize()
	return int(c.count.Load()), int(c.exhausted.Load()), err
}
