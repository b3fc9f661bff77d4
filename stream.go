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

	"github.com/google/uuid"
)

// Stream is an ordered queue of asynchronous work. Tasks submitted to the
// same stream execute one at a time in submission order; tasks on different
// streams are unordered with respect to each other unless the caller
// synchronizes explicitly.
//
// A failed task poisons the stream: tasks submitted after the failure are
// skipped and the first error is returned from every subsequent Synchronize.
// Asynchronous map operations do not inspect the stream; a caller discovers
// errors at its next synchronization point.
type Stream struct {
	id string

	mu   sync.Mutex
	last chan struct{}
	err  error
}

// NewStream returns an empty stream ready to accept work.
func NewStream() *Stream {
	return &Stream{id: uuid.NewString()}
}

// ID returns the stream's unique identifier. Useful for correlating log
// output across streams.
func (s *Stream) ID() string {
	return s.id
}

// Submit enqueues fn behind all previously submitted work and returns
// immediately. The error returned by fn, if any, is recorded on the stream.
func (s *Stream) Submit(fn func() error) {
	done := make(chan struct{})

	s.mu.Lock()
	prev := s.last
	s.last = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		s.mu.Lock()
		poisoned := s.err != nil
		s.mu.Unlock()
		if poisoned {
			return
		}
		if err := fn(); err != nil {
			s.mu.Lock()
			if s.err == nil {
				s.err = err
			}
			s.mu.Unlock()
		}
	}()
}

// Synchronize blocks until all work submitted to the stream so far has
// completed and returns the first error recorded by any task.
func (s *Stream) Synchronize() error {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last != nil {
		<-last
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
