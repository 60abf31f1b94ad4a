/*
 * Copyright (c) 2026. SRAC Developers -- All Rights Reserved
 *
 * This file is part of SRAC project.
 *
 * SRAC is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as the Free Software Foundation,
 * either version 3 of the License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

// Package history keeps the bounded window of recent plant samples.
package history

import (
	"sync"

	"github.com/sofclab/srac/internal/control"
)

// DefaultCapacity is the sampling window the controller works over.
const DefaultCapacity = 20

// Store is an append-only bounded FIFO of samples. When full, the oldest
// sample is evicted on append. Samples are never mutated or reordered after
// append.
type Store struct {
	mu       sync.Mutex
	capacity int
	samples  []control.Sample
}

func NewStore(capacity int) *Store {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Store{capacity: capacity}
}

// Append adds a sample at the tail, evicting the head if the store is full.
func (s *Store) Append(sample control.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, sample)
	if len(s.samples) > s.capacity {
		s.samples = s.samples[1:]
	}
}

// LastPair returns the latest and second-to-latest samples. ok is false
// while fewer than two samples have been appended.
func (s *Store) LastPair() (latest, previous control.Sample, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.samples)
	if n < 2 {
		return control.Sample{}, control.Sample{}, false
	}
	return s.samples[n-1], s.samples[n-2], true
}

// Latest returns the most recent sample, if any.
func (s *Store) Latest() (control.Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.samples) == 0 {
		return control.Sample{}, false
	}
	return s.samples[len(s.samples)-1], true
}

// Previous returns the second-to-latest sample, if any.
func (s *Store) Previous() (control.Sample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.samples) < 2 {
		return control.Sample{}, false
	}
	return s.samples[len(s.samples)-2], true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.samples)
}

// Snapshot returns an oldest-first copy of the window for display.
func (s *Store) Snapshot() []control.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]control.Sample, len(s.samples))
	copy(out, s.samples)
	return out
}
