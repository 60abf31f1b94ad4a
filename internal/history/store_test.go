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

package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofclab/srac/internal/control"
)

func numberedSample(i int) control.Sample {
	return control.Sample{
		Time:   time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute),
		H2Flow: float64(i),
	}
}

func TestStoreInsufficientHistory(t *testing.T) {
	s := NewStore(DefaultCapacity)

	_, ok := s.Latest()
	assert.False(t, ok)
	_, _, ok = s.LastPair()
	assert.False(t, ok)

	s.Append(numberedSample(0))
	_, _, ok = s.LastPair()
	assert.False(t, ok, "one sample is not enough for a pair")

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, 0.0, latest.H2Flow)
}

func TestStoreLastPair(t *testing.T) {
	s := NewStore(DefaultCapacity)
	s.Append(numberedSample(1))
	s.Append(numberedSample(2))
	s.Append(numberedSample(3))

	latest, previous, ok := s.LastPair()
	require.True(t, ok)
	assert.Equal(t, 3.0, latest.H2Flow)
	assert.Equal(t, 2.0, previous.H2Flow)

	prev, ok := s.Previous()
	require.True(t, ok)
	assert.Equal(t, 2.0, prev.H2Flow)
}

func TestStoreBoundedFIFOEviction(t *testing.T) {
	s := NewStore(DefaultCapacity)
	for i := 0; i < 25; i++ {
		s.Append(numberedSample(i))
	}

	assert.Equal(t, 20, s.Len())

	snap := s.Snapshot()
	require.Len(t, snap, 20)
	// Oldest five evicted in order: window now starts at sample 5.
	assert.Equal(t, 5.0, snap[0].H2Flow)
	assert.Equal(t, 24.0, snap[19].H2Flow)
	for i := 1; i < len(snap); i++ {
		assert.True(t, !snap[i].Time.Before(snap[i-1].Time), "window must stay time ordered")
	}
}

func TestStoreSnapshotIsACopy(t *testing.T) {
	s := NewStore(DefaultCapacity)
	s.Append(numberedSample(1))

	snap := s.Snapshot()
	snap[0].H2Flow = 99.0

	latest, _ := s.Latest()
	assert.Equal(t, 1.0, latest.H2Flow)
}
