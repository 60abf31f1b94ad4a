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

package changelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofclab/srac/internal/control"
)

func TestRecordSingleFieldChange(t *testing.T) {
	l := NewLog()
	oldLimits := control.DefaultLimits()
	newLimits := oldLimits
	newLimits.TargetSlope = 0.9

	added := l.RecordIfChanged(oldLimits, newLimits)

	require.Len(t, added, 1)
	assert.Equal(t, FieldTargetSlope, added[0].Field)
	assert.Equal(t, 0.7, added[0].Old)
	assert.Equal(t, 0.9, added[0].New)
	assert.False(t, added[0].Time.IsZero())
	assert.Equal(t, 1, l.Len())
}

func TestRecordNoChange(t *testing.T) {
	l := NewLog()
	lim := control.DefaultLimits()

	added := l.RecordIfChanged(lim, lim)

	assert.Empty(t, added)
	assert.Zero(t, l.Len())
}

func TestRecordAllFieldsNewestFirst(t *testing.T) {
	l := NewLog()
	oldLimits := control.DefaultLimits()
	newLimits := control.Limits{TargetSlope: 1.0, MaxStackDT: 90, MaxABDT: 160, MinAirFlow: 550}

	added := l.RecordIfChanged(oldLimits, newLimits)
	require.Len(t, added, 4)

	// Prepend order: the last field diffed ends up first.
	assert.Equal(t, FieldMinAirFlow, added[0].Field)
	assert.Equal(t, FieldTargetSlope, added[3].Field)

	// A later change lands ahead of the earlier batch.
	bumped := newLimits
	bumped.MaxABDT = 150
	l.RecordIfChanged(newLimits, bumped)

	changes := l.Changes()
	require.Len(t, changes, 5)
	assert.Equal(t, FieldMaxABDT, changes[0].Field)
	assert.Equal(t, 160.0, changes[0].Old)
	assert.Equal(t, 150.0, changes[0].New)
}

func TestChangesReturnsCopy(t *testing.T) {
	l := NewLog()
	oldLimits := control.DefaultLimits()
	newLimits := oldLimits
	newLimits.MinAirFlow = 600

	l.RecordIfChanged(oldLimits, newLimits)
	changes := l.Changes()
	changes[0].Field = "tampered"

	assert.Equal(t, FieldMinAirFlow, l.Changes()[0].Field)
}
