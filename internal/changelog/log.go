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

// Package changelog records operator changes to the boundary configuration.
// The log is an audit trail for the dashboard; the control law never reads
// it.
package changelog

import (
	"sync"
	"time"

	"github.com/sofclab/srac/internal/control"
)

// Field names as they appear in change records and on control topics.
const (
	FieldTargetSlope = "target_slope"
	FieldMaxStackDT  = "max_stack_dt"
	FieldMaxABDT     = "max_ab_dt"
	FieldMinAirFlow  = "min_air_flow"
)

// Change is one recorded limit mutation.
type Change struct {
	Time  time.Time `json:"time"`
	Field string    `json:"field"`
	Old   float64   `json:"old"`
	New   float64   `json:"new"`
}

// Log is a newest-first, process-lifetime change record. Growth is bounded
// only by how often the operator retunes the limits.
type Log struct {
	mu      sync.Mutex
	now     func() time.Time
	entries []Change
}

func NewLog() *Log {
	return &Log{now: time.Now}
}

// RecordIfChanged diffs the two configurations field by field and prepends
// one change record per differing field. The newly created records are
// returned, newest first, matching their order in the log.
func (l *Log) RecordIfChanged(oldLimits, newLimits control.Limits) []Change {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	var added []Change
	record := func(field string, oldV, newV float64) {
		if oldV == newV {
			return
		}
		c := Change{Time: now, Field: field, Old: oldV, New: newV}
		l.entries = append([]Change{c}, l.entries...)
		added = append([]Change{c}, added...)
	}

	record(FieldTargetSlope, oldLimits.TargetSlope, newLimits.TargetSlope)
	record(FieldMaxStackDT, oldLimits.MaxStackDT, newLimits.MaxStackDT)
	record(FieldMaxABDT, oldLimits.MaxABDT, newLimits.MaxABDT)
	record(FieldMinAirFlow, oldLimits.MinAirFlow, newLimits.MinAirFlow)

	return added
}

// Changes returns a newest-first copy of the full log.
func (l *Log) Changes() []Change {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Change, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
