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

// Package session ties the sample window, the live limits and the change
// log into the submit-then-advise cycle. One Session owns one ramp run.
package session

import (
	"sync"

	"github.com/sofclab/srac/internal/changelog"
	"github.com/sofclab/srac/internal/control"
	"github.com/sofclab/srac/internal/history"
)

// Outcome tags the result of one submission.
type Outcome int

const (
	// OutcomeAdvice means Submit ran a full control step.
	OutcomeAdvice Outcome = iota
	// OutcomeDeferred means the step ran but elapsed time was non-positive,
	// so the flows pass through unchanged.
	OutcomeDeferred
	// OutcomeInsufficientHistory means the sample was stored but no
	// previous sample exists to step against.
	OutcomeInsufficientHistory
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdvice:
		return "advice"
	case OutcomeDeferred:
		return "deferred"
	case OutcomeInsufficientHistory:
		return "insufficient_history"
	}
	return "unknown"
}

// Session serializes submissions: append plus step is one atomic unit, so a
// step always pairs the sample just appended with the one right before it.
type Session struct {
	mu     sync.Mutex
	store  *history.Store
	limits control.Limits
	log    *changelog.Log
}

func New(limits control.Limits) *Session {
	return &Session{
		store:  history.NewStore(history.DefaultCapacity),
		limits: limits,
		log:    changelog.NewLog(),
	}
}

// Submit appends the sample and, when a previous sample exists, runs one
// control step against the limits current at this instant. The advice is
// only meaningful for OutcomeAdvice and OutcomeDeferred.
func (s *Session) Submit(sample control.Sample) (control.Advice, Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Append(sample)
	latest, previous, ok := s.store.LastPair()
	if !ok {
		return control.Advice{}, OutcomeInsufficientHistory
	}

	adv := control.Step(latest, previous, s.limits)
	if adv.Deferred {
		return adv, OutcomeDeferred
	}
	return adv, OutcomeAdvice
}

// SetLimits swaps in a new boundary configuration, effective for the next
// submission, and returns the change records produced by the diff.
func (s *Session) SetLimits(limits control.Limits) []changelog.Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	changes := s.log.RecordIfChanged(s.limits, limits)
	s.limits = limits
	return changes
}

// Limits returns the boundary configuration currently in force.
func (s *Session) Limits() control.Limits {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limits
}

// Changes returns the boundary change log, newest first.
func (s *Session) Changes() []changelog.Change {
	return s.log.Changes()
}

// History returns the current sample window, oldest first.
func (s *Session) History() []control.Sample {
	return s.store.Snapshot()
}
