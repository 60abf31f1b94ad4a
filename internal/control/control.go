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

// Package control holds the ramp control law for the SOFC startup heating
// loop. Step is a pure function: everything stateful (sample history,
// live limits) lives with the caller.
package control

import (
	"math"
	"time"
)

// H2Gain is the fitted contribution of 1 lpm of H2 to the cathode-outlet
// ramp rate, in (degC/min)/lpm.
const H2Gain = 0.20

const (
	// Protection rules arm this far before the configured limit.
	afterburnerMargin = 10.0
	stackMargin       = 15.0

	afterburnerFuelCut  = 0.95
	afterburnerAirBoost = 50.0
	stackAirBoost       = 100.0
)

// Sample is one observed plant state. The pressures are carried for the
// audit trail and the outbound report; the control law never reads them.
type Sample struct {
	Time            time.Time
	H2Flow          float64
	AirFlow         float64
	T2              float64
	TC3             float64
	TC1             float64
	AnodePressure   float64
	CathodePressure float64
}

// Limits is the operator boundary configuration, read as-is at the moment
// a step runs. All four values are plain finite floats; no ordering between
// them is assumed.
type Limits struct {
	TargetSlope float64
	MaxStackDT  float64
	MaxABDT     float64
	MinAirFlow  float64
}

// DefaultLimits returns the boot configuration used until the operator
// tunes the boundaries.
func DefaultLimits() Limits {
	return Limits{
		TargetSlope: 0.7,
		MaxStackDT:  100.0,
		MaxABDT:     170.0,
		MinAirFlow:  500.0,
	}
}

// Status classifies one control step outcome.
type Status int

const (
	Stable Status = iota
	AfterburnerProtection
	StackProtection
	WaitingForSample
)

func (s Status) String() string {
	switch s {
	case Stable:
		return "stable"
	case AfterburnerProtection:
		return "afterburner_protection"
	case StackProtection:
		return "stack_protection"
	case WaitingForSample:
		return "waiting_for_sample"
	}
	return "unknown"
}

// Message returns the operator-facing text for the status.
func (s Status) Message() string {
	switch s {
	case Stable:
		return "running stable, minor fuel tuning"
	case AfterburnerProtection:
		return "afterburner differential protection: cutting H2, raising air"
	case StackProtection:
		return "stack differential protection: raising air flow to even out temperatures"
	case WaitingForSample:
		return "waiting for next sample"
	}
	return "unknown"
}

// Advice is the advisory output of one control step. NextH2 and NextAir are
// rounded for reporting (2 and 1 decimal places); the rounding never feeds
// back into stored samples. Deferred marks the non-positive-dt case, where
// the flows are passed through unchanged and unrounded.
type Advice struct {
	NextH2        float64
	NextAir       float64
	Status        Status
	ObservedSlope float64
	Deferred      bool
}

// Step computes the next advisory setpoints from two consecutive samples
// under the given limits.
//
// When the elapsed time between the samples is zero or negative (duplicate
// or resubmitted sample) no adjustment is possible and the current flows are
// returned as-is with a WaitingForSample status. That is an expected
// condition, not an error.
//
// Otherwise the fuel flow gets a single-step proportional correction on the
// slope error, floored at zero. Two protection rules may then override: the
// afterburner rule caps fuel at a 5% cut from the current actual and adds
// 50 lpm of air; the stack rule adds another 100 lpm of air. Both air
// increments accumulate when both rules fire, and the stack rule, evaluated
// second, always wins the status. Air is finally floored at MinAirFlow.
//
// Sensor values are used as-is: out-of-range or non-finite inputs propagate
// arithmetically. This is an advisory controller and a human reviews the
// output; validating here would silently change control behavior.
func Step(curr, prev Sample, lim Limits) Advice {
	dt := curr.Time.Sub(prev.Time).Minutes()
	if dt <= 0 {
		return Advice{
			NextH2:   curr.H2Flow,
			NextAir:  curr.AirFlow,
			Status:   WaitingForSample,
			Deferred: true,
		}
	}

	actualSlope := (curr.TC3 - prev.TC3) / dt
	stackDT := math.Abs(curr.TC3 - curr.T2)
	abDT := curr.TC1 - curr.TC3

	suggestedH2 := math.Max(0.0, curr.H2Flow+(lim.TargetSlope-actualSlope)/H2Gain)
	suggestedAir := curr.AirFlow
	status := Stable

	if abDT > lim.MaxABDT-afterburnerMargin {
		suggestedH2 = math.Min(suggestedH2, curr.H2Flow*afterburnerFuelCut)
		suggestedAir += afterburnerAirBoost
		status = AfterburnerProtection
	}

	if stackDT > lim.MaxStackDT-stackMargin {
		suggestedAir += stackAirBoost
		status = StackProtection
	}

	return Advice{
		NextH2:        round(suggestedH2, 2),
		NextAir:       round(math.Max(suggestedAir, lim.MinAirFlow), 1),
		Status:        status,
		ObservedSlope: actualSlope,
	}
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
