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

package config

import "github.com/sofclab/srac/internal/control"

// LimitsConfig is the boot-time boundary configuration. The operator can
// retune every field at runtime over the control topics.
type LimitsConfig struct {
	TargetSlope *float64 `yaml:"target_slope"`
	MaxStackDT  *float64 `yaml:"max_stack_dt"`
	MaxABDT     *float64 `yaml:"max_ab_dt"`
	MinAirFlow  *float64 `yaml:"min_air_flow"`
}

func NewLimitsConfig() *LimitsConfig {
	cfg := &LimitsConfig{}
	cfg.FillDefaults()
	return cfg
}

func (c *LimitsConfig) FillDefaults() {
	def := control.DefaultLimits()
	if c.TargetSlope == nil {
		c.TargetSlope = GetPTR(def.TargetSlope)
	}
	if c.MaxStackDT == nil {
		c.MaxStackDT = GetPTR(def.MaxStackDT)
	}
	if c.MaxABDT == nil {
		c.MaxABDT = GetPTR(def.MaxABDT)
	}
	if c.MinAirFlow == nil {
		c.MinAirFlow = GetPTR(def.MinAirFlow)
	}
}

// Limits flattens the config into the value the control law consumes.
func (c *LimitsConfig) Limits() control.Limits {
	return control.Limits{
		TargetSlope: *c.TargetSlope,
		MaxStackDT:  *c.MaxStackDT,
		MaxABDT:     *c.MaxABDT,
		MinAirFlow:  *c.MinAirFlow,
	}
}
