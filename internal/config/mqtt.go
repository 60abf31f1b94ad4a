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

type MQTTConfig struct {
	URL          string `yaml:"url"`
	ControlTopic string `yaml:"control_topic"`
	Username     string `yaml:"username,omitempty"`
	Password     string `yaml:"password,omitempty"`
}

func NewMQTTConfig() *MQTTConfig {
	cfg := &MQTTConfig{}
	cfg.FillDefaults()
	return cfg
}

func (c *MQTTConfig) FillDefaults() {
	if c.URL == "" {
		c.URL = defaultMQTTURL
	}
	if c.ControlTopic == "" {
		c.ControlTopic = defaultControlTopic
	}
}
