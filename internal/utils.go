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

package internal

import (
	"strconv"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"

	"github.com/sofclab/srac/internal/config"
	"github.com/sofclab/srac/internal/safe_mqtt"
)

const (
	mqttQoS          = byte(1)
	sampleChanBuffer = 100
)

func mqttOptions(cfg *config.MQTTConfig) safe_mqtt.Options {
	return safe_mqtt.Options{
		URL:      cfg.URL,
		Username: cfg.Username,
		Password: cfg.Password,
	}
}

// lastTopicSegment strips the control prefix off a subscription topic.
func lastTopicSegment(message mqtt.Message) string {
	topic := message.Topic()
	return topic[strings.LastIndex(topic, "/")+1:]
}

func extractF64(message mqtt.Message) (float64, error) {
	v, err := strconv.ParseFloat(string(message.Payload()), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse float on %v: %v", message.Topic(), string(message.Payload()))
	}
	return v, nil
}
