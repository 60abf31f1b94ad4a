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
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/sofclab/srac/internal/control"
	"github.com/sofclab/srac/internal/logger"
	"github.com/sofclab/srac/internal/safe_mqtt"
)

const sampleClientPrefix = "srac-sample-"

// SampleListener turns inbound plant-state documents into samples on the
// controller channel. One submission event equals one MQTT message.
type SampleListener struct {
	mqtt       safe_mqtt.MqttClient
	sampleChan chan<- control.Sample
}

// samplePayload is the wire form of one submission. pa/pc are the anode and
// cathode pressures, accepted for display and audit only.
type samplePayload struct {
	Time string  `json:"time,omitempty"`
	H2   float64 `json:"h2"`
	Air  float64 `json:"air"`
	T2   float64 `json:"t2"`
	TC3  float64 `json:"tc3"`
	TC1  float64 `json:"tc1"`
	PA   float64 `json:"pa"`
	PC   float64 `json:"pc"`
}

func NewSampleListener(topic string, opts safe_mqtt.Options, sampleChan chan<- control.Sample) *SampleListener {
	l := &SampleListener{sampleChan: sampleChan}
	l.mqtt = safe_mqtt.InitMQTTClient(opts, sampleClientPrefix+uuid.New().String())
	l.mqtt.SafeSubscribe(topic, mqttQoS, l.sampleHandler)
	return l
}

func (l *SampleListener) sampleHandler(client mqtt.Client, message mqtt.Message) {
	sample, err := decodeSample(message.Payload(), time.Now())
	if err != nil {
		logger.L().Error(err)
		return
	}
	logger.L().Debugf(
		"Got sample: H2=%.2f air=%.1f T2=%.1f TC3=%.1f TC1=%.1f",
		sample.H2Flow, sample.AirFlow, sample.T2, sample.TC3, sample.TC1,
	)
	l.sampleChan <- sample
}

// decodeSample parses a submission. A missing time field means "now": the
// hand-submitted documents from the dashboard carry no timestamp.
func decodeSample(payload []byte, now time.Time) (control.Sample, error) {
	var p samplePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return control.Sample{}, errors.Wrapf(err, "sample decode: %v", string(payload))
	}

	ts := now
	if p.Time != "" {
		parsed, err := time.Parse(time.RFC3339, p.Time)
		if err != nil {
			return control.Sample{}, errors.Wrapf(err, "sample time %q", p.Time)
		}
		ts = parsed
	}

	return control.Sample{
		Time:            ts,
		H2Flow:          p.H2,
		AirFlow:         p.Air,
		T2:              p.T2,
		TC3:             p.TC3,
		TC1:             p.TC1,
		AnodePressure:   p.PA,
		CathodePressure: p.PC,
	}, nil
}
