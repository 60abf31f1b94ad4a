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
	"fmt"

	"github.com/sofclab/srac/internal/changelog"
	"github.com/sofclab/srac/internal/control"
	"github.com/sofclab/srac/internal/logger"
	"github.com/sofclab/srac/internal/safe_mqtt"
)

// AdvicePublisher pushes advisory setpoints and boundary state out to the
// display side. Values are retained so a dashboard reconnecting mid-ramp
// sees the latest advice.
type AdvicePublisher struct {
	mqtt safe_mqtt.MqttClient
	base string
}

func NewAdvicePublisher(client safe_mqtt.MqttClient, controlTopic string) *AdvicePublisher {
	return &AdvicePublisher{mqtt: client, base: controlTopic}
}

func (p *AdvicePublisher) publish(topic string, retained bool, payload interface{}) {
	if token := p.mqtt.SafePublish(topic, mqttQoS, retained, payload); token.Wait() && token.Error() != nil {
		logger.L().Error(token.Error())
	}
}

// PublishAdvice reports one control step: the two setpoints, the observed
// slope, the status, and a full JSON report for dashboards.
func (p *AdvicePublisher) PublishAdvice(adv control.Advice, sample control.Sample) {
	base := p.base + "/advice"
	p.publish(base+"/next_h2", true, fmt.Sprintf("%.2f", adv.NextH2))
	p.publish(base+"/next_air", true, fmt.Sprintf("%.1f", adv.NextAir))
	p.publish(base+"/slope", true, fmt.Sprintf("%.2f", adv.ObservedSlope))
	p.publish(base+"/status", true, adv.Status.String())
	p.publish(base+"/report", true, adviceReport(adv, sample))
}

// PublishLimits mirrors the live boundary configuration on retained topics.
func (p *AdvicePublisher) PublishLimits(lim control.Limits) {
	base := p.base + "/limits"
	p.publish(base+"/"+changelog.FieldTargetSlope, true, fmt.Sprintf("%g", lim.TargetSlope))
	p.publish(base+"/"+changelog.FieldMaxStackDT, true, fmt.Sprintf("%g", lim.MaxStackDT))
	p.publish(base+"/"+changelog.FieldMaxABDT, true, fmt.Sprintf("%g", lim.MaxABDT))
	p.publish(base+"/"+changelog.FieldMinAirFlow, true, fmt.Sprintf("%g", lim.MinAirFlow))
}

// PublishChange announces one boundary change record.
func (p *AdvicePublisher) PublishChange(change changelog.Change) {
	payload, err := json.Marshal(change)
	if err != nil {
		logger.L().Error(err)
		return
	}
	p.publish(p.base+"/limits/changed", false, payload)
}

func adviceReport(adv control.Advice, sample control.Sample) []byte {
	report := struct {
		Time          string  `json:"time"`
		NextH2        float64 `json:"next_h2"`
		NextAir       float64 `json:"next_air"`
		H2Delta       float64 `json:"h2_delta"`
		AirDelta      float64 `json:"air_delta"`
		ObservedSlope float64 `json:"observed_slope"`
		Status        string  `json:"status"`
		Message       string  `json:"message"`
		Deferred      bool    `json:"deferred"`
	}{
		Time:          sample.Time.Format("15:04:05"),
		NextH2:        adv.NextH2,
		NextAir:       adv.NextAir,
		H2Delta:       adv.NextH2 - sample.H2Flow,
		AirDelta:      adv.NextAir - sample.AirFlow,
		ObservedSlope: adv.ObservedSlope,
		Status:        adv.Status.String(),
		Message:       adv.Status.Message(),
		Deferred:      adv.Deferred,
	}

	ret, err := json.Marshal(report)
	if err != nil {
		logger.L().Error(err)
	}
	return ret
}
