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
	"sync/atomic"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/sofclab/srac/internal/changelog"
	"github.com/sofclab/srac/internal/config"
	"github.com/sofclab/srac/internal/control"
	"github.com/sofclab/srac/internal/db"
	"github.com/sofclab/srac/internal/logger"
	"github.com/sofclab/srac/internal/safe_mqtt"
	"github.com/sofclab/srac/internal/session"
)

// RampController is the session orchestrator: it owns the MQTT clients, the
// audit database and the control session, and serializes every submission
// through one channel so append-plus-step stays atomic.
type RampController struct {
	cfg        *config.Config
	store      *db.Store
	mqtt       safe_mqtt.MqttClient
	session    *session.Session
	listener   *SampleListener
	publisher  *AdvicePublisher
	sampleChan chan control.Sample
	// enabled is toggled from the MQTT callback goroutine and read by the
	// Run loop.
	enabled atomic.Bool
}

func NewRampController() *RampController {
	c := &RampController{
		cfg:        config.Get(),
		sampleChan: make(chan control.Sample, sampleChanBuffer),
	}

	opts := mqttOptions(c.cfg.MQTTConfig)
	opts.WillTopic = c.cfg.MQTTConfig.ControlTopic + "/available"

	c.mqtt = safe_mqtt.InitMQTTClient(opts, "srac-"+uuid.New().String())
	c.store = db.Open(c.cfg.DBFile)
	c.session = session.New(c.cfg.Limits.Limits())
	c.publisher = NewAdvicePublisher(c.mqtt, c.cfg.MQTTConfig.ControlTopic)
	c.listener = NewSampleListener(c.cfg.SampleTopic, mqttOptions(c.cfg.MQTTConfig), c.sampleChan)

	c.setupControlSubscriptions()
	c.setEnabled(c.readValueWithDefault("enabled", "true"))
	c.publisher.PublishLimits(c.session.Limits())

	return c
}

func (c *RampController) setupControlSubscriptions() {
	controlTopic := c.cfg.MQTTConfig.ControlTopic
	for _, field := range []string{
		changelog.FieldTargetSlope,
		changelog.FieldMaxStackDT,
		changelog.FieldMaxABDT,
		changelog.FieldMinAirFlow,
	} {
		c.mqtt.SafeSubscribe(controlTopic+"/"+field, mqttQoS, c.limitUpdateHandler)
	}
	c.mqtt.SafeSubscribe(controlTopic+"/log_level", mqttQoS, c.controlUpdateHandler)
	c.mqtt.SafeSubscribe(controlTopic+"/enable", mqttQoS, c.controlUpdateHandler)
}

// Run consumes submissions until the process exits. Strictly sequential:
// one control step per submission, no overlap.
func (c *RampController) Run() {
	for sample := range c.sampleChan {
		c.handleSample(sample)
	}
}

func (c *RampController) handleSample(sample control.Sample) {
	if err := c.store.InsertSample(sample); err != nil {
		logger.L().Error(err)
	}

	adv, outcome := c.session.Submit(sample)
	switch outcome {
	case session.OutcomeInsufficientHistory:
		logger.L().Info("First sample stored, waiting for a second one before advising")
		return
	case session.OutcomeDeferred:
		logger.L().Infof("Sample deferred (non-positive elapsed time): %s", adv.Status.Message())
	case session.OutcomeAdvice:
		logger.L().Infof(
			"Advice: H2 %.2f -> %.2f lpm, air %.1f -> %.1f lpm, slope %.2f degC/min: %s",
			sample.H2Flow, adv.NextH2, sample.AirFlow, adv.NextAir,
			adv.ObservedSlope, adv.Status.Message(),
		)
	}

	if c.enabled.Load() {
		c.publisher.PublishAdvice(adv, sample)
	}
}

// limitUpdateHandler applies one boundary field change, effective on the
// next submission, and fans the change records out to the log, the audit
// database and the changed topic.
func (c *RampController) limitUpdateHandler(client mqtt.Client, message mqtt.Message) {
	field := lastTopicSegment(message)
	logger.L().Infof("Got boundary update: %v : %v", field, string(message.Payload()))

	value, err := extractF64(message)
	if err != nil {
		logger.L().Error(err)
		return
	}

	lim := c.session.Limits()
	switch field {
	case changelog.FieldTargetSlope:
		lim.TargetSlope = value
	case changelog.FieldMaxStackDT:
		lim.MaxStackDT = value
	case changelog.FieldMaxABDT:
		lim.MaxABDT = value
	case changelog.FieldMinAirFlow:
		lim.MinAirFlow = value
	default:
		logger.L().Errorf("Unknown boundary field: %s", field)
		return
	}

	for _, change := range c.session.SetLimits(lim) {
		logger.L().Infof("Boundary `%s` changed: %g -> %g", change.Field, change.Old, change.New)
		if err := c.store.InsertLimitChange(change); err != nil {
			logger.L().Error(err)
		}
		c.publisher.PublishChange(change)
	}
	c.publisher.PublishLimits(lim)
}

func (c *RampController) controlUpdateHandler(client mqtt.Client, message mqtt.Message) {
	topic := lastTopicSegment(message)
	logger.L().Infof("Got MQTT control request: %v : %v", topic, string(message.Payload()))
	switch topic {
	case "log_level":
		if err := c.cfg.LogLevel.Set(string(message.Payload())); err != nil {
			logger.L().Errorf("Wrong log level `%v`", string(message.Payload()))
		} else {
			logger.SetLogLevel(c.cfg.LogLevel)
			logger.L().Infof("Updated loglevel to `%v`", c.cfg.LogLevel.String())
		}
	case "enable":
		c.setEnabled(string(message.Payload()))
	}
}

// setEnabled gates the outbound advice. Bookkeeping (sample window, audit
// rows, change log) keeps running while disabled.
func (c *RampController) setEnabled(val string) {
	switch strings.ToLower(val) {
	case "true", "on":
		c.mqtt.SafePublish(c.cfg.MQTTConfig.ControlTopic+"/active", mqttQoS, true, "ON")
		c.enabled.Store(true)
	case "false", "off":
		c.mqtt.SafePublish(c.cfg.MQTTConfig.ControlTopic+"/active", mqttQoS, true, "OFF")
		c.enabled.Store(false)
	default:
		logger.L().Warnf("Invalid value for enable: %v", val)
		return
	}
	if err := c.writeValue("enabled", strconv.FormatBool(c.enabled.Load())); err != nil {
		logger.L().Error(err)
	}
}

func (c *RampController) writeValue(name, value string) error {
	return c.store.UpsertControllerValue(name, value)
}

func (c *RampController) readValueWithDefault(name string, defValue string) string {
	val, err := c.store.GetControllerValue(name)
	if err != nil {
		val = defValue
	}
	return val
}
