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
	"fmt"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofclab/srac/internal/config"
	"github.com/sofclab/srac/internal/control"
	"github.com/sofclab/srac/internal/db"
	"github.com/sofclab/srac/internal/session"
)

type fakeToken struct{}

func (fakeToken) Wait() bool                     { return true }
func (fakeToken) WaitTimeout(time.Duration) bool { return true }
func (fakeToken) Error() error                   { return nil }
func (fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// fakeMQTT records publishes so tests can observe the outbound side
// without a broker.
type fakeMQTT struct {
	mu        sync.Mutex
	published map[string][]string
}

func (f *fakeMQTT) SafePublish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.published == nil {
		f.published = make(map[string][]string)
	}
	var s string
	switch v := payload.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprint(v)
	}
	f.published[topic] = append(f.published[topic], s)
	return fakeToken{}
}

func (f *fakeMQTT) SafeSubscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	return fakeToken{}
}

func (f *fakeMQTT) SafeUnsubscribe(topics ...string) mqtt.Token {
	return fakeToken{}
}

func (f *fakeMQTT) count(topic string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published[topic])
}

func (f *fakeMQTT) last(topic string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.published[topic]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

func newTestController(t *testing.T) (*RampController, *fakeMQTT) {
	t.Helper()

	cfg := &config.Config{MQTTConfig: config.NewMQTTConfig(), Limits: config.NewLimitsConfig()}
	cfg.FillDefaults()

	fake := &fakeMQTT{}
	c := &RampController{
		cfg:        cfg,
		store:      db.Open(":memory:"),
		mqtt:       fake,
		session:    session.New(cfg.Limits.Limits()),
		publisher:  NewAdvicePublisher(fake, cfg.MQTTConfig.ControlTopic),
		sampleChan: make(chan control.Sample, sampleChanBuffer),
	}
	t.Cleanup(func() { _ = c.store.Close() })
	return c, fake
}

func rampSample(minutes float64, tc3 float64) control.Sample {
	return control.Sample{
		Time:    time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC).Add(time.Duration(minutes * float64(time.Minute))),
		H2Flow:  10.0,
		AirFlow: 800.0,
		T2:      300.0,
		TC3:     tc3,
		TC1:     430.0,
	}
}

func TestSetEnabledToggles(t *testing.T) {
	c, fake := newTestController(t)
	activeTopic := c.cfg.MQTTConfig.ControlTopic + "/active"

	c.setEnabled("on")
	assert.True(t, c.enabled.Load())
	assert.Equal(t, "ON", fake.last(activeTopic))

	val, err := c.store.GetControllerValue("enabled")
	require.NoError(t, err)
	assert.Equal(t, "true", val)

	c.setEnabled("false")
	assert.False(t, c.enabled.Load())
	assert.Equal(t, "OFF", fake.last(activeTopic))

	val, err = c.store.GetControllerValue("enabled")
	require.NoError(t, err)
	assert.Equal(t, "false", val)

	// Junk input leaves the gate and the persisted value untouched.
	c.setEnabled("sideways")
	assert.False(t, c.enabled.Load())
}

func TestHandleSampleGatedByEnable(t *testing.T) {
	c, fake := newTestController(t)
	adviceTopic := c.cfg.MQTTConfig.ControlTopic + "/advice/next_h2"

	c.setEnabled("on")
	c.handleSample(rampSample(0, 280.0)) // first sample, no advice yet
	assert.Zero(t, fake.count(adviceTopic))

	c.handleSample(rampSample(1, 280.5))
	assert.Equal(t, 1, fake.count(adviceTopic))

	c.setEnabled("off")
	c.handleSample(rampSample(2, 281.0))
	assert.Equal(t, 1, fake.count(adviceTopic), "disabled controller must not advise")

	c.setEnabled("on")
	c.handleSample(rampSample(3, 281.5))
	assert.Equal(t, 2, fake.count(adviceTopic))
}

// Toggling enable from another goroutine while samples flow must stay
// race-free: the gate is read per sample, written per control message.
func TestEnableToggleConcurrentWithSamples(t *testing.T) {
	c, _ := newTestController(t)
	c.setEnabled("on")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if i%2 == 0 {
				c.enabled.Store(false)
			} else {
				c.enabled.Store(true)
			}
		}
	}()

	for i := 0; i < 200; i++ {
		c.handleSample(rampSample(float64(i), 280.0+0.5*float64(i)))
	}
	<-done
}
