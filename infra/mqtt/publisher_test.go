package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremon "github.com/kinjo-energy/kinjo/core/monitoring"
	"github.com/kinjo-energy/kinjo/core/profile"
	"github.com/kinjo-energy/kinjo/core/tariff"
)

type recordMonitor struct {
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}
func (r *recordMonitor) Recover()            {}
func (r *recordMonitor) Flush(time.Duration) {}

func sampleProfile() profile.Profile {
	sub := tariff.Subscription{PowerKVA: 9, Plan: tariff.PlanPeakOffPeak}
	return profile.Profile{
		ID:           "p-1",
		PRM:          "12345678901234",
		Subscription: sub,
		Description:  "HC (22:30-06:30)",
		Segments: tariff.Segments{
			{Start: 0, End: 390, Kind: tariff.OffPeak},
			{Start: 390, End: 1350, Kind: tariff.Peak},
			{Start: 1350, End: 1440, Kind: tariff.OffPeak},
		},
		CreatedAt: time.UnixMilli(1700000000000),
	}
}

func TestPublishPayloadAndTopic(t *testing.T) {
	mc := &mockClient{}
	installMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id", TopicPrefix: "kinjo/prm/", QoS: 1, Retain: true})
	require.NoError(t, err)

	require.NoError(t, pub.Publish(context.Background(), sampleProfile()))
	require.Equal(t, 1, mc.count())
	msg := mc.published[0]
	assert.Equal(t, "kinjo/prm/12345678901234/tariff", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.True(t, msg.retained)

	var decoded profileMessage
	require.NoError(t, json.Unmarshal(msg.payload, &decoded))
	assert.Equal(t, "p-1", decoded.ProfileID)
	assert.Equal(t, tariff.PlanPeakOffPeak, decoded.Plan)
	require.Len(t, decoded.Segments, 3)
	assert.Equal(t, segmentMessage{Start: "22:30", End: "24:00", Kind: "HC", Color: "#92C55E"}, decoded.Segments[2])
	assert.Equal(t, int64(1700000000000), decoded.Timestamp)
}

func TestPublishRetries(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	installMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 1, BackoffMS: 1})
	require.NoError(t, err)
	require.NoError(t, pub.Publish(context.Background(), sampleProfile()))
	assert.Equal(t, 2, mc.count())
}

func TestPublishFailureCaptured(t *testing.T) {
	fail := fmt.Errorf("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail, fail}}
	installMock(t, mc)
	mon := &recordMonitor{}
	coremon.Init(mon)
	defer coremon.Init(coremon.NopMonitor{})

	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 2, BackoffMS: 1})
	require.NoError(t, err)
	err = pub.Publish(context.Background(), sampleProfile())
	require.Error(t, err)
	assert.ErrorIs(t, err, fail)
	assert.Equal(t, 3, mc.count())
	require.NotNil(t, mon.err)
	assert.Equal(t, "mqtt", mon.tags["module"])
	assert.Equal(t, "12345678901234", mon.tags["prm"])
}

func TestForwardDrainsEvents(t *testing.T) {
	mc := &mockClient{}
	installMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id"})
	require.NoError(t, err)

	events := make(chan profile.Accepted, 2)
	events <- profile.Accepted{Profile: sampleProfile()}
	events <- profile.Accepted{Profile: sampleProfile()}
	close(events)

	done := make(chan struct{})
	go func() {
		pub.Forward(context.Background(), events)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forward did not return after channel close")
	}
	assert.Equal(t, 2, mc.count())
}

func TestLWTConfiguredAndDisconnect(t *testing.T) {
	mc := &mockClient{}
	installMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "id", LWTTopic: "lwt", LWTPayload: "bye", LWTQoS: 1})
	require.NoError(t, err)
	assert.True(t, mc.opts.WillEnabled)
	assert.Equal(t, "lwt", mc.opts.WillTopic)
	assert.Equal(t, "bye", string(mc.opts.WillPayload))
	pub.Disconnect()
	assert.True(t, mc.disconnected)
	assert.Equal(t, 0, mc.count())
}

func TestTopicWithoutPrefix(t *testing.T) {
	p := &Publisher{}
	assert.Equal(t, "12345678901234/tariff", p.Topic("12345678901234"))
}
