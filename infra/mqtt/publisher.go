package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremon "github.com/kinjo-energy/kinjo/core/monitoring"
	"github.com/kinjo-energy/kinjo/core/profile"
	"github.com/kinjo-energy/kinjo/core/tariff"
	"github.com/kinjo-energy/kinjo/infra/logger"
)

// Publisher announces accepted tariff profiles on the broker so metering and
// matching services can pick up the consumer's periods.
type Publisher struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

// NewPublisher connects to the broker described by cfg.
func NewPublisher(cfg Config) (*Publisher, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected to %s", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("connection lost: %v", err) }
	opts.OnReconnecting = func(paho.Client, *paho.ClientOptions) { log.Warnf("reconnecting to MQTT broker") }

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p := &Publisher{
		cli:        c,
		prefix:     strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
	}
	if p.maxRetries <= 0 {
		p.maxRetries = 3
	}
	if p.backoff <= 0 {
		p.backoff = 100 * time.Millisecond
	}
	return p, nil
}

// Topic returns the topic a profile for prm is published on.
func (p *Publisher) Topic(prm string) string {
	if p.prefix == "" {
		return prm + "/tariff"
	}
	return p.prefix + "/" + prm + "/tariff"
}

type segmentMessage struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Kind  string `json:"kind"`
	Color string `json:"color"`
}

type profileMessage struct {
	ProfileID   string           `json:"profile_id"`
	PRM         string           `json:"prm"`
	Plan        tariff.Plan      `json:"plan"`
	Description string           `json:"description"`
	Segments    []segmentMessage `json:"segments"`
	Timestamp   int64            `json:"timestamp"`
}

// Encode renders the wire payload of a profile. Segment ends at 24:00 are
// written as "24:00".
func Encode(pr profile.Profile) ([]byte, error) {
	msg := profileMessage{
		ProfileID:   pr.ID,
		PRM:         pr.PRM,
		Plan:        pr.Subscription.Plan,
		Description: pr.Description,
		Timestamp:   pr.CreatedAt.UnixMilli(),
	}
	for _, s := range pr.Segments {
		msg.Segments = append(msg.Segments, segmentMessage{
			Start: tariff.FormatTime(s.Start),
			End:   tariff.FormatTime(s.End),
			Kind:  s.Kind.String(),
			Color: s.Kind.Color(),
		})
	}
	return json.Marshal(msg)
}

// Publish sends pr, retrying with exponential backoff.
func (p *Publisher) Publish(ctx context.Context, pr profile.Profile) error {
	payload, err := Encode(pr)
	if err != nil {
		return err
	}
	topic := p.Topic(pr.PRM)
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.log.Infof("published profile %s to %s", pr.ID, topic)
			return nil
		}
		p.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt == p.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		}
	}
	coremon.CaptureException(publishErr, map[string]string{"module": "mqtt", "prm": pr.PRM})
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

// Forward publishes every event received on events until the channel closes
// or ctx is done. Failures are logged and do not stop the loop.
func (p *Publisher) Forward(ctx context.Context, events <-chan profile.Accepted) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := p.Publish(ctx, ev.Profile); err != nil {
				p.log.Errorf("forward profile %s: %v", ev.Profile.ID, err)
			}
		}
	}
}

// Disconnect gracefully closes the MQTT connection.
func (p *Publisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
