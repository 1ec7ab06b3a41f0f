// Package mqttpub publishes service snapshots as JSON to an MQTT broker.
package mqttpub

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type Config struct {
	// Broker is a URL such as tcp://192.168.1.10:1883.
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
	QoS      int
	Retain   bool
	Timeout  time.Duration
}

// client is the subset of mqtt.Client used here.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher sends JSON documents to one topic. A nil *Publisher is valid
// and drops everything, so callers need no enabled checks.
type Publisher struct {
	c       client
	topic   string
	qos     byte
	retain  bool
	timeout time.Duration
}

// Connect dials the broker. Later connection losses are handled by paho's
// auto-reconnect.
func Connect(cfg Config) (*Publisher, error) {
	broker := strings.TrimSpace(cfg.Broker)
	if broker == "" {
		return nil, fmt.Errorf("mqtt: broker is required")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, fmt.Errorf("mqtt: topic is required")
	}
	if cfg.QoS < 0 || cfg.QoS > 2 {
		return nil, fmt.Errorf("mqtt: qos must be 0, 1 or 2")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(cfg.Timeout).
		SetWriteTimeout(cfg.Timeout).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(time.Minute).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Printf("mqtt connection lost broker=%s: %v", broker, err)
		}).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Printf("mqtt connected broker=%s", broker)
		})

	c := mqtt.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(cfg.Timeout) {
		c.Disconnect(0)
		return nil, fmt.Errorf("mqtt: connect to %s timed out", broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect to %s: %w", broker, err)
	}
	return newPublisher(c, cfg), nil
}

func newPublisher(c client, cfg Config) *Publisher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Publisher{
		c:       c,
		topic:   cfg.Topic,
		qos:     byte(cfg.QoS),
		retain:  cfg.Retain,
		timeout: cfg.Timeout,
	}
}

func (p *Publisher) Topic() string {
	if p == nil {
		return ""
	}
	return p.topic
}

// Publish JSON-encodes v and waits up to the configured timeout for the
// broker to accept it (for QoS 0, until it is written).
func (p *Publisher) Publish(v any) error {
	if p == nil {
		return nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("mqtt: encode payload: %w", err)
	}
	tok := p.c.Publish(p.topic, p.qos, p.retain, payload)
	if !tok.WaitTimeout(p.timeout) {
		return fmt.Errorf("mqtt: publish to %s timed out", p.topic)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt: publish to %s: %w", p.topic, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p == nil || p.c == nil {
		return
	}
	p.c.Disconnect(250)
}
