package mqttpub

import (
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type fakeToken struct {
	done bool
	err  error
}

func (t fakeToken) Wait() bool                     { return t.done }
func (t fakeToken) WaitTimeout(time.Duration) bool { return t.done }
func (t fakeToken) Error() error                   { return t.err }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if t.done {
		close(ch)
	}
	return ch
}

type published struct {
	topic   string
	qos     byte
	retain  bool
	payload []byte
}

type fakeClient struct {
	tok          fakeToken
	pubs         []published
	disconnected bool
}

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.pubs = append(f.pubs, published{topic: topic, qos: qos, retain: retained, payload: payload.([]byte)})
	return f.tok
}

func (f *fakeClient) Disconnect(uint) { f.disconnected = true }

func TestPublish_EncodesJSON(t *testing.T) {
	fc := &fakeClient{tok: fakeToken{done: true}}
	p := newPublisher(fc, Config{Topic: "rpi-tools/aprs", QoS: 1, Retain: true})

	type snap struct {
		Sent   int    `json:"sent"`
		Packet string `json:"packet"`
	}
	if err := p.Publish(snap{Sent: 3, Packet: "N0CALL>APN100"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(fc.pubs) != 1 {
		t.Fatalf("publishes=%d", len(fc.pubs))
	}
	got := fc.pubs[0]
	if got.topic != "rpi-tools/aprs" || got.qos != 1 || !got.retain {
		t.Fatalf("publish=%+v", got)
	}
	if string(got.payload) != `{"sent":3,"packet":"N0CALL>APN100"}` {
		t.Fatalf("payload=%s", got.payload)
	}

	p.Close()
	if !fc.disconnected {
		t.Fatalf("expected disconnect")
	}
}

func TestPublish_Errors(t *testing.T) {
	fc := &fakeClient{tok: fakeToken{done: false}}
	p := newPublisher(fc, Config{Topic: "t", Timeout: time.Millisecond})
	if err := p.Publish(1); err == nil || err.Error() != "mqtt: publish to t timed out" {
		t.Fatalf("err=%v", err)
	}

	fc.tok = fakeToken{done: true, err: errors.New("not connected")}
	if err := p.Publish(1); err == nil || err.Error() != "mqtt: publish to t: not connected" {
		t.Fatalf("err=%v", err)
	}

	if err := p.Publish(make(chan int)); err == nil {
		t.Fatalf("expected encode error")
	}
}

func TestNilPublisherIsNoop(t *testing.T) {
	var p *Publisher
	if err := p.Publish(map[string]int{"a": 1}); err != nil {
		t.Fatalf("err=%v", err)
	}
	if p.Topic() != "" {
		t.Fatalf("topic=%q", p.Topic())
	}
	p.Close()
}

func TestConnect_Validation(t *testing.T) {
	if _, err := Connect(Config{Topic: "t"}); err == nil {
		t.Fatalf("expected error for missing broker")
	}
	if _, err := Connect(Config{Broker: "tcp://127.0.0.1:1883"}); err == nil {
		t.Fatalf("expected error for missing topic")
	}
	if _, err := Connect(Config{Broker: "tcp://127.0.0.1:1883", Topic: "t", QoS: 3}); err == nil {
		t.Fatalf("expected error for bad qos")
	}
}
