// Package transport adapts the eclipse paho MQTT client to the event
// contract the session controller expects.
package transport

import (
	"crypto/tls"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Sink receives transport events. HandleConnect is called after every
// connection attempt, HandleDisconnect when the connection is gone
// (nil error for a requested disconnect, the cause for a lost one),
// HandleMessage for every delivered message.
type Sink interface {
	HandleConnect(err error)
	HandleDisconnect(err error)
	HandleMessage(topic string, payload []byte)
}

// retryDelay is the fixed backoff between connection attempts. There
// is no cap on attempts and no exponential growth.
const retryDelay = 5 * time.Second

// MQTT wraps a paho client behind the controller's Transport
// interface. A fresh paho client is built per Connect so a migration
// to a different broker reuses nothing of the old session. All sink
// events are delivered from transport-owned goroutines, never from the
// caller of Connect or Disconnect.
type MQTT struct {
	clientID string
	tlsCfg   *tls.Config
	sink     Sink

	mu      sync.Mutex
	client  mqtt.Client
	stopped bool
}

func NewMQTT(clientID string, tlsCfg *tls.Config) *MQTT {
	return &MQTT{clientID: clientID, tlsCfg: tlsCfg}
}

// SetSink registers the event sink. Must be called before Connect.
func (t *MQTT) SetSink(sink Sink) {
	t.sink = sink
}

// Connect starts connecting to the broker, retrying with a fixed
// delay until an attempt succeeds or Disconnect is called. Each
// attempt's outcome is reported through the sink.
func (t *MQTT) Connect(server string, port int) {
	go func() {
		for {
			t.mu.Lock()
			if t.stopped {
				t.mu.Unlock()
				return
			}
			t.mu.Unlock()

			var c mqtt.Client
			opts := mqtt.NewClientOptions().
				AddBroker(fmt.Sprintf("ssl://%s:%d", server, port)).
				SetClientID(t.clientID).
				SetTLSConfig(t.tlsCfg).
				SetAutoReconnect(false).
				SetConnectionLostHandler(func(_ mqtt.Client, err error) {
					t.mu.Lock()
					if t.client == c {
						t.client = nil
					}
					t.mu.Unlock()
					t.sink.HandleDisconnect(err)
				})
			c = mqtt.NewClient(opts)

			token := c.Connect()
			token.Wait()
			if err := token.Error(); err != nil {
				t.sink.HandleConnect(err)
				time.Sleep(retryDelay)
				continue
			}
			t.mu.Lock()
			t.client = c
			t.mu.Unlock()
			t.sink.HandleConnect(nil)
			return
		}
	}()
}

// Subscribe requests a subscription. Fire-and-forget: a rejected
// subscribe is only logged, connection-level failures surface through
// the disconnect path.
func (t *MQTT) Subscribe(topic string, qos byte) {
	c := t.current()
	if c == nil {
		return
	}
	token := c.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		t.sink.HandleMessage(msg.Topic(), msg.Payload())
	})
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.Printf("subscribe %s: %v", topic, err)
		}
	}()
}

func (t *MQTT) Unsubscribe(topic string) {
	c := t.current()
	if c == nil {
		return
	}
	token := c.Unsubscribe(topic)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.Printf("unsubscribe %s: %v", topic, err)
		}
	}()
}

// Disconnect tears the connection down and reports completion through
// the sink. Paho does not invoke the lost-connection handler for a
// client-initiated disconnect, so completion is synthesized here.
func (t *MQTT) Disconnect() {
	t.mu.Lock()
	c := t.client
	t.client = nil
	t.mu.Unlock()
	go func() {
		if c != nil {
			c.Disconnect(250)
		}
		t.sink.HandleDisconnect(nil)
	}()
}

// Stop prevents any further connection attempts. Used at shutdown so
// an in-progress retry loop does not outlive the bridge.
func (t *MQTT) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *MQTT) current() mqtt.Client {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client
}
