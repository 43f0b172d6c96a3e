package telemetry

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// MQTTMirror best-effort-mirrors telemetry state broadcasts onto an MQTT
// topic, generalizing the teacher's per-vehicle MQTT publish path in
// cmd/simulator/main.go's sendTelemetry into a single long-lived client
// shared across every tick's broadcasts (the simulator ticks far more
// often than the old one-shot-per-vehicle telemetry sender, so a
// connect-per-publish client would thrash the broker).
//
// MQTT has no key/value or list primitive, so it can only ever mirror the
// channel-publish half of the bus contract — it is never the primary bus.
type MQTTMirror struct {
	client mqtt.Client
}

// NewMQTTMirror connects to brokerURL and returns a ready mirror. Connect
// failures are logged and the mirror becomes a no-op rather than aborting
// startup, since telemetry is explicitly best-effort per spec.md §4.2.
func NewMQTTMirror(brokerURL, username, password, clientID string) *MQTTMirror {
	opts := mqtt.NewClientOptions().AddBroker(brokerURL)
	if username != "" {
		opts.SetUsername(username)
	}
	if password != "" {
		opts.SetPassword(password)
	}
	opts.SetClientID(clientID)
	opts.SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.WithError(token.Error()).Warn("telemetry: MQTT mirror connect failed, mirroring disabled")
		return &MQTTMirror{client: nil}
	}

	return &MQTTMirror{client: client}
}

// Publish mirrors payload onto topic, logging (not propagating) failures.
func (m *MQTTMirror) Publish(topic string, payload []byte) {
	if m == nil || m.client == nil {
		return
	}
	token := m.client.Publish(topic, 0, false, payload)
	if token.Wait() && token.Error() != nil {
		log.WithError(token.Error()).Warn("telemetry: MQTT mirror publish failed")
	}
}

// Close disconnects the underlying MQTT client, if connected.
func (m *MQTTMirror) Close() error {
	if m == nil || m.client == nil {
		return nil
	}
	m.client.Disconnect(250)
	return nil
}
