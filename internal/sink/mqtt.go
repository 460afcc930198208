package sink

import (
	"encoding/json"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/casnav14-vsnt/nmea-navsat-driver/internal/report"
)

// MQTT publishes every report as retained JSON on "<prefix>/<topic>".
type MQTT struct {
	client mqtt.Client
	prefix string
}

// NewMQTT connects to the broker and returns a publishing sink.
func NewMQTT(broker, clientID, prefix string) (*MQTT, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &MQTT{client: client, prefix: prefix}, nil
}

func (m *MQTT) Emit(r report.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	token := m.client.Publish(m.prefix+"/"+r.Topic(), 0, true, payload)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker, allowing 250ms for in-flight
// publishes to finish.
func (m *MQTT) Close() {
	m.client.Disconnect(250)
}
