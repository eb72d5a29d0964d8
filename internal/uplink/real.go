package uplink

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// telemetryTopicFmt and commandTopicFmt are the MQTT topics standing in for
// the original Iridium SBD mailbox: one outbound telemetry stream, one
// inbound command stream, both scoped by device serial at construction
// time (see NewRealClient).
const (
	telemetryTopicFmt = "skyguard/cutdown/%d/telemetry"
	commandTopicFmt   = "skyguard/cutdown/%d/command"
)

// RealClient is an MQTT-backed Publisher and Subscriber, grounded on the
// teacher's internal/mqtt.RealPublisher connection setup.
type RealClient struct {
	client    paho.Client
	telemetry string
	command   string
}

// NewRealClient connects to broker and scopes topics to serial.
func NewRealClient(broker string, serial uint32) (*RealClient, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(fmt.Sprintf("skyguard-cutdown-core-%d", serial)).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("uplink: connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("uplink: connect to broker: %w", err)
	}

	return &RealClient{
		client:    client,
		telemetry: fmt.Sprintf(telemetryTopicFmt, serial),
		command:   fmt.Sprintf(commandTopicFmt, serial),
	}, nil
}

// PublishTelemetry sends a telemetry payload at QoS 0 (at-most-once),
// matching the teacher's boiler-event publish QoS.
func (c *RealClient) PublishTelemetry(payload []byte) error {
	token := c.client.Publish(c.telemetry, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("uplink: publish timeout")
	}
	return token.Error()
}

// Subscribe registers handler against the command topic at QoS 1
// (at-least-once) — a dropped remote cut command is unacceptable.
func (c *RealClient) Subscribe(handler CommandHandler) error {
	token := c.client.Subscribe(c.command, 1, func(_ paho.Client, msg paho.Message) {
		handler(string(msg.Payload()))
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("uplink: subscribe timeout")
	}
	return token.Error()
}

// Close disconnects from the broker.
func (c *RealClient) Close() error {
	c.client.Disconnect(1000)
	return nil
}
