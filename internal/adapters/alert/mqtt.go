package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/PabloGalante/lifeline-agent/internal/domain"
	"github.com/PabloGalante/lifeline-agent/internal/observability"
)

// Publisher is the slice of an MQTT client the dispatcher needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

type MQTTOptions struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Timeout  time.Duration
}

// Client wraps a connected paho client.
type Client struct {
	client  mqtt.Client
	timeout time.Duration
}

// Dial connects to the broker. Publishing uses QoS 1 so a broker ack is
// required before Dispatch reports success.
func Dial(opts MQTTOptions) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	o := mqtt.NewClientOptions()
	o.AddBroker(opts.Broker)
	o.SetClientID(opts.ClientID)
	if opts.Username != "" {
		o.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		o.SetPassword(opts.Password)
	}
	o.SetAutoReconnect(true)
	o.SetCleanSession(true)
	o.SetConnectTimeout(opts.Timeout)

	c := mqtt.NewClient(o)
	token := c.Connect()
	if !token.WaitTimeout(opts.Timeout) {
		return nil, fmt.Errorf("connect to mqtt broker %s: timed out", opts.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", opts.Broker, err)
	}
	return &Client{client: c, timeout: opts.Timeout}, nil
}

func (c *Client) Publish(ctx context.Context, topic string, payload []byte) error {
	token := c.client.Publish(topic, 1, false, payload)

	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < timeout {
		timeout = time.Until(dl)
	}
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("publish to %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (c *Client) Close() {
	c.client.Disconnect(250)
}

type alertContact struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

type alertMessage struct {
	Location       domain.Location `json:"location"`
	MapsURL        string          `json:"mapsUrl"`
	MedicalSummary string          `json:"medicalSummary"`
	Contacts       []alertContact  `json:"contacts"`
	SentAt         time.Time       `json:"sentAt"`
}

// MQTTDispatcher publishes each alert as one JSON message on a fixed topic.
// A notification bridge subscribed to the topic fans it out to the contacts.
type MQTTDispatcher struct {
	pub   Publisher
	topic string
	now   func() time.Time
}

func NewMQTTDispatcher(pub Publisher, topic string) *MQTTDispatcher {
	return &MQTTDispatcher{pub: pub, topic: topic, now: time.Now}
}

func (d *MQTTDispatcher) Dispatch(ctx context.Context, a domain.Alert) error {
	log := observability.LoggerFromContext(ctx).With("topic", d.topic)

	msg := alertMessage{
		Location:       a.Location,
		MapsURL:        MapsURL(a.Location),
		MedicalSummary: a.MedicalSummary,
		Contacts:       make([]alertContact, 0, len(a.Contacts)),
		SentAt:         d.now().UTC(),
	}
	for _, c := range a.Contacts {
		msg.Contacts = append(msg.Contacts, alertContact{Name: c.Name, PhoneNumber: c.PhoneNumber})
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	start := time.Now()
	if err := d.pub.Publish(ctx, d.topic, payload); err != nil {
		log.Error("alert publish failed", "error", err)
		return err
	}
	log.Info("alert published", "contacts", len(msg.Contacts), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}
