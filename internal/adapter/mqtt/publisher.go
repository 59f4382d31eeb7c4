package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"orion-collector/internal/config"
	"orion-collector/internal/domain"
)

// publishTimeout bounds how long one record may wait for broker acknowledgement.
const publishTimeout = 5 * time.Second

// Publisher delivers loop records to an MQTT broker, one topic per
// measurement group under the configured root topic.
// It implements pipeline.Publisher.
type Publisher struct {
	client mqtt.Client
	root   string
	logger *slog.Logger
}

// NewPublisher creates the MQTT client and waits for the initial broker
// connection. After that the paho client reconnects on its own.
func NewPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTBrokerURL)
	opts.SetClientID(cfg.MQTTClientID)
	if cfg.MQTTUsername != "" {
		opts.SetUsername(cfg.MQTTUsername)
		opts.SetPassword(cfg.MQTTPassword)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("mqtt connected", "broker", cfg.MQTTBrokerURL)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	p := &Publisher{
		client: mqtt.NewClient(opts),
		root:   cfg.MQTTTopic,
		logger: logger,
	}

	token := p.client.Connect()
	for !token.WaitTimeout(200 * time.Millisecond) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return p, nil
}

// Publish sends one record to its group topic at QoS 1.
func (p *Publisher) Publish(ctx context.Context, rec domain.OutputRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal loop record: %w", err)
	}

	topic := recordTopic(p.root, rec.Class)
	token := p.client.Publish(topic, 1, false, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish record: %w", err)
	}

	p.logger.Debug("published record", "topic", topic)
	return nil
}

// Close disconnects from the broker, letting in-flight publishes quiesce.
func (p *Publisher) Close() error {
	p.client.Disconnect(250)
	return nil
}

// recordTopic builds the per-group topic, e.g. orion/loop/wind.
func recordTopic(root string, class domain.GroupClass) string {
	return fmt.Sprintf("%s/%s", root, class)
}
