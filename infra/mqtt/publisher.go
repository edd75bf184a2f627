// Package mqtt publishes benchmark outcomes to an MQTT broker so downstream
// consumers (dashboards, archivers) can pick them up without polling.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/gridstor/battbench/core/model"
	"github.com/gridstor/battbench/infra/logger"
)

// Config defines the connection parameters for the result publisher.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	// TopicPrefix is prepended to the market name, defaults to
	// "battbench/results".
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
	Retain      bool   `json:"retain"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TopicPrefix == "" {
		c.TopicPrefix = "battbench/results"
	}
	if c.ClientID == "" {
		c.ClientID = "battbench"
	}
}

// resultMessage is the wire payload, one message per run.
type resultMessage struct {
	Market   string                 `json:"market"`
	Result   *model.BenchmarkResult `json:"result"`
	Schedule *model.Schedule        `json:"schedule"`
	Time     time.Time              `json:"time"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Publisher sends benchmark results to the configured broker.
type Publisher struct {
	cli    pahoClient
	cfg    Config
	logger logger.Logger
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPublisher connects to the MQTT broker.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetConnectTimeout(5 * time.Second)
	cli := newMQTTClient(opts)
	tok := cli.Connect()
	if !tok.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout to %s", cfg.Broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return &Publisher{cli: cli, cfg: cfg, logger: logger.New("mqtt-publisher")}, nil
}

// PublishResult sends the result and schedule of one run on the market topic.
func (p *Publisher) PublishResult(market string, sched *model.Schedule, res *model.BenchmarkResult) error {
	payload, err := json.Marshal(resultMessage{
		Market:   market,
		Result:   res,
		Schedule: sched,
		Time:     time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	topic := p.cfg.TopicPrefix + "/" + market
	tok := p.cli.Publish(topic, p.cfg.QoS, p.cfg.Retain, payload)
	if !tok.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("publish timeout on %s", topic)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	p.logger.Debugf("published %s result, run %s", market, res.RunID)
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
