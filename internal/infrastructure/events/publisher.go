// Package events publishes state snapshots to NATS so other processes can
// follow the device without polling.
package events

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PhoneOS/internal/domain/system"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/monitoring"
)

// Conn is the part of *nats.Conn the publisher uses
type Conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// Message is the published payload
type Message struct {
	Type  string        `json:"type"`
	Seq   uint64        `json:"seq"`
	State *system.State `json:"state"`
}

// Publisher sends every state it is given to one subject
type Publisher struct {
	conn    Conn
	subject string
	log     *logging.Logger
	metrics *monitoring.Metrics
	seq     uint64
}

// Connect dials NATS and returns a publisher for subject
func Connect(url, subject string, logger *logging.Logger, metrics *monitoring.Metrics) (*Publisher, error) {
	log := logging.Or(logger).Component("events")

	conn, err := nats.Connect(url,
		nats.Name("phoneos"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info("NATS publisher initialized", zap.String("url", url), zap.String("subject", subject))
	return NewPublisher(conn, subject, logger, metrics), nil
}

// NewPublisher wraps an existing connection
func NewPublisher(conn Conn, subject string, logger *logging.Logger, metrics *monitoring.Metrics) *Publisher {
	return &Publisher{
		conn:    conn,
		subject: subject,
		log:     logging.Or(logger).Component("events"),
		metrics: metrics,
	}
}

// Publish sends s. It is a store listener: the client buffers, so it does
// not wait on the network, and failures are only logged.
func (p *Publisher) Publish(s *system.State) {
	p.seq++
	data, err := sonic.ConfigStd.Marshal(Message{Type: "state", Seq: p.seq, State: s})
	if err != nil {
		p.metrics.RecordPublish("error")
		p.log.Warn("Failed to marshal state event", zap.Error(err))
		return
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		p.metrics.RecordPublish("error")
		p.log.Warn("Failed to publish state event", zap.String("subject", p.subject), zap.Error(err))
		return
	}
	p.metrics.RecordPublish("ok")
}

// Close flushes buffered messages and closes the connection
func (p *Publisher) Close() error {
	return p.conn.Drain()
}
