package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	dominquiry "github.com/medwayhorizons/healthbridge/internal/domain/inquiry"
	"github.com/medwayhorizons/healthbridge/internal/metrics"
)

// Config holds the lead topic settings.
type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
	Logger       *zap.Logger
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes new inquiries to a Kafka topic as JSON lead events.
type Publisher struct {
	writer  messageWriter
	brokers []string
	topic   string
	dial    func(ctx context.Context, network, addr string) (net.Conn, error)
	logger  *zap.Logger
}

// LeadEvent is the message value published for each inquiry.
type LeadEvent struct {
	Type       string    `json:"type"`
	InquiryID  string    `json:"inquiry_id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Country    string    `json:"country"`
	State      string    `json:"state"`
	Condition  string    `json:"condition"`
	Treatments []string  `json:"treatments"`
	Hospitals  []string  `json:"hospitals"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewPublisher creates a lead publisher. Writes are asynchronous: Publish
// only enqueues, and delivery failures surface through the completion
// callback as a warning and lead_publish_errors_total.
func NewPublisher(cfg *Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: topic is required")
	}
	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: timeout,
		Async:        true,
	}
	d := &net.Dialer{Timeout: timeout}
	p := &Publisher{
		writer:  w,
		brokers: cfg.Brokers,
		topic:   cfg.Topic,
		dial:    d.DialContext,
		logger:  log,
	}
	w.Completion = p.completed
	return p, nil
}

// completed runs on the writer's goroutine once a batch is acknowledged or
// given up on.
func (p *Publisher) completed(msgs []kafka.Message, err error) {
	if err == nil {
		for _, m := range msgs {
			p.logger.Debug("lead delivered", zap.String("topic", p.topic), zap.ByteString("inquiry_id", m.Key))
		}
		return
	}
	for _, m := range msgs {
		metrics.LeadPublishErrorsTotal.Inc()
		p.logger.Warn("lead delivery failed",
			zap.String("topic", p.topic),
			zap.ByteString("inquiry_id", m.Key),
			zap.Error(err))
	}
}

// Publish implements the inquiry publisher. Messages are keyed by inquiry id.
func (p *Publisher) Publish(ctx context.Context, inq dominquiry.Inquiry) error {
	value, err := json.Marshal(LeadEvent{
		Type:       "inquiry.submitted",
		InquiryID:  inq.ID,
		FullName:   inq.FullName,
		Email:      inq.Email,
		Phone:      inq.Phone,
		Country:    inq.Country,
		State:      inq.State,
		Condition:  inq.Condition,
		Treatments: inq.Treatments,
		Hospitals:  inq.Hospitals,
		CreatedAt:  inq.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal lead: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(inq.ID),
		Value: value,
		Time:  inq.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("inquiry.submitted")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish lead to %s: %w", p.topic, err)
	}
	p.logger.Debug("lead enqueued", zap.String("topic", p.topic), zap.String("inquiry_id", inq.ID))
	return nil
}

// HealthCheck dials the brokers until one answers.
func (p *Publisher) HealthCheck(ctx context.Context) error {
	var errs []error
	for _, b := range p.brokers {
		conn, err := p.dial(ctx, "tcp", b)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		errs = append(errs, err)
	}
	return fmt.Errorf("kafka brokers unreachable: %w", errors.Join(errs...))
}

// Close flushes pending leads and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
