package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"stockroom/internal/domain"
	applog "stockroom/internal/log"
	"stockroom/internal/repos"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaAuditSink publishes every audit event as JSON, keyed by shop so one
// shop's events stay ordered within a partition.
type KafkaAuditSink struct {
	w       messageWriter
	timeout time.Duration
}

// NewKafkaAuditSink writes asynchronously. Delivery errors surface in the
// writer's completion callback, not from Notify.
func NewKafkaAuditSink(brokers []string, topic string) *KafkaAuditSink {
	return &KafkaAuditSink{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        true,
			Completion:   deliveryReport,
		},
		timeout: 2 * time.Second,
	}
}

func deliveryReport(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range msgs {
		action := ""
		for _, h := range m.Headers {
			if h.Key == "action" {
				action = string(h.Value)
			}
		}
		applog.L().Warn("audit.kafka.deliver.fail", zap.Error(err),
			zap.String("event_action", action), zap.ByteString("shop", m.Key))
	}
}

func (k *KafkaAuditSink) Notify(ctx context.Context, ev domain.AuditEvent) {
	if ev.CreatedAt == "" {
		ev.CreatedAt = repos.Timestamp(time.Now())
	}
	b, err := json.Marshal(ev)
	if err != nil {
		applog.L().Error("audit.kafka.encode.fail", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), k.timeout)
	defer cancel()
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.ShopID, 10)),
		Value: b,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(ev.Action)},
		},
	}
	if err := k.w.WriteMessages(ctx, msg); err != nil {
		applog.L().Warn("audit.kafka.publish.fail", zap.Error(err), zap.String("event_action", string(ev.Action)))
	}
}

func (k *KafkaAuditSink) Close() error { return k.w.Close() }
