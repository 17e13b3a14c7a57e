package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/segmentio/kafka-go"
	"storefront/internal/entity"
	"strconv"
	"strings"
)

const EventCreated = "created"

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// OrderCreated publishes the order as JSON keyed by order.created.<id>.
func (p *KafkaPublisher) OrderCreated(ctx context.Context, order *entity.Order) error {
	orderJSON, err := json.Marshal(order)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(OrderKey(EventCreated, order.ID)),
		Value: orderJSON,
	}
	return p.writer.WriteMessages(ctx, msg)
}

// OrderKey builds a message key such as order.created.42.
func OrderKey(event string, orderID int) string {
	return fmt.Sprintf("order.%s.%d", event, orderID)
}

// ParseOrderKey splits a key built by OrderKey.
func ParseOrderKey(key string) (event string, orderID int, err error) {
	parts := strings.Split(key, ".")
	if len(parts) != 3 || parts[0] != "order" {
		return "", 0, fmt.Errorf("malformed order key %q", key)
	}
	orderID, err = strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, fmt.Errorf("malformed order key %q: %w", key, err)
	}
	return parts[1], orderID, nil
}
