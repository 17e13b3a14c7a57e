package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"storefront/internal/entity"
	"storefront/internal/notify"
	"time"
)

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// ContactFinder resolves where a customer's notifications go.
type ContactFinder interface {
	GetContact(ctx context.Context, customerID int) (email, name string, err error)
}

// ConfirmationSender sends the order confirmation email.
type ConfirmationSender interface {
	SendOrderConfirmation(to, name string, order *entity.Order) error
}

type Consumer struct {
	reader   MessageReader
	contacts ContactFinder
	mailer   ConfirmationSender
	backoff  time.Duration
}

func NewConsumer(reader MessageReader, contacts ContactFinder, mailer ConfirmationSender) *Consumer {
	return &Consumer{reader: reader, contacts: contacts, mailer: mailer, backoff: 2 * time.Second}
}

// Start reads order events until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	defer c.reader.Close()

	for {
		// Read message from order topic
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				log.Info().Msg("Order consumer stopped")
				return
			}
			log.Error().Msgf("Error reading message: %v", err)
			// Wait before retrying so a broker outage does not spin the loop.
			select {
			case <-ctx.Done():
				log.Info().Msg("Order consumer stopped")
				return
			case <-time.After(c.backoff):
			}
			continue
		}

		// Process message
		c.processMessage(ctx, msg)
	}
}

// processMessage processes the message received from the Kafka topic
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) {
	event, orderID, err := notify.ParseOrderKey(string(msg.Key))
	if err != nil {
		log.Error().Msgf("Error parsing message key: %v", err)
		return
	}

	switch event {
	case notify.EventCreated:
		var order entity.Order
		if err := json.Unmarshal(msg.Value, &order); err != nil {
			log.Error().Msgf("Error unmarshalling order %d: %v", orderID, err)
			return
		}
		c.confirm(ctx, &order)
	default:
		log.Warn().Msgf("Unknown order event: %s", event)
	}
}

func (c *Consumer) confirm(ctx context.Context, order *entity.Order) {
	email, name, err := c.contacts.GetContact(ctx, order.CustomerID)
	if err != nil {
		log.Error().Msgf("Error getting contact for customer %d: %v", order.CustomerID, err)
		return
	}

	if err := c.mailer.SendOrderConfirmation(email, name, order); err != nil {
		log.Error().Msgf("Error sending confirmation for order %d: %v", order.ID, err)
	}
}
