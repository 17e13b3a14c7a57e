package mailer

import (
	"fmt"
	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
	"storefront/internal/entity"
	"strings"
)

// Sender delivers a prepared message.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends customer emails. Without SMTP credentials it only logs.
type Mailer struct {
	sender Sender
	from   string
}

// New creates a Mailer. An empty user or password disables delivery.
func New(host string, port int, user, pass, from string) *Mailer {
	if user == "" || pass == "" {
		log.Warn().Msg("SMTP credentials not set, emails will only be logged")
		return &Mailer{from: from}
	}
	return &Mailer{sender: gomail.NewDialer(host, port, user, pass), from: from}
}

// NewWithSender is used when the transport is provided by the caller.
func NewWithSender(sender Sender, from string) *Mailer {
	return &Mailer{sender: sender, from: from}
}

// SendOrderConfirmation emails the order summary to the customer.
func (m *Mailer) SendOrderConfirmation(to, name string, order *entity.Order) error {
	if m.sender == nil {
		log.Info().Msgf("Email delivery disabled, order %d confirmation for %s", order.ID, to)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Order #%d confirmation", order.ID))
	msg.SetBody("text/html", confirmationBody(name, order))

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send order %d confirmation: %w", order.ID, err)
	}

	log.Info().Msgf("Order %d confirmation sent to %s", order.ID, to)
	return nil
}

func confirmationBody(name string, order *entity.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Thank you for your order, %s!</h2>", name)
	fmt.Fprintf(&b, "<p>Order #%d was placed on %s.</p><ul>", order.ID, order.PlacedAt.Format("2006-01-02 15:04"))
	for _, item := range order.Items {
		fmt.Fprintf(&b, "<li>Product %d &times; %d @ %s</li>", item.ProductID, item.Quantity, item.UnitPrice.StringFixed(2))
	}
	b.WriteString("</ul>")
	return b.String()
}
