package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront/internal/entity"
	"storefront/internal/notify"
	"testing"
	"time"
)

type fakeReader struct {
	msgs   []kafka.Message
	closed bool
	cancel context.CancelFunc
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

type fakeContacts struct {
	err error
}

func (f *fakeContacts) GetContact(_ context.Context, customerID int) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "bob@example.com", "Bob", nil
}

type sentMail struct {
	to, name string
	orderID  int
}

type fakeMailer struct {
	sent []sentMail
}

func (m *fakeMailer) SendOrderConfirmation(to, name string, order *entity.Order) error {
	m.sent = append(m.sent, sentMail{to: to, name: name, orderID: order.ID})
	return nil
}

func orderMessage(t *testing.T, event string, order *entity.Order) kafka.Message {
	value, err := json.Marshal(order)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(notify.OrderKey(event, order.ID)), Value: value}
}

func TestStartSendsConfirmationForCreatedOrders(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reader := &fakeReader{cancel: cancel}
	reader.msgs = []kafka.Message{
		orderMessage(t, notify.EventCreated, &entity.Order{ID: 1, CustomerID: 3}),
		{Key: []byte("garbage"), Value: []byte("{}")},
		orderMessage(t, "cancelled", &entity.Order{ID: 2, CustomerID: 3}),
		orderMessage(t, notify.EventCreated, &entity.Order{ID: 4, CustomerID: 3}),
	}
	mailer := &fakeMailer{}

	NewConsumer(reader, &fakeContacts{}, mailer).Start(ctx)

	assert.True(t, reader.closed)
	require.Len(t, mailer.sent, 2)
	assert.Equal(t, sentMail{to: "bob@example.com", name: "Bob", orderID: 1}, mailer.sent[0])
	assert.Equal(t, 4, mailer.sent[1].orderID)
}

func TestProcessMessageSkipsUnknownContact(t *testing.T) {
	mailer := &fakeMailer{}
	c := NewConsumer(nil, &fakeContacts{err: errors.New("customer not found")}, mailer)

	c.processMessage(context.Background(), orderMessage(t, notify.EventCreated, &entity.Order{ID: 9, CustomerID: 99}))

	assert.Empty(t, mailer.sent)
}

func TestProcessMessageBadPayload(t *testing.T) {
	mailer := &fakeMailer{}
	c := NewConsumer(nil, &fakeContacts{}, mailer)

	c.processMessage(context.Background(), kafka.Message{Key: []byte("order.created.5"), Value: []byte("not json")})

	assert.Empty(t, mailer.sent)
}

type failingReader struct {
	reads  int
	closed bool
}

func (r *failingReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.reads++
	return kafka.Message{}, errors.New("broker unavailable")
}

func (r *failingReader) Close() error {
	r.closed = true
	return nil
}

func TestStartBacksOffOnReadErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	reader := &failingReader{}
	c := NewConsumer(reader, &fakeContacts{}, &fakeMailer{})
	c.backoff = 40 * time.Millisecond

	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}

	assert.LessOrEqual(t, reader.reads, 4)
	assert.GreaterOrEqual(t, reader.reads, 1)
	assert.True(t, reader.closed)
}
