package notify

import (
	"context"
	"fmt"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"os"
	"storefront/internal/entity"
	"sync"
	"time"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Listener reacts to a committed order.
type Listener func(ctx context.Context, order *entity.Order) error

type registration struct {
	name     string
	listener Listener
}

// Dispatcher fans an "order created" event out to registered listeners.
// A failing or panicking listener is logged and does not affect the others.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners []registration
	limit     int
	timeout   time.Duration
}

// NewDispatcher creates a dispatcher that runs at most limit listeners at once
// and gives each dispatch at most timeout to finish.
func NewDispatcher(limit int, timeout time.Duration) *Dispatcher {
	if limit <= 0 {
		limit = 4
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{limit: limit, timeout: timeout}
}

func (d *Dispatcher) Register(name string, listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, registration{name: name, listener: listener})
}

// Dispatch delivers the order to every listener and waits for all of them.
// The order is already committed, so listeners keep running when the caller's
// context is cancelled; only the dispatcher timeout stops them.
func (d *Dispatcher) Dispatch(ctx context.Context, order *entity.Order) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	d.mu.RLock()
	listeners := make([]registration, len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.RUnlock()

	var g errgroup.Group
	g.SetLimit(d.limit)
	for _, reg := range listeners {
		reg := reg
		g.Go(func() error {
			if err := deliver(ctx, reg.listener, order); err != nil {
				logger.Error().Err(err).Str("listener", reg.name).Msgf("Error notifying order %d", order.ID)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func deliver(ctx context.Context, listener Listener, order *entity.Order) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panic: %v", r)
		}
	}()
	return listener(ctx, order)
}

// LogListener records every created order in the service log.
func LogListener(_ context.Context, order *entity.Order) error {
	logger.Info().
		Int("order_id", order.ID).
		Int("customer_id", order.CustomerID).
		Int("items", len(order.Items)).
		Msg("Order created")
	return nil
}
