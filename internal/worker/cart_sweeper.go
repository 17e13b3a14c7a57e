package worker

import (
	"context"
	"github.com/rs/zerolog/log"
	"time"
)

// AbandonedCartDeleter removes carts created more than ttl ago and reports
// how many were deleted.
type AbandonedCartDeleter interface {
	DeleteAbandoned(ctx context.Context, ttl time.Duration) (int64, error)
}

// CartSweeper periodically deletes carts nobody checked out.
type CartSweeper struct {
	carts    AbandonedCartDeleter
	ttl      time.Duration
	interval time.Duration
}

func NewCartSweeper(carts AbandonedCartDeleter, ttl, interval time.Duration) *CartSweeper {
	return &CartSweeper{
		carts:    carts,
		ttl:      ttl,
		interval: interval,
	}
}

// Run sweeps every interval until ctx is cancelled. A zero ttl or interval
// disables the sweeper.
func (cs *CartSweeper) Run(ctx context.Context) {
	if cs.ttl <= 0 || cs.interval <= 0 {
		log.Info().Msg("Cart sweeper disabled")
		return
	}

	ticker := time.NewTicker(cs.interval)
	defer ticker.Stop()

	log.Info().Msgf("Cart sweeper started, ttl %s, interval %s", cs.ttl, cs.interval)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Cart sweeper stopped")
			return
		case <-ticker.C:
			cs.sweep(ctx)
		}
	}
}

func (cs *CartSweeper) sweep(ctx context.Context) {
	deleted, err := cs.carts.DeleteAbandoned(ctx, cs.ttl)
	if err != nil {
		log.Error().Msgf("Error sweeping abandoned carts: %v", err)
		return
	}
	if deleted > 0 {
		log.Info().Msgf("Deleted %d abandoned carts", deleted)
	}
}
