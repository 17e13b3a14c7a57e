package notify

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"storefront/internal/entity"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatchReachesEveryListener(t *testing.T) {
	d := NewDispatcher(2, time.Second)

	var mu sync.Mutex
	var seen []string
	record := func(name string) Listener {
		return func(_ context.Context, order *entity.Order) error {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, name)
			return nil
		}
	}
	d.Register("a", record("a"))
	d.Register("b", record("b"))
	d.Register("c", record("c"))

	d.Dispatch(context.Background(), &entity.Order{ID: 1})

	assert.ElementsMatch(t, []string{"a", "b", "c"}, seen)
}

func TestDispatchIsolatesFailures(t *testing.T) {
	d := NewDispatcher(0, 0)

	var calls atomic.Int32
	d.Register("failing", func(context.Context, *entity.Order) error {
		return errors.New("broker down")
	})
	d.Register("panicking", func(context.Context, *entity.Order) error {
		panic("boom")
	})
	d.Register("healthy", func(context.Context, *entity.Order) error {
		calls.Add(1)
		return nil
	})

	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), &entity.Order{ID: 2})
	})
	assert.Equal(t, int32(1), calls.Load())
}

func TestDispatchWithoutListeners(t *testing.T) {
	assert.NotPanics(t, func() {
		NewDispatcher(1, time.Second).Dispatch(context.Background(), &entity.Order{ID: 3})
	})
}

func TestDeliverRecoversPanic(t *testing.T) {
	err := deliver(context.Background(), func(context.Context, *entity.Order) error {
		panic("bad listener")
	}, &entity.Order{})
	assert.ErrorContains(t, err, "listener panic: bad listener")
}

func TestDispatchOutlivesCallerCancellation(t *testing.T) {
	d := NewDispatcher(1, time.Second)

	var listenerErr error
	var hasDeadline bool
	d.Register("kafka", func(ctx context.Context, order *entity.Order) error {
		listenerErr = ctx.Err()
		_, hasDeadline = ctx.Deadline()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Dispatch(ctx, &entity.Order{ID: 4})

	assert.NoError(t, listenerErr)
	assert.True(t, hasDeadline)
}

func TestDispatchStopsSlowListenerAtTimeout(t *testing.T) {
	d := NewDispatcher(1, 20*time.Millisecond)

	var listenerErr error
	d.Register("slow", func(ctx context.Context, order *entity.Order) error {
		<-ctx.Done()
		listenerErr = ctx.Err()
		return listenerErr
	})

	start := time.Now()
	d.Dispatch(context.Background(), &entity.Order{ID: 5})

	assert.ErrorIs(t, listenerErr, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
