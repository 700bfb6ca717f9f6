package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/pumpfun-sdk/pkg/pumpfun"
)

func tradeEvent(seq uint64) *ProgramEvent {
	return NewProgramEvent(seq, solana.Signature{}, &pumpfun.TradeEvent{SolAmount: seq}, time.Now())
}

func TestTypeFor(t *testing.T) {
	assert.Equal(t, TokenCreated, TypeFor(pumpfun.EventCreate))
	assert.Equal(t, TokenTraded, TypeFor(pumpfun.EventTrade))
	assert.Equal(t, CurveCompleted, TypeFor(pumpfun.EventComplete))
	assert.Equal(t, ParamsChanged, TypeFor(pumpfun.EventSetParams))
	assert.Equal(t, UnknownProgram, TypeFor("other"))
}

func TestBus_PublishPreservesOrder(t *testing.T) {
	bus := NewBus(zap.NewNop(), 128)

	var (
		mu   sync.Mutex
		seen []uint64
	)
	bus.Subscribe(TokenTraded, ProgramHandler(func(_ context.Context, e *ProgramEvent) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e.Slot)
		return nil
	}))

	for i := uint64(1); i <= 100; i++ {
		require.NoError(t, bus.Publish(tradeEvent(i)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, bus.Shutdown(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 100)
	for i, slot := range seen {
		assert.Equal(t, uint64(i+1), slot)
	}
}

func TestBus_PublishAfterShutdown(t *testing.T) {
	bus := NewBus(zap.NewNop(), 4)
	require.NoError(t, bus.Shutdown(context.Background()))
	assert.ErrorIs(t, bus.Publish(tradeEvent(1)), ErrBusClosed)
}

func TestBus_AcceptedEventsAreDeliveredDuringShutdown(t *testing.T) {
	bus := NewBus(nil, 1024)

	var mu sync.Mutex
	delivered := 0
	bus.SubscribeFunc(TokenTraded, func(context.Context, Event) error {
		mu.Lock()
		delivered++
		mu.Unlock()
		return nil
	})

	var accepted int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for seq := uint64(0); seq < 100; seq++ {
				if err := bus.Publish(tradeEvent(seq)); err == nil {
					atomic.AddInt64(&accepted, 1)
				} else {
					assert.ErrorIs(t, err, ErrBusClosed)
				}
			}
		}()
	}

	time.Sleep(time.Millisecond)
	require.NoError(t, bus.Shutdown(context.Background()))
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int(atomic.LoadInt64(&accepted)), delivered)
}

func TestBus_PublishSyncCollectsErrors(t *testing.T) {
	bus := NewBus(zap.NewNop(), 4)
	defer bus.Shutdown(context.Background())

	boom := errors.New("boom")
	bus.SubscribeFunc(TokenTraded, func(context.Context, Event) error { return boom })
	bus.SubscribeFunc(TokenTraded, func(context.Context, Event) error { return nil })

	err := bus.PublishSync(context.Background(), tradeEvent(1))
	assert.ErrorIs(t, err, boom)
}

func TestBus_SubscribeAllAndUnsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop(), 4)
	defer bus.Shutdown(context.Background())

	var calls int
	sub := bus.SubscribeAll(HandlerFunc(func(context.Context, Event) error {
		calls++
		return nil
	}), TokenCreated, TokenTraded)

	stats := bus.Stats()
	assert.Equal(t, 1, stats.HandlersPerType[TokenCreated])
	assert.Equal(t, 1, stats.HandlersPerType[TokenTraded])
	assert.Equal(t, 4, stats.BufferSize)

	require.NoError(t, bus.PublishSync(context.Background(),
		NewProgramEvent(1, solana.Signature{}, &pumpfun.CreateEvent{Name: "x"}, time.Now())))
	require.NoError(t, bus.PublishSync(context.Background(), tradeEvent(2)))
	assert.Equal(t, 2, calls)

	sub.Unsubscribe()
	assert.Empty(t, bus.Stats().HandlersPerType)

	require.NoError(t, bus.PublishSync(context.Background(), tradeEvent(3)))
	assert.Equal(t, 2, calls)
}

func TestProgramHandler_RejectsForeignEvents(t *testing.T) {
	h := ProgramHandler(func(context.Context, *ProgramEvent) error { return nil })
	err := h.Handle(context.Background(), BaseEvent{EventType: TokenTraded})
	assert.Error(t, err)
}
