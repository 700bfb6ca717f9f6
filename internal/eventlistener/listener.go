// internal/eventlistener/listener.go
package eventlistener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/pumpfun-sdk/internal/blockchain/solbc"
	"github.com/rovshanmuradov/pumpfun-sdk/internal/events"
	"github.com/rovshanmuradov/pumpfun-sdk/pkg/pumpfun"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 2 * time.Second
	maxAttempts    = 5
)

// Publisher accepts decoded program events.
type Publisher interface {
	Publish(event events.Event) error
}

// subscription is the part of ws.LogSubscription the listener reads from.
type subscription interface {
	Recv(ctx context.Context) (*ws.LogResult, error)
	Unsubscribe()
}

// dialFunc opens a log subscription and returns a closer for the underlying connection.
type dialFunc func(ctx context.Context) (subscription, func(), error)

// Listener streams program logs over a websocket subscription, decodes
// Pump.fun events and publishes them in arrival order.
type Listener struct {
	programID  solana.PublicKey
	commitment rpc.CommitmentType
	decoder    *pumpfun.EventDecoder
	publisher  Publisher
	logger     *zap.Logger
	dial       dialFunc
	now        func() time.Time
}

// NewListener creates a listener for logs mentioning programID.
func NewListener(wsURL string, programID solana.PublicKey, commitment rpc.CommitmentType, publisher Publisher, logger *zap.Logger) *Listener {
	l := newListener(nil, programID, commitment, publisher, logger)
	l.dial = func(ctx context.Context) (subscription, func(), error) {
		client, err := ws.Connect(ctx, wsURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to %s: %w", wsURL, err)
		}
		sub, err := client.LogsSubscribeMentions(programID, commitment)
		if err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to subscribe to logs: %w", err)
		}
		return sub, client.Close, nil
	}
	return l
}

func newListener(dial dialFunc, programID solana.PublicKey, commitment rpc.CommitmentType, publisher Publisher, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{
		programID:  programID,
		commitment: commitment,
		decoder:    pumpfun.NewEventDecoder(logger),
		publisher:  publisher,
		logger:     logger.Named("event_listener"),
		dial:       dial,
		now:        time.Now,
	}
}

// Run subscribes and processes notifications until ctx is cancelled.
// A dropped subscription is re-established after an exponential backoff that
// resets once a subscription has delivered a notification. Run gives up once
// maxAttempts consecutive connection attempts fail.
func (l *Listener) Run(ctx context.Context) error {
	redial := newBackOff()
	for {
		sub, closeConn, err := l.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		l.logger.Info("Subscribed to program logs",
			zap.String("program", l.programID.String()),
			zap.String("commitment", string(l.commitment)))

		received, err := l.receive(ctx, sub)
		sub.Unsubscribe()
		if closeConn != nil {
			closeConn()
		}

		if ctx.Err() != nil {
			return nil
		}
		if received > 0 {
			redial.Reset()
		}
		wait := redial.NextBackOff()
		l.logger.Warn("Log subscription dropped, reconnecting",
			zap.Int("notifications", received),
			zap.Duration("backoff", wait),
			zap.Error(err))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func newBackOff() *backoff.ExponentialBackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = initialBackoff
	policy.MaxInterval = maxBackoff
	policy.Reset()
	return policy
}

func (l *Listener) connect(ctx context.Context) (subscription, func(), error) {
	type conn struct {
		sub   subscription
		close func()
	}

	c, err := backoff.Retry(ctx, func() (conn, error) {
		sub, closeConn, err := l.dial(ctx)
		if err != nil {
			return conn{}, err
		}
		return conn{sub: sub, close: closeConn}, nil
	},
		backoff.WithBackOff(newBackOff()),
		backoff.WithMaxTries(maxAttempts),
		backoff.WithNotify(func(err error, d time.Duration) {
			l.logger.Warn("Subscription attempt failed",
				zap.Duration("backoff", d),
				zap.Error(err))
		}))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to subscribe after %d attempts: %w", maxAttempts, err)
	}
	return c.sub, c.close, nil
}

// receive reads notifications until the subscription fails and reports how many arrived.
func (l *Listener) receive(ctx context.Context, sub subscription) (int, error) {
	received := 0
	for {
		result, err := sub.Recv(ctx)
		if err != nil {
			return received, err
		}
		if result == nil {
			return received, errors.New("subscription closed")
		}
		received++
		l.HandleLogs(result)
	}
}

// HandleLogs decodes one log notification and publishes its events in log
// order. Failed transactions are skipped. Returns the number of events published.
func (l *Listener) HandleLogs(result *ws.LogResult) int {
	if result.Value.Err != nil {
		fields := []zap.Field{zap.String("signature", result.Value.Signature.String())}
		if anchorErr, ok := solbc.ParseAnchorError(result.Value.Logs); ok {
			fields = append(fields, zap.Stringer("anchor_error", anchorErr))
		}
		l.logger.Debug("Skipping failed transaction", fields...)
		return 0
	}

	decoded := l.decoder.DecodeLogs(result.Value.Logs)
	received := l.now()

	published := 0
	for _, event := range decoded {
		pe := events.NewProgramEvent(result.Context.Slot, result.Value.Signature, event, received)
		if err := l.publisher.Publish(pe); err != nil {
			l.logger.Warn("Failed to publish event",
				zap.String("event_type", string(pe.Type())),
				zap.String("signature", result.Value.Signature.String()),
				zap.Error(err))
			continue
		}
		published++
	}
	return published
}
