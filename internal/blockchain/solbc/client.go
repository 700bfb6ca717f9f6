// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/pumpfun-sdk/pkg/pumpfun"
)

// Определение ошибок
var (
	ErrAccountNotFound = errors.New("account not found")
)

// accountRPC – подмножество rpc.Client, которое нужно адаптеру.
type accountRPC interface {
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
}

// Client – тонкий адаптер для чтения аккаунтов Solana через solana-go.
type Client struct {
	rpc           accountRPC
	commitment    rpc.CommitmentType
	retries       uint
	retryInterval time.Duration
	logger        *zap.Logger
}

// Option настраивает Client.
type Option func(*Client)

// WithCommitment задаёт уровень подтверждения для чтения аккаунтов.
func WithCommitment(commitment rpc.CommitmentType) Option {
	return func(c *Client) { c.commitment = commitment }
}

// WithRetries задаёт число повторов транзиентных ошибок и начальный интервал между ними.
func WithRetries(retries uint, interval time.Duration) Option {
	return func(c *Client) {
		c.retries = retries
		if interval > 0 {
			c.retryInterval = interval
		}
	}
}

// NewClient создаёт новый клиент, принимая RPC URL и логгер через dependency injection.
func NewClient(rpcURL string, logger *zap.Logger, opts ...Option) *Client {
	return newClient(rpc.New(rpcURL), logger, opts...)
}

func newClient(r accountRPC, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		rpc:           r,
		commitment:    rpc.CommitmentConfirmed,
		retries:       3,
		retryInterval: 200 * time.Millisecond,
		logger:        logger.Named("solbc-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetAccountData возвращает сырые данные аккаунта. Отсутствующий аккаунт даёт
// ErrAccountNotFound без повторов, остальные ошибки повторяются с экспоненциальной задержкой.
func (c *Client) GetAccountData(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval
	policy.MaxInterval = c.retryInterval * 10

	notify := func(err error, d time.Duration) {
		c.logger.Debug("Retrying account fetch",
			zap.String("address", address.String()),
			zap.Duration("backoff", d),
			zap.Error(err))
	}

	operation := func() ([]byte, error) {
		result, err := c.rpc.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
			Commitment: c.commitment,
			Encoding:   solana.EncodingBase64,
		})
		if err != nil {
			if errors.Is(err, rpc.ErrNotFound) {
				return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrAccountNotFound, address))
			}
			if !IsRetryable(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		if result == nil || result.Value == nil {
			return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrAccountNotFound, address))
		}
		return result.Value.Data.GetBinary(), nil
	}

	data, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.retries+1),
		backoff.WithNotify(notify))
	if err != nil {
		if !errors.Is(err, ErrAccountNotFound) {
			c.logger.Debug("GetAccountData error",
				zap.String("address", address.String()),
				zap.Error(err))
		}
		return nil, err
	}
	return data, nil
}

// AccountExists проверяет существование аккаунта.
func (c *Client) AccountExists(ctx context.Context, address solana.PublicKey) (bool, error) {
	_, err := c.GetAccountData(ctx, address)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrAccountNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check account existence: %w", err)
}

// Гарантируем, что Client реализует интерфейсы коллабораторов pumpfun.
var (
	_ pumpfun.AccountFetcher = (*Client)(nil)
	_ pumpfun.AccountChecker = (*Client)(nil)
)
