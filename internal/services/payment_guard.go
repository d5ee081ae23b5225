package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/pkg/logger"
	"github.com/nimasrn/water-billing/pkg/redis"
)

type PaymentGuardConfig struct {
	// LockTTL bounds how long a crashed request can block a customer.
	LockTTL time.Duration

	ReceiptTTL time.Duration

	LockKeyPrefix string

	ReceiptKeyPrefix string
}

func DefaultPaymentGuardConfig() PaymentGuardConfig {
	return PaymentGuardConfig{
		LockTTL:          30 * time.Second,
		ReceiptTTL:       24 * time.Hour,
		LockKeyPrefix:    "payment:lock:",
		ReceiptKeyPrefix: "payment:receipt:",
	}
}

// PaymentGuard serializes cashier payments per customer and remembers
// receipts by idempotency key.
type PaymentGuard struct {
	redis  redis.RedisAdapter
	config PaymentGuardConfig
}

func NewPaymentGuard(redisAdapter redis.RedisAdapter, config PaymentGuardConfig) *PaymentGuard {
	return &PaymentGuard{
		redis:  redisAdapter,
		config: config,
	}
}

type PaymentLock struct {
	SubscriberNumber string
	token            []byte
	held             bool
	guard            *PaymentGuard
}

// Acquire takes the payment lock of a customer. A lock held by another
// request yields model.ErrPaymentInProgress.
func (g *PaymentGuard) Acquire(ctx context.Context, subscriberNumber string) (*PaymentLock, error) {
	key := g.config.LockKeyPrefix + subscriberNumber
	token := []byte(uuid.NewString())

	acquired, err := g.redis.SetNX(ctx, key, token, g.config.LockTTL)
	if err != nil {
		logger.Error("failed to acquire payment lock", "subscriber_number", subscriberNumber, "error", err)
		return nil, fmt.Errorf("acquire payment lock: %w", err)
	}
	if !acquired {
		logger.Info("payment lock held by another request", "subscriber_number", subscriberNumber)
		return nil, model.ErrPaymentInProgress
	}

	logger.Debug("payment lock acquired", "subscriber_number", subscriberNumber, "lock_ttl", g.config.LockTTL)
	return &PaymentLock{
		SubscriberNumber: subscriberNumber,
		token:            token,
		held:             true,
		guard:            g,
	}, nil
}

// Release drops the lock unless it already expired and was taken by someone else.
func (l *PaymentLock) Release(ctx context.Context) error {
	if l == nil || !l.held {
		return nil
	}
	l.held = false

	key := l.guard.config.LockKeyPrefix + l.SubscriberNumber
	released, err := l.guard.redis.DelIfEqual(ctx, key, l.token)
	if err != nil {
		logger.Warn("failed to release payment lock", "subscriber_number", l.SubscriberNumber, "error", err)
		return err
	}
	if !released {
		logger.Warn("payment lock expired before release", "subscriber_number", l.SubscriberNumber)
	}
	return nil
}

func (g *PaymentGuard) receiptKey(userID int64, subscriberNumber, key string) string {
	return fmt.Sprintf("%s%d:%s:%s", g.config.ReceiptKeyPrefix, userID, subscriberNumber, key)
}

// Receipt returns the receipt a cashier stored for a customer under an
// idempotency key, or nil. The same key used by another cashier or for
// another customer never matches.
func (g *PaymentGuard) Receipt(ctx context.Context, userID int64, subscriberNumber, key string) (*model.PaymentReceipt, error) {
	if key == "" {
		return nil, nil
	}
	raw, err := g.redis.Get(ctx, g.receiptKey(userID, subscriberNumber, key))
	if err != nil {
		if errors.Is(err, redis.NilError) {
			return nil, nil
		}
		return nil, err
	}

	var receipt model.PaymentReceipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}
	return &receipt, nil
}

func (g *PaymentGuard) StoreReceipt(ctx context.Context, userID int64, subscriberNumber, key string, receipt *model.PaymentReceipt) error {
	if key == "" {
		return nil
	}
	raw, err := json.Marshal(receipt)
	if err != nil {
		return err
	}
	return g.redis.Set(ctx, g.receiptKey(userID, subscriberNumber, key), raw, g.config.ReceiptTTL)
}
