package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/BAHUBALISID/smj/internal/model"
	"github.com/BAHUBALISID/smj/internal/numbering"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Actor identifies who performs an operation.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) idPtr() *uuid.UUID {
	if a.ID == uuid.Nil {
		return nil
	}
	id := a.ID
	return &id
}

// RateCache is a best-effort read-through cache of resolved rates.
type RateCache interface {
	Get(ctx context.Context, metal, purity string) (decimal.Decimal, bool)
	Set(ctx context.Context, metal, purity string, rate decimal.Decimal)
	Invalidate(ctx context.Context)
}

// ReceiptQueue receives post-commit receipt rendering jobs.
type ReceiptQueue interface {
	EnqueueReceipt(ctx context.Context, kind string, id uuid.UUID) error
}

const (
	ReceiptBill     = "bill"
	ReceiptExchange = "exchange"
)

const tokenBytes = 32

// newToken returns 64 hex characters of crypto randomness.
func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// SettlementStatus derives the bill status from its paid and remaining amounts.
func SettlementStatus(paid, remaining decimal.Decimal) string {
	switch {
	case !remaining.IsPositive():
		return model.BillStatusPaid
	case paid.IsPositive():
		return model.BillStatusPartial
	default:
		return model.BillStatusPending
	}
}

// withNumberRetry reruns fn while it fails on a duplicate document number,
// up to attempts times in total. A colliding serial is skipped first so the
// next attempt draws a fresh one.
func withNumberRetry(ctx context.Context, op string, attempts int, numbers *numbering.Numberer, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		err = fn()
		if !errors.Is(err, ErrDuplicateDocumentNumber) {
			return err
		}
		if ctx.Err() != nil {
			return persist(op+": retry aborted", ctx.Err())
		}
		log.Warn().Err(err).Str("op", op).Int("attempt", i).Msg("document number collision")
		var dup *DuplicateNumberError
		if errors.As(err, &dup) && numbers != nil {
			if serr := numbers.Skip(ctx, dup.Kind); serr != nil {
				return persist("skip document number", serr)
			}
		}
	}
	return err
}

func enqueueReceipt(ctx context.Context, q ReceiptQueue, kind string, id uuid.UUID) {
	if q == nil {
		return
	}
	if err := q.EnqueueReceipt(ctx, kind, id); err != nil {
		log.Warn().Err(err).Str("kind", kind).Str("id", id.String()).Msg("receipt job not enqueued")
	}
}
