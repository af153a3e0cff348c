package worker

// receipt_worker.go
// Renders the thermal receipt PDF for a committed bill or exchange and
// publishes it through the configured ReceiptStore. Rendering happens off the
// request path; a failure never affects the stored document.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BAHUBALISID/smj/internal/infra"
	"github.com/BAHUBALISID/smj/internal/repository"
	"github.com/BAHUBALISID/smj/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptWorkerConfig tunes upload retries.
type ReceiptWorkerConfig struct {
	Attempts int           // upload attempts (default: 3)
	Backoff  time.Duration // first retry delay (default: 1s)
}

// ReceiptWorker processes JobReceipt payloads.
type ReceiptWorker struct {
	bills     repository.BillRepository
	exchanges repository.ExchangeRepository
	store     infra.ReceiptStore
	opts      infra.ReceiptOptions
	attempts  int
	backoff   time.Duration
}

func NewReceiptWorker(
	bills repository.BillRepository,
	exchanges repository.ExchangeRepository,
	store infra.ReceiptStore,
	opts infra.ReceiptOptions,
	cfg ReceiptWorkerConfig,
) *ReceiptWorker {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	if store == nil {
		store = infra.LocalStore{}
	}
	return &ReceiptWorker{
		bills:     bills,
		exchanges: exchanges,
		store:     store,
		opts:      opts,
		attempts:  cfg.Attempts,
		backoff:   cfg.Backoff,
	}
}

// Process handles a single receipt job:
//  1. Parse ReceiptPayload
//  2. Load the bill or exchange with its items
//  3. Render the PDF into PDFStoragePath
//  4. Publish through the store with exponential backoff
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("receipt_worker: invalid payload: %w", err)
	}
	id, err := uuid.Parse(payload.ID)
	if err != nil {
		return fmt.Errorf("receipt_worker: invalid id %q: %w", payload.ID, err)
	}

	var (
		number string
		path   string
	)
	switch payload.Kind {
	case service.ReceiptBill:
		b, err := w.bills.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("receipt_worker: load bill %s: %w", id, err)
		}
		number = b.BillNumber
		path, err = infra.GenerateBillReceiptPDF(b, w.opts)
		if err != nil {
			return fmt.Errorf("receipt_worker: render %s: %w", number, err)
		}
	case service.ReceiptExchange:
		e, err := w.exchanges.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("receipt_worker: load exchange %s: %w", id, err)
		}
		number = e.ExchangeNumber
		path, err = infra.GenerateExchangeReceiptPDF(e, w.opts)
		if err != nil {
			return fmt.Errorf("receipt_worker: render %s: %w", number, err)
		}
	default:
		return fmt.Errorf("receipt_worker: unknown kind %q", payload.Kind)
	}

	var location string
	err = withRetry(ctx, w.attempts, w.backoff, func(attempt int) error {
		loc, err := w.store.Put(ctx, payload.Kind, path)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("number", number).
				Msg("receipt_worker: publish attempt failed, retrying")
			return err
		}
		location = loc
		return nil
	})
	if err != nil {
		return fmt.Errorf("receipt_worker: publish %s: %w", number, err)
	}

	log.Info().Str("kind", payload.Kind).Str("number", number).Str("location", location).Msg("receipt_worker: receipt ready")
	return nil
}
