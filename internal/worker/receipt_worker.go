package worker

// receipt_worker.go
// Hands finalized receipts to the document renderer. Each job is tried up to
// maxAttempts times with exponential backoff behind a circuit breaker; jobs
// that still fail go to the dead letter queue. The sale itself is already
// committed, so nothing here can undo it.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AriBaderkhan/seraj-store/internal/dto"
	"github.com/AriBaderkhan/seraj-store/internal/infra"
	"github.com/AriBaderkhan/seraj-store/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Renderer produces the printable document for one receipt.
type Renderer interface {
	Render(ctx context.Context, receipt dto.Receipt) error
}

type ReceiptWorker struct {
	renderer    Renderer
	breaker     *infra.CircuitBreaker
	dlq         DeadLetters
	metrics     *metrics.Metrics
	maxAttempts int
	backoff     time.Duration
}

func NewReceiptWorker(renderer Renderer, breaker *infra.CircuitBreaker, dlq DeadLetters, m *metrics.Metrics, maxAttempts int) *ReceiptWorker {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &ReceiptWorker{
		renderer:    renderer,
		breaker:     breaker,
		dlq:         dlq,
		metrics:     m,
		maxAttempts: maxAttempts,
		backoff:     time.Second,
	}
}

// Process renders one receipt job.
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) {
	var receipt dto.Receipt
	if err := json.Unmarshal(raw, &receipt); err != nil || receipt.SaleID == "" {
		reason := "missing sale_id"
		if err != nil {
			reason = "invalid payload: " + err.Error()
		}
		log.Error().Str("reason", reason).Msg("receipt_worker: dropping job")
		w.deadLetter(ctx, raw, reason, 0)
		return
	}

	attempts := 0
	err := withRetry(ctx, w.maxAttempts, w.backoff, func(attempt int) error {
		attempts = attempt + 1
		err := w.breaker.Execute(ctx, func(ctx context.Context) error {
			return w.renderer.Render(ctx, receipt)
		})
		if err != nil {
			log.Warn().Err(err).
				Int("attempt", attempts).
				Str("sale_id", receipt.SaleID).
				Msg("receipt_worker: render attempt failed")
		}
		return err
	})
	if err != nil {
		log.Error().Err(err).Str("sale_id", receipt.SaleID).Msg("receipt_worker: giving up")
		w.metrics.IncReceiptJob("failed")
		w.deadLetter(ctx, raw, fmt.Sprintf("render failed after %d attempts: %v", attempts, err), attempts)
		return
	}

	w.metrics.IncReceiptJob("rendered")
	log.Info().Str("sale_id", receipt.SaleID).Int("attempts", attempts).Msg("receipt_worker: receipt rendered")
}

func (w *ReceiptWorker) deadLetter(ctx context.Context, raw json.RawMessage, reason string, attempts int) {
	if w.dlq == nil {
		return
	}
	// the job context may already be cancelled on shutdown
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	err := w.dlq.Send(ctx, DLQEntry{
		OriginalQueue: QueueReceipt,
		JobType:       JobTypeReceipt,
		Payload:       raw,
		Reason:        reason,
		Attempts:      attempts,
	})
	if err != nil {
		log.Error().Err(err).Msg("receipt_worker: failed to push to DLQ")
		return
	}
	w.metrics.IncReceiptJob("dead_lettered")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = base, 3 = 2*base, ...
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := base * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
