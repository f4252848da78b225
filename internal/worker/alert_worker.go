// Package worker consumes transaction events, recomputes planner progress and
// exports transactions to the external ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"budgetly/internal/amqp"
	"budgetly/internal/budget"
	"budgetly/internal/core"
	"budgetly/internal/export"
	"budgetly/internal/log"
)

// AlertWorker reacts to transaction change events: it recomputes the owner's
// progress, logs alerts at a level matching their severity, and appends
// created transactions to the export ledger when one is configured.
type AlertWorker struct {
	store    budget.Store
	exporter export.TransactionWriter
	logger   *log.Logger

	mu     sync.Mutex
	owners map[string]struct{}
}

func NewAlertWorker(store budget.Store, exporter export.TransactionWriter, logger *log.Logger) *AlertWorker {
	return &AlertWorker{
		store:    store,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentWorker),
		owners:   make(map[string]struct{}),
	}
}

// HandleTransactionEvent processes a single transaction event from AMQP.
// Returning an error makes the consumer requeue the delivery.
func (w *AlertWorker) HandleTransactionEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	w.logger.InfoContext(ctx, "Processing transaction event",
		log.FieldEventID, msg.EventID,
		log.FieldOwner, msg.Owner,
		log.FieldTransactionID, msg.TransactionID,
		"action", msg.Action)

	w.rememberOwner(msg.Owner)

	if msg.Action == amqp.ActionCreated && w.exporter != nil {
		if err := w.exportTransaction(ctx, msg); err != nil {
			return err
		}
	}

	w.reportProgress(ctx, msg.Owner)
	return nil
}

func (w *AlertWorker) exportTransaction(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	t, err := w.store.GetTransaction(ctx, msg.Owner, msg.TransactionID)
	if err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			// Deleted before we got to it; nothing to export.
			w.logger.WarnContext(ctx, "Transaction gone before export",
				log.FieldOwner, msg.Owner,
				log.FieldTransactionID, msg.TransactionID)
			return nil
		}
		return fmt.Errorf("get transaction: %w", err)
	}

	ref, err := w.exporter.Append(ctx, t)
	if err != nil {
		return fmt.Errorf("append to ledger: %w", err)
	}

	w.logger.InfoContext(ctx, "Transaction exported",
		log.FieldOwner, msg.Owner,
		log.FieldTransactionID, msg.TransactionID,
		log.FieldOperation, log.OpExport,
		"ledger_ref", ref)
	return nil
}

// reportProgress recomputes the owner's report and logs every notification.
func (w *AlertWorker) reportProgress(ctx context.Context, owner string) {
	plan, err := w.store.FindActivePlan(ctx, owner, core.Today())
	if err != nil {
		if errors.Is(err, budget.ErrNoActivePlan) {
			w.logger.DebugContext(ctx, "No active planner, skipping alerts",
				log.FieldOwner, owner)
			return
		}
		w.logger.ErrorContext(ctx, "Failed to load planner",
			log.FieldOwner, owner,
			log.FieldError, err)
		return
	}

	spend, err := w.store.SumExpensesByCategory(ctx, owner, plan.StartDate, plan.EndDate)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to aggregate expenses",
			log.FieldOwner, owner,
			log.FieldError, err)
		return
	}

	report := core.BuildReport(plan, spend)
	for _, notification := range report.Notifications {
		severity := core.Classify(notification)
		args := []any{
			log.FieldOwner, owner,
			log.FieldSeverity, string(severity),
		}
		switch severity {
		case core.SeverityDanger:
			w.logger.ErrorContext(ctx, notification, args...)
		case core.SeverityWarning:
			w.logger.WarnContext(ctx, notification, args...)
		default:
			w.logger.InfoContext(ctx, notification, args...)
		}
	}
}

func (w *AlertWorker) rememberOwner(owner string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.owners[owner] = struct{}{}
}

func (w *AlertWorker) knownOwners() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.owners))
	for owner := range w.owners {
		out = append(out, owner)
	}
	return out
}

// RunDigest periodically re-logs progress alerts for every owner seen since
// startup, so limit breaches surface even without new transactions.
func (w *AlertWorker) RunDigest(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Stopping digest loop", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			owners := w.knownOwners()
			if len(owners) == 0 {
				continue
			}
			w.logger.InfoContext(ctx, "Running alert digest", "owners", len(owners))
			for _, owner := range owners {
				w.reportProgress(ctx, owner)
			}
		}
	}
}
