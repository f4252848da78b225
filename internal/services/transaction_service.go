package services

import (
	"context"
	"fmt"

	"budgetly/internal/amqp"
	"budgetly/internal/budget"
	"budgetly/internal/core"
	"budgetly/internal/log"
)

// EventPublisher publishes transaction change events. Implemented by
// amqp.Client; optional, the service degrades to local-only operation.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error
}

// RefreshNotifier pushes a progress refresh hint to connected clients.
// Implemented by ws.Hub; optional.
type RefreshNotifier interface {
	NotifyProgressChanged(owner string)
}

// TransactionService records expenses and incomes and fans out change events.
type TransactionService struct {
	store       budget.TransactionStore
	publisher   EventPublisher
	notifier    RefreshNotifier
	invalidator ProgressInvalidator
	logger      *log.Logger
}

func NewTransactionService(store budget.TransactionStore, publisher EventPublisher, notifier RefreshNotifier, invalidator ProgressInvalidator, logger *log.Logger) *TransactionService {
	return &TransactionService{
		store:       store,
		publisher:   publisher,
		notifier:    notifier,
		invalidator: invalidator,
		logger:      logger.WithComponent(log.ComponentTransaction),
	}
}

// Add validates and persists a transaction, then publishes a change event.
// Publishing is best effort, the record is already saved locally.
func (s *TransactionService) Add(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.AddTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}

	s.fanOut(ctx, t.Owner, id, string(t.Kind), amqp.ActionCreated)
	return id, nil
}

// Delete removes an owner's transaction and publishes a change event.
func (s *TransactionService) Delete(ctx context.Context, owner string, id int64, kind core.TransactionKind) error {
	if err := s.store.DeleteTransaction(ctx, owner, id); err != nil {
		return err
	}

	s.fanOut(ctx, owner, id, string(kind), amqp.ActionDeleted)
	return nil
}

// List returns the owner's transactions of one kind, latest first.
func (s *TransactionService) List(ctx context.Context, owner string, kind core.TransactionKind) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx, owner, kind)
}

func (s *TransactionService) fanOut(ctx context.Context, owner string, id int64, kind, action string) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(owner)
	}

	if s.publisher != nil {
		msg := amqp.NewTransactionEventMessage(owner, id, kind, action)
		if err := s.publisher.PublishTransactionEvent(ctx, msg); err != nil {
			// Don't fail the request, the transaction is saved locally.
			s.logger.ErrorContext(ctx, "Failed to publish transaction event",
				log.FieldOwner, owner,
				log.FieldTransactionID, id,
				log.FieldError, err)
		}
	}

	if s.notifier != nil {
		s.notifier.NotifyProgressChanged(owner)
	}
}
