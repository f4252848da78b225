package worker

import (
	"context"
	"testing"

	"budgetly/internal/amqp"
	"budgetly/internal/core"
	"budgetly/internal/log"
	exportmem "budgetly/internal/export/memory"
	storemem "budgetly/internal/storage/memory"
)

func testLogger() *log.Logger {
	return log.New(log.DefaultConfig())
}

func seedTransaction(t *testing.T, store *storemem.Store, owner string) int64 {
	t.Helper()
	id, err := store.AddTransaction(context.Background(), core.Transaction{
		Owner:    owner,
		Kind:     core.Expense,
		Date:     core.Today(),
		Category: "Groceries",
		Amount:   core.Money{Cents: 2500},
		Title:    "market",
	})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	return id
}

func TestAlertWorker_HandleTransactionEvent_Exports(t *testing.T) {
	store := storemem.New()
	writer := exportmem.NewWriter()
	w := NewAlertWorker(store, writer, testLogger())

	id := seedTransaction(t, store, "alice")
	msg := amqp.NewTransactionEventMessage("alice", id, "expense", amqp.ActionCreated)

	if err := w.HandleTransactionEvent(context.Background(), msg); err != nil {
		t.Fatalf("HandleTransactionEvent() error = %v", err)
	}

	rows := writer.Rows()
	if len(rows) != 1 {
		t.Fatalf("exported %d rows, want 1", len(rows))
	}
	if rows[0].Title != "market" || rows[0].Amount.Cents != 2500 {
		t.Errorf("exported row = %+v", rows[0])
	}
}

func TestAlertWorker_HandleTransactionEvent_MissingTransaction(t *testing.T) {
	store := storemem.New()
	writer := exportmem.NewWriter()
	w := NewAlertWorker(store, writer, testLogger())

	// A created event whose transaction was already deleted must be acked,
	// not requeued forever.
	msg := amqp.NewTransactionEventMessage("alice", 404, "expense", amqp.ActionCreated)
	if err := w.HandleTransactionEvent(context.Background(), msg); err != nil {
		t.Errorf("HandleTransactionEvent() error = %v, want nil", err)
	}
	if len(writer.Rows()) != 0 {
		t.Error("nothing should be exported for a missing transaction")
	}
}

func TestAlertWorker_HandleTransactionEvent_DeleteSkipsExport(t *testing.T) {
	store := storemem.New()
	writer := exportmem.NewWriter()
	w := NewAlertWorker(store, writer, testLogger())

	id := seedTransaction(t, store, "alice")
	msg := amqp.NewTransactionEventMessage("alice", id, "expense", amqp.ActionDeleted)

	if err := w.HandleTransactionEvent(context.Background(), msg); err != nil {
		t.Fatalf("HandleTransactionEvent() error = %v", err)
	}
	if len(writer.Rows()) != 0 {
		t.Error("deleted events must not be exported")
	}
}

func TestAlertWorker_RemembersOwnersForDigest(t *testing.T) {
	store := storemem.New()
	w := NewAlertWorker(store, nil, testLogger())

	for _, owner := range []string{"alice", "bob", "alice"} {
		msg := amqp.NewTransactionEventMessage(owner, 1, "expense", amqp.ActionDeleted)
		if err := w.HandleTransactionEvent(context.Background(), msg); err != nil {
			t.Fatalf("HandleTransactionEvent() error = %v", err)
		}
	}

	owners := w.knownOwners()
	if len(owners) != 2 {
		t.Errorf("knownOwners() = %v, want 2 distinct owners", owners)
	}
}
