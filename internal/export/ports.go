package export

import (
	"context"

	"budgetly/internal/core"
)

// Ports for outbound export adapters.
type (
	// TransactionWriter appends a transaction to an external ledger.
	TransactionWriter interface {
		Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}
)
