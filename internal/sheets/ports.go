package sheets

import (
	"context"

	"sothuchi/internal/core"
)

// Ports for outbound tabular-store adapters.
type (
	// TransactionAppender appends one transaction row to the remote store.
	TransactionAppender interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	// TransactionLister returns the transactions posted in a month window.
	// skipped counts rows that could not be parsed into a Transaction.
	TransactionLister interface {
		ListTransactions(ctx context.Context, year, month int) (txs []core.Transaction, skipped int, err error)
	}

	// TaxonomyReader provides the category tree used by entry forms.
	TaxonomyReader interface {
		List(ctx context.Context) (categories []string, subsByCategory map[string][]string, err error)
	}
)
