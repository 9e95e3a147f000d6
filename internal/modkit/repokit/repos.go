// Package repokit gives repositories the store seams without importing drivers
package repokit

import (
	"context"

	"storeuptime/internal/platform/store"
)

type (
	// Queryer is the read and write surface SQL repos bind to
	Queryer = store.RowQuerier

	// TxRunner runs a function in a transaction
	TxRunner = store.TxRunner

	// Copier bulk loads through COPY
	Copier = store.Copier

	// Rows are the result set of a query
	Rows = store.Rows

	// Row is a single row result
	Row = store.Row
)

// WithTx runs fn inside a transaction using tx
func WithTx(ctx context.Context, tx TxRunner, fn func(q Queryer) error) error {
	return tx.Tx(ctx, fn)
}

// CopierOf reports whether q can bulk load
func CopierOf(q Queryer) (Copier, bool) {
	c, ok := q.(Copier)
	return c, ok
}
