package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/models"
)

// StockAdjustment describes an administrative stock change. Exactly one of
// Set or Delta must be present.
type StockAdjustment struct {
	Set    *int
	Delta  *int
	Reason string
}

// AdjustStock applies an administrative stock change under the same row lock
// PlaceOrder takes, so adjustments cannot race concurrent sales on the same
// product. The matching ledger entry is written in the same transaction.
// Returns the resulting stock quantity.
func (s *Store) AdjustStock(ctx context.Context, productID string, adj StockAdjustment) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, classifyErr(err)
	}
	defer tx.Rollback()

	var current int
	err = tx.GetContext(ctx, &current,
		`SELECT stock_qty FROM products WHERE id = $1 FOR UPDATE`, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", models.ErrProductNotFound, productID)
	}
	if err != nil {
		return 0, classifyErr(err)
	}

	var delta int
	switch {
	case adj.Set != nil:
		delta = *adj.Set - current
	case adj.Delta != nil:
		delta = *adj.Delta
	}

	next := current + delta
	if next < 0 {
		return 0, fmt.Errorf("%w: product %s has %d, adjustment of %d would go negative",
			models.ErrInsufficientStock, productID, current, delta)
	}

	if delta == 0 {
		// Nothing to record; the ledger stays delta-exact.
		return current, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE products SET stock_qty = $1, updated_at = NOW() WHERE id = $2`,
		next, productID); err != nil {
		return 0, classifyErr(err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO inventory_events (product_id, delta, reason) VALUES ($1, $2, $3)`,
		productID, delta, adj.Reason); err != nil {
		return 0, classifyErr(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, classifyErr(err)
	}
	return next, nil
}

// ListInventoryEvents retrieves the ledger for a product, newest-first.
func (s *Store) ListInventoryEvents(ctx context.Context, productID string, limit int) ([]models.InventoryEvent, error) {
	var events []models.InventoryEvent
	err := s.db.SelectContext(ctx, &events,
		`SELECT * FROM inventory_events WHERE product_id = $1 ORDER BY id DESC LIMIT $2`,
		productID, limit)
	if err != nil {
		return nil, classifyErr(err)
	}
	return events, nil
}

// ReconcileStock returns every product whose stock_qty disagrees with the
// sum of its ledger deltas. An empty result means the reconciliation
// invariant holds.
func (s *Store) ReconcileStock(ctx context.Context) ([]models.StockDrift, error) {
	var drifts []models.StockDrift
	err := s.db.SelectContext(ctx, &drifts, `
		SELECT p.id AS product_id, p.stock_qty, COALESCE(SUM(e.delta), 0) AS ledger_qty
		FROM products p
		LEFT JOIN inventory_events e ON e.product_id = p.id
		GROUP BY p.id, p.stock_qty
		HAVING p.stock_qty <> COALESCE(SUM(e.delta), 0)`)
	if err != nil {
		return nil, classifyErr(err)
	}
	return drifts, nil
}
