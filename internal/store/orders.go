package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/models"
)

// lockedProduct is the slice of a product row read under FOR UPDATE.
type lockedProduct struct {
	Price    int64 `db:"price"`
	StockQty int   `db:"stock_qty"`
	IsActive bool  `db:"is_active"`
}

// PlaceOrder runs the placement transaction. items must already be
// normalized: merged by product id and sorted ascending, so that concurrent
// placements over overlapping product sets acquire row locks in the same
// order and cannot deadlock each other.
//
// The whole sequence is all-or-nothing: any failure rolls back every stock
// decrement, ledger entry and order line written so far.
func (s *Store) PlaceOrder(ctx context.Context, order *models.Order, items []models.CartItem) ([]models.OrderLine, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, classifyErr(err)
	}
	defer tx.Rollback()

	// Header first so the lines and ledger entries written below can
	// reference the order id. Nothing is visible until commit.
	err = tx.GetContext(ctx, &order.CreatedAt,
		`INSERT INTO orders (id, payload, status) VALUES ($1, $2, $3) RETURNING created_at`,
		order.ID, order.Payload, order.Status)
	if err != nil {
		return nil, classifyErr(err)
	}

	lines := make([]models.OrderLine, 0, len(items))
	for _, item := range items {
		var p lockedProduct
		err := tx.GetContext(ctx, &p,
			`SELECT price, stock_qty, is_active FROM products WHERE id = $1 FOR UPDATE`,
			item.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", models.ErrProductNotFound, item.ProductID)
		}
		if err != nil {
			return nil, classifyErr(err)
		}

		// Inactive products are invisible to the storefront; a cart
		// naming one reads the same as an unknown id.
		if !p.IsActive {
			return nil, fmt.Errorf("%w: %s", models.ErrProductNotFound, item.ProductID)
		}

		// The check and the decrement both happen while the row lock is
		// held; this is what keeps concurrent placements from overselling.
		if p.StockQty < item.Quantity {
			return nil, fmt.Errorf("%w: product %s has %d, requested %d",
				models.ErrInsufficientStock, item.ProductID, p.StockQty, item.Quantity)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET stock_qty = stock_qty - $1, updated_at = NOW() WHERE id = $2`,
			item.Quantity, item.ProductID); err != nil {
			return nil, classifyErr(err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO inventory_events (product_id, delta, reason, order_id) VALUES ($1, $2, $3, $4)`,
			item.ProductID, -item.Quantity, models.ReasonSale, order.ID); err != nil {
			return nil, classifyErr(err)
		}

		line := models.OrderLine{
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Qty:       item.Quantity,
			UnitPrice: p.Price,
		}
		err = tx.GetContext(ctx, &line.ID,
			`INSERT INTO order_lines (order_id, product_id, qty, unit_price) VALUES ($1, $2, $3, $4) RETURNING id`,
			line.OrderID, line.ProductID, line.Qty, line.UnitPrice)
		if err != nil {
			return nil, classifyErr(err)
		}
		lines = append(lines, line)
	}

	if err := tx.Commit(); err != nil {
		return nil, classifyErr(err)
	}
	return lines, nil
}

// GetOrderByID retrieves an order by id.
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, `SELECT * FROM orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, classifyErr(err)
	}
	return &order, nil
}

// GetOrderLines retrieves all lines for an order.
func (s *Store) GetOrderLines(ctx context.Context, orderID string) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := s.db.SelectContext(ctx, &lines,
		`SELECT * FROM order_lines WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, classifyErr(err)
	}
	return lines, nil
}

// ListOrders retrieves orders newest-first with simple offset paging.
func (s *Store) ListOrders(ctx context.Context, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		`SELECT * FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, classifyErr(err)
	}
	return orders, nil
}

// UpdateOrderStatus sets the status of an existing order.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = $1 WHERE id = $2`, status, orderID)
	if err != nil {
		return classifyErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classifyErr(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", models.ErrOrderNotFound, orderID)
	}
	return nil
}
