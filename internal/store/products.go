package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/models"
)

// CreateProduct inserts a product. When the initial stock is nonzero the
// matching "initial" ledger entry is written in the same transaction, so
// the reconciliation invariant holds from the product's first moment.
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return classifyErr(err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO products (id, name, price, stock_qty, is_active, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		product.ID, product.Name, product.Price, product.StockQty,
		product.IsActive, product.Metadata).
		Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return classifyErr(err)
	}

	if product.StockQty != 0 {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO inventory_events (product_id, delta, reason) VALUES ($1, $2, $3)`,
			product.ID, product.StockQty, models.ReasonInitial); err != nil {
			return classifyErr(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return classifyErr(err)
	}
	return nil
}

// GetProductByID retrieves a product by id.
func (s *Store) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, `SELECT * FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrProductNotFound, id)
	}
	if err != nil {
		return nil, classifyErr(err)
	}
	return &product, nil
}

// ListProducts retrieves products ordered by id. With activeOnly set,
// inactive products are filtered out (the public catalog view).
func (s *Store) ListProducts(ctx context.Context, activeOnly bool) ([]models.Product, error) {
	query := `SELECT * FROM products ORDER BY id`
	if activeOnly {
		query = `SELECT * FROM products WHERE is_active ORDER BY id`
	}

	var products []models.Product
	if err := s.db.SelectContext(ctx, &products, query); err != nil {
		return nil, classifyErr(err)
	}
	return products, nil
}

// UpdateProduct applies a partial update. Only fields present in the patch
// reach the UPDATE statement; absent fields are left untouched.
func (s *Store) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)
	i := 1

	if patch.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", i))
		args = append(args, *patch.Name)
		i++
	}
	if patch.Price != nil {
		sets = append(sets, fmt.Sprintf("price = $%d", i))
		args = append(args, *patch.Price)
		i++
	}
	if patch.IsActive != nil {
		sets = append(sets, fmt.Sprintf("is_active = $%d", i))
		args = append(args, *patch.IsActive)
		i++
	}
	if patch.Metadata != nil {
		sets = append(sets, fmt.Sprintf("metadata = $%d", i))
		args = append(args, *patch.Metadata)
		i++
	}
	if len(sets) == 0 {
		return s.GetProductByID(ctx, id)
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE products SET %s WHERE id = $%d RETURNING *`,
		strings.Join(sets, ", "), i)

	var product models.Product
	err := s.db.GetContext(ctx, &product, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrProductNotFound, id)
	}
	if err != nil {
		return nil, classifyErr(err)
	}
	return &product, nil
}
