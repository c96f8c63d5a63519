package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	lockStockQ   = `SELECT stock_qty FROM products WHERE id = $1 FOR UPDATE`
	setStockQ    = `UPDATE products SET stock_qty = $1, updated_at = NOW() WHERE id = $2`
	adjustEventQ = `INSERT INTO inventory_events (product_id, delta, reason) VALUES ($1, $2, $3)`
)

func intPtr(n int) *int { return &n }

func TestAdjustStockSetWritesComputedDelta(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockStockQ)).
		WithArgs("gummy-bears-250g").
		WillReturnRows(sqlmock.NewRows([]string{"stock_qty"}).AddRow(120))
	mock.ExpectExec(regexp.QuoteMeta(setStockQ)).
		WithArgs(80, "gummy-bears-250g").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(adjustEventQ)).
		WithArgs("gummy-bears-250g", -40, models.ReasonSet).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	newQty, err := st.AdjustStock(context.Background(), "gummy-bears-250g", StockAdjustment{
		Set:    intPtr(80),
		Reason: models.ReasonSet,
	})
	require.NoError(t, err)
	assert.Equal(t, 80, newQty)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStockDelta(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockStockQ)).
		WithArgs("sour-worms-200g").
		WillReturnRows(sqlmock.NewRows([]string{"stock_qty"}).AddRow(80))
	mock.ExpectExec(regexp.QuoteMeta(setStockQ)).
		WithArgs(105, "sour-worms-200g").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(adjustEventQ)).
		WithArgs("sour-worms-200g", 25, models.ReasonManualAdjust).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	newQty, err := st.AdjustStock(context.Background(), "sour-worms-200g", StockAdjustment{
		Delta:  intPtr(25),
		Reason: models.ReasonManualAdjust,
	})
	require.NoError(t, err)
	assert.Equal(t, 105, newQty)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStockRejectsNegativeResult(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockStockQ)).
		WithArgs("sour-worms-200g").
		WillReturnRows(sqlmock.NewRows([]string{"stock_qty"}).AddRow(10))
	mock.ExpectRollback()

	_, err := st.AdjustStock(context.Background(), "sour-worms-200g", StockAdjustment{
		Delta:  intPtr(-11),
		Reason: models.ReasonManualAdjust,
	})
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStockUnknownProduct(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockStockQ)).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"stock_qty"}))
	mock.ExpectRollback()

	_, err := st.AdjustStock(context.Background(), "missing", StockAdjustment{
		Set:    intPtr(5),
		Reason: models.ReasonSet,
	})
	assert.ErrorIs(t, err, models.ErrProductNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustStockNoopSkipsLedger(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockStockQ)).
		WithArgs("gummy-bears-250g").
		WillReturnRows(sqlmock.NewRows([]string{"stock_qty"}).AddRow(120))
	mock.ExpectCommit()

	newQty, err := st.AdjustStock(context.Background(), "gummy-bears-250g", StockAdjustment{
		Set:    intPtr(120),
		Reason: models.ReasonSet,
	})
	require.NoError(t, err)
	assert.Equal(t, 120, newQty)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileStockReportsDrift(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT p.id AS product_id, p.stock_qty, COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "stock_qty", "ledger_qty"}).
			AddRow("gummy-bears-250g", 118, 120))

	drifts, err := st.ReconcileStock(context.Background())
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, "gummy-bears-250g", drifts[0].ProductID)
	assert.Equal(t, 118, drifts[0].StockQty)
	assert.Equal(t, 120, drifts[0].LedgerQty)

	assert.NoError(t, mock.ExpectationsWereMet())
}
