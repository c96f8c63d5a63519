package worker

import (
	"context"
	"testing"
	"time"

	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcilerRunsStartupPassAndStops(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// The startup pass runs once before the first tick.
	mock.ExpectQuery("SELECT p.id AS product_id").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "stock_qty", "ledger_qty"}).
			AddRow("gummy-bears-250g", 118, 120))

	st := store.NewStoreFromDB(sqlx.NewDb(db, "sqlmock"))
	r := NewReconciler(st, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	// Give the startup pass time to hit the mock, then stop.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("reconciler did not stop after cancellation")
	}
	r.Wait()

	assert.NoError(t, mock.ExpectationsWereMet())
}
