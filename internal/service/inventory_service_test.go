package service

import (
	"context"
	"testing"
	"time"

	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/models"
	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockServices(t *testing.T) (*OrderService, *InventoryService, *CatalogService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.NewStoreFromDB(sqlx.NewDb(db, "sqlmock"))
	return NewOrderService(st, 5*time.Second), NewInventoryService(st), NewCatalogService(st), mock
}

func TestAdjustStockRequiresExactlyOneMode(t *testing.T) {
	_, inv, _, _ := newMockServices(t)

	set, delta := 5, -2

	_, err := inv.AdjustStock(context.Background(), "aaa", &AdjustStockRequest{})
	assert.ErrorIs(t, err, models.ErrInvalidAdjustment)

	_, err = inv.AdjustStock(context.Background(), "aaa", &AdjustStockRequest{Set: &set, Delta: &delta})
	assert.ErrorIs(t, err, models.ErrInvalidAdjustment)
}

func TestAdjustStockRejectsUnknownReason(t *testing.T) {
	_, inv, _, _ := newMockServices(t)

	delta := 5
	_, err := inv.AdjustStock(context.Background(), "aaa", &AdjustStockRequest{
		Delta:  &delta,
		Reason: "shrinkage",
	})
	assert.ErrorIs(t, err, models.ErrInvalidAdjustment)
}

func TestAdjustStockDefaultsReasonByMode(t *testing.T) {
	_, inv, _, mock := newMockServices(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT stock_qty FROM products").
		WithArgs("aaa").
		WillReturnRows(sqlmock.NewRows([]string{"stock_qty"}).AddRow(10))
	mock.ExpectExec("UPDATE products SET stock_qty").
		WithArgs(7, "aaa").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO inventory_events").
		WithArgs("aaa", -3, models.ReasonManualAdjust).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	delta := -3
	newQty, err := inv.AdjustStock(context.Background(), "aaa", &AdjustStockRequest{Delta: &delta})
	require.NoError(t, err)
	assert.Equal(t, 7, newQty)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductValidation(t *testing.T) {
	_, _, catalog, _ := newMockServices(t)

	_, err := catalog.CreateProduct(context.Background(), &CreateProductRequest{Name: ""})
	assert.ErrorIs(t, err, models.ErrInvalidProduct)

	_, err = catalog.CreateProduct(context.Background(), &CreateProductRequest{Name: "X", Price: -1})
	assert.ErrorIs(t, err, models.ErrInvalidProduct)

	_, err = catalog.CreateProduct(context.Background(), &CreateProductRequest{Name: "X", InitialStock: -5})
	assert.ErrorIs(t, err, models.ErrInvalidProduct)
}

func TestCreateProductGeneratesIDWhenEmpty(t *testing.T) {
	_, _, catalog, mock := newMockServices(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO products").
		WithArgs(sqlmock.AnyArg(), "Fudge Squares", int64(450), 0, true, nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))
	mock.ExpectCommit()

	product, err := catalog.CreateProduct(context.Background(), &CreateProductRequest{
		Name:  "Fudge Squares",
		Price: 450,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderThroughService(t *testing.T) {
	orders, _, _, mock := newMockServices(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), models.OrderStatusPaid).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectQuery("SELECT price, stock_qty, is_active FROM products").
		WithArgs("sour-worms-200g").
		WillReturnRows(sqlmock.NewRows([]string{"price", "stock_qty", "is_active"}).
			AddRow(425, 80, true))
	mock.ExpectExec("UPDATE products SET stock_qty").
		WithArgs(2, "sour-worms-200g").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO inventory_events").
		WithArgs("sour-worms-200g", -2, models.ReasonSale, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO order_lines").
		WithArgs(sqlmock.AnyArg(), "sour-worms-200g", 2, int64(425)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	resp, err := orders.PlaceOrder(context.Background(), &PlaceOrderRequest{
		Items:         []models.CartItem{{ProductID: "sour-worms-200g", Quantity: 2}},
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.OrderID)
	assert.Equal(t, models.OrderStatusPaid, resp.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderEmptyCartNeverTouchesStore(t *testing.T) {
	orders, _, _, mock := newMockServices(t)

	_, err := orders.PlaceOrder(context.Background(), &PlaceOrderRequest{
		Items:         nil,
		PaymentMethod: "cod",
	})
	assert.ErrorIs(t, err, models.ErrInvalidCart)

	assert.NoError(t, mock.ExpectationsWereMet())
}
