package models

import (
	"encoding/json"
	"time"
)

// Product represents a product in the catalog. Price is in minor currency
// units (cents). StockQty is kept in sync with the inventory_events ledger.
type Product struct {
	ID        string          `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Price     int64           `db:"price" json:"price"`
	StockQty  int             `db:"stock_qty" json:"stock_qty"`
	IsActive  bool            `db:"is_active" json:"is_active"`
	Metadata  json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// ProductPatch is a partial update for a product. Only non-nil fields are
// applied. Stock is deliberately absent: stock changes go through
// AdjustStock so every change lands in the ledger.
type ProductPatch struct {
	Name     *string          `json:"name,omitempty"`
	Price    *int64           `json:"price,omitempty"`
	IsActive *bool            `json:"is_active,omitempty"`
	Metadata *json.RawMessage `json:"metadata,omitempty"`
}

// IsEmpty reports whether the patch carries no fields.
func (p *ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Price == nil && p.IsActive == nil && p.Metadata == nil
}

// Order represents a customer order. Payload is the opaque customer/payment
// metadata captured at placement time.
type Order struct {
	ID        string          `db:"id" json:"id"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	Status    string          `db:"status" json:"status"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// OrderLine belongs to exactly one order. UnitPrice is the product price
// snapshot at order time, independent of later catalog edits.
type OrderLine struct {
	ID        int64  `db:"id" json:"id"`
	OrderID   string `db:"order_id" json:"order_id"`
	ProductID string `db:"product_id" json:"product_id"`
	Qty       int    `db:"qty" json:"qty"`
	UnitPrice int64  `db:"unit_price" json:"unit_price"`
}

// InventoryEvent is an append-only ledger entry recording a stock change and
// its cause. For any product, stock_qty equals the sum of its deltas.
type InventoryEvent struct {
	ID        int64     `db:"id" json:"id"`
	ProductID string    `db:"product_id" json:"product_id"`
	Delta     int       `db:"delta" json:"delta"`
	Reason    string    `db:"reason" json:"reason"`
	OrderID   *string   `db:"order_id" json:"order_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Setting is a storefront configuration entry.
type Setting struct {
	Key       string          `db:"key" json:"key"`
	Value     json.RawMessage `db:"value" json:"value"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// CartItem is a single entry in a placement request.
type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// StockDrift reports a product whose stock_qty disagrees with the ledger.
type StockDrift struct {
	ProductID string `db:"product_id"`
	StockQty  int    `db:"stock_qty"`
	LedgerQty int    `db:"ledger_qty"`
}

// Order statuses
const (
	OrderStatusCreated   = "created"
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusFulfilled = "fulfilled"
	OrderStatusCancelled = "cancelled"
)

// ValidOrderStatus reports whether s is part of the order status vocabulary.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusCreated, OrderStatusPending, OrderStatusPaid,
		OrderStatusFulfilled, OrderStatusCancelled:
		return true
	}
	return false
}

// Inventory event reasons
const (
	ReasonSale         = "sale"
	ReasonManualAdjust = "manual_adjust"
	ReasonInitial      = "initial"
	ReasonSet          = "set"
)
