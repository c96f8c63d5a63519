package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/models"
	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/store"
	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService runs order placement. It is stateless between calls; all
// shared state lives in the store and is guarded by its row locks.
type OrderService struct {
	store        *store.Store
	logger       *zap.Logger
	placeTimeout time.Duration
}

// NewOrderService creates a new order service around an injected store handle.
func NewOrderService(st *store.Store, placeTimeout time.Duration) *OrderService {
	return &OrderService{
		store:        st,
		logger:       util.GetLogger(),
		placeTimeout: placeTimeout,
	}
}

// PlaceOrderRequest is a checkout submission. Everything besides the items
// is opaque metadata stored with the order as-is.
type PlaceOrderRequest struct {
	Items         []models.CartItem `json:"items" binding:"required"`
	Customer      json.RawMessage   `json:"customer,omitempty"`
	PaymentMethod string            `json:"payment_method" binding:"required"`
	PaymentRef    string            `json:"payment_ref,omitempty"`
	Currency      string            `json:"currency,omitempty"`
}

// PlaceOrderResponse is returned after a successful placement.
type PlaceOrderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type orderPayload struct {
	Customer      json.RawMessage `json:"customer,omitempty"`
	PaymentMethod string          `json:"payment_method"`
	PaymentRef    string          `json:"payment_ref,omitempty"`
	Currency      string          `json:"currency,omitempty"`
}

// PlaceOrder validates and normalizes the cart, then runs the placement
// transaction. The transaction is bounded by the configured timeout; on
// expiry it is rolled back and reported as StoreUnavailable. Placement is
// not idempotent: the same cart submitted twice creates two orders.
func (s *OrderService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.OrderPlacementLatency.Observe(time.Since(start).Seconds())
	}()

	items, err := normalizeCart(req.Items)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues(failReason(err)).Inc()
		return nil, err
	}

	payload, err := json.Marshal(orderPayload{
		Customer:      req.Customer,
		PaymentMethod: req.PaymentMethod,
		PaymentRef:    req.PaymentRef,
		Currency:      req.Currency,
	})
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_cart").Inc()
		return nil, fmt.Errorf("%w: bad metadata: %v", models.ErrInvalidCart, err)
	}

	order := &models.Order{
		ID:      uuid.New().String(),
		Payload: payload,
		Status:  initialStatus(req.PaymentMethod),
	}

	ctx, cancel := context.WithTimeout(ctx, s.placeTimeout)
	defer cancel()

	lines, err := s.store.PlaceOrder(ctx, order, items)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues(failReason(err)).Inc()
		s.logger.Warn("Order placement failed",
			zap.Int("items", len(items)),
			zap.Error(err))
		return nil, err
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("status", order.Status),
		zap.Int("lines", len(lines)))

	return &PlaceOrderResponse{OrderID: order.ID, Status: order.Status}, nil
}

// GetOrder retrieves an order and its lines.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, []models.OrderLine, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	lines, err := s.store.GetOrderLines(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	return order, lines, nil
}

// ListOrders retrieves orders newest-first.
func (s *OrderService) ListOrders(ctx context.Context, limit, offset int) ([]models.Order, error) {
	return s.store.ListOrders(ctx, limit, offset)
}

// UpdateOrderStatus moves an order to a new status (admin action).
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	if !models.ValidOrderStatus(status) {
		return fmt.Errorf("%w: %q", models.ErrInvalidStatus, status)
	}
	if err := s.store.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return err
	}
	s.logger.Info("Order status updated",
		zap.String("order_id", orderID),
		zap.String("status", status))
	return nil
}

// normalizeCart validates the cart, merges duplicate product ids and sorts
// ascending by product id. Every placement locks product rows in this order,
// so two concurrent placements over overlapping products cannot deadlock.
func normalizeCart(items []models.CartItem) ([]models.CartItem, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", models.ErrInvalidCart)
	}

	merged := make(map[string]int, len(items))
	for _, item := range items {
		if item.ProductID == "" {
			return nil, fmt.Errorf("%w: entry is missing product_id", models.ErrInvalidCart)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %s has non-positive quantity %d",
				models.ErrInvalidCart, item.ProductID, item.Quantity)
		}
		merged[item.ProductID] += item.Quantity
	}

	out := make([]models.CartItem, 0, len(merged))
	for id, qty := range merged {
		out = append(out, models.CartItem{ProductID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// initialStatus picks the order's starting status from the payment method:
// card payments are captured at checkout, everything else settles later.
func initialStatus(paymentMethod string) string {
	if paymentMethod == "card" {
		return models.OrderStatusPaid
	}
	return models.OrderStatusCreated
}

// failReason maps a placement error to a metric label.
func failReason(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidCart):
		return "invalid_cart"
	case errors.Is(err, models.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, models.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, models.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "unknown"
	}
}
