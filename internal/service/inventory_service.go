package service

import (
	"context"
	"fmt"

	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/models"
	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/store"
	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/util"

	"go.uber.org/zap"
)

// InventoryService handles administrative stock changes and ledger reads.
type InventoryService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(st *store.Store) *InventoryService {
	return &InventoryService{
		store:  st,
		logger: util.GetLogger(),
	}
}

// AdjustStockRequest sets stock to an absolute value or applies a signed
// delta. Exactly one of the two must be present.
type AdjustStockRequest struct {
	Set    *int   `json:"set,omitempty"`
	Delta  *int   `json:"delta,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// AdjustStock applies an administrative stock change. It runs under the
// same row lock as order placement, so it cannot race a concurrent sale on
// the same product. Returns the resulting stock quantity.
func (s *InventoryService) AdjustStock(ctx context.Context, productID string, req *AdjustStockRequest) (int, error) {
	ctx, span := util.StartSpan(ctx, "InventoryService.AdjustStock")
	defer span.End()

	if (req.Set == nil) == (req.Delta == nil) {
		util.StockAdjustmentsFailed.WithLabelValues("invalid_request").Inc()
		return 0, fmt.Errorf("%w: exactly one of set or delta must be given", models.ErrInvalidAdjustment)
	}

	reason := req.Reason
	if reason == "" {
		if req.Set != nil {
			reason = models.ReasonSet
		} else {
			reason = models.ReasonManualAdjust
		}
	}
	switch reason {
	case models.ReasonManualAdjust, models.ReasonInitial, models.ReasonSet:
	default:
		util.StockAdjustmentsFailed.WithLabelValues("invalid_reason").Inc()
		return 0, fmt.Errorf("%w: unknown reason %q", models.ErrInvalidAdjustment, reason)
	}

	newQty, err := s.store.AdjustStock(ctx, productID, store.StockAdjustment{
		Set:    req.Set,
		Delta:  req.Delta,
		Reason: reason,
	})
	if err != nil {
		util.StockAdjustmentsFailed.WithLabelValues(failReason(err)).Inc()
		return 0, err
	}

	util.StockAdjustmentsTotal.WithLabelValues(reason).Inc()
	s.logger.Info("Stock adjusted",
		zap.String("product_id", productID),
		zap.String("reason", reason),
		zap.Int("stock_qty", newQty))
	return newQty, nil
}

// ListEvents retrieves the inventory ledger for a product, newest-first.
func (s *InventoryService) ListEvents(ctx context.Context, productID string, limit int) ([]models.InventoryEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	// Surface ProductNotFound rather than an empty ledger for unknown ids.
	if _, err := s.store.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.store.ListInventoryEvents(ctx, productID, limit)
}
