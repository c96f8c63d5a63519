package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/models"
	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/store"
	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService handles product and storefront-settings administration.
type CatalogService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(st *store.Store) *CatalogService {
	return &CatalogService{
		store:  st,
		logger: util.GetLogger(),
	}
}

// CreateProductRequest creates a catalog entry. ID may be admin-supplied;
// a UUID is generated when it is empty. InitialStock, when nonzero, is
// recorded as an "initial" ledger entry alongside the product row.
type CreateProductRequest struct {
	ID           string          `json:"id,omitempty"`
	Name         string          `json:"name" binding:"required"`
	Price        int64           `json:"price"`
	InitialStock int             `json:"initial_stock"`
	IsActive     *bool           `json:"is_active,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

// CreateProduct validates and inserts a product.
func (s *CatalogService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrInvalidProduct)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", models.ErrInvalidProduct)
	}
	if req.InitialStock < 0 {
		return nil, fmt.Errorf("%w: initial stock must be non-negative", models.ErrInvalidProduct)
	}

	product := &models.Product{
		ID:       req.ID,
		Name:     req.Name,
		Price:    req.Price,
		StockQty: req.InitialStock,
		IsActive: true,
		Metadata: req.Metadata,
	}
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID),
		zap.Int("stock_qty", product.StockQty))
	return product, nil
}

// GetProduct retrieves a product by id.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.store.GetProductByID(ctx, id)
}

// ListCatalog retrieves products; with activeOnly, the public storefront view.
func (s *CatalogService) ListCatalog(ctx context.Context, activeOnly bool) ([]models.Product, error) {
	return s.store.ListProducts(ctx, activeOnly)
}

// UpdateProduct applies a partial update. Only fields present in the patch
// change; there is intentionally no stock field (use AdjustStock).
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	if patch.Price != nil && *patch.Price < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", models.ErrInvalidProduct)
	}
	if patch.Name != nil && *patch.Name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", models.ErrInvalidProduct)
	}

	product, err := s.store.UpdateProduct(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Product updated", zap.String("product_id", id))
	return product, nil
}

// ListSettings retrieves all storefront settings.
func (s *CatalogService) ListSettings(ctx context.Context) ([]models.Setting, error) {
	return s.store.ListSettings(ctx)
}

// GetSetting retrieves one setting.
func (s *CatalogService) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	return s.store.GetSetting(ctx, key)
}

// PutSetting creates or replaces a setting.
func (s *CatalogService) PutSetting(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error) {
	if !json.Valid(value) {
		return nil, fmt.Errorf("%w: value is not valid JSON", models.ErrInvalidSetting)
	}
	setting := &models.Setting{Key: key, Value: value}
	if err := s.store.UpsertSetting(ctx, setting); err != nil {
		return nil, err
	}
	return setting, nil
}

// DeleteSetting removes a setting.
func (s *CatalogService) DeleteSetting(ctx context.Context, key string) error {
	return s.store.DeleteSetting(ctx, key)
}
