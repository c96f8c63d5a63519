package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/auth"
	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/models"
	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/service"
	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	orders    *service.OrderService
	catalog   *service.CatalogService
	inventory *service.InventoryService
	gate      *auth.Gate
	staticDir string
	pageSize  int
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orders *service.OrderService,
	catalog *service.CatalogService,
	inventory *service.InventoryService,
	gate *auth.Gate,
	staticDir string,
	pageSize int,
) *Handler {
	return &Handler{
		orders:    orders,
		catalog:   catalog,
		inventory: inventory,
		gate:      gate,
		staticDir: staticDir,
		pageSize:  pageSize,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/orders", h.placeOrder)
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
	}

	router.POST("/admin/login", h.adminLogin)

	admin := router.Group("/admin", h.gate.Middleware())
	{
		admin.POST("/logout", h.adminLogout)

		admin.GET("/products", h.adminListProducts)
		admin.POST("/products", h.adminCreateProduct)
		admin.GET("/products/:id", h.adminGetProduct)
		admin.PATCH("/products/:id", h.adminPatchProduct)
		admin.POST("/products/:id/stock", h.adminAdjustStock)
		admin.GET("/products/:id/events", h.adminListInventoryEvents)

		admin.GET("/orders", h.adminListOrders)
		admin.GET("/orders/:id", h.adminGetOrder)
		admin.PATCH("/orders/:id/status", h.adminUpdateOrderStatus)

		admin.GET("/settings", h.adminListSettings)
		admin.GET("/settings/:key", h.adminGetSetting)
		admin.PUT("/settings/:key", h.adminPutSetting)
		admin.DELETE("/settings/:key", h.adminDeleteSetting)
	}

	h.setupStatic(router)
}

// setupStatic serves the storefront assets when a static directory exists.
func (h *Handler) setupStatic(router *gin.Engine) {
	if h.staticDir == "" {
		return
	}
	if _, err := os.Stat(h.staticDir); err != nil {
		return
	}

	router.Static("/assets", h.staticDir)
	index := filepath.Join(h.staticDir, "index.html")
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") ||
			strings.HasPrefix(c.Request.URL.Path, "/admin") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if _, err := os.Stat(index); err == nil {
			c.File(index)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// placeOrder handles checkout submissions. Status mapping follows the
// placement contract: client-caused failures are 400, everything else 500.
func (h *Handler) placeOrder(c *gin.Context) {
	var req service.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
			"code":  "invalid_cart",
		})
		return
	}

	resp, err := h.orders.PlaceOrder(c.Request.Context(), &req)
	if err != nil {
		status, code := placementStatus(err)
		c.JSON(status, gin.H{
			"error": err.Error(),
			"code":  code,
		})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// placementStatus maps a placement error onto the HTTP contract.
func placementStatus(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrInvalidCart):
		return http.StatusBadRequest, "invalid_cart"
	case errors.Is(err, models.ErrProductNotFound):
		return http.StatusBadRequest, "product_not_found"
	case errors.Is(err, models.ErrInsufficientStock):
		return http.StatusBadRequest, "insufficient_stock"
	case errors.Is(err, models.ErrStoreUnavailable):
		return http.StatusInternalServerError, "store_unavailable"
	default:
		return http.StatusInternalServerError, "unknown"
	}
}

// respondError maps errors on the non-placement routes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "unknown"

	switch {
	case errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrSettingNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrInvalidAdjustment),
		errors.Is(err, models.ErrInvalidProduct),
		errors.Is(err, models.ErrInvalidSetting),
		errors.Is(err, models.ErrInvalidStatus):
		status, code = http.StatusBadRequest, "invalid_request"
	case errors.Is(err, models.ErrInsufficientStock):
		status, code = http.StatusBadRequest, "insufficient_stock"
	case errors.Is(err, models.ErrStoreUnavailable):
		code = "store_unavailable"
	}

	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

// listProducts returns the public catalog (active products only).
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.ListCatalog(c.Request.Context(), true)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct returns one product from the public catalog.
func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !product.IsActive {
		respondError(c, models.ErrProductNotFound)
		return
	}
	c.JSON(http.StatusOK, product)
}

// adminLogin exchanges the admin password for a session token.
func (h *Handler) adminLogin(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	token, expiresAt, err := h.gate.Login(c.Request.Context(), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt.Unix(),
	})
}

// adminLogout revokes the current session token.
func (h *Handler) adminLogout(c *gin.Context) {
	if err := h.gate.Logout(c.Request.Context(), auth.TokenFromRequest(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// adminListProducts returns the full catalog including inactive products.
func (h *Handler) adminListProducts(c *gin.Context) {
	products, err := h.catalog.ListCatalog(c.Request.Context(), false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// adminCreateProduct inserts a new product.
func (h *Handler) adminCreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// adminGetProduct returns any product, active or not.
func (h *Handler) adminGetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// adminPatchProduct applies a partial product update.
func (h *Handler) adminPatchProduct(c *gin.Context) {
	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// adminAdjustStock applies an administrative stock change.
func (h *Handler) adminAdjustStock(c *gin.Context) {
	var req service.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	newQty, err := h.inventory.AdjustStock(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product_id": c.Param("id"),
		"stock_qty":  newQty,
	})
}

// adminListInventoryEvents returns the product's ledger, newest-first.
func (h *Handler) adminListInventoryEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	events, err := h.inventory.ListEvents(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// adminListOrders returns orders newest-first with offset paging.
func (h *Handler) adminListOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.pageSize)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 500 {
		limit = h.pageSize
	}
	if offset < 0 {
		offset = 0
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// adminGetOrder returns an order with its lines.
func (h *Handler) adminGetOrder(c *gin.Context) {
	order, lines, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order": order,
		"lines": lines,
	})
}

// adminUpdateOrderStatus moves an order to a new status.
func (h *Handler) adminUpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	if err := h.orders.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order_id": c.Param("id"),
		"status":   req.Status,
	})
}

// adminListSettings returns all storefront settings.
func (h *Handler) adminListSettings(c *gin.Context) {
	settings, err := h.catalog.ListSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// adminGetSetting returns one setting.
func (h *Handler) adminGetSetting(c *gin.Context) {
	setting, err := h.catalog.GetSetting(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

// adminPutSetting creates or replaces a setting. The body is the raw value.
func (h *Handler) adminPutSetting(c *gin.Context) {
	var value json.RawMessage
	if err := c.ShouldBindJSON(&value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	setting, err := h.catalog.PutSetting(c.Request.Context(), c.Param("key"), value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

// adminDeleteSetting removes a setting.
func (h *Handler) adminDeleteSetting(c *gin.Context) {
	if err := h.catalog.DeleteSetting(c.Request.Context(), c.Param("key")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
