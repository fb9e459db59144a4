package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ordertrail/ordertrail/internal/common"
	"github.com/ordertrail/ordertrail/internal/mail"
	"github.com/ordertrail/ordertrail/internal/model"
	"github.com/ordertrail/ordertrail/internal/pipeline"
	"github.com/ordertrail/ordertrail/internal/storage"
)

// Handler handles HTTP requests for the order API.
type Handler struct {
	pipeline *pipeline.Pipeline
	store    *storage.SQLiteStorage
	logger   *slog.Logger
}

// NewHandler creates an API handler over the pipeline and store.
func NewHandler(p *pipeline.Pipeline, store *storage.SQLiteStorage, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		pipeline: p,
		store:    store,
		logger:   logger,
	}
}

// HealthCheck reports service liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// OrderWebhook ingests one email notification. Content-level failures come
// back as 200 with a descriptive action so the delivery system does not
// retry; only an empty payload is a client error.
func (h *Handler) OrderWebhook(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	email := mail.Normalize(raw)

	result, err := h.pipeline.Process(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing email content (body or snippet)"})
			return
		}
		h.logger.Error("webhook processing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if result.Action == pipeline.ActionCreated {
		status = http.StatusCreated
	}
	c.JSON(status, result)
}

// ListOrders returns a filtered page of orders.
func (h *Handler) ListOrders(c *gin.Context) {
	filter := storage.OrderFilter{
		Status: c.Query("status"),
		Vendor: c.Query("vendor"),
		Search: c.Query("search"),
		Limit:  intQuery(c, "limit", 50),
		Offset: intQuery(c, "offset", 0),
	}

	orders, total, err := h.store.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// GetOrder returns a single order by id, items included.
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.store.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// SearchOrder returns a single order by its vendor order number.
func (h *Handler) SearchOrder(c *gin.Context) {
	order, err := h.store.GetOrderByNumber(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		h.respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type orderRequest struct {
	OrderNumber  string            `json:"order_number"`
	Vendor       string            `json:"vendor"`
	CustomerName string            `json:"customer_name"`
	Status       string            `json:"status"`
	Location     string            `json:"location"`
	ExpectedDate string            `json:"expected_date"`
	Notes        string            `json:"notes"`
	Items        []model.OrderItem `json:"items"`
}

// CreateOrder inserts an order supplied directly through the API.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.OrderNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order number is required"})
		return
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:           uuid.NewString(),
		OrderNumber:  req.OrderNumber,
		Vendor:       req.Vendor,
		CustomerName: req.CustomerName,
		Status:       req.Status,
		Location:     req.Location,
		ExpectedDate: req.ExpectedDate,
		Notes:        req.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
		Items:        normalizeItems(req.Items),
	}
	if order.Status == "" {
		order.Status = model.StatusOrdered
	}

	if err := h.store.CreateOrder(c.Request.Context(), order); err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order number already exists"})
			return
		}
		h.logger.Error("failed to create order", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, order)
}

// UpdateOrder applies a partial update to an order. Absent fields keep their
// stored values; a present items array replaces the item list.
func (h *Handler) UpdateOrder(c *gin.Context) {
	existing, err := h.store.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondOrderError(c, err)
		return
	}

	var req struct {
		OrderNumber  *string            `json:"order_number"`
		Vendor       *string            `json:"vendor"`
		CustomerName *string            `json:"customer_name"`
		Status       *string            `json:"status"`
		Location     *string            `json:"location"`
		ExpectedDate *string            `json:"expected_date"`
		Notes        *string            `json:"notes"`
		Items        *[]model.OrderItem `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	applyString(&existing.OrderNumber, req.OrderNumber)
	applyString(&existing.Vendor, req.Vendor)
	applyString(&existing.CustomerName, req.CustomerName)
	applyString(&existing.Status, req.Status)
	applyString(&existing.Location, req.Location)
	applyString(&existing.ExpectedDate, req.ExpectedDate)
	applyString(&existing.Notes, req.Notes)

	replaceItems := req.Items != nil
	if replaceItems {
		existing.Items = normalizeItems(*req.Items)
		for i := range existing.Items {
			existing.Items[i].OrderID = existing.ID
		}
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateOrder(c.Request.Context(), existing, replaceItems); err != nil {
		h.respondOrderError(c, err)
		return
	}

	updated, err := h.store.GetOrder(c.Request.Context(), existing.ID)
	if err != nil {
		h.respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteOrder removes an order and its items.
func (h *Handler) DeleteOrder(c *gin.Context) {
	if err := h.store.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		h.respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}

// ListSettings returns every stored setting keyed by name.
func (h *Handler) ListSettings(c *gin.Context) {
	settings, err := h.store.ListSettings(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list settings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make(map[string]json.RawMessage, len(settings))
	for key, value := range settings {
		out[key] = value
	}
	c.JSON(http.StatusOK, out)
}

// GetSetting returns one setting by key.
func (h *Handler) GetSetting(c *gin.Context) {
	key := c.Param("key")
	value, err := h.store.GetSetting(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Setting not found"})
			return
		}
		h.logger.Error("failed to get setting", "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

// SetSetting stores one setting. Values are kept as JSON, never interpreted.
func (h *Handler) SetSetting(c *gin.Context) {
	key := c.Param("key")

	var req struct {
		Value json.RawMessage `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Value) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Value must be valid JSON"})
		return
	}

	if err := h.store.SetSetting(c.Request.Context(), key, req.Value); err != nil {
		if errors.Is(err, common.ErrInvalidConfig) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Value must be valid JSON"})
			return
		}
		h.logger.Error("failed to set setting", "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
}

// GetVendors returns the configured vendor list, falling back to defaults.
func (h *Handler) GetVendors(c *gin.Context) {
	vendors := h.store.GetStringList(c.Request.Context(), storage.SettingVendors, storage.DefaultVendors)
	c.JSON(http.StatusOK, gin.H{"vendors": vendors})
}

// SetVendors replaces the configured vendor list.
func (h *Handler) SetVendors(c *gin.Context) {
	var req struct {
		Vendors []string `json:"vendors"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Vendors == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vendors must be an array"})
		return
	}

	if err := h.store.SetStringList(c.Request.Context(), storage.SettingVendors, req.Vendors); err != nil {
		h.logger.Error("failed to set vendors", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendors": req.Vendors})
}

// GetStatuses returns the configured status list, falling back to defaults.
func (h *Handler) GetStatuses(c *gin.Context) {
	statuses := h.store.GetStringList(c.Request.Context(), storage.SettingStatuses, storage.DefaultStatuses)
	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}

// SetStatuses replaces the configured status list.
func (h *Handler) SetStatuses(c *gin.Context) {
	var req struct {
		Statuses []string `json:"statuses"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Statuses == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statuses must be an array"})
		return
	}

	if err := h.store.SetStringList(c.Request.Context(), storage.SettingStatuses, req.Statuses); err != nil {
		h.logger.Error("failed to set statuses", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": req.Statuses})
}

// GetStats returns the dashboard summary.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.store.GetStats(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to compute stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, common.ErrDuplicateEntry):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order number already exists"})
	default:
		h.logger.Error("order request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// normalizeItems assigns ids and fills item defaults for API-supplied items.
func normalizeItems(items []model.OrderItem) []model.OrderItem {
	out := make([]model.OrderItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if item.Currency == "" {
			item.Currency = pipeline.DefaultCurrency
		}
		out = append(out, item)
	}
	return out
}
