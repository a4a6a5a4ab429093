package currency

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/currencies/pkg/common"
	"github.com/richxcame/currencies/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the currency registry
type Handler struct {
	registry   *Registry
	updater    *RateUpdater
	autoUpdate AutoUpdateOptions
}

// NewHandler creates a new currency handler
func NewHandler(registry *Registry, updater *RateUpdater, autoUpdate AutoUpdateOptions) *Handler {
	return &Handler{registry: registry, updater: updater, autoUpdate: autoUpdate}
}

// ConvertResponse is the API response for a conversion
type ConvertResponse struct {
	Value decimal.Decimal `json:"value"`
	From  string          `json:"from"`
	To    string          `json:"to"`
}

// FormatResponse is the API response for a formatted amount
type FormatResponse struct {
	Formatted string `json:"formatted"`
}

// GetCurrencies returns all enabled currencies
func (h *Handler) GetCurrencies(c *gin.Context) {
	common.SuccessResponse(c, gin.H{
		"default":    h.registry.DefaultCode(),
		"currencies": h.registry.GetAll(),
	})
}

// GetCurrency returns a currency by code
func (h *Handler) GetCurrency(c *gin.Context) {
	currency, err := h.registry.Get(c.Param("code"))
	if err != nil {
		h.fail(c, err)
		return
	}

	common.SuccessResponse(c, currency)
}

// AddCurrency registers a new currency
func (h *Handler) AddCurrency(c *gin.Context) {
	var req AddInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	currency, err := h.registry.Add(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	common.CreatedResponse(c, currency)
}

// UpdateCurrency applies a partial update
func (h *Handler) UpdateCurrency(c *gin.Context) {
	var req UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	currency, err := h.registry.Update(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	common.SuccessResponse(c, currency)
}

// RemoveCurrency deletes a currency
func (h *Handler) RemoveCurrency(c *gin.Context) {
	code := normalizeCode(c.Param("code"))
	if err := h.registry.Remove(c.Request.Context(), code); err != nil {
		h.fail(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"removed": code})
}

// Convert converts an amount between two currencies
func (h *Handler) Convert(c *gin.Context) {
	value, err := decimal.NewFromString(c.Query("value"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid value")
		return
	}

	to := normalizeCode(c.Query("to"))
	from := normalizeCode(c.Query("from"))

	common.SuccessResponse(c, ConvertResponse{
		Value: h.registry.Convert(value, to, from),
		From:  from,
		To:    to,
	})
}

// Format renders an amount in a currency
func (h *Handler) Format(c *gin.Context) {
	number, err := decimal.NewFromString(c.Query("number"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid number")
		return
	}

	common.SuccessResponse(c, FormatResponse{
		Formatted: h.registry.Format(number, c.Query("code"), c.Query("from")),
	})
}

// Recache reloads the snapshot from the store
func (h *Handler) Recache(c *gin.Context) {
	if err := h.registry.Recache(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"currencies": len(h.registry.GetAll())})
}

// UpdateValues refreshes all rates when auto-update is enabled
func (h *Handler) UpdateValues(c *gin.Context) {
	result, err := UpdateValues(c.Request.Context(), h.updater, h.autoUpdate)
	if err != nil {
		h.fail(c, err)
		return
	}

	common.SuccessResponse(c, result)
}

// RefreshCurrency refreshes the rate of one currency
func (h *Handler) RefreshCurrency(c *gin.Context) {
	code := normalizeCode(c.Param("code"))
	if err := h.updater.RefreshOne(c.Request.Context(), code, true); err != nil {
		h.fail(c, err)
		return
	}

	currency, err := h.registry.find(c.Request.Context(), code)
	if err != nil {
		h.fail(c, err)
		return
	}

	common.SuccessResponse(c, currency)
}

// fail maps registry errors onto API errors
func (h *Handler) fail(c *gin.Context, err error) {
	var appErr *common.AppError

	switch {
	case errors.Is(err, ErrCurrencyNotFound):
		appErr = common.NewNotFoundError("currency not found", err)
	case errors.Is(err, ErrCurrencyAlreadyExists):
		appErr = common.NewConflictError("currency already exists", err)
	case errors.Is(err, ErrInvalidParameter):
		appErr = common.NewBadRequestError("invalid currency data", err).WithDetails(detailsOf(err))
	default:
		logger.WithContext(c.Request.Context()).Error("currency request failed", zap.Error(err))
		appErr = common.NewInternalServerError("internal server error", err)
	}

	common.AppErrorResponse(c, appErr)
}

// RegisterRoutes registers currency routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	curr := rg.Group("/currency")
	{
		curr.GET("/currencies", h.GetCurrencies)
		curr.POST("/currencies", h.AddCurrency)
		curr.GET("/currencies/:code", h.GetCurrency)
		curr.PATCH("/currencies/:code", h.UpdateCurrency)
		curr.DELETE("/currencies/:code", h.RemoveCurrency)
		curr.POST("/currencies/:code/refresh", h.RefreshCurrency)
		curr.GET("/convert", h.Convert)
		curr.GET("/format", h.Format)
		curr.POST("/recache", h.Recache)
		curr.POST("/update-values", h.UpdateValues)
	}
}
