package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "tradefolio/internal/errors"
	"tradefolio/internal/models"
	"tradefolio/internal/pagination"
	"tradefolio/internal/services"
)

// HoldingHandler handles holdings-related requests.
type HoldingHandler struct {
	holdingService services.HoldingServicer
	auditService   services.AuditServicer
}

// NewHoldingHandler creates a new HoldingHandler.
func NewHoldingHandler(holdingService services.HoldingServicer, auditService services.AuditServicer) *HoldingHandler {
	return &HoldingHandler{holdingService: holdingService, auditService: auditService}
}

// CreateHoldingRequest represents the request payload for creating a holding
type CreateHoldingRequest struct {
	Stock        string          `json:"stock" binding:"required,stock_symbol"`
	Quantity     int64           `json:"quantity" binding:"required,gt=0"`
	BuyingPrice  decimal.Decimal `json:"buying_price" binding:"required"`
	CurrentPrice decimal.Decimal `json:"current_price" binding:"required"`
}

// UpdatePriceRequest represents the request payload for a manual price edit
type UpdatePriceRequest struct {
	CurrentPrice decimal.Decimal `json:"current_price" binding:"required"`
}

// HoldingResponse represents a holding in the response, including the
// derived valuation fields.
type HoldingResponse struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Stock             string          `json:"stock"`
	Quantity          int64           `json:"quantity"`
	BuyingPrice       decimal.Decimal `json:"buying_price"`
	CurrentPrice      decimal.Decimal `json:"current_price"`
	DatePurchased     time.Time       `json:"date_purchased"`
	TotalInvested     decimal.Decimal `json:"total_invested"`
	CurrentValue      decimal.Decimal `json:"current_value"`
	ProfitLoss        decimal.Decimal `json:"profit_loss"`
	ProfitLossPercent decimal.Decimal `json:"profit_loss_percentage"`
}

func newHoldingResponse(h *models.Holding) HoldingResponse {
	return HoldingResponse{
		ID:                h.ID,
		UserID:            h.UserID,
		Stock:             h.Stock,
		Quantity:          h.Quantity,
		BuyingPrice:       h.BuyingPrice,
		CurrentPrice:      h.CurrentPrice,
		DatePurchased:     h.DatePurchased,
		TotalInvested:     h.Invested(),
		CurrentValue:      h.CurrentValue(),
		ProfitLoss:        h.ProfitLoss(),
		ProfitLossPercent: h.ProfitLossPercent(),
	}
}

func newHoldingResponses(holdings []models.Holding) []HoldingResponse {
	responses := make([]HoldingResponse, 0, len(holdings))
	for i := range holdings {
		responses = append(responses, newHoldingResponse(&holdings[i]))
	}
	return responses
}

// CreateHolding records a new stock position
// @Summary     Create a holding
// @Description Record a stock purchase for the authenticated user; one row per (user, stock)
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateHoldingRequest true "Holding details"
// @Success     201 {object} HoldingResponse "Holding created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Duplicate holding"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /holdings [post]
func (h *HoldingHandler) CreateHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	holding, err := h.holdingService.CreateHolding(userID, req.Stock, req.Quantity, req.BuyingPrice, req.CurrentPrice)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_HOLDING", "holding", holding.ID, c.ClientIP(),
		map[string]interface{}{"stock": holding.Stock, "quantity": holding.Quantity})

	c.JSON(http.StatusCreated, gin.H{"holding": newHoldingResponse(holding)})
}

// GetHoldings lists the user's holdings
// @Summary     List holdings
// @Description Get a paginated list of the authenticated user's holdings, optionally filtered by stock symbol
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       stock     query string false "Filter by stock symbol"
// @Success     200 {object} pagination.PageResponse[HoldingResponse] "Paginated holdings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /holdings [get]
func (h *HoldingHandler) GetHoldings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.holdingService.GetUserHoldings(userID, page, c.Query("stock"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	response := pagination.NewPageResponse(newHoldingResponses(result.Data), result.Page, result.PageSize, result.TotalItems)
	c.JSON(http.StatusOK, response)
}

// GetHoldingByID returns one holding
// @Summary     Get a holding
// @Description Get a single holding by ID with derived valuation fields
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Holding ID"
// @Success     200 {object} HoldingResponse "Holding"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /holdings/{id} [get]
func (h *HoldingHandler) GetHoldingByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	holdingID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	holding, err := h.holdingService.GetHoldingByID(userID, holdingID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"holding": newHoldingResponse(holding)})
}

// UpdatePrice sets a new current price on a holding
// @Summary     Update holding price
// @Description Manually update the current market price of a holding
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Holding ID"
// @Param       request body UpdatePriceRequest true "New price"
// @Success     200 {object} HoldingResponse "Updated holding"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /holdings/{id}/price [put]
func (h *HoldingHandler) UpdatePrice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	holdingID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	holding, err := h.holdingService.UpdateCurrentPrice(userID, holdingID, req.CurrentPrice)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_HOLDING_PRICE", "holding", holding.ID, c.ClientIP(),
		map[string]interface{}{"stock": holding.Stock, "current_price": req.CurrentPrice.String()})

	c.JSON(http.StatusOK, gin.H{"holding": newHoldingResponse(holding)})
}

// SellHolding removes a holding
// @Summary     Sell a holding
// @Description Delete a holding; selling does not record a ledger entry
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Holding ID"
// @Success     200 {object} map[string]string "Holding sold"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /holdings/{id} [delete]
func (h *HoldingHandler) SellHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	holdingID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.holdingService.SellHolding(userID, holdingID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SELL_HOLDING", "holding", holdingID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Holding sold"})
}

// GetProfitable lists only holdings currently in profit
// @Summary     Profitable holdings
// @Description Get the authenticated user's holdings whose current value exceeds the amount invested
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]HoldingResponse "Profitable holdings"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /holdings/profitable [get]
func (h *HoldingHandler) GetProfitable(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	holdings, err := h.holdingService.GetProfitable(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"holdings": newHoldingResponses(holdings)})
}

// GetLosing lists only holdings currently at a loss
// @Summary     Losing holdings
// @Description Get the authenticated user's holdings whose current value is below the amount invested
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]HoldingResponse "Losing holdings"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /holdings/losing [get]
func (h *HoldingHandler) GetLosing(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	holdings, err := h.holdingService.GetLosing(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"holdings": newHoldingResponses(holdings)})
}
