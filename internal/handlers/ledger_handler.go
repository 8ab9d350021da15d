package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "tradefolio/internal/errors"
	"tradefolio/internal/models"
	"tradefolio/internal/pagination"
	"tradefolio/internal/services"
)

// LedgerHandler handles transaction (ledger entry) requests.
type LedgerHandler struct {
	ledgerService services.LedgerServicer
	auditService  services.AuditServicer
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerService services.LedgerServicer, auditService services.AuditServicer) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for recording a transaction
type CreateTransactionRequest struct {
	Kind        models.EntryKind `json:"kind" binding:"required,entry_kind"`
	Debit       decimal.Decimal  `json:"debit"`
	Credit      decimal.Decimal  `json:"credit"`
	Description string           `json:"description" binding:"required,max=500"`
}

// EntryResponse represents a ledger entry in the response
type EntryResponse struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	Kind         models.EntryKind `json:"kind"`
	Debit        decimal.Decimal  `json:"debit"`
	Credit       decimal.Decimal  `json:"credit"`
	Description  string           `json:"description"`
	Date         time.Time        `json:"date"`
	BalanceAfter decimal.Decimal  `json:"balance_after"`
}

func newEntryResponse(entry *models.LedgerEntry) EntryResponse {
	return EntryResponse{
		ID:           entry.ID,
		UserID:       entry.UserID,
		Kind:         entry.Kind,
		Debit:        entry.Debit,
		Credit:       entry.Credit,
		Description:  entry.Description,
		Date:         entry.Date,
		BalanceAfter: entry.BalanceAfter,
	}
}

// CreateTransaction records a balance-affecting transaction
// @Summary     Record a transaction
// @Description Record a transaction against the authenticated user's balance; the balance and the ledger entry are updated atomically
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} EntryResponse "Transaction recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Balance constraint or concurrent update"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *LedgerHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entry, err := h.ledgerService.Apply(userID, req.Kind, req.Debit, req.Credit, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "ledger_entry", entry.ID, c.ClientIP(),
		map[string]interface{}{"kind": req.Kind, "debit": req.Debit.String(), "credit": req.Credit.String()})

	c.JSON(http.StatusCreated, gin.H{"transaction": newEntryResponse(entry)})
}

// GetTransactions lists the user's transactions
// @Summary     List transactions
// @Description Get a paginated list of the authenticated user's transactions, newest first, optionally filtered by kind
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       kind      query string false "Filter by kind (deposit, withdrawal, buy, sell, dividend, fee)"
// @Success     200 {object} pagination.PageResponse[models.LedgerEntry] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *LedgerHandler) GetTransactions(c *gin.Context) {
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

	var filter services.LedgerFilter
	if kindStr := c.Query("kind"); kindStr != "" {
		kind := models.EntryKind(kindStr)
		if !kind.IsValid() {
			respondWithError(c, apperrors.ErrInvalidEntryKind)
			return
		}
		filter.Kind = &kind
	}

	result, err := h.ledgerService.GetUserEntries(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRecentTransactions lists the user's most recent transactions
// @Summary     Recent transactions
// @Description Get the authenticated user's newest transactions (default 10)
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       limit query int false "Maximum number of entries (default 10)"
// @Success     200 {object} map[string][]EntryResponse "Recent transactions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/recent [get]
func (h *LedgerHandler) GetRecentTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	limit := 10
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, parseErr := strconv.Atoi(limitStr)
		if parseErr != nil || parsed <= 0 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid limit"))
			return
		}
		limit = parsed
	}

	entries, err := h.ledgerService.GetRecent(userID, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	responses := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, newEntryResponse(&entries[i]))
	}

	c.JSON(http.StatusOK, gin.H{"transactions": responses})
}

// GetTransactionSummary returns additive ledger aggregates
// @Summary     Transaction summary
// @Description Get total debits, total credits, net amount, entry count, and current balance for the authenticated user
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.LedgerSummary "Ledger summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/summary [get]
func (h *LedgerHandler) GetTransactionSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.ledgerService.GetSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetTransactionByID returns one transaction
// @Summary     Get a transaction
// @Description Get a single transaction by ID; entries belonging to other users are reported as not found
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Ledger entry ID"
// @Success     200 {object} EntryResponse "Transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *LedgerHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	entryID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	entry, err := h.ledgerService.GetEntryByID(userID, entryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": newEntryResponse(entry)})
}
