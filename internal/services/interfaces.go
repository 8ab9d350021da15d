package services

import (
	"github.com/shopspring/decimal"

	"tradefolio/internal/models"
	"tradefolio/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, name, externalID, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	UpdateProfile(userID string, name *string, password *string) (*models.User, error)
	StoreRefreshTokenHash(userID string, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// LedgerFilter holds optional filter parameters for listing ledger entries.
type LedgerFilter struct {
	Kind *models.EntryKind
}

// LedgerSummary contains additive aggregates over a user's ledger.
type LedgerSummary struct {
	TotalDebits    decimal.Decimal `json:"total_debits"`
	TotalCredits   decimal.Decimal `json:"total_credits"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	EntryCount     int64           `json:"entry_count"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

// LedgerServicer is the single gateway for balance mutation. Every change
// to a user's cash balance goes through Apply, which updates the balance
// and appends a ledger entry as one atomic unit.
type LedgerServicer interface {
	Apply(userID string, kind models.EntryKind, debit, credit decimal.Decimal, description string) (*models.LedgerEntry, error)
	GetUserEntries(userID string, page pagination.PageRequest, filter LedgerFilter) (*pagination.PageResponse[models.LedgerEntry], error)
	GetEntryByID(userID, entryID string) (*models.LedgerEntry, error)
	GetRecent(userID string, limit int) ([]models.LedgerEntry, error)
	GetSummary(userID string) (*LedgerSummary, error)
}

// HoldingServicer defines the contract for holdings-related business logic.
type HoldingServicer interface {
	CreateHolding(userID, stock string, quantity int64, buyingPrice, currentPrice decimal.Decimal) (*models.Holding, error)
	GetUserHoldings(userID string, page pagination.PageRequest, stock string) (*pagination.PageResponse[models.Holding], error)
	GetHoldingByID(userID, holdingID string) (*models.Holding, error)
	UpdateCurrentPrice(userID, holdingID string, currentPrice decimal.Decimal) (*models.Holding, error)
	SellHolding(userID, holdingID string) error
	GetProfitable(userID string) ([]models.Holding, error)
	GetLosing(userID string) ([]models.Holding, error)
}

// HoldingPerformance describes one holding's contribution to portfolio
// performance.
type HoldingPerformance struct {
	Stock             string          `json:"stock"`
	ProfitLoss        decimal.Decimal `json:"profit_loss"`
	ProfitLossPercent decimal.Decimal `json:"profit_loss_percentage"`
}

// PortfolioSummary contains aggregated portfolio data for one user.
type PortfolioSummary struct {
	TotalBalance           decimal.Decimal `json:"total_balance"`
	TotalInvested          decimal.Decimal `json:"total_invested"`
	TotalCurrentValue      decimal.Decimal `json:"total_current_value"`
	TotalProfitLoss        decimal.Decimal `json:"total_profit_loss"`
	TotalProfitLossPercent decimal.Decimal `json:"total_profit_loss_percentage"`
	HoldingsCount          int64           `json:"holdings_count"`
	TransactionsCount      int64           `json:"transactions_count"`
}

// PortfolioPerformance ranks holdings by profit/loss percentage.
type PortfolioPerformance struct {
	TotalReturn     decimal.Decimal      `json:"total_return"`
	BestPerformer   *HoldingPerformance  `json:"best_performer"`
	WorstPerformer  *HoldingPerformance  `json:"worst_performer"`
	AllPerformances []HoldingPerformance `json:"all_performances"`
}

// PortfolioServicer defines the contract for portfolio aggregation.
type PortfolioServicer interface {
	GetSummary(userID string) (*PortfolioSummary, error)
	GetPerformance(userID string) (*PortfolioPerformance, error)
	TakeSnapshot(userID string) (*models.PortfolioSnapshot, error)
	GetSnapshots(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.PortfolioSnapshot], error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
