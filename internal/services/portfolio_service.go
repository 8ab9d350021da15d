package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "tradefolio/internal/errors"
	"tradefolio/internal/models"
	"tradefolio/internal/pagination"
)

// portfolioService aggregates holdings and ledger data per user.
type portfolioService struct {
	db          *gorm.DB
	userService UserServicer
}

// NewPortfolioService creates a new PortfolioServicer.
func NewPortfolioService(db *gorm.DB, userService UserServicer) PortfolioServicer {
	return &portfolioService{db: db, userService: userService}
}

// GetSummary computes the full portfolio summary: cash balance, sum of
// invested, sum of current value, total profit/loss as the difference of
// the two sums, and the overall percentage (zero when nothing is invested).
func (s *portfolioService) GetSummary(userID string) (*PortfolioSummary, error) {
	user, err := s.userService.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	holdings, err := s.loadHoldings(userID)
	if err != nil {
		return nil, err
	}

	totalInvested := decimal.Zero
	totalCurrent := decimal.Zero
	for i := range holdings {
		totalInvested = totalInvested.Add(holdings[i].Invested())
		totalCurrent = totalCurrent.Add(holdings[i].CurrentValue())
	}

	totalPL := totalCurrent.Sub(totalInvested)
	totalPct := decimal.Zero
	if totalInvested.IsPositive() {
		totalPct = totalPL.Div(totalInvested).Mul(decimal.NewFromInt(100)).Round(2)
	}

	var entryCount int64
	if err := s.db.Model(&models.LedgerEntry{}).Where("user_id = ?", userID).Count(&entryCount).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &PortfolioSummary{
		TotalBalance:           user.Balance,
		TotalInvested:          totalInvested,
		TotalCurrentValue:      totalCurrent,
		TotalProfitLoss:        totalPL,
		TotalProfitLossPercent: totalPct,
		HoldingsCount:          int64(len(holdings)),
		TransactionsCount:      entryCount,
	}, nil
}

// GetPerformance ranks holdings by profit/loss percentage, descending, and
// reports the best and worst performer along with the total return.
func (s *portfolioService) GetPerformance(userID string) (*PortfolioPerformance, error) {
	holdings, err := s.loadHoldings(userID)
	if err != nil {
		return nil, err
	}

	performances := make([]HoldingPerformance, 0, len(holdings))
	totalReturn := decimal.Zero
	for i := range holdings {
		pl := holdings[i].ProfitLoss()
		totalReturn = totalReturn.Add(pl)
		performances = append(performances, HoldingPerformance{
			Stock:             holdings[i].Stock,
			ProfitLoss:        pl,
			ProfitLossPercent: holdings[i].ProfitLossPercent(),
		})
	}

	sort.SliceStable(performances, func(i, j int) bool {
		return performances[i].ProfitLossPercent.GreaterThan(performances[j].ProfitLossPercent)
	})

	result := &PortfolioPerformance{
		TotalReturn:     totalReturn,
		AllPerformances: performances,
	}
	if len(performances) > 0 {
		result.BestPerformer = &performances[0]
		result.WorstPerformer = &performances[len(performances)-1]
	}

	return result, nil
}

// TakeSnapshot records the current cash balance and holdings market value
// as an immutable point-in-time row.
func (s *portfolioService) TakeSnapshot(userID string) (*models.PortfolioSnapshot, error) {
	user, err := s.userService.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	holdings, err := s.loadHoldings(userID)
	if err != nil {
		return nil, err
	}

	holdingsValue := decimal.Zero
	for i := range holdings {
		holdingsValue = holdingsValue.Add(holdings[i].CurrentValue())
	}

	snapshot := &models.PortfolioSnapshot{
		UserID:        userID,
		RecordedAt:    time.Now(),
		CashBalance:   user.Balance,
		HoldingsValue: holdingsValue,
		TotalValue:    user.Balance.Add(holdingsValue),
	}

	if err := s.db.Create(snapshot).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return snapshot, nil
}

// GetSnapshots retrieves a paginated list of snapshots, newest first.
func (s *portfolioService) GetSnapshots(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.PortfolioSnapshot], error) {
	page.Defaults()

	base := s.db.Model(&models.PortfolioSnapshot{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var snapshots []models.PortfolioSnapshot
	if err := base.Scopes(pagination.Paginate(page)).
		Order("recorded_at DESC").
		Find(&snapshots).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(snapshots, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func (s *portfolioService) loadHoldings(userID string) ([]models.Holding, error) {
	var holdings []models.Holding
	if err := s.db.Where("user_id = ?", userID).Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return holdings, nil
}
