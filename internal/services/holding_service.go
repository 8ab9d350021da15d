package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "tradefolio/internal/errors"
	"tradefolio/internal/models"
	"tradefolio/internal/pagination"
)

// holdingService handles holdings-related business logic.
type holdingService struct {
	db *gorm.DB
}

// NewHoldingService creates a new HoldingServicer.
func NewHoldingService(db *gorm.DB) HoldingServicer {
	return &holdingService{db: db}
}

// CreateHolding records a new stock position for a user. A user can hold at
// most one row per stock symbol; a second purchase of the same symbol is
// rejected as a duplicate rather than merged.
func (s *holdingService) CreateHolding(userID, stock string, quantity int64, buyingPrice, currentPrice decimal.Decimal) (*models.Holding, error) {
	stock = strings.ToUpper(strings.TrimSpace(stock))
	if stock == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "stock symbol is required")
	}
	if quantity <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "quantity must be greater than zero")
	}
	if !buyingPrice.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "buying price must be greater than zero")
	}
	if !currentPrice.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "current price must be greater than zero")
	}

	var count int64
	if err := s.db.Model(&models.Holding{}).Where("user_id = ? AND stock = ?", userID, stock).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateHolding
	}

	holding := &models.Holding{
		UserID:       userID,
		Stock:        stock,
		Quantity:     quantity,
		BuyingPrice:  buyingPrice,
		CurrentPrice: currentPrice,
	}

	if err := s.db.Create(holding).Error; err != nil {
		// Backstop for a race on the (user_id, stock) unique index
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateHolding
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return holding, nil
}

// GetUserHoldings retrieves a paginated list of holdings for a user,
// optionally filtered by stock symbol (case-insensitive), newest-purchased
// first.
func (s *holdingService) GetUserHoldings(userID string, page pagination.PageRequest, stock string) (*pagination.PageResponse[models.Holding], error) {
	page.Defaults()

	base := s.db.Model(&models.Holding{}).Where("user_id = ?", userID)
	if stock != "" {
		base = base.Where("stock = ?", strings.ToUpper(strings.TrimSpace(stock)))
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var holdings []models.Holding
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date_purchased DESC").
		Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(holdings, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetHoldingByID retrieves a holding by ID for a specific user.
func (s *holdingService) GetHoldingByID(userID, holdingID string) (*models.Holding, error) {
	var holding models.Holding
	if err := s.db.Where("id = ? AND user_id = ?", holdingID, userID).First(&holding).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHoldingNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &holding, nil
}

// UpdateCurrentPrice sets a new current market price on a holding. There is
// no live market feed; prices are edited manually.
func (s *holdingService) UpdateCurrentPrice(userID, holdingID string, currentPrice decimal.Decimal) (*models.Holding, error) {
	if !currentPrice.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "current price must be greater than zero")
	}

	holding, err := s.GetHoldingByID(userID, holdingID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(holding).Update("current_price", currentPrice).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	holding.CurrentPrice = currentPrice

	return holding, nil
}

// SellHolding removes a holding. The row is deleted outright; selling does
// not currently write a ledger entry.
func (s *holdingService) SellHolding(userID, holdingID string) error {
	holding, err := s.GetHoldingByID(userID, holdingID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(holding).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetProfitable returns the holdings whose current value exceeds the amount
// invested.
func (s *holdingService) GetProfitable(userID string) ([]models.Holding, error) {
	var holdings []models.Holding
	if err := s.db.Where("user_id = ? AND quantity * current_price > quantity * buying_price", userID).
		Order("date_purchased DESC").
		Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return holdings, nil
}

// GetLosing returns the holdings whose current value is below the amount
// invested.
func (s *holdingService) GetLosing(userID string) ([]models.Holding, error) {
	var holdings []models.Holding
	if err := s.db.Where("user_id = ? AND quantity * current_price < quantity * buying_price", userID).
		Order("date_purchased DESC").
		Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return holdings, nil
}

// isUniqueViolation reports whether err is a unique-constraint rejection
// from the database (Postgres or SQLite wording).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
