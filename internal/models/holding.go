package models

import (
	"time"

	"tradefolio/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Holding represents a position in one stock symbol for one user. Holdings
// are hard-deleted on sale — no soft deletes, so the (user_id, stock)
// unique index never collides with a previously sold position.
type Holding struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string          `gorm:"type:uuid;not null;uniqueIndex:uq_holdings_user_stock" json:"user_id"`
	Stock         string          `gorm:"size:10;not null;uniqueIndex:uq_holdings_user_stock" json:"stock"`
	Quantity      int64           `gorm:"not null" json:"quantity"`
	BuyingPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"buying_price"`
	CurrentPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"current_price"`
	DatePurchased time.Time       `gorm:"not null" json:"date_purchased"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate hook generates a UUIDv7 and stamps the purchase date
func (h *Holding) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New()
	}
	if h.DatePurchased.IsZero() {
		h.DatePurchased = time.Now()
	}
	return nil
}

// Invested returns the total amount invested in this holding.
func (h *Holding) Invested() decimal.Decimal {
	return h.BuyingPrice.Mul(decimal.NewFromInt(h.Quantity))
}

// CurrentValue returns the current market value of this holding.
func (h *Holding) CurrentValue() decimal.Decimal {
	return h.CurrentPrice.Mul(decimal.NewFromInt(h.Quantity))
}

// ProfitLoss returns the profit or loss for this holding.
func (h *Holding) ProfitLoss() decimal.Decimal {
	return h.CurrentValue().Sub(h.Invested())
}

// ProfitLossPercent returns the profit/loss as a percentage of the amount
// invested, rounded to two places. Zero when nothing is invested.
func (h *Holding) ProfitLossPercent() decimal.Decimal {
	invested := h.Invested()
	if !invested.IsPositive() {
		return decimal.Zero
	}
	return h.ProfitLoss().Div(invested).Mul(decimal.NewFromInt(100)).Round(2)
}
