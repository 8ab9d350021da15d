package models

import (
	"time"

	"tradefolio/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PortfolioSnapshot represents a point-in-time snapshot of a user's portfolio.
// This is immutable time-series data — no Base embed, no soft deletes.
type PortfolioSnapshot struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string          `gorm:"type:uuid;not null;index" json:"user_id"`
	RecordedAt    time.Time       `gorm:"not null" json:"recorded_at"`
	CashBalance   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"cash_balance"`
	HoldingsValue decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"holdings_value"`
	TotalValue    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_value"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (p *PortfolioSnapshot) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New()
	}
	return nil
}
