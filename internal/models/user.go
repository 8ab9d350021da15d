package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents the user model in the database. The cash balance is
// mutated exclusively through the ledger service so that it never diverges
// from the balance_after of the newest ledger entry.
type User struct {
	Base
	Email               string          `gorm:"uniqueIndex;not null" json:"email"`
	Password            string          `gorm:"not null" json:"-"`
	Name                string          `gorm:"size:100;not null" json:"name"`
	ExternalID          string          `gorm:"size:50;uniqueIndex;not null" json:"external_id"`
	Balance             decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;check:chk_users_balance,balance >= 0" json:"balance"`
	IsActive            bool            `gorm:"default:true" json:"is_active"`
	IsStaff             bool            `gorm:"default:false" json:"-"`
	RefreshTokenHash    string          `gorm:"size:64" json:"-"`
	FailedLoginAttempts int             `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time      `json:"-"`
	LastLoginAt         *time.Time      `json:"last_login_at,omitempty"`

	LedgerEntries []LedgerEntry `gorm:"foreignKey:UserID" json:"ledger_entries,omitempty"`
	Holdings      []Holding     `gorm:"foreignKey:UserID" json:"holdings,omitempty"`
}
