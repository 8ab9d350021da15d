package models

import (
	"time"

	"tradefolio/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EntryKind represents the kind of ledger entry
type EntryKind string

const (
	EntryKindDeposit    EntryKind = "deposit"
	EntryKindWithdrawal EntryKind = "withdrawal"
	EntryKindBuy        EntryKind = "buy"
	EntryKindSell       EntryKind = "sell"
	EntryKindDividend   EntryKind = "dividend"
	EntryKindFee        EntryKind = "fee"
)

// IsValid reports whether k is a known entry kind.
func (k EntryKind) IsValid() bool {
	switch k {
	case EntryKindDeposit, EntryKindWithdrawal, EntryKindBuy,
		EntryKindSell, EntryKindDividend, EntryKindFee:
		return true
	}
	return false
}

// LedgerEntry is an immutable record of one balance-affecting event. Rows
// are append-only — no Base embed, no soft deletes. BalanceAfter snapshots
// the account balance at the moment the entry was created.
type LedgerEntry struct {
	ID           string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind         EntryKind       `gorm:"size:20;not null" json:"kind"`
	Debit        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;check:chk_ledger_debit,debit >= 0" json:"debit"`
	Credit       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;check:chk_ledger_credit,credit >= 0" json:"credit"`
	Description  string          `gorm:"size:500" json:"description"`
	Date         time.Time       `gorm:"not null" json:"date"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"balance_after"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate hook generates a UUIDv7 and stamps the server-assigned date
func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New()
	}
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	return nil
}

// Net returns the signed effect of the entry on the balance (credit - debit).
func (e *LedgerEntry) Net() decimal.Decimal {
	return e.Credit.Sub(e.Debit)
}
