package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"tradefolio/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password, unique email, and
// zero balance.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithBalance(t, db, decimal.Zero)
}

// CreateTestUserWithBalance creates a user with the given starting balance.
func CreateTestUserWithBalance(t *testing.T, db *gorm.DB, balance decimal.Decimal) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := nextID()
	user := &models.User{
		Email:      fmt.Sprintf("user%d@test.com", n),
		Password:   string(hash),
		Name:       fmt.Sprintf("Test User %d", n),
		ExternalID: fmt.Sprintf("ext-%d", n),
		Balance:    balance,
		IsActive:   true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestHolding creates a holding with a unique stock symbol.
func CreateTestHolding(t *testing.T, db *gorm.DB, userID string, quantity int64, buyingPrice, currentPrice decimal.Decimal) *models.Holding {
	t.Helper()

	holding := &models.Holding{
		UserID:        userID,
		Stock:         fmt.Sprintf("TST%d", nextID()),
		Quantity:      quantity,
		BuyingPrice:   buyingPrice,
		CurrentPrice:  currentPrice,
		DatePurchased: time.Now(),
	}
	if err := db.Create(holding).Error; err != nil {
		t.Fatalf("failed to create test holding: %v", err)
	}
	return holding
}

// CreateTestEntry inserts a ledger entry directly, bypassing the ledger
// service. The caller is responsible for keeping BalanceAfter coherent.
func CreateTestEntry(t *testing.T, db *gorm.DB, userID string, kind models.EntryKind, debit, credit, balanceAfter decimal.Decimal) *models.LedgerEntry {
	t.Helper()

	entry := &models.LedgerEntry{
		UserID:       userID,
		Kind:         kind,
		Debit:        debit,
		Credit:       credit,
		Description:  fmt.Sprintf("Test entry %d", nextID()),
		Date:         time.Now(),
		BalanceAfter: balanceAfter,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test ledger entry: %v", err)
	}
	return entry
}

// DecimalFromString parses a decimal literal, failing the test on error.
func DecimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal literal %q: %v", s, err)
	}
	return d
}
