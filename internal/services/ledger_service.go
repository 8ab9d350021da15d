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

// maxBalanceRetries bounds the number of optimistic retries when a
// concurrent mutation invalidates the balance read.
const maxBalanceRetries = 3

// errStaleBalance signals that the balance changed between the read and the
// guarded write. Internal to the retry loop, never surfaced to callers.
var errStaleBalance = errors.New("stale balance read")

// ledgerService handles balance mutation and ledger queries.
type ledgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB) LedgerServicer {
	return &ledgerService{db: db}
}

// Apply atomically applies a balance mutation: it reads the current balance,
// computes the new balance as old + credit - debit, persists it, and appends
// one ledger entry stamped with the resulting balance. Both writes happen in
// a single database transaction. The balance write is guarded by the value
// read at the start, so a conflicting concurrent mutation forces a bounded
// retry instead of a lost update.
//
// The service itself does not floor the result at zero; the column-level
// check constraint rejects negative balances and the whole mutation rolls
// back in that case.
func (s *ledgerService) Apply(userID string, kind models.EntryKind, debit, credit decimal.Decimal, description string) (*models.LedgerEntry, error) {
	if !kind.IsValid() {
		return nil, apperrors.ErrInvalidEntryKind
	}
	if debit.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "debit must not be negative")
	}
	if credit.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "credit must not be negative")
	}

	for attempt := 0; attempt < maxBalanceRetries; attempt++ {
		entry, err := s.tryApply(userID, kind, debit, credit, description)
		if err == nil {
			return entry, nil
		}
		if errors.Is(err, errStaleBalance) {
			continue
		}
		return nil, err
	}
	return nil, apperrors.ErrConcurrentUpdate
}

// tryApply performs a single attempt of the read-compute-write sequence.
func (s *ledgerService) tryApply(userID string, kind models.EntryKind, debit, credit decimal.Decimal, description string) (*models.LedgerEntry, error) {
	var entry *models.LedgerEntry

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrUserNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		newBalance := user.Balance.Add(credit.Sub(debit))

		// Guard the write with the balance we read. Zero rows affected
		// means another mutation committed in between.
		res := tx.Model(&models.User{}).
			Where("id = ? AND balance = ?", userID, user.Balance).
			Update("balance", newBalance)
		if res.Error != nil {
			if isCheckViolation(res.Error) {
				return apperrors.Wrap(apperrors.ErrBalanceConstraint, res.Error)
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return errStaleBalance
		}

		entry = &models.LedgerEntry{
			UserID:       userID,
			Kind:         kind,
			Debit:        debit,
			Credit:       credit,
			Description:  description,
			BalanceAfter: newBalance,
		}
		if err := tx.Create(entry).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// GetUserEntries retrieves a paginated, filtered list of ledger entries for
// a user, newest first.
func (s *ledgerService) GetUserEntries(userID string, page pagination.PageRequest, filter LedgerFilter) (*pagination.PageResponse[models.LedgerEntry], error) {
	page.Defaults()

	base := s.db.Model(&models.LedgerEntry{}).Where("user_id = ?", userID)
	if filter.Kind != nil {
		base = base.Where("kind = ?", *filter.Kind)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.LedgerEntry
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetEntryByID retrieves a ledger entry by ID for a specific user.
func (s *ledgerService) GetEntryByID(userID, entryID string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := s.db.Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &entry, nil
}

// GetRecent retrieves the newest entries for a user, capped at limit.
func (s *ledgerService) GetRecent(userID string, limit int) ([]models.LedgerEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	var entries []models.LedgerEntry
	if err := s.db.Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entries, nil
}

// GetSummary computes additive aggregates over the user's ledger: total
// debits, total credits, net amount, and entry count. No special-casing
// by kind.
func (s *ledgerService) GetSummary(userID string) (*LedgerSummary, error) {
	type sumRow struct {
		TotalDebits  decimal.Decimal
		TotalCredits decimal.Decimal
		EntryCount   int64
	}
	var row sumRow
	if err := s.db.Model(&models.LedgerEntry{}).
		Select("COALESCE(SUM(debit), 0) AS total_debits, COALESCE(SUM(credit), 0) AS total_credits, COUNT(*) AS entry_count").
		Where("user_id = ?", userID).
		Scan(&row).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &LedgerSummary{
		TotalDebits:    row.TotalDebits,
		TotalCredits:   row.TotalCredits,
		NetAmount:      row.TotalCredits.Sub(row.TotalDebits),
		EntryCount:     row.EntryCount,
		CurrentBalance: user.Balance,
	}, nil
}

// isCheckViolation reports whether err is a check-constraint rejection from
// the database (Postgres or SQLite wording).
func isCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "check constraint")
}
