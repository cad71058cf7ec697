package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Zaki007-butt/Rentify-backend/internal/events"
	"github.com/Zaki007-butt/Rentify-backend/internal/logger"
	"github.com/Zaki007-butt/Rentify-backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxAmount bounds postings to 15 total digits with 2 decimal places,
// matching the decimal(15,2) ledger columns.
var maxAmount = decimal.New(1, 13)

// Service is the only code path allowed to change a ledger's balance and
// debit/credit totals. Postings against the same ledger are serialized with a
// per-ledger mutex so concurrent requests cannot lose updates, and the ledger
// update and transaction insert share one database transaction.
type Service struct {
	db  *gorm.DB
	pub events.Publisher

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewService(db *gorm.DB, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{
		db:    db,
		pub:   pub,
		locks: make(map[uint]*sync.Mutex),
	}
}

func (s *Service) ledgerLock(ledgerID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.locks[ledgerID]; !ok {
		s.locks[ledgerID] = &sync.Mutex{}
	}
	return s.locks[ledgerID]
}

func (s *Service) forgetLock(ledgerID uint) {
	s.mu.Lock()
	delete(s.locks, ledgerID)
	s.mu.Unlock()
}

// PostingInput is a request to record one transaction against a ledger.
type PostingInput struct {
	LedgerID uint
	Detail   string
	Date     time.Time
	Amount   decimal.Decimal
	Type     string
}

func (in PostingInput) validate() error {
	if in.Type != models.TransactionTypeDebit && in.Type != models.TransactionTypeCredit {
		return invalid("type", "must be debit or credit")
	}
	if in.Amount.IsNegative() {
		return invalid("amount", "must not be negative")
	}
	if !in.Amount.Equal(in.Amount.Truncate(2)) {
		return invalid("amount", "at most 2 decimal places")
	}
	if in.Amount.GreaterThanOrEqual(maxAmount) {
		return invalid("amount", "exceeds 15 digits")
	}
	if in.Date.IsZero() {
		return invalid("date", "is required")
	}
	return nil
}

// Post validates the input, computes the ledger's new balance and totals,
// and records the transaction. A debit increases the balance, a credit
// decreases it. The transaction stores the balance as it stood immediately
// after this posting. Negative balances are permitted.
func (s *Service) Post(ctx context.Context, in PostingInput) (*models.Transaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	lock := s.ledgerLock(in.LedgerID)
	lock.Lock()
	defer lock.Unlock()

	txn := models.Transaction{
		LedgerID: in.LedgerID,
		Detail:   in.Detail,
		Date:     in.Date,
		Amount:   in.Amount,
		Type:     in.Type,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var led models.Ledger
		if err := tx.First(&led, in.LedgerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLedgerNotFound
			}
			return err
		}

		updates := map[string]any{}
		switch in.Type {
		case models.TransactionTypeDebit:
			txn.Balance = led.Balance.Add(in.Amount)
			updates["debit_total"] = led.DebitTotal.Add(in.Amount)
		case models.TransactionTypeCredit:
			txn.Balance = led.Balance.Sub(in.Amount)
			updates["credit_total"] = led.CreditTotal.Add(in.Amount)
		}
		updates["balance"] = txn.Balance

		if err := tx.Model(&models.Ledger{}).Where("id = ?", led.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.pub.Publish(events.TopicTransactionPosted, events.TransactionPosted{
		EventID:       uuid.New().String(),
		TransactionID: txn.ID,
		LedgerID:      txn.LedgerID,
		Type:          txn.Type,
		Amount:        txn.Amount,
		Balance:       txn.Balance,
		OccurredAt:    time.Now().UTC(),
	}); err != nil {
		logger.Log.Warn("failed to publish posting event",
			zap.Uint("transaction_id", txn.ID), zap.Error(err))
	}

	return &txn, nil
}

// Get returns the ledger with its current balance and totals.
func (s *Service) Get(ctx context.Context, ledgerID uint) (*models.Ledger, error) {
	var led models.Ledger
	if err := s.db.WithContext(ctx).First(&led, ledgerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLedgerNotFound
		}
		return nil, err
	}
	return &led, nil
}

// Balance returns the ledger's current balance.
func (s *Service) Balance(ctx context.Context, ledgerID uint) (decimal.Decimal, error) {
	led, err := s.Get(ctx, ledgerID)
	if err != nil {
		return decimal.Zero, err
	}
	return led.Balance, nil
}

// TransactionFilter narrows a transaction listing. Zero values mean "any".
type TransactionFilter struct {
	LedgerID uint
	Type     string
	Date     *time.Time
}

// Transactions returns postings ordered by date descending, then creation
// time descending. The id tie-break keeps the order stable when two postings
// share a timestamp tick.
func (s *Service) Transactions(ctx context.Context, f TransactionFilter) ([]models.Transaction, error) {
	q := s.db.WithContext(ctx).Model(&models.Transaction{})
	if f.LedgerID != 0 {
		q = q.Where("ledger_id = ?", f.LedgerID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Date != nil {
		q = q.Where("date = ?", *f.Date)
	}

	var txns []models.Transaction
	if err := q.Order("date DESC").Order("created_at DESC").Order("id DESC").Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// Transaction returns a single posting by id.
func (s *Service) Transaction(ctx context.Context, id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.WithContext(ctx).First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// DeleteLedger removes a ledger and all of its transactions.
func (s *Service) DeleteLedger(ctx context.Context, ledgerID uint) error {
	lock := s.ledgerLock(ledgerID)
	lock.Lock()
	defer lock.Unlock()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ledger_id = ?", ledgerID).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Ledger{}, ledgerID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrLedgerNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.forgetLock(ledgerID)
	return nil
}

// DeleteAccount removes an account, its ledgers and their transactions.
func (s *Service) DeleteAccount(ctx context.Context, accountID uint) error {
	var ledgerIDs []uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Ledger{}).Where("account_id = ?", accountID).Pluck("id", &ledgerIDs).Error; err != nil {
			return err
		}
		if len(ledgerIDs) > 0 {
			if err := tx.Where("ledger_id IN ?", ledgerIDs).Delete(&models.Transaction{}).Error; err != nil {
				return err
			}
			if err := tx.Where("account_id = ?", accountID).Delete(&models.Ledger{}).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Account{}, accountID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAccountNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, id := range ledgerIDs {
		s.forgetLock(id)
	}
	return nil
}
