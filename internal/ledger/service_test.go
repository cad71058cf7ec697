package ledger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Zaki007-butt/Rentify-backend/internal/logger"
	"github.com/Zaki007-butt/Rentify-backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func testService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	logger.Log = zap.NewNop()

	dsn := filepath.Join(t.TempDir(), "ledger.db") + "?_pragma=busy_timeout(10000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Account{}, &models.Ledger{}, &models.Transaction{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(db, nil), db
}

func testLedger(t *testing.T, db *gorm.DB) *models.Ledger {
	t.Helper()
	account := models.Account{Name: "Office Bank Account"}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}
	led := models.Ledger{
		AccountID:   account.ID,
		Title:       "General",
		DebitTotal:  decimal.Zero,
		CreditTotal: decimal.Zero,
		Balance:     decimal.Zero,
	}
	if err := db.Create(&led).Error; err != nil {
		t.Fatalf("create ledger: %v", err)
	}
	return &led
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func mustPost(t *testing.T, s *Service, ledgerID uint, typ, amount, day string) *models.Transaction {
	t.Helper()
	txn, err := s.Post(context.Background(), PostingInput{
		LedgerID: ledgerID,
		Detail:   typ + " " + amount,
		Date:     date(t, day),
		Amount:   decimal.RequireFromString(amount),
		Type:     typ,
	})
	if err != nil {
		t.Fatalf("post %s %s: %v", typ, amount, err)
	}
	return txn
}

func reload(t *testing.T, db *gorm.DB, id uint) *models.Ledger {
	t.Helper()
	var led models.Ledger
	if err := db.First(&led, id).Error; err != nil {
		t.Fatalf("reload ledger: %v", err)
	}
	return &led
}

// Walks a full posting lifecycle: debit 100 on day one, credit 30 on day
// two, then a backdated debit 20. Balances follow creation order, the
// listing follows date order.
func TestPostingScenario(t *testing.T) {
	s, db := testService(t)
	led := testLedger(t, db)

	txn := mustPost(t, s, led.ID, models.TransactionTypeDebit, "100.00", "2024-01-01")
	if !txn.Balance.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("balance after debit 100: got %s, want 100.00", txn.Balance)
	}
	cur := reload(t, db, led.ID)
	if !cur.DebitTotal.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("debit_total: got %s, want 100.00", cur.DebitTotal)
	}
	if !cur.CreditTotal.IsZero() {
		t.Errorf("credit_total: got %s, want 0", cur.CreditTotal)
	}

	txn = mustPost(t, s, led.ID, models.TransactionTypeCredit, "30.00", "2024-01-02")
	if !txn.Balance.Equal(decimal.RequireFromString("70.00")) {
		t.Errorf("balance after credit 30: got %s, want 70.00", txn.Balance)
	}
	cur = reload(t, db, led.ID)
	if !cur.CreditTotal.Equal(decimal.RequireFromString("30.00")) {
		t.Errorf("credit_total: got %s, want 30.00", cur.CreditTotal)
	}
	if !cur.DebitTotal.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("debit_total changed by credit: got %s", cur.DebitTotal)
	}

	// Backdated posting: applied in creation order, listed in date order.
	txn = mustPost(t, s, led.ID, models.TransactionTypeDebit, "20.00", "2024-01-01")
	if !txn.Balance.Equal(decimal.RequireFromString("90.00")) {
		t.Errorf("balance after backdated debit 20: got %s, want 90.00", txn.Balance)
	}

	txns, err := s.Transactions(context.Background(), TransactionFilter{LedgerID: led.ID})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("transactions: got %d, want 3", len(txns))
	}
	// Date descending puts the credit first despite being created second.
	if txns[0].Type != models.TransactionTypeCredit {
		t.Errorf("first listed: got %s %s, want the credit", txns[0].Type, txns[0].Amount)
	}
	// Same date ties break on creation, most recent first.
	if !txns[1].Amount.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("second listed: got %s, want the backdated 20.00 debit", txns[1].Amount)
	}
	if !txns[2].Amount.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("third listed: got %s, want the original 100.00 debit", txns[2].Amount)
	}
}

func TestRunningBalanceInvariant(t *testing.T) {
	s, db := testService(t)
	led := testLedger(t, db)

	postings := []struct {
		typ    string
		amount string
	}{
		{models.TransactionTypeDebit, "250.00"},
		{models.TransactionTypeCredit, "100.50"},
		{models.TransactionTypeDebit, "0.01"},
		{models.TransactionTypeCredit, "300.00"},
		{models.TransactionTypeDebit, "75.25"},
	}

	debits, credits := decimal.Zero, decimal.Zero
	for i, p := range postings {
		txn := mustPost(t, s, led.ID, p.typ, p.amount, "2024-03-01")
		if p.typ == models.TransactionTypeDebit {
			debits = debits.Add(decimal.RequireFromString(p.amount))
		} else {
			credits = credits.Add(decimal.RequireFromString(p.amount))
		}
		// Every stored snapshot equals the running sum so far.
		if want := debits.Sub(credits); !txn.Balance.Equal(want) {
			t.Errorf("posting %d: snapshot %s, want %s", i, txn.Balance, want)
		}
	}

	cur := reload(t, db, led.ID)
	if want := debits.Sub(credits); !cur.Balance.Equal(want) {
		t.Errorf("final balance: got %s, want %s", cur.Balance, want)
	}
	if !cur.DebitTotal.Equal(debits) {
		t.Errorf("debit_total: got %s, want %s", cur.DebitTotal, debits)
	}
	if !cur.CreditTotal.Equal(credits) {
		t.Errorf("credit_total: got %s, want %s", cur.CreditTotal, credits)
	}
}

func TestNegativeBalancePermitted(t *testing.T) {
	s, db := testService(t)
	led := testLedger(t, db)

	txn := mustPost(t, s, led.ID, models.TransactionTypeCredit, "45.00", "2024-02-01")
	if !txn.Balance.Equal(decimal.RequireFromString("-45.00")) {
		t.Errorf("balance: got %s, want -45.00", txn.Balance)
	}
}

func TestZeroAmountAccepted(t *testing.T) {
	s, db := testService(t)
	led := testLedger(t, db)

	txn := mustPost(t, s, led.ID, models.TransactionTypeDebit, "0.00", "2024-02-01")
	if !txn.Balance.IsZero() {
		t.Errorf("balance: got %s, want 0", txn.Balance)
	}
}

func TestPostValidation(t *testing.T) {
	s, db := testService(t)
	led := testLedger(t, db)
	ctx := context.Background()

	cases := []struct {
		name string
		in   PostingInput
	}{
		{"bad type", PostingInput{LedgerID: led.ID, Date: date(t, "2024-01-01"), Amount: decimal.New(1, 0), Type: "transfer"}},
		{"negative amount", PostingInput{LedgerID: led.ID, Date: date(t, "2024-01-01"), Amount: decimal.RequireFromString("-5.00"), Type: models.TransactionTypeDebit}},
		{"too many decimal places", PostingInput{LedgerID: led.ID, Date: date(t, "2024-01-01"), Amount: decimal.RequireFromString("1.005"), Type: models.TransactionTypeDebit}},
		{"too many digits", PostingInput{LedgerID: led.ID, Date: date(t, "2024-01-01"), Amount: decimal.New(1, 13), Type: models.TransactionTypeDebit}},
		{"missing date", PostingInput{LedgerID: led.ID, Amount: decimal.New(1, 0), Type: models.TransactionTypeDebit}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Post(ctx, tc.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("got %v, want ValidationError", err)
			}
		})
	}

	// Rejected postings must not touch the ledger.
	cur := reload(t, db, led.ID)
	if !cur.Balance.IsZero() || !cur.DebitTotal.IsZero() || !cur.CreditTotal.IsZero() {
		t.Errorf("ledger mutated by rejected postings: %s / %s / %s",
			cur.Balance, cur.DebitTotal, cur.CreditTotal)
	}
}

func TestPostUnknownLedger(t *testing.T) {
	s, _ := testService(t)

	_, err := s.Post(context.Background(), PostingInput{
		LedgerID: 9999,
		Date:     date(t, "2024-01-01"),
		Amount:   decimal.New(1, 0),
		Type:     models.TransactionTypeDebit,
	})
	if !errors.Is(err, ErrLedgerNotFound) {
		t.Fatalf("got %v, want ErrLedgerNotFound", err)
	}
}

func TestTransactionFilters(t *testing.T) {
	s, db := testService(t)
	led := testLedger(t, db)
	other := testLedgerNamed(t, db, "Petty Cash")

	mustPost(t, s, led.ID, models.TransactionTypeDebit, "10.00", "2024-01-01")
	mustPost(t, s, led.ID, models.TransactionTypeCredit, "5.00", "2024-01-02")
	mustPost(t, s, other.ID, models.TransactionTypeDebit, "7.00", "2024-01-01")

	txns, err := s.Transactions(context.Background(), TransactionFilter{LedgerID: led.ID, Type: models.TransactionTypeCredit})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txns) != 1 || !txns[0].Amount.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("type filter: got %d rows", len(txns))
	}

	d := date(t, "2024-01-01")
	txns, err = s.Transactions(context.Background(), TransactionFilter{Date: &d})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("date filter: got %d rows, want 2", len(txns))
	}
}

func testLedgerNamed(t *testing.T, db *gorm.DB, title string) *models.Ledger {
	t.Helper()
	account := models.Account{Name: title + " account"}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}
	led := models.Ledger{
		AccountID:   account.ID,
		Title:       title,
		DebitTotal:  decimal.Zero,
		CreditTotal: decimal.Zero,
		Balance:     decimal.Zero,
	}
	if err := db.Create(&led).Error; err != nil {
		t.Fatalf("create ledger: %v", err)
	}
	return &led
}

func TestDeleteAccountCascades(t *testing.T) {
	s, db := testService(t)
	led := testLedger(t, db)

	mustPost(t, s, led.ID, models.TransactionTypeDebit, "10.00", "2024-01-01")
	mustPost(t, s, led.ID, models.TransactionTypeCredit, "4.00", "2024-01-02")

	if err := s.DeleteAccount(context.Background(), led.AccountID); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	var ledgers, txns int64
	db.Model(&models.Ledger{}).Where("account_id = ?", led.AccountID).Count(&ledgers)
	db.Model(&models.Transaction{}).Where("ledger_id = ?", led.ID).Count(&txns)
	if ledgers != 0 || txns != 0 {
		t.Errorf("cascade left %d ledgers, %d transactions", ledgers, txns)
	}

	if err := s.DeleteAccount(context.Background(), led.AccountID); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("second delete: got %v, want ErrAccountNotFound", err)
	}
}

func lockCount(s *Service) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}

func TestDeleteLedgerReleasesLock(t *testing.T) {
	s, db := testService(t)
	led := testLedger(t, db)
	mustPost(t, s, led.ID, models.TransactionTypeDebit, "10.00", "2024-01-01")

	if err := s.DeleteLedger(context.Background(), led.ID); err != nil {
		t.Fatalf("delete ledger: %v", err)
	}
	if n := lockCount(s); n != 0 {
		t.Errorf("lock entries after ledger delete: got %d, want 0", n)
	}
}

func TestDeleteAccountReleasesLocks(t *testing.T) {
	s, db := testService(t)
	led := testLedger(t, db)
	other := testLedgerNamed(t, db, "Petty Cash")
	mustPost(t, s, led.ID, models.TransactionTypeDebit, "10.00", "2024-01-01")
	mustPost(t, s, other.ID, models.TransactionTypeDebit, "5.00", "2024-01-01")

	if err := s.DeleteAccount(context.Background(), led.AccountID); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	// Only the other account's ledger keeps its lock.
	if n := lockCount(s); n != 1 {
		t.Errorf("lock entries after account delete: got %d, want 1", n)
	}
}

func TestDeleteLedgerCascades(t *testing.T) {
	s, db := testService(t)
	led := testLedger(t, db)
	mustPost(t, s, led.ID, models.TransactionTypeDebit, "10.00", "2024-01-01")

	if err := s.DeleteLedger(context.Background(), led.ID); err != nil {
		t.Fatalf("delete ledger: %v", err)
	}

	var txns int64
	db.Model(&models.Transaction{}).Where("ledger_id = ?", led.ID).Count(&txns)
	if txns != 0 {
		t.Errorf("cascade left %d transactions", txns)
	}
}

// Concurrent postings against one ledger must not lose updates.
func TestConcurrentPostings(t *testing.T) {
	s, db := testService(t)
	led := testLedger(t, db)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := s.Post(context.Background(), PostingInput{
				LedgerID: led.ID,
				Detail:   fmt.Sprintf("worker %d", n),
				Date:     date(t, "2024-05-01"),
				Amount:   decimal.RequireFromString("1.00"),
				Type:     models.TransactionTypeDebit,
			})
			if err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent post: %v", err)
	}

	cur := reload(t, db, led.ID)
	want := decimal.New(workers, 0)
	if !cur.Balance.Equal(want) {
		t.Errorf("balance: got %s, want %s", cur.Balance, want)
	}
	if !cur.DebitTotal.Equal(want) {
		t.Errorf("debit_total: got %s, want %s", cur.DebitTotal, want)
	}

	// Snapshots must form the full 1..N sequence in some order.
	txns, err := s.Transactions(context.Background(), TransactionFilter{LedgerID: led.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	seen := map[string]bool{}
	for _, txn := range txns {
		seen[txn.Balance.StringFixed(2)] = true
	}
	for i := 1; i <= workers; i++ {
		if !seen[decimal.New(int64(i), 0).StringFixed(2)] {
			t.Errorf("missing snapshot %d", i)
		}
	}
}
