package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/Zaki007-butt/Rentify-backend/configs"
	"github.com/Zaki007-butt/Rentify-backend/internal/ledger"
	"github.com/Zaki007-butt/Rentify-backend/internal/logger"
	appmw "github.com/Zaki007-butt/Rentify-backend/internal/middleware"
	"github.com/Zaki007-butt/Rentify-backend/internal/models"
	"github.com/Zaki007-butt/Rentify-backend/internal/store"
	"github.com/glebarez/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setup(t *testing.T) (http.Handler, string) {
	t.Helper()
	logger.Log = zap.NewNop()
	configs.AppConfig.JWT.SECRET = "test-secret"

	dsn := filepath.Join(t.TempDir(), "api.db") + "?_pragma=busy_timeout(10000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.PropertyCategory{}, &models.PropertyType{},
		&models.Property{}, &models.Customer{}, &models.Agreement{},
		&models.Payment{}, &models.UtilityBill{},
		&models.Account{}, &models.Ledger{}, &models.Transaction{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store.DB = db
	LedgerService = ledger.NewService(db, nil)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	admin := models.User{Name: "Admin", Email: "admin@rentify.local", Password: string(hash), IsAdmin: true, IsActive: true}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}
	token, err := signToken(&admin)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	r := chi.NewRouter()
	r.Post("/auth/register", RegisterHandler)
	r.Post("/auth/login", LoginHandler)
	r.Group(func(r chi.Router) {
		r.Use(appmw.Authenticated)
		r.Get("/auth/me", MeHandler)
		r.Group(func(r chi.Router) {
			r.Use(appmw.AdminOnly)
			r.Post("/categories", CreateCategoryHandler)
			r.Delete("/categories/{id}", DeleteCategoryHandler)
			r.Post("/types", CreateTypeHandler)
			r.Get("/types", ListTypesHandler)
			r.Post("/properties", CreatePropertyHandler)
			r.Get("/properties/{id}", GetPropertyHandler)
			r.Delete("/properties/{id}", DeletePropertyHandler)
			r.Post("/customers", CreateCustomerHandler)
			r.Get("/customers/{id}", GetCustomerHandler)
			r.Delete("/customers/{id}", DeleteCustomerHandler)
			r.Post("/agreements", CreateAgreementHandler)
			r.Get("/agreements", ListAgreementsHandler)
			r.Post("/payments", CreatePaymentHandler)
			r.Get("/payments", ListPaymentsHandler)
			r.Post("/bills", CreateUtilityBillHandler)
			r.Get("/bills", ListUtilityBillsHandler)
			r.Get("/accounts", ListAccountsHandler)
			r.Post("/accounts", CreateAccountHandler)
			r.Delete("/accounts/{id}", DeleteAccountHandler)
			r.Post("/ledgers", CreateLedgerHandler)
			r.Get("/ledgers/{id}", GetLedgerHandler)
			r.Put("/ledgers/{id}", UpdateLedgerHandler)
			r.Get("/transactions", ListTransactionsHandler)
			r.Post("/transactions", CreateTransactionHandler)
		})
	})
	return r, token
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func createLedger(t *testing.T, h http.Handler, token string) models.Ledger {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/accounts", token, map[string]any{"name": "Office Bank Account"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account: status %d: %s", rec.Code, rec.Body)
	}
	account := decode[models.Account](t, rec)

	rec = doJSON(t, h, http.MethodPost, "/ledgers", token, map[string]any{"account_id": account.ID, "title": "General"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create ledger: status %d: %s", rec.Code, rec.Body)
	}
	return decode[models.Ledger](t, rec)
}

func TestPostingEndpoint(t *testing.T) {
	h, token := setup(t)
	led := createLedger(t, h, token)

	rec := doJSON(t, h, http.MethodPost, "/transactions", token, map[string]any{
		"ledger_id": led.ID,
		"detail":    "January rent",
		"date":      "2024-01-01",
		"amount":    "100.00",
		"type":      "debit",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("post debit: status %d: %s", rec.Code, rec.Body)
	}
	txn := decode[models.Transaction](t, rec)
	if !txn.Balance.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("snapshot: got %s, want 100.00", txn.Balance)
	}

	rec = doJSON(t, h, http.MethodPost, "/transactions", token, map[string]any{
		"ledger_id": led.ID,
		"detail":    "electricity bill",
		"date":      "2024-01-02",
		"amount":    "30.00",
		"type":      "credit",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("post credit: status %d: %s", rec.Code, rec.Body)
	}
	txn = decode[models.Transaction](t, rec)
	if !txn.Balance.Equal(decimal.RequireFromString("70.00")) {
		t.Errorf("snapshot: got %s, want 70.00", txn.Balance)
	}

	rec = doJSON(t, h, http.MethodGet, "/ledgers/"+itoa(led.ID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get ledger: status %d", rec.Code)
	}
	cur := decode[models.Ledger](t, rec)
	if !cur.Balance.Equal(decimal.RequireFromString("70.00")) {
		t.Errorf("ledger balance: got %s, want 70.00", cur.Balance)
	}
	if !cur.DebitTotal.Equal(decimal.RequireFromString("100.00")) || !cur.CreditTotal.Equal(decimal.RequireFromString("30.00")) {
		t.Errorf("totals: got %s / %s", cur.DebitTotal, cur.CreditTotal)
	}
}

func TestPostingEndpointRejectsBadInput(t *testing.T) {
	h, token := setup(t)
	led := createLedger(t, h, token)

	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{"bad type", map[string]any{"ledger_id": led.ID, "date": "2024-01-01", "amount": "10.00", "type": "transfer"}, http.StatusBadRequest},
		{"bad date", map[string]any{"ledger_id": led.ID, "date": "01/01/2024", "amount": "10.00", "type": "debit"}, http.StatusBadRequest},
		{"bad amount", map[string]any{"ledger_id": led.ID, "date": "2024-01-01", "amount": "ten", "type": "debit"}, http.StatusBadRequest},
		{"unknown ledger", map[string]any{"ledger_id": 9999, "date": "2024-01-01", "amount": "10.00", "type": "debit"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/transactions", token, tc.body)
			if rec.Code != tc.want {
				t.Errorf("status: got %d, want %d: %s", rec.Code, tc.want, rec.Body)
			}
		})
	}
}

// A ledger update may rename or move the ledger, but raw balance/total fields
// in the payload must be ignored.
func TestLedgerDerivedFieldsReadOnly(t *testing.T) {
	h, token := setup(t)
	led := createLedger(t, h, token)

	doJSON(t, h, http.MethodPost, "/transactions", token, map[string]any{
		"ledger_id": led.ID, "date": "2024-01-01", "amount": "50.00", "type": "debit",
	})

	rec := doJSON(t, h, http.MethodPut, "/ledgers/"+itoa(led.ID), token, map[string]any{
		"title":        "Renamed",
		"balance":      "9999.00",
		"debit_total":  "9999.00",
		"credit_total": "9999.00",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update ledger: status %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, h, http.MethodGet, "/ledgers/"+itoa(led.ID), token, nil)
	cur := decode[models.Ledger](t, rec)
	if cur.Title != "Renamed" {
		t.Errorf("title: got %q, want Renamed", cur.Title)
	}
	if !cur.Balance.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("balance overwritten: got %s, want 50.00", cur.Balance)
	}
	if !cur.DebitTotal.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("debit_total overwritten: got %s, want 50.00", cur.DebitTotal)
	}
	if !cur.CreditTotal.IsZero() {
		t.Errorf("credit_total overwritten: got %s, want 0", cur.CreditTotal)
	}
}

func TestTransactionListFilters(t *testing.T) {
	h, token := setup(t)
	led := createLedger(t, h, token)

	for _, p := range []struct{ date, amount, typ string }{
		{"2024-01-01", "100.00", "debit"},
		{"2024-01-02", "30.00", "credit"},
		{"2024-01-01", "20.00", "debit"},
	} {
		rec := doJSON(t, h, http.MethodPost, "/transactions", token, map[string]any{
			"ledger_id": led.ID, "date": p.date, "amount": p.amount, "type": p.typ,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("post: status %d: %s", rec.Code, rec.Body)
		}
	}

	rec := doJSON(t, h, http.MethodGet, "/transactions?ledger_id="+itoa(led.ID), token, nil)
	txns := decode[[]models.Transaction](t, rec)
	if len(txns) != 3 {
		t.Fatalf("list: got %d rows, want 3", len(txns))
	}
	if txns[0].Type != "credit" {
		t.Errorf("date ordering: first row is %s %s, want the credit", txns[0].Type, txns[0].Amount)
	}

	rec = doJSON(t, h, http.MethodGet, "/transactions?ledger_id="+itoa(led.ID)+"&type=debit", token, nil)
	txns = decode[[]models.Transaction](t, rec)
	if len(txns) != 2 {
		t.Errorf("type filter: got %d rows, want 2", len(txns))
	}

	rec = doJSON(t, h, http.MethodGet, "/transactions?date=2024-01-02", token, nil)
	txns = decode[[]models.Transaction](t, rec)
	if len(txns) != 1 {
		t.Errorf("date filter: got %d rows, want 1", len(txns))
	}
}

func TestAccountDeleteCascadesOverHTTP(t *testing.T) {
	h, token := setup(t)
	led := createLedger(t, h, token)

	doJSON(t, h, http.MethodPost, "/transactions", token, map[string]any{
		"ledger_id": led.ID, "date": "2024-01-01", "amount": "10.00", "type": "debit",
	})

	rec := doJSON(t, h, http.MethodDelete, "/accounts/"+itoa(led.AccountID), token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete account: status %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, h, http.MethodGet, "/ledgers/"+itoa(led.ID), token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("ledger after cascade: status %d, want 404", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/transactions?ledger_id="+itoa(led.ID), token, nil)
	if txns := decode[[]models.Transaction](t, rec); len(txns) != 0 {
		t.Errorf("transactions after cascade: got %d rows, want 0", len(txns))
	}
}

func TestAdminGate(t *testing.T) {
	h, _ := setup(t)

	rec := doJSON(t, h, http.MethodPost, "/auth/register", "", map[string]any{
		"name": "Plain User", "email": "user@rentify.local",
		"password": "password123", "password_confirmation": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d: %s", rec.Code, rec.Body)
	}
	resp := decode[LoginResponse](t, rec)

	if rec := doJSON(t, h, http.MethodGet, "/auth/me", resp.Token, nil); rec.Code != http.StatusOK {
		t.Errorf("me: status %d, want 200", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/accounts", resp.Token, nil); rec.Code != http.StatusForbidden {
		t.Errorf("accounts as non-admin: status %d, want 403", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/accounts", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("accounts without token: status %d, want 401", rec.Code)
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
