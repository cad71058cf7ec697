package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Zaki007-butt/Rentify-backend/internal/httputil"
	"github.com/Zaki007-butt/Rentify-backend/internal/ledger"
	"github.com/Zaki007-butt/Rentify-backend/internal/logger"
	"github.com/Zaki007-butt/Rentify-backend/internal/models"
	"github.com/Zaki007-butt/Rentify-backend/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func writeLedgerError(w http.ResponseWriter, err error) {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		httputil.WriteError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrLedgerNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound):
		httputil.WriteError(w, http.StatusNotFound, err.Error())
	default:
		logger.Log.Error("ledger operation failed", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

type AccountRequest struct {
	Name string `json:"name"`
}

func ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	var accounts []models.Account
	if err := store.DB.Order("name ASC").Find(&accounts).Error; err != nil {
		logger.Log.Error("failed to fetch accounts", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to fetch accounts")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, accounts)
}

func GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	var account models.Account
	if err := store.DB.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "account not found")
			return
		}
		logger.Log.Error("failed to fetch account", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to fetch account")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, account)
}

func CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		httputil.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	account := models.Account{Name: req.Name}
	if err := store.DB.Create(&account).Error; err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "account name already exists")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, account)
}

func UpdateAccountHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		httputil.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	var account models.Account
	if err := store.DB.First(&account, id).Error; err != nil {
		httputil.WriteError(w, http.StatusNotFound, "account not found")
		return
	}

	if err := store.DB.Model(&account).Update("name", req.Name).Error; err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "account name already exists")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, account)
}

func DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	if err := LedgerService.DeleteAccount(r.Context(), id); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type LedgerRequest struct {
	AccountID uint   `json:"account_id"`
	Title     string `json:"title"`
}

func ListLedgersHandler(w http.ResponseWriter, r *http.Request) {
	q := store.DB.Order("created_at DESC").Order("id DESC")
	if accountID, ok := queryID(r, "account_id"); ok {
		q = q.Where("account_id = ?", accountID)
	}

	var ledgers []models.Ledger
	if err := q.Find(&ledgers).Error; err != nil {
		logger.Log.Error("failed to fetch ledgers", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to fetch ledgers")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ledgers)
}

func GetLedgerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid ledger id")
		return
	}

	led, err := LedgerService.Get(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, led)
}

// CreateLedgerHandler accepts only a title and an owning account. Balance and
// totals always start at zero and change only through postings.
func CreateLedgerHandler(w http.ResponseWriter, r *http.Request) {
	var req LedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		httputil.WriteError(w, http.StatusBadRequest, "title is required")
		return
	}

	var account models.Account
	if err := store.DB.First(&account, req.AccountID).Error; err != nil {
		httputil.WriteError(w, http.StatusNotFound, "account not found")
		return
	}

	led := models.Ledger{
		AccountID:   account.ID,
		Title:       req.Title,
		DebitTotal:  decimal.Zero,
		CreditTotal: decimal.Zero,
		Balance:     decimal.Zero,
	}
	if err := store.DB.Create(&led).Error; err != nil {
		logger.Log.Error("failed to create ledger", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create ledger")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, led)
}

func UpdateLedgerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid ledger id")
		return
	}

	var req LedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	led, err := LedgerService.Get(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	updates := map[string]any{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.AccountID != 0 {
		var account models.Account
		if err := store.DB.First(&account, req.AccountID).Error; err != nil {
			httputil.WriteError(w, http.StatusNotFound, "account not found")
			return
		}
		updates["account_id"] = account.ID
	}

	if len(updates) > 0 {
		if err := store.DB.Model(led).Updates(updates).Error; err != nil {
			logger.Log.Error("failed to update ledger", zap.Error(err))
			httputil.WriteError(w, http.StatusInternalServerError, "failed to update ledger")
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, led)
}

func DeleteLedgerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid ledger id")
		return
	}

	if err := LedgerService.DeleteLedger(r.Context(), id); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type TransactionRequest struct {
	LedgerID uint            `json:"ledger_id"`
	Detail   string          `json:"detail"`
	Date     string          `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	Type     string          `json:"type"`
}

func ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	f := ledger.TransactionFilter{Type: r.URL.Query().Get("type")}
	if ledgerID, ok := queryID(r, "ledger_id"); ok {
		f.LedgerID = ledgerID
	}
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		f.Date = &d
	}

	txns, err := LedgerService.Transactions(r.Context(), f)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, txns)
}

func GetTransactionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	txn, err := LedgerService.Transaction(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, txn)
}

// CreateTransactionHandler is the posting endpoint. The response carries the
// ledger balance as it stood right after this posting.
func CreateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	txn, err := LedgerService.Post(r.Context(), ledger.PostingInput{
		LedgerID: req.LedgerID,
		Detail:   req.Detail,
		Date:     date,
		Amount:   req.Amount,
		Type:     req.Type,
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, txn)
}
