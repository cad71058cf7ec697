package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Zaki007-butt/Rentify-backend/internal/ledger"
	"github.com/go-chi/chi/v5"
)

// LedgerService is the posting service behind the accounts/ledgers surface.
// Wired in main, swapped for a sqlite-backed one in tests.
var LedgerService *ledger.Service

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	return uint(id), err
}

func queryID(r *http.Request, name string) (uint, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
