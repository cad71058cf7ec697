package handlers

import (
	"net/http"

	"github.com/Zaki007-butt/Rentify-backend/internal/httputil"
	"github.com/Zaki007-butt/Rentify-backend/internal/logger"
	"github.com/Zaki007-butt/Rentify-backend/internal/models"
	"github.com/Zaki007-butt/Rentify-backend/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type DashboardResponse struct {
	Properties       map[string]int64 `json:"properties"`
	Customers        int64            `json:"customers"`
	ActiveAgreements int64            `json:"active_agreements"`
	PaymentsReceived decimal.Decimal  `json:"payments_received"`
	BillsOutstanding decimal.Decimal  `json:"bills_outstanding"`
}

// DashboardHandler aggregates the back-office overview numbers. Decimal sums
// are folded in Go so the math matches the rest of the money handling.
func DashboardHandler(w http.ResponseWriter, r *http.Request) {
	resp := DashboardResponse{
		Properties:       map[string]int64{},
		PaymentsReceived: decimal.Zero,
		BillsOutstanding: decimal.Zero,
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := store.DB.Model(&models.Property{}).
		Select("status, count(*) as count").Group("status").Scan(&counts).Error; err != nil {
		logger.Log.Error("failed to aggregate properties", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}
	for _, c := range counts {
		resp.Properties[c.Status] = c.Count
	}

	if err := store.DB.Model(&models.Customer{}).Count(&resp.Customers).Error; err != nil {
		logger.Log.Error("failed to count customers", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}
	if err := store.DB.Model(&models.Agreement{}).
		Where("status = ?", models.AgreementStatusActive).Count(&resp.ActiveAgreements).Error; err != nil {
		logger.Log.Error("failed to count agreements", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}

	var paid []decimal.Decimal
	if err := store.DB.Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusCompleted).Pluck("amount", &paid).Error; err != nil {
		logger.Log.Error("failed to sum payments", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}
	for _, a := range paid {
		resp.PaymentsReceived = resp.PaymentsReceived.Add(a)
	}

	var bills []models.UtilityBill
	if err := store.DB.Where("paid_date IS NULL").Find(&bills).Error; err != nil {
		logger.Log.Error("failed to sum utility bills", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}
	for _, b := range bills {
		resp.BillsOutstanding = resp.BillsOutstanding.Add(b.BillAmount.Sub(b.PaidAmount))
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
