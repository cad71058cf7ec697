package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Zaki007-butt/Rentify-backend/internal/httputil"
	"github.com/Zaki007-butt/Rentify-backend/internal/logger"
	"github.com/Zaki007-butt/Rentify-backend/internal/models"
	"github.com/Zaki007-butt/Rentify-backend/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// deleteAgreementChildren removes the payments and utility bills hanging off
// the given agreements. Runs inside the caller's transaction.
func deleteAgreementChildren(tx *gorm.DB, agreementIDs []uint) error {
	if len(agreementIDs) == 0 {
		return nil
	}
	if err := tx.Where("agreement_id IN ?", agreementIDs).Delete(&models.Payment{}).Error; err != nil {
		return err
	}
	return tx.Where("agreement_id IN ?", agreementIDs).Delete(&models.UtilityBill{}).Error
}

type CustomerRequest struct {
	UserID      uint   `json:"user_id"`
	CNIC        string `json:"cnic"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

func ListCustomersHandler(w http.ResponseWriter, r *http.Request) {
	var customers []models.Customer
	if err := store.DB.Preload("User").Order("created_at DESC").Find(&customers).Error; err != nil {
		logger.Log.Error("failed to fetch customers", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to fetch customers")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, customers)
}

func CreateCustomerHandler(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CNIC == "" || req.PhoneNumber == "" {
		httputil.WriteError(w, http.StatusBadRequest, "cnic and phone_number are required")
		return
	}

	var user models.User
	if err := store.DB.First(&user, req.UserID).Error; err != nil {
		httputil.WriteError(w, http.StatusNotFound, "user not found")
		return
	}

	customer := models.Customer{
		UserID:      user.ID,
		CNIC:        req.CNIC,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	}
	if err := store.DB.Create(&customer).Error; err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "cnic or phone number already registered")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, customer)
}

func GetCustomerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var customer models.Customer
	if err := store.DB.Preload("User").First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "customer not found")
			return
		}
		logger.Log.Error("failed to fetch customer", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to fetch customer")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, customer)
}

func UpdateCustomerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var customer models.Customer
	if err := store.DB.First(&customer, id).Error; err != nil {
		httputil.WriteError(w, http.StatusNotFound, "customer not found")
		return
	}

	updates := map[string]any{}
	if req.CNIC != "" {
		updates["cnic"] = req.CNIC
	}
	if req.PhoneNumber != "" {
		updates["phone_number"] = req.PhoneNumber
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}

	if len(updates) > 0 {
		if err := store.DB.Model(&customer).Updates(updates).Error; err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "cnic or phone number already registered")
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, customer)
}

// DeleteCustomerHandler removes a customer and cascades through their
// agreements to payments and utility bills. The linked user stays.
func DeleteCustomerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	err = store.DB.Transaction(func(tx *gorm.DB) error {
		var agreementIDs []uint
		if err := tx.Model(&models.Agreement{}).Where("customer_id = ?", id).Pluck("id", &agreementIDs).Error; err != nil {
			return err
		}
		if err := deleteAgreementChildren(tx, agreementIDs); err != nil {
			return err
		}
		if len(agreementIDs) > 0 {
			if err := tx.Where("customer_id = ?", id).Delete(&models.Agreement{}).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Customer{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "customer not found")
		return
	}
	if err != nil {
		logger.Log.Error("failed to delete customer", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete customer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type AgreementRequest struct {
	PropertyID     uint             `json:"property_id"`
	CustomerID     uint             `json:"customer_id"`
	Details        string           `json:"details"`
	RentStartDate  string           `json:"rent_start_date"`
	RentEndDate    string           `json:"rent_end_date"`
	PurchaseDate   string           `json:"purchase_date"`
	SecurityAmount *decimal.Decimal `json:"security_amount"`
	Status         string           `json:"status"`
}

func validAgreementStatus(s string) bool {
	switch s {
	case models.AgreementStatusPending, models.AgreementStatusActive,
		models.AgreementStatusCompleted, models.AgreementStatusCancelled:
		return true
	}
	return false
}

func ListAgreementsHandler(w http.ResponseWriter, r *http.Request) {
	q := store.DB.Preload("Property").Preload("Customer").Order("created_at DESC")
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if propertyID, ok := queryID(r, "property_id"); ok {
		q = q.Where("property_id = ?", propertyID)
	}

	var agreements []models.Agreement
	if err := q.Find(&agreements).Error; err != nil {
		logger.Log.Error("failed to fetch agreements", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to fetch agreements")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, agreements)
}

func GetAgreementHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid agreement id")
		return
	}

	var agreement models.Agreement
	if err := store.DB.Preload("Property").Preload("Customer").First(&agreement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httputil.WriteError(w, http.StatusNotFound, "agreement not found")
			return
		}
		logger.Log.Error("failed to fetch agreement", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to fetch agreement")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, agreement)
}

func CreateAgreementHandler(w http.ResponseWriter, r *http.Request) {
	var req AgreementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var property models.Property
	if err := store.DB.First(&property, req.PropertyID).Error; err != nil {
		httputil.WriteError(w, http.StatusNotFound, "property not found")
		return
	}
	var customer models.Customer
	if err := store.DB.First(&customer, req.CustomerID).Error; err != nil {
		httputil.WriteError(w, http.StatusNotFound, "customer not found")
		return
	}

	status := req.Status
	if status == "" {
		status = models.AgreementStatusPending
	}
	if !validAgreementStatus(status) {
		httputil.WriteError(w, http.StatusBadRequest, "invalid agreement status")
		return
	}
	if req.SecurityAmount != nil && req.SecurityAmount.IsNegative() {
		httputil.WriteError(w, http.StatusBadRequest, "security_amount must not be negative")
		return
	}

	rentStart, err := parseOptionalDate(req.RentStartDate)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid rent_start_date, expected YYYY-MM-DD")
		return
	}
	rentEnd, err := parseOptionalDate(req.RentEndDate)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid rent_end_date, expected YYYY-MM-DD")
		return
	}
	purchase, err := parseOptionalDate(req.PurchaseDate)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid purchase_date, expected YYYY-MM-DD")
		return
	}

	agreement := models.Agreement{
		PropertyID:     property.ID,
		CustomerID:     customer.ID,
		Details:        req.Details,
		RentStartDate:  rentStart,
		RentEndDate:    rentEnd,
		PurchaseDate:   purchase,
		SecurityAmount: req.SecurityAmount,
		Status:         status,
	}
	if err := store.DB.Create(&agreement).Error; err != nil {
		logger.Log.Error("failed to create agreement", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create agreement")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, agreement)
}

func UpdateAgreementStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid agreement id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validAgreementStatus(req.Status) {
		httputil.WriteError(w, http.StatusBadRequest, "invalid agreement status")
		return
	}

	var agreement models.Agreement
	if err := store.DB.First(&agreement, id).Error; err != nil {
		httputil.WriteError(w, http.StatusNotFound, "agreement not found")
		return
	}

	if err := store.DB.Model(&agreement).Update("status", req.Status).Error; err != nil {
		logger.Log.Error("failed to update agreement", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to update agreement")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, agreement)
}

func UpdateAgreementHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid agreement id")
		return
	}

	var agreement models.Agreement
	if err := store.DB.First(&agreement, id).Error; err != nil {
		httputil.WriteError(w, http.StatusNotFound, "agreement not found")
		return
	}

	var req AgreementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Status != "" && !validAgreementStatus(req.Status) {
		httputil.WriteError(w, http.StatusBadRequest, "invalid agreement status")
		return
	}
	if req.SecurityAmount != nil && req.SecurityAmount.IsNegative() {
		httputil.WriteError(w, http.StatusBadRequest, "security_amount must not be negative")
		return
	}

	rentStart, err := parseOptionalDate(req.RentStartDate)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid rent_start_date, expected YYYY-MM-DD")
		return
	}
	rentEnd, err := parseOptionalDate(req.RentEndDate)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid rent_end_date, expected YYYY-MM-DD")
		return
	}
	purchase, err := parseOptionalDate(req.PurchaseDate)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid purchase_date, expected YYYY-MM-DD")
		return
	}

	if req.Details != "" {
		agreement.Details = req.Details
	}
	if rentStart != nil {
		agreement.RentStartDate = rentStart
	}
	if rentEnd != nil {
		agreement.RentEndDate = rentEnd
	}
	if purchase != nil {
		agreement.PurchaseDate = purchase
	}
	if req.SecurityAmount != nil {
		agreement.SecurityAmount = req.SecurityAmount
	}
	if req.Status != "" {
		agreement.Status = req.Status
	}

	if err := store.DB.Save(&agreement).Error; err != nil {
		logger.Log.Error("failed to update agreement", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to update agreement")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, agreement)
}

// DeleteAgreementHandler removes an agreement with its payments and bills.
func DeleteAgreementHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid agreement id")
		return
	}

	err = store.DB.Transaction(func(tx *gorm.DB) error {
		if err := deleteAgreementChildren(tx, []uint{id}); err != nil {
			return err
		}
		res := tx.Delete(&models.Agreement{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "agreement not found")
		return
	}
	if err != nil {
		logger.Log.Error("failed to delete agreement", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete agreement")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type PaymentRequest struct {
	AgreementID uint            `json:"agreement_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	Status      string          `json:"status"`
	Date        string          `json:"date"`
}

func ListPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	q := store.DB.Order("created_at DESC")
	if agreementID, ok := queryID(r, "agreement_id"); ok {
		q = q.Where("agreement_id = ?", agreementID)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var payments []models.Payment
	if err := q.Find(&payments).Error; err != nil {
		logger.Log.Error("failed to fetch payments", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to fetch payments")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, payments)
}

func CreatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var agreement models.Agreement
	if err := store.DB.First(&agreement, req.AgreementID).Error; err != nil {
		httputil.WriteError(w, http.StatusNotFound, "agreement not found")
		return
	}

	if req.Method != models.PaymentMethodCash && req.Method != models.PaymentMethodBank &&
		req.Method != models.PaymentMethodOnline {
		httputil.WriteError(w, http.StatusBadRequest, "method must be cash, bank or online")
		return
	}

	status := req.Status
	if status == "" {
		status = models.PaymentStatusPending
	}
	if status != models.PaymentStatusPending && status != models.PaymentStatusCompleted &&
		status != models.PaymentStatusFailed {
		httputil.WriteError(w, http.StatusBadRequest, "invalid payment status")
		return
	}
	if !req.Amount.IsPositive() {
		httputil.WriteError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	payment := models.Payment{
		AgreementID: agreement.ID,
		Amount:      req.Amount,
		Method:      req.Method,
		Status:      status,
		Date:        date,
		Reference:   uuid.New().String(),
	}
	if err := store.DB.Create(&payment).Error; err != nil {
		logger.Log.Error("failed to create payment", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create payment")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, payment)
}

func UpdatePaymentStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status != models.PaymentStatusPending && req.Status != models.PaymentStatusCompleted &&
		req.Status != models.PaymentStatusFailed {
		httputil.WriteError(w, http.StatusBadRequest, "invalid payment status")
		return
	}

	var payment models.Payment
	if err := store.DB.First(&payment, id).Error; err != nil {
		httputil.WriteError(w, http.StatusNotFound, "payment not found")
		return
	}

	if err := store.DB.Model(&payment).Update("status", req.Status).Error; err != nil {
		logger.Log.Error("failed to update payment", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to update payment")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, payment)
}

func UpdatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	var payment models.Payment
	if err := store.DB.First(&payment, id).Error; err != nil {
		httputil.WriteError(w, http.StatusNotFound, "payment not found")
		return
	}

	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Method != "" {
		if req.Method != models.PaymentMethodCash && req.Method != models.PaymentMethodBank &&
			req.Method != models.PaymentMethodOnline {
			httputil.WriteError(w, http.StatusBadRequest, "method must be cash, bank or online")
			return
		}
		payment.Method = req.Method
	}
	if req.Status != "" {
		if req.Status != models.PaymentStatusPending && req.Status != models.PaymentStatusCompleted &&
			req.Status != models.PaymentStatusFailed {
			httputil.WriteError(w, http.StatusBadRequest, "invalid payment status")
			return
		}
		payment.Status = req.Status
	}
	if !req.Amount.IsZero() {
		if req.Amount.IsNegative() {
			httputil.WriteError(w, http.StatusBadRequest, "amount must be positive")
			return
		}
		payment.Amount = req.Amount
	}
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		payment.Date = date
	}

	if err := store.DB.Save(&payment).Error; err != nil {
		logger.Log.Error("failed to update payment", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to update payment")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, payment)
}

func DeletePaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	res := store.DB.Delete(&models.Payment{}, id)
	if res.Error != nil {
		logger.Log.Error("failed to delete payment", zap.Error(res.Error))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete payment")
		return
	}
	if res.RowsAffected == 0 {
		httputil.WriteError(w, http.StatusNotFound, "payment not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type UtilityBillRequest struct {
	AgreementID uint            `json:"agreement_id"`
	BillType    string          `json:"bill_type"`
	BillAmount  decimal.Decimal `json:"bill_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	BillDate    string          `json:"bill_date"`
	DueDate     string          `json:"due_date"`
	PaidDate    string          `json:"paid_date"`
}

func ListUtilityBillsHandler(w http.ResponseWriter, r *http.Request) {
	q := store.DB.Order("bill_date DESC").Order("id DESC")
	if agreementID, ok := queryID(r, "agreement_id"); ok {
		q = q.Where("agreement_id = ?", agreementID)
	}

	var bills []models.UtilityBill
	if err := q.Find(&bills).Error; err != nil {
		logger.Log.Error("failed to fetch utility bills", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to fetch utility bills")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, bills)
}

func CreateUtilityBillHandler(w http.ResponseWriter, r *http.Request) {
	var req UtilityBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var agreement models.Agreement
	if err := store.DB.First(&agreement, req.AgreementID).Error; err != nil {
		httputil.WriteError(w, http.StatusNotFound, "agreement not found")
		return
	}

	switch req.BillType {
	case models.BillTypeElectricity, models.BillTypeGas, models.BillTypeWater, models.BillTypeMaintenance:
	default:
		httputil.WriteError(w, http.StatusBadRequest, "bill_type must be electricity, gas, water or maintenance")
		return
	}
	if !req.BillAmount.IsPositive() {
		httputil.WriteError(w, http.StatusBadRequest, "bill_amount must be positive")
		return
	}
	if req.PaidAmount.IsNegative() {
		httputil.WriteError(w, http.StatusBadRequest, "paid_amount must not be negative")
		return
	}

	billDate, err := parseDate(req.BillDate)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid bill_date, expected YYYY-MM-DD")
		return
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid due_date, expected YYYY-MM-DD")
		return
	}
	paidDate, err := parseOptionalDate(req.PaidDate)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid paid_date, expected YYYY-MM-DD")
		return
	}

	bill := models.UtilityBill{
		AgreementID: agreement.ID,
		BillType:    req.BillType,
		BillAmount:  req.BillAmount,
		PaidAmount:  req.PaidAmount,
		BillDate:    billDate,
		DueDate:     dueDate,
		PaidDate:    paidDate,
	}
	if err := store.DB.Create(&bill).Error; err != nil {
		logger.Log.Error("failed to create utility bill", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create utility bill")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, bill)
}

// UpdateUtilityBillHandler records payment progress on a bill.
func UpdateUtilityBillHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid bill id")
		return
	}

	var bill models.UtilityBill
	if err := store.DB.First(&bill, id).Error; err != nil {
		httputil.WriteError(w, http.StatusNotFound, "bill not found")
		return
	}

	var req UtilityBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !req.PaidAmount.IsZero() {
		if req.PaidAmount.IsNegative() {
			httputil.WriteError(w, http.StatusBadRequest, "paid_amount must not be negative")
			return
		}
		bill.PaidAmount = req.PaidAmount
	}
	if req.PaidDate != "" {
		paidDate, err := parseOptionalDate(req.PaidDate)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "invalid paid_date, expected YYYY-MM-DD")
			return
		}
		bill.PaidDate = paidDate
	}
	if req.DueDate != "" {
		dueDate, err := parseDate(req.DueDate)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "invalid due_date, expected YYYY-MM-DD")
			return
		}
		bill.DueDate = dueDate
	}

	if err := store.DB.Save(&bill).Error; err != nil {
		logger.Log.Error("failed to update utility bill", zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to update utility bill")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, bill)
}

func DeleteUtilityBillHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid bill id")
		return
	}

	res := store.DB.Delete(&models.UtilityBill{}, id)
	if res.Error != nil {
		logger.Log.Error("failed to delete utility bill", zap.Error(res.Error))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete utility bill")
		return
	}
	if res.RowsAffected == 0 {
		httputil.WriteError(w, http.StatusNotFound, "bill not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
