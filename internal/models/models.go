package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Base carries the columns every table shares. Deletes are hard deletes;
// cascades are handled explicitly inside a store transaction.
type Base struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	Base
	Name     string `gorm:"size:100;not null" json:"name"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255" json:"-"`
	IsAdmin  bool   `gorm:"not null;default:false" json:"is_admin"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

type PropertyCategory struct {
	Base
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
}

type PropertyType struct {
	Base
	Name       string            `gorm:"size:100;not null" json:"name"`
	CategoryID uint              `gorm:"index;not null" json:"category_id"`
	Category   *PropertyCategory `json:"category,omitempty"`
}

const (
	PropertyStatusAvailable = "available"
	PropertyStatusRented    = "rented"
	PropertyStatusSold      = "sold"
)

type Property struct {
	Base
	Title       string            `gorm:"size:200;not null" json:"title"`
	Description string            `gorm:"not null" json:"description"`
	Price       decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"price"`
	Address     string            `gorm:"size:255;not null" json:"address"`
	City        string            `gorm:"size:100" json:"city"`
	Status      string            `gorm:"size:20;index;not null;default:available" json:"status"`
	Bedroom     int               `json:"bedroom"`
	Washroom    int               `json:"washroom"`
	Area        string            `gorm:"size:50" json:"area"`
	CategoryID  *uint             `gorm:"index" json:"category_id"`
	TypeID      *uint             `gorm:"index" json:"type_id"`
	Category    *PropertyCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Type        *PropertyType     `gorm:"foreignKey:TypeID" json:"type,omitempty"`
}

type Customer struct {
	Base
	UserID      uint   `gorm:"index;not null" json:"user_id"`
	CNIC        string `gorm:"uniqueIndex;size:15;not null" json:"cnic"`
	PhoneNumber string `gorm:"uniqueIndex;size:15;not null" json:"phone_number"`
	Address     string `gorm:"size:255" json:"address"`
	User        *User  `json:"user,omitempty"`
}

const (
	AgreementStatusPending   = "pending"
	AgreementStatusActive    = "active"
	AgreementStatusCompleted = "completed"
	AgreementStatusCancelled = "cancelled"
)

type Agreement struct {
	Base
	PropertyID     uint             `gorm:"index;not null" json:"property_id"`
	CustomerID     uint             `gorm:"index;not null" json:"customer_id"`
	Details        string           `json:"details"`
	RentStartDate  *time.Time       `gorm:"type:date" json:"rent_start_date"`
	RentEndDate    *time.Time       `gorm:"type:date" json:"rent_end_date"`
	PurchaseDate   *time.Time       `gorm:"type:date" json:"purchase_date"`
	SecurityAmount *decimal.Decimal `gorm:"type:decimal(10,2)" json:"security_amount"`
	Status         string           `gorm:"size:20;index;not null;default:pending" json:"status"`
	Property       *Property        `json:"property,omitempty"`
	Customer       *Customer        `json:"customer,omitempty"`
}

const (
	PaymentMethodCash   = "cash"
	PaymentMethodBank   = "bank"
	PaymentMethodOnline = "online"

	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

type Payment struct {
	Base
	AgreementID uint            `gorm:"index;not null" json:"agreement_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method      string          `gorm:"size:20;not null" json:"method"`
	Status      string          `gorm:"size:20;index;not null;default:pending" json:"status"`
	Date        time.Time       `gorm:"type:date" json:"date"`
	Reference   string          `gorm:"uniqueIndex;size:36" json:"reference"`
	Agreement   *Agreement      `json:"agreement,omitempty"`
}

const (
	BillTypeElectricity = "electricity"
	BillTypeGas         = "gas"
	BillTypeWater       = "water"
	BillTypeMaintenance = "maintenance"
)

type UtilityBill struct {
	Base
	AgreementID uint            `gorm:"index;not null" json:"agreement_id"`
	BillType    string          `gorm:"size:20;not null" json:"bill_type"`
	BillAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"bill_amount"`
	PaidAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"paid_amount"`
	BillDate    time.Time       `gorm:"type:date;index" json:"bill_date"`
	DueDate     time.Time       `gorm:"type:date" json:"due_date"`
	PaidDate    *time.Time      `gorm:"type:date" json:"paid_date"`
	Agreement   *Agreement      `json:"agreement,omitempty"`
}

// Account groups ledgers, e.g. a bank account or a counterparty.
type Account struct {
	Base
	Name string `gorm:"uniqueIndex;size:100;not null" json:"name"`
}

// Ledger is a running-balance container. Balance, DebitTotal and CreditTotal
// are derived from postings and are only ever written by the ledger service.
type Ledger struct {
	Base
	AccountID   uint            `gorm:"index;not null" json:"account_id"`
	Title       string          `gorm:"size:200;not null" json:"title"`
	DebitTotal  decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"debit_total"`
	CreditTotal decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"credit_total"`
	Balance     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	Account     *Account        `json:"account,omitempty"`
}

const (
	TransactionTypeDebit  = "debit"
	TransactionTypeCredit = "credit"
)

// Transaction is a write-once posting against a ledger. Balance is the
// ledger's balance immediately after this posting was applied.
type Transaction struct {
	Base
	LedgerID uint            `gorm:"index;not null" json:"ledger_id"`
	Detail   string          `json:"detail"`
	Date     time.Time       `gorm:"type:date;index" json:"date"`
	Amount   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Type     string          `gorm:"size:6;not null" json:"type"`
	Balance  decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"balance"`
	Ledger   *Ledger         `json:"ledger,omitempty"`
}
