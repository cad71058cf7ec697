package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TopicTransactionPosted carries one event per successful ledger posting.
const TopicTransactionPosted = "ledger.transactions"

type Publisher interface {
	Publish(topic string, event any) error
}

// Nop is used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(string, any) error { return nil }

type TransactionPosted struct {
	EventID       string          `json:"event_id"`
	TransactionID uint            `json:"transaction_id"`
	LedgerID      uint            `json:"ledger_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Balance       decimal.Decimal `json:"balance"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
