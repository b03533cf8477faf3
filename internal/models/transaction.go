package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction recorded for a transaction
type TransactionType string

const (
	Inflow  TransactionType = "Inflow"
	Outflow TransactionType = "Outflow"
)

// TransactionStatus is the settlement state of a transaction
type TransactionStatus string

const (
	Paid    TransactionStatus = "Paid"
	Pending TransactionStatus = "Pending"
)

// ParseTransactionType matches Inflow/Outflow case-insensitively
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inflow":
		return Inflow, nil
	case "outflow":
		return Outflow, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// ParseTransactionStatus matches Paid/Pending case-insensitively
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paid":
		return Paid, nil
	case "pending":
		return Pending, nil
	}
	return "", fmt.Errorf("unknown transaction status %q", s)
}

// Transaction represents one ledger row
type Transaction struct {
	Date        time.Time         `json:"date"`
	Description string            `json:"description"`
	Amount      decimal.Decimal   `json:"amount"`
	Type        TransactionType   `json:"type"`
	Status      TransactionStatus `json:"status"`
}

// IsPendingInflow reports whether the transaction is an invoice not yet collected
func (t Transaction) IsPendingInflow() bool {
	return t.Type == Inflow && t.Status == Pending
}

// SignMatchesType reports whether the amount sign agrees with the type.
// Zero amounts agree with either type.
func (t Transaction) SignMatchesType() bool {
	switch t.Type {
	case Inflow:
		return !t.Amount.IsNegative()
	case Outflow:
		return !t.Amount.IsPositive()
	}
	return false
}
