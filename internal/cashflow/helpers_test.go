package cashflow

import (
	"testing"
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func tx(date, desc string, amount int64, typ models.TransactionType, status models.TransactionStatus) models.Transaction {
	return models.Transaction{
		Date:        day(date),
		Description: desc,
		Amount:      decimal.NewFromInt(amount),
		Type:        typ,
		Status:      status,
	}
}

func assertDecimal(t *testing.T, name string, got decimal.Decimal, want int64) {
	t.Helper()
	if !got.Equal(decimal.NewFromInt(want)) {
		t.Errorf("%s = %s, want %d", name, got, want)
	}
}

func samePoints(a, b []models.BalancePoint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Date.Equal(b[i].Date) || !a[i].Balance.Equal(b[i].Balance) {
			return false
		}
	}
	return true
}

// scenarioLedger is the three-row ledger with one pending inflow on 2023-02-01
func scenarioLedger() *models.Ledger {
	return models.NewLedger([]models.Transaction{
		tx("2023-01-01", "Acme", 1000, models.Inflow, models.Paid),
		tx("2023-01-15", "Rent", -500, models.Outflow, models.Paid),
		tx("2023-02-01", "TechVision", 2000, models.Inflow, models.Pending),
	})
}

// mixedLedger has pending inflows interleaved with outflows
func mixedLedger() *models.Ledger {
	return models.NewLedger([]models.Transaction{
		tx("2023-03-01", "Acme", 3000, models.Inflow, models.Pending),
		tx("2023-01-01", "Opening", 1000, models.Inflow, models.Paid),
		tx("2023-01-10", "Payroll", -4000, models.Outflow, models.Paid),
		tx("2023-01-05", "Globex", 5000, models.Inflow, models.Pending),
		tx("2023-01-20", "Cloud", -800, models.Outflow, models.Pending),
		tx("2023-01-05", "Acme", 250, models.Inflow, models.Paid),
	})
}
