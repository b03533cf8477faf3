package sample

import (
	"testing"
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2024, 6, 30, 15, 4, 5, 0, time.UTC)

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(DefaultSeed, fixedNow, DefaultRows).Transactions()
	b := Generate(DefaultSeed, fixedNow, DefaultRows).Transactions()
	if len(a) != DefaultRows || len(b) != DefaultRows {
		t.Fatalf("got %d and %d rows, want %d", len(a), len(b), DefaultRows)
	}
	for i := range a {
		if !a[i].Date.Equal(b[i].Date) || !a[i].Amount.Equal(b[i].Amount) ||
			a[i].Description != b[i].Description || a[i].Status != b[i].Status {
			t.Fatalf("row %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}

	c := Generate(DefaultSeed+1, fixedNow, DefaultRows).Transactions()
	same := true
	for i := range a {
		if !a[i].Amount.Equal(c[i].Amount) {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical amounts")
	}
}

func TestGenerate_Shape(t *testing.T) {
	txs := Generate(7, fixedNow, 500).Transactions()
	start := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	customers := toSet(Customers)
	vendors := toSet(Vendors)
	inflows := 0

	for i, tx := range txs {
		if tx.Date.Before(start) || tx.Date.After(end) {
			t.Errorf("row %d date %v outside window", i, tx.Date)
		}
		if i > 0 && tx.Date.Before(txs[i-1].Date) {
			t.Errorf("row %d not sorted", i)
		}
		if !tx.Amount.Equal(tx.Amount.Round(2)) {
			t.Errorf("row %d amount %s not rounded to cents", i, tx.Amount)
		}
		if !tx.SignMatchesType() {
			t.Errorf("row %d sign does not match type: %+v", i, tx)
		}

		switch tx.Type {
		case models.Inflow:
			inflows++
			if !customers[tx.Description] {
				t.Errorf("row %d unknown customer %q", i, tx.Description)
			}
			if tx.Amount.LessThan(decimal.NewFromInt(2000)) || tx.Amount.GreaterThan(decimal.NewFromInt(15000)) {
				t.Errorf("row %d inflow %s out of range", i, tx.Amount)
			}
		case models.Outflow:
			if !vendors[tx.Description] {
				t.Errorf("row %d unknown vendor %q", i, tx.Description)
			}
			abs := tx.Amount.Abs()
			if abs.LessThan(decimal.NewFromInt(500)) || abs.GreaterThan(decimal.NewFromInt(5000)) {
				t.Errorf("row %d outflow %s out of range", i, tx.Amount)
			}
		}
	}

	// 60% expected; allow generous slack for 500 draws.
	if inflows < 250 || inflows > 350 {
		t.Errorf("got %d inflows out of 500", inflows)
	}
}

func TestGenerate_ZeroAndNegativeRows(t *testing.T) {
	if l := Generate(1, fixedNow, 0); l.Len() != 0 {
		t.Errorf("Len() = %d, want 0", l.Len())
	}
	if l := Generate(1, fixedNow, -3); l.Len() != 0 {
		t.Errorf("Len() = %d, want 0", l.Len())
	}
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
