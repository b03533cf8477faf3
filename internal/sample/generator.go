// Package sample builds synthetic ledgers for demos and fixtures.
package sample

import (
	"math/rand"
	"sort"
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

const (
	DefaultSeed = 42
	DefaultRows = 50

	// WindowDays is how far back the generated dates reach from now
	WindowDays = 90

	inflowShare            = 0.6
	inflowPaidShare        = 0.7
	outflowPaidShare       = 0.9
	minInflow, maxInflow   = 2000.0, 15000.0
	minOutflow, maxOutflow = 500.0, 5000.0
)

var (
	Customers = []string{"Acme Corp SG", "TechVision Ltd", "Global Traders HK", "Metro Solutions", "Pacific Imports"}
	Vendors   = []string{"Office Supplies Co", "Cloud Services Inc", "Utilities Provider", "Marketing Agency", "Logistics Partner"}
)

// Generate returns n transactions spread over the WindowDays before now,
// sorted by date. The same seed and now always produce the same ledger.
func Generate(seed int64, now time.Time, n int) *models.Ledger {
	if n < 0 {
		n = 0
	}
	rng := rand.New(rand.NewSource(seed))
	base := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -WindowDays)

	txs := make([]models.Transaction, 0, n)
	for i := 0; i < n; i++ {
		tx := models.Transaction{Date: base.AddDate(0, 0, rng.Intn(WindowDays+1))}

		if rng.Float64() < inflowShare {
			tx.Description = Customers[rng.Intn(len(Customers))]
			tx.Amount = uniformCents(rng, minInflow, maxInflow)
			tx.Type = models.Inflow
			tx.Status = pickStatus(rng, inflowPaidShare)
		} else {
			tx.Description = Vendors[rng.Intn(len(Vendors))]
			tx.Amount = uniformCents(rng, minOutflow, maxOutflow).Neg()
			tx.Type = models.Outflow
			tx.Status = pickStatus(rng, outflowPaidShare)
		}
		txs = append(txs, tx)
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})
	return models.NewLedger(txs)
}

func uniformCents(rng *rand.Rand, lo, hi float64) decimal.Decimal {
	return decimal.NewFromFloat(lo + rng.Float64()*(hi-lo)).Round(2)
}

func pickStatus(rng *rand.Rand, paidShare float64) models.TransactionStatus {
	if rng.Float64() < paidShare {
		return models.Paid
	}
	return models.Pending
}
