// Package cashflow computes cumulative balance projections and the metrics
// derived from them. Every function here is pure: inputs are never mutated and
// no function returns an error for a ledger produced by the loader.
package cashflow

import (
	"sort"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

// Simulate returns one cumulative balance point per ledger row, in ascending
// date order. With realityMode set, pending inflows are moved delayDays
// calendar days later. Rows sharing a date keep their ledger order.
// A non-positive delay leaves dates unchanged.
func Simulate(l *models.Ledger, delayDays int, realityMode bool) []models.BalancePoint {
	txs := l.Transactions()

	if realityMode && delayDays > 0 {
		for i := range txs {
			if txs[i].IsPendingInflow() {
				txs[i].Date = txs[i].Date.AddDate(0, 0, delayDays)
			}
		}
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})

	points := make([]models.BalancePoint, len(txs))
	running := decimal.Zero
	for i, tx := range txs {
		running = running.Add(tx.Amount)
		points[i] = models.BalancePoint{Date: tx.Date, Balance: running}
	}
	return points
}

// SimulateScenario is Simulate driven by a Scenario value
func SimulateScenario(l *models.Ledger, s models.Scenario) []models.BalancePoint {
	return Simulate(l, s.DelayDays, s.Reality)
}

// terminal returns the last balance or fallback when there are no points
func terminal(points []models.BalancePoint, fallback decimal.Decimal) decimal.Decimal {
	if len(points) == 0 {
		return fallback
	}
	return points[len(points)-1].Balance
}
