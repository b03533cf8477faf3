package cashflow

import (
	"fmt"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

// RiskThresholds split the reality terminal balance into risk tiers.
// Balances below HighBelow are High risk, balances from LowFrom up are Low,
// everything in between is Medium.
type RiskThresholds struct {
	HighBelow decimal.Decimal
	LowFrom   decimal.Decimal
}

// DefaultRiskThresholds are the dashboard tiers: negative is High, under 5000 Medium
var DefaultRiskThresholds = RiskThresholds{
	HighBelow: decimal.Zero,
	LowFrom:   decimal.NewFromInt(5000),
}

// Validate checks that the tiers are ordered
func (r RiskThresholds) Validate() error {
	if r.LowFrom.LessThan(r.HighBelow) {
		return fmt.Errorf("low risk threshold %s is below high risk threshold %s", r.LowFrom, r.HighBelow)
	}
	return nil
}

// Classify maps a balance onto a risk tier
func (r RiskThresholds) Classify(balance decimal.Decimal) models.RiskLevel {
	switch {
	case balance.LessThan(r.HighBelow):
		return models.RiskHigh
	case balance.LessThan(r.LowFrom):
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// CurrentBalance sums the amounts of paid transactions regardless of type
func CurrentBalance(l *models.Ledger) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range l.Transactions() {
		if tx.Status == models.Paid {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// ComputeMetrics compares the optimistic projection with the reality
// projection for delayDays. An empty ledger falls back to the current balance
// for both terminal values.
func ComputeMetrics(l *models.Ledger, delayDays int, thresholds RiskThresholds) models.Metrics {
	current := CurrentBalance(l)
	optimistic := terminal(Simulate(l, 0, false), current)
	reality := terminal(Simulate(l, delayDays, true), current)

	return models.Metrics{
		CurrentBalance:  current,
		Optimistic30Day: optimistic,
		Reality30Day:    reality,
		ProjectedGap:    optimistic.Sub(reality),
		RiskLevel:       thresholds.Classify(reality),
	}
}
