package cashflow

import (
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

// AverageMonthlyOutflow is the absolute mean of monthly outflow totals.
// Months between the first and last outflow that have no outflows count as zero.
func AverageMonthlyOutflow(l *models.Ledger) decimal.Decimal {
	byMonth := make(map[time.Time]decimal.Decimal)
	var first, last time.Time
	for _, tx := range l.Transactions() {
		if tx.Type != models.Outflow {
			continue
		}
		m := monthStart(tx.Date)
		byMonth[m] = byMonth[m].Add(tx.Amount)
		if first.IsZero() || m.Before(first) {
			first = m
		}
		if m.After(last) {
			last = m
		}
	}
	if len(byMonth) == 0 {
		return decimal.Zero
	}

	total := decimal.Zero
	months := int64(0)
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		total = total.Add(byMonth[m])
		months++
	}
	return total.Div(decimal.NewFromInt(months)).Abs()
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// CashCrunches returns the points whose balance is below threshold.
// A zero threshold yields the points where the balance is negative.
func CashCrunches(points []models.BalancePoint, threshold decimal.Decimal) []models.BalancePoint {
	out := make([]models.BalancePoint, 0)
	for _, p := range points {
		if p.Balance.LessThan(threshold) {
			out = append(out, p)
		}
	}
	return out
}

// LowestPoint returns the earliest point holding the minimum balance
func LowestPoint(points []models.BalancePoint) (models.BalancePoint, bool) {
	if len(points) == 0 {
		return models.BalancePoint{}, false
	}
	low := points[0]
	for _, p := range points[1:] {
		if p.Balance.LessThan(low.Balance) {
			low = p
		}
	}
	return low, true
}

// Analyze runs both projections, the metrics and the offender ranking for one
// ledger. The reality line uses the scenario delay only when s.Reality is set.
func Analyze(l *models.Ledger, s models.Scenario, topN int, thresholds RiskThresholds) *models.Report {
	reality := SimulateScenario(l, s)
	offenders := TopOffenders(l, topN)

	report := &models.Report{
		Scenario:              s,
		Transactions:          l.Len(),
		Optimistic:            Simulate(l, 0, false),
		Reality:               reality,
		Metrics:               ComputeMetrics(l, s.DelayDays, thresholds),
		TopOffenders:          offenders,
		TotalLocked:           SumLocked(offenders),
		LiquidityLocked:       LiquidityLocked(l),
		AverageMonthlyOutflow: AverageMonthlyOutflow(l),
		CashCrunches:          CashCrunches(reality, decimal.Zero),
	}
	if low, ok := LowestPoint(reality); ok {
		report.LowestPoint = &low
	}
	for _, tx := range l.Transactions() {
		switch tx.Status {
		case models.Paid:
			report.PaidCount++
		case models.Pending:
			report.PendingCount++
		}
	}
	return report
}
