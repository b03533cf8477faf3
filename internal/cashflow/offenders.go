package cashflow

import (
	"sort"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

// TopOffenders groups pending inflows by description and returns the topN
// customers holding the most money back. Equal amounts are ordered by
// customer name. topN <= 0 yields an empty result.
func TopOffenders(l *models.Ledger, topN int) []models.Offender {
	if topN <= 0 {
		return []models.Offender{}
	}

	totals := make(map[string]decimal.Decimal)
	for _, tx := range l.Transactions() {
		if !tx.IsPendingInflow() {
			continue
		}
		totals[tx.Description] = totals[tx.Description].Add(tx.Amount)
	}

	offenders := make([]models.Offender, 0, len(totals))
	for customer, amount := range totals {
		offenders = append(offenders, models.Offender{Customer: customer, LockedAmount: amount})
	}
	sort.Slice(offenders, func(i, j int) bool {
		if c := offenders[i].LockedAmount.Cmp(offenders[j].LockedAmount); c != 0 {
			return c > 0
		}
		return offenders[i].Customer < offenders[j].Customer
	})

	if len(offenders) > topN {
		offenders = offenders[:topN]
	}
	return offenders
}

// LiquidityLocked is the total of all pending inflows
func LiquidityLocked(l *models.Ledger) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range l.Transactions() {
		if tx.IsPendingInflow() {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// SumLocked adds up the locked amounts of a ranking
func SumLocked(offenders []models.Offender) decimal.Decimal {
	total := decimal.Zero
	for _, o := range offenders {
		total = total.Add(o.LockedAmount)
	}
	return total
}
