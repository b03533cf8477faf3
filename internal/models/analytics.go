package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RiskLevel classifies the reality terminal balance
type RiskLevel string

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

// BalancePoint is the cumulative balance after one ledger row
type BalancePoint struct {
	Date    time.Time       `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

// Metrics holds the dashboard scalars for one delay setting
type Metrics struct {
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	Optimistic30Day decimal.Decimal `json:"optimistic_30day"`
	Reality30Day    decimal.Decimal `json:"reality_30day"`
	ProjectedGap    decimal.Decimal `json:"projected_gap"`
	RiskLevel       RiskLevel       `json:"risk_level"`
}

// Offender is a customer together with the pending inflows it holds back
type Offender struct {
	Customer     string          `json:"customer"`
	LockedAmount decimal.Decimal `json:"locked_amount"`
}

// Report is the full analysis of one ledger
type Report struct {
	Scenario              Scenario        `json:"scenario"`
	Transactions          int             `json:"transactions"`
	PaidCount             int             `json:"paid_count"`
	PendingCount          int             `json:"pending_count"`
	Optimistic            []BalancePoint  `json:"optimistic"`
	Reality               []BalancePoint  `json:"reality"`
	Metrics               Metrics         `json:"metrics"`
	TopOffenders          []Offender      `json:"top_offenders"`
	TotalLocked           decimal.Decimal `json:"total_locked"`
	LiquidityLocked       decimal.Decimal `json:"liquidity_locked"`
	AverageMonthlyOutflow decimal.Decimal `json:"average_monthly_outflow"`
	CashCrunches          []BalancePoint  `json:"cash_crunches"`
	LowestPoint           *BalancePoint   `json:"lowest_point,omitempty"`
}

// CrunchAlert is emitted when the reality projection drops below the alert threshold
type CrunchAlert struct {
	Source      string          `json:"source"`
	DelayDays   int             `json:"delay_days"`
	Threshold   decimal.Decimal `json:"threshold"`
	LowestDate  time.Time       `json:"lowest_date"`
	LowestValue decimal.Decimal `json:"lowest_value"`
	RiskLevel   RiskLevel       `json:"risk_level"`
	DetectedAt  time.Time       `json:"detected_at"`
}
