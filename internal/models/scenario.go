package models

import "errors"

// ErrNegativeDelay is returned for scenarios with a delay below zero
var ErrNegativeDelay = errors.New("delay_days must not be negative")

// Scenario selects how pending inflows are projected
type Scenario struct {
	DelayDays int  `json:"delay_days"`
	Reality   bool `json:"reality"`
}

// Validate rejects negative delays
func (s Scenario) Validate() error {
	if s.DelayDays < 0 {
		return ErrNegativeDelay
	}
	return nil
}
