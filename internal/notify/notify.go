// Package notify delivers cash-crunch alerts to external channels.
package notify

import (
	"context"
	"errors"

	"github.com/Dan9191/cashflow-service/internal/models"
)

// Notifier delivers a crunch alert to one channel
type Notifier interface {
	Notify(ctx context.Context, alert models.CrunchAlert) error
}

// Multi fans an alert out to several notifiers. Every notifier is attempted;
// the returned error joins all failures.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, alert models.CrunchAlert) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
