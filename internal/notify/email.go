package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/Dan9191/cashflow-service/internal/config"
	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// EmailSender sends crunch alerts via SMTP
type EmailSender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewEmailSender creates a new email sender
func NewEmailSender(cfg *config.Config, logger *logrus.Logger) *EmailSender {
	return &EmailSender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// Notify sends the alert to every configured recipient
func (s *EmailSender) Notify(ctx context.Context, alert models.CrunchAlert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := s.buildMessage(alert)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send crunch alert to %v: %v", e.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %v: %s", e.To, e.Subject)
	return nil
}

func (s *EmailSender) buildMessage(alert models.CrunchAlert) *email.Email {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = append([]string(nil), s.cfg.AlertRecipients...)
	if alert.LowestValue.IsNegative() {
		e.Subject = fmt.Sprintf("Cash Crunch Warning: %s", alert.Source)
	} else {
		e.Subject = fmt.Sprintf("Low Cash Balance Warning: %s", alert.Source)
	}

	body := fmt.Sprintf("Cash flow report for %s.\n\n", alert.Source)
	body += fmt.Sprintf(
		"If pending customer payments arrive %d days late, the balance drops to %s USD on %s.\n"+
			"This is below the alert threshold of %s USD.\n"+
			"Risk level: %s\n",
		alert.DelayDays,
		alert.LowestValue.StringFixed(2),
		alert.LowestDate.Format("2006-01-02"),
		alert.Threshold.StringFixed(2),
		alert.RiskLevel,
	)
	body += "\nCash Flow Service"
	e.Text = []byte(body)
	return e
}
