package mailer

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/elfarodelsaber/storefront/internal/domain"
)

// LogMailer writes mail to the log instead of sending it. It is the
// default when no mail service endpoint is configured.
type LogMailer struct {
	logger *log.Entry
}

// NewLogMailer creates a mailer that only logs.
func NewLogMailer(logger *log.Entry) *LogMailer {
	if logger == nil {
		logger = log.WithField("component", "log-mailer")
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, to string, template domain.MailTemplate, data map[string]any) error {
	m.logger.WithFields(log.Fields{
		"to":       to,
		"template": string(template),
		"data":     data,
	}).Info("mail dispatched to log")
	return nil
}

var _ domain.Mailer = (*LogMailer)(nil)
