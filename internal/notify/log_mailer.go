package notify

import (
	"context"
	"fmt"

	"github.com/flipdev/customer-cleanup/internal/domain"
	"github.com/flipdev/customer-cleanup/internal/pkg/logger"
)

// LogMailer is a transport for development setups without SES
// credentials. It renders the template like the real mailer would, then
// only logs the result.
type LogMailer struct {
	templates *TemplateEngine
	opts      Options
}

func NewLogMailer(templates *TemplateEngine, opts Options) *LogMailer {
	if opts.TemplateID == "" {
		opts.TemplateID = DefaultTemplateID
	}
	return &LogMailer{templates: templates, opts: opts}
}

func (m *LogMailer) SendWarning(_ context.Context, customer domain.Customer, daysUntilDeletion int) error {
	rendered, err := m.templates.Render(m.opts.TemplateID, warningBindings(customer, m.opts, daysUntilDeletion))
	if err != nil {
		return fmt.Errorf("render warning email: %w", err)
	}

	logger.Info("deletion warning (log transport)",
		"customer_id", customer.ID,
		"customer_email", customer.Email,
		"subject", rendered.Subject,
		"days", daysUntilDeletion)
	return nil
}
