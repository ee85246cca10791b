package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/flipdev/customer-cleanup/internal/config"
	"github.com/flipdev/customer-cleanup/internal/domain"
	"github.com/flipdev/customer-cleanup/internal/pkg/logger"
)

// Options carries the sender identity and store context for warning
// emails.
type Options struct {
	SenderEmail string
	SenderName  string
	TemplateID  string
	StoreName   string
	StoreURL    string
}

// SESMailer delivers warning emails through AWS SES v2.
type SESMailer struct {
	client    *sesv2.Client
	templates *TemplateEngine
	opts      Options
	timeout   time.Duration
}

// NewSESMailer creates an SES-backed mailer. Returns an error when the
// AWS client cannot be configured; missing credentials fall back to the
// ambient AWS credential chain.
func NewSESMailer(cfg config.SESConfig, templates *TemplateEngine, opts Options) (*SESMailer, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts,
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if opts.TemplateID == "" {
		opts.TemplateID = DefaultTemplateID
	}

	return &SESMailer{
		client:    sesv2.NewFromConfig(awsCfg),
		templates: templates,
		opts:      opts,
		timeout:   timeout,
	}, nil
}

// SendWarning renders the configured template and sends it to the
// customer.
func (m *SESMailer) SendWarning(ctx context.Context, customer domain.Customer, daysUntilDeletion int) error {
	rendered, err := m.templates.Render(m.opts.TemplateID, warningBindings(customer, m.opts, daysUntilDeletion))
	if err != nil {
		return fmt.Errorf("render warning email: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", m.opts.SenderName, m.opts.SenderEmail)),
		Destination:      &types.Destination{ToAddresses: []string{customer.Email}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(rendered.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(rendered.HTML), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(rendered.Text), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	result, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("ses send to %s: %w", logger.RedactEmail(customer.Email), err)
	}

	messageID := ""
	if result.MessageId != nil {
		messageID = *result.MessageId
	}
	logger.Info("deletion warning sent",
		"customer_id", customer.ID,
		"customer_email", customer.Email,
		"message_id", messageID,
		"days", daysUntilDeletion)
	return nil
}

func warningBindings(customer domain.Customer, opts Options, days int) map[string]any {
	return map[string]any{
		"days": days,
		"customer": map[string]any{
			"name":       customer.FullName(),
			"first_name": customer.FirstName,
			"last_name":  customer.LastName,
			"email":      customer.Email,
		},
		"store": map[string]any{
			"name": opts.StoreName,
			"url":  opts.StoreURL,
		},
	}
}
