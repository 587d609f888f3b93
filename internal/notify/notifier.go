package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/wolfman30/leadgate/internal/leads"
	"github.com/wolfman30/leadgate/pkg/logging"
)

const defaultFromName = "Think Different"

// Provider names the service that delivers lead emails.
type Provider string

const (
	ProviderSendGrid Provider = "sendgrid"
	ProviderSES      Provider = "ses"
)

var (
	// ErrUnknownProvider is returned for an unrecognised EMAIL_PROVIDER.
	ErrUnknownProvider = errors.New("notify: unknown email provider")
	// ErrSESClientRequired is returned when ses is selected without a client.
	ErrSESClientRequired = errors.New("notify: ses provider requires a client")
)

// ParseProvider maps EMAIL_PROVIDER onto a Provider. Empty means sendgrid.
func ParseProvider(raw string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ProviderSendGrid:
		return ProviderSendGrid, nil
	case ProviderSES:
		return ProviderSES, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, raw)
	}
}

// transport delivers one rendered lead email.
type transport interface {
	deliver(ctx context.Context, msg *LeadEmail) error
}

// Options configure a LeadNotifier.
type Options struct {
	Provider  Provider
	Recipient string
	FromEmail string
	FromName  string

	// SendGridAPIKey is required for ProviderSendGrid.
	SendGridAPIKey string
	// SES is required for ProviderSES.
	SES SESAPI
}

// LeadNotifier emails the site operator whenever a lead is stored.
type LeadNotifier struct {
	provider  Provider
	recipient string
	transport transport
	logger    *logging.Logger
}

// NewLeadNotifier returns (nil, nil) when notifications are disabled: no
// recipient, or sendgrid without an API key.
func NewLeadNotifier(opts Options, logger *logging.Logger) (*LeadNotifier, error) {
	recipient := strings.TrimSpace(opts.Recipient)
	if recipient == "" {
		return nil, nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	fromName := strings.TrimSpace(opts.FromName)
	if fromName == "" {
		fromName = defaultFromName
	}

	var t transport
	switch opts.Provider {
	case "", ProviderSendGrid:
		if opts.SendGridAPIKey == "" {
			logger.Warn("lead notifications disabled: sendgrid selected without an API key")
			return nil, nil
		}
		opts.Provider = ProviderSendGrid
		t = &sendGridTransport{
			client: sendgrid.NewSendClient(opts.SendGridAPIKey),
			from:   mail.NewEmail(fromName, opts.FromEmail),
			logger: logger,
		}
	case ProviderSES:
		if opts.SES == nil {
			return nil, ErrSESClientRequired
		}
		t = &sesTransport{
			client: opts.SES,
			from:   fmt.Sprintf("%s <%s>", fromName, opts.FromEmail),
			logger: logger,
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Provider)
	}
	return &LeadNotifier{provider: opts.Provider, recipient: recipient, transport: t, logger: logger}, nil
}

// Provider reports which service delivers the emails.
func (n *LeadNotifier) Provider() Provider {
	if n == nil {
		return ""
	}
	return n.provider
}

// NotifyNewLead renders the stored lead and delivers it. A nil notifier is a no-op.
func (n *LeadNotifier) NotifyNewLead(ctx context.Context, lead *leads.Lead) error {
	if n == nil || lead == nil {
		return nil
	}
	msg := RenderLeadEmail(lead, n.recipient)
	if err := n.transport.deliver(ctx, msg); err != nil {
		return fmt.Errorf("notify: new lead %s via %s: %w", lead.ID, n.provider, err)
	}
	n.logger.Info("new lead email sent", "lead_id", lead.ID, "provider", n.provider, "reply_to_lead", msg.ReplyTo != "")
	return nil
}
