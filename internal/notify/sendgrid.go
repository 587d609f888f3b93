package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/wolfman30/leadgate/pkg/logging"
)

type sendGridTransport struct {
	client *sendgrid.Client
	from   *mail.Email
	logger *logging.Logger
}

// sendGridMail builds the v3 payload. Reply-To points at the lead when known.
func sendGridMail(from *mail.Email, msg *LeadEmail) *mail.SGMailV3 {
	m := mail.NewSingleEmail(from, msg.Subject, mail.NewEmail("", msg.To), msg.Text, msg.HTML)
	if msg.ReplyTo != "" {
		m.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}
	m.SetHeader("X-Lead-Notification", "new-lead")
	return m
}

func (t *sendGridTransport) deliver(ctx context.Context, msg *LeadEmail) error {
	if t.client == nil {
		return fmt.Errorf("sendgrid client not configured")
	}
	resp, err := t.client.SendWithContext(ctx, sendGridMail(t.from, msg))
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		t.logger.Error("sendgrid rejected lead email", "status", resp.StatusCode, "body", resp.Body)
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}
