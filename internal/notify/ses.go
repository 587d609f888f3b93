package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/wolfman30/leadgate/pkg/logging"
)

// SESAPI is the subset of the sesv2 client used for lead emails.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesTransport struct {
	client SESAPI
	from   string
	logger *logging.Logger
}

func utf8Content(s string) *types.Content {
	return &types.Content{Data: aws.String(s), Charset: aws.String("UTF-8")}
}

// sesInput builds the SendEmail request. Reply-To points at the lead when known.
func sesInput(from string, msg *LeadEmail) *sesv2.SendEmailInput {
	in := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: utf8Content(msg.Subject),
				Body: &types.Body{
					Text: utf8Content(msg.Text),
					Html: utf8Content(msg.HTML),
				},
			},
		},
		EmailTags: []types.MessageTag{{Name: aws.String("kind"), Value: aws.String("new-lead")}},
	}
	if msg.ReplyTo != "" {
		in.ReplyToAddresses = []string{msg.ReplyTo}
	}
	return in
}

func (t *sesTransport) deliver(ctx context.Context, msg *LeadEmail) error {
	out, err := t.client.SendEmail(ctx, sesInput(t.from, msg))
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	t.logger.Debug("ses accepted lead email", "message_id", aws.ToString(out.MessageId))
	return nil
}
