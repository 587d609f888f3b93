package notify

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/wolfman30/leadgate/internal/leads"
)

// LeadEmail is the operator notification for one stored lead.
type LeadEmail struct {
	To      string
	ReplyTo string // the lead's email, when given
	Subject string
	Text    string
	HTML    string
}

// RenderLeadEmail builds the notification for lead. Lead fields are
// user-submitted and are escaped in the HTML body.
func RenderLeadEmail(lead *leads.Lead, to string) *LeadEmail {
	msg := &LeadEmail{
		To:      to,
		Subject: fmt.Sprintf("New lead: %s (%s)", leadContact(lead), lead.DiscountCode),
	}
	if lead.Email != nil {
		msg.ReplyTo = *lead.Email
	}

	received := lead.CreatedAt.UTC().Format(time.RFC1123)

	var text strings.Builder
	fmt.Fprintf(&text, "A new lead opted in on %s.\n\n", received)
	fmt.Fprintf(&text, "Name: %s\n", valueOr(lead.Name, "-"))
	fmt.Fprintf(&text, "Email: %s\n", valueOr(lead.Email, "-"))
	fmt.Fprintf(&text, "Phone: %s\n", valueOr(lead.Phone, "-"))
	fmt.Fprintf(&text, "Discount code: %s\n", lead.DiscountCode)
	fmt.Fprintf(&text, "Lead ID: %s\n", lead.ID)
	if msg.ReplyTo != "" {
		text.WriteString("\nReply to this email to contact the lead directly.\n")
	}
	msg.Text = text.String()

	var b strings.Builder
	b.WriteString(`<div style="font-family: sans-serif; max-width: 600px;">`)
	fmt.Fprintf(&b, `<h2>New lead</h2><p>Opted in on %s.</p>`, html.EscapeString(received))
	b.WriteString(`<table style="border-collapse: collapse; margin: 20px 0;">`)
	htmlRow(&b, "Name", html.EscapeString(valueOr(lead.Name, "-")))
	if lead.Email != nil {
		e := html.EscapeString(*lead.Email)
		htmlRow(&b, "Email", fmt.Sprintf(`<a href="mailto:%s">%s</a>`, e, e))
	} else {
		htmlRow(&b, "Email", "-")
	}
	if lead.Phone != nil {
		p := html.EscapeString(*lead.Phone)
		htmlRow(&b, "Phone", fmt.Sprintf(`<a href="tel:%s">%s</a>`, html.EscapeString(leads.PhoneDigits(*lead.Phone)), p))
	} else {
		htmlRow(&b, "Phone", "-")
	}
	htmlRow(&b, "Discount code", "<code>"+html.EscapeString(lead.DiscountCode)+"</code>")
	b.WriteString(`</table>`)
	fmt.Fprintf(&b, `<p style="color: #6b7280; font-size: 12px;">Lead ID %s</p></div>`, html.EscapeString(lead.ID))
	msg.HTML = b.String()

	return msg
}

// leadContact picks the most useful identifier for the subject line.
func leadContact(lead *leads.Lead) string {
	for _, v := range []*string{lead.Name, lead.Email, lead.Phone} {
		if v != nil && *v != "" {
			return *v
		}
	}
	return "anonymous"
}

func htmlRow(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, `<tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>%s:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>`, label, value)
}

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
