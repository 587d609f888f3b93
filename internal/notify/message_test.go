package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wolfman30/leadgate/internal/leads"
)

func strPtr(s string) *string { return &s }

func testLead() *leads.Lead {
	return &leads.Lead{
		ID:           "7d7c3a1e-0000-4000-8000-000000000001",
		Name:         strPtr("Ada"),
		Email:        strPtr("ada@example.com"),
		Phone:        strPtr("(555) 867-5309"),
		DiscountCode: "THINK10",
		CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRenderLeadEmail_ReplyToLead(t *testing.T) {
	msg := RenderLeadEmail(testLead(), "owner@example.com")

	assert.Equal(t, "owner@example.com", msg.To)
	assert.Equal(t, "ada@example.com", msg.ReplyTo)
	assert.Equal(t, "New lead: Ada (THINK10)", msg.Subject)
	assert.Contains(t, msg.Text, "Phone: (555) 867-5309")
	assert.Contains(t, msg.Text, "Reply to this email")
	assert.Contains(t, msg.HTML, `href="mailto:ada@example.com"`)
	assert.Contains(t, msg.HTML, `href="tel:5558675309"`)
}

func TestRenderLeadEmail_PhoneOnly(t *testing.T) {
	lead := &leads.Lead{ID: "lead-2", Phone: strPtr("555-123-4567"), DiscountCode: "THINK10"}
	msg := RenderLeadEmail(lead, "owner@example.com")

	assert.Empty(t, msg.ReplyTo)
	assert.Equal(t, "New lead: 555-123-4567 (THINK10)", msg.Subject)
	assert.Contains(t, msg.Text, "Name: -")
	assert.Contains(t, msg.Text, "Email: -")
	assert.NotContains(t, msg.Text, "Reply to this email")
}

func TestRenderLeadEmail_EscapesSubmittedFields(t *testing.T) {
	lead := testLead()
	lead.Name = strPtr(`<script>alert("x")</script>`)

	msg := RenderLeadEmail(lead, "owner@example.com")
	if strings.Contains(msg.HTML, "<script>") {
		t.Fatalf("expected submitted markup to be escaped:\n%s", msg.HTML)
	}
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
}

func TestRenderLeadEmail_Anonymous(t *testing.T) {
	msg := RenderLeadEmail(&leads.Lead{ID: "lead-3", DiscountCode: "THINK10"}, "owner@example.com")
	assert.Equal(t, "New lead: anonymous (THINK10)", msg.Subject)
}
