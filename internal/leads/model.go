package leads

import (
	"time"
)

// DefaultDiscountCode is handed out when the caller does not name one.
const DefaultDiscountCode = "THINK10"

// Lead is a captured contact record.
type Lead struct {
	ID           string    `json:"id"`
	Name         *string   `json:"name"`
	Email        *string   `json:"email"`
	Phone        *string   `json:"phone"`
	DiscountCode string    `json:"discount_code"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateLeadRequest is the raw body of POST /leads-intake.
type CreateLeadRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	DiscountCode *string `json:"discount_code"`
}

// Candidate is a validated, normalized lead ready for insert.
type Candidate struct {
	Name         *string
	Email        *string
	Phone        *string
	DiscountCode string
}

func (c *Candidate) discountCode() string {
	if c.DiscountCode == "" {
		return DefaultDiscountCode
	}
	return c.DiscountCode
}
