package leads

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FormVariant selects which contact requirement the intake form enforces.
type FormVariant string

const (
	// VariantEmailOrPhone requires at least one of email or phone. Name is dropped.
	VariantEmailOrPhone FormVariant = "email_phone"
	// VariantNamePhone requires a name and a valid phone. Email is optional.
	VariantNamePhone FormVariant = "name_phone"
)

const (
	MaxNameLength   = 100
	MaxPhoneLength  = 20
	MinPhoneDigits  = 10
	EmailPatternRaw = `^[^\s@]+@[^\s@]+\.[^\s@]+$`
)

var emailPattern = regexp.MustCompile(EmailPatternRaw)

// ParseFormVariant maps a config value onto a FormVariant.
func ParseFormVariant(raw string) (FormVariant, error) {
	switch FormVariant(strings.ToLower(strings.TrimSpace(raw))) {
	case "", VariantEmailOrPhone:
		return VariantEmailOrPhone, nil
	case VariantNamePhone:
		return VariantNamePhone, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, raw)
	}
}

// Validator decides whether a submitted lead is acceptable. It is stateless
// and safe for concurrent use.
type Validator struct {
	variant     FormVariant
	defaultCode string
}

// NewValidator builds a validator for the given variant. An empty defaultCode
// falls back to DefaultDiscountCode.
func NewValidator(variant FormVariant, defaultCode string) *Validator {
	if variant == "" {
		variant = VariantEmailOrPhone
	}
	defaultCode = strings.TrimSpace(defaultCode)
	if defaultCode == "" {
		defaultCode = DefaultDiscountCode
	}
	return &Validator{variant: variant, defaultCode: defaultCode}
}

// Variant returns the configured form variant.
func (v *Validator) Variant() FormVariant {
	return v.variant
}

// Validate returns a normalized candidate or a *ValidationError.
func (v *Validator) Validate(req CreateLeadRequest) (*Candidate, error) {
	c := &Candidate{
		Name:         trimmed(req.Name),
		Email:        trimmed(req.Email),
		Phone:        trimmed(req.Phone),
		DiscountCode: v.defaultCode,
	}
	if code := trimmed(req.DiscountCode); code != nil {
		c.DiscountCode = *code
	}

	switch v.variant {
	case VariantNamePhone:
		if c.Name == nil {
			return nil, invalid("name", "Name is required")
		}
		if utf8.RuneCountInString(*c.Name) > MaxNameLength {
			return nil, invalid("name", fmt.Sprintf("Name must be %d characters or less", MaxNameLength))
		}
		if c.Phone == nil {
			return nil, invalid("phone", "Phone number is required")
		}
	default:
		c.Name = nil
		if c.Email == nil && c.Phone == nil {
			return nil, invalid("email", "Email or phone number is required")
		}
	}

	if c.Email != nil && !ValidEmail(*c.Email) {
		return nil, invalid("email", "Invalid email format")
	}
	if c.Phone != nil {
		if utf8.RuneCountInString(*c.Phone) > MaxPhoneLength {
			return nil, invalid("phone", fmt.Sprintf("Phone number must be %d characters or less", MaxPhoneLength))
		}
		if !ValidPhone(*c.Phone) {
			return nil, invalid("phone", "Invalid phone number format")
		}
	}
	return c, nil
}

// ValidEmail is a shape check only: local@domain.tld without whitespace.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPhone accepts any formatting as long as at least MinPhoneDigits digits remain.
func ValidPhone(phone string) bool {
	return len(PhoneDigits(phone)) >= MinPhoneDigits
}

// PhoneDigits projects phone onto its ASCII digits.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Rules describes the active validation so a presentation layer can mirror it.
type Rules struct {
	Variant             FormVariant `json:"variant"`
	NameRequired        bool        `json:"name_required"`
	PhoneRequired       bool        `json:"phone_required"`
	MaxNameLength       int         `json:"max_name_length"`
	MaxPhoneLength      int         `json:"max_phone_length"`
	MinPhoneDigits      int         `json:"min_phone_digits"`
	EmailPattern        string      `json:"email_pattern"`
	DefaultDiscountCode string      `json:"default_discount_code"`
}

// Rules returns the rule set enforced by Validate.
func (v *Validator) Rules() Rules {
	return Rules{
		Variant:             v.variant,
		NameRequired:        v.variant == VariantNamePhone,
		PhoneRequired:       v.variant == VariantNamePhone,
		MaxNameLength:       MaxNameLength,
		MaxPhoneLength:      MaxPhoneLength,
		MinPhoneDigits:      MinPhoneDigits,
		EmailPattern:        EmailPatternRaw,
		DefaultDiscountCode: v.defaultCode,
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
