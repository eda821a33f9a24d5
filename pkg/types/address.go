package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Address mirrors the address_t composite Postgres type. CountryCode and
// StateCode are the normalized codes jurisdiction resolution keys on.
type Address struct {
	Line1       string  `json:"line1"`
	Line2       *string `json:"line2,omitempty"`
	City        string  `json:"city"`
	StateCode   string  `json:"state_code"`
	PostalCode  string  `json:"postal_code"`
	CountryCode string  `json:"country_code"`
}

// Normalized returns a copy with country and state codes uppercased and all
// fields trimmed. City keeps its casing; lookups on it are case-insensitive.
func (a Address) Normalized() Address {
	var line2 *string
	if a.Line2 != nil {
		trimmed := strings.TrimSpace(*a.Line2)
		line2 = &trimmed
	}
	return Address{
		Line1:       strings.TrimSpace(a.Line1),
		Line2:       line2,
		City:        strings.TrimSpace(a.City),
		StateCode:   strings.ToUpper(strings.TrimSpace(a.StateCode)),
		PostalCode:  strings.TrimSpace(a.PostalCode),
		CountryCode: strings.ToUpper(strings.TrimSpace(a.CountryCode)),
	}
}

// Value marshals Address into a Postgres composite literal.
func (a Address) Value() (driver.Value, error) {
	if strings.TrimSpace(a.Line1) == "" {
		return nil, fmt.Errorf("address: missing line1")
	}
	if strings.TrimSpace(a.City) == "" {
		return nil, fmt.Errorf("address: missing city")
	}
	if strings.TrimSpace(a.StateCode) == "" {
		return nil, fmt.Errorf("address: missing state_code")
	}
	if strings.TrimSpace(a.CountryCode) == "" {
		return nil, fmt.Errorf("address: missing country_code")
	}

	parts := []string{
		quoteCompositeString(a.Line1),
		quoteCompositeNullable(a.Line2),
		quoteCompositeString(a.City),
		quoteCompositeString(a.StateCode),
		quoteCompositeString(a.PostalCode),
		quoteCompositeString(a.CountryCode),
	}

	return "(" + strings.Join(parts, ",") + ")", nil
}

// Scan decodes the Postgres composite literal.
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}

	raw, ok := toString(value)
	if !ok {
		return fmt.Errorf("address: unsupported scan type %T", value)
	}

	fields, err := parseComposite(raw, 6)
	if err != nil {
		return err
	}

	a.Line1 = fields[0]
	a.Line2 = newCompositeNullable(fields[1])
	a.City = fields[2]
	a.StateCode = fields[3]
	a.PostalCode = fields[4]
	a.CountryCode = fields[5]

	return nil
}

func toString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return "", false
	}
}
