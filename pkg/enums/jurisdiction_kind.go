package enums

import "fmt"

// JurisdictionKind is the level of a tax authority in the geographic hierarchy.
type JurisdictionKind string

const (
	JurisdictionKindCountry JurisdictionKind = "COUNTRY"
	JurisdictionKindState   JurisdictionKind = "STATE"
	JurisdictionKindCounty  JurisdictionKind = "COUNTY"
	JurisdictionKindCity    JurisdictionKind = "CITY"
)

var validJurisdictionKinds = []JurisdictionKind{
	JurisdictionKindCountry,
	JurisdictionKindState,
	JurisdictionKindCounty,
	JurisdictionKindCity,
}

// String implements fmt.Stringer.
func (k JurisdictionKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known JurisdictionKind.
func (k JurisdictionKind) IsValid() bool {
	for _, candidate := range validJurisdictionKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParentKind returns the kind expected for this level's parent reference.
// Countries have no parent.
func (k JurisdictionKind) ParentKind() (JurisdictionKind, bool) {
	switch k {
	case JurisdictionKindState:
		return JurisdictionKindCountry, true
	case JurisdictionKindCounty:
		return JurisdictionKindState, true
	case JurisdictionKindCity:
		return JurisdictionKindState, true
	default:
		return "", false
	}
}

// ParseJurisdictionKind converts raw input into a JurisdictionKind.
func ParseJurisdictionKind(value string) (JurisdictionKind, error) {
	for _, candidate := range validJurisdictionKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid jurisdiction kind %q", value)
}
