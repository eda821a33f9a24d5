package enums

import "fmt"

// TaxType identifies the levy a TaxRate represents.
type TaxType string

const (
	TaxTypeGST   TaxType = "GST"
	TaxTypeCGST  TaxType = "CGST" // India, central half of intrastate GST
	TaxTypeSGST  TaxType = "SGST" // India, state half of intrastate GST
	TaxTypeIGST  TaxType = "IGST" // India, interstate GST
	TaxTypeVAT   TaxType = "VAT"
	TaxTypePST   TaxType = "PST"
	TaxTypeQST   TaxType = "QST" // Quebec, compounds on GST-inclusive amounts
	TaxTypeHST   TaxType = "HST"
	TaxTypeSales TaxType = "SALES"
)

var validTaxTypes = []TaxType{
	TaxTypeGST,
	TaxTypeCGST,
	TaxTypeSGST,
	TaxTypeIGST,
	TaxTypeVAT,
	TaxTypePST,
	TaxTypeQST,
	TaxTypeHST,
	TaxTypeSales,
}

// String implements fmt.Stringer.
func (t TaxType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TaxType.
func (t TaxType) IsValid() bool {
	for _, candidate := range validTaxTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTaxType converts raw input into a TaxType.
func ParseTaxType(value string) (TaxType, error) {
	for _, candidate := range validTaxTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tax type %q", value)
}
