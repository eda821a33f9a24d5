package tax

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercatohq/mercato-backend/pkg/enums"
	pkgerrors "github.com/mercatohq/mercato-backend/pkg/errors"
	"github.com/mercatohq/mercato-backend/pkg/types"
)

func hundredDollarLine() QuoteLine {
	return QuoteLine{
		LineID:    "line-1",
		UnitPrice: rate("100"),
		Quantity:  1,
		Discount:  decimal.Zero,
	}
}

func taxAmounts(t *testing.T, line LineTaxes) map[enums.TaxType]decimal.Decimal {
	t.Helper()
	out := make(map[enums.TaxType]decimal.Decimal, len(line.Taxes))
	for _, tax := range line.Taxes {
		if _, dup := out[tax.TaxType]; dup {
			t.Fatalf("tax type %s applied twice on line %s", tax.TaxType, line.LineID)
		}
		out[tax.TaxType] = tax.Amount
	}
	return out
}

func TestCalculate_CompoundGSTQST(t *testing.T) {
	snap := canadaSnapshot()
	breakdown, err := Calculate(snap, QuoteInput{
		Lines: []QuoteLine{hundredDollarLine()},
		ShippingAddress: types.Address{
			City:        "Montreal",
			StateCode:   "QC",
			CountryCode: "CA",
		},
		TaxDate: testEpoch,
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	if len(breakdown.PerLine) != 1 {
		t.Fatalf("expected one line, got %d", len(breakdown.PerLine))
	}
	amounts := taxAmounts(t, breakdown.PerLine[0])

	// GST 5% of 100.00
	if got := amounts[enums.TaxTypeGST]; !got.Equal(rate("5.00")) {
		t.Fatalf("GST = %s, want 5.00", got)
	}
	// QST 9.975% of the GST-inclusive 105.00 = 10.47375, rounded 10.47
	if got := amounts[enums.TaxTypeQST]; !got.Equal(rate("10.47")) {
		t.Fatalf("QST = %s, want 10.47", got)
	}
	if !breakdown.TotalTax.Equal(rate("15.47")) {
		t.Fatalf("total tax = %s, want 15.47", breakdown.TotalTax)
	}
	if breakdown.IsInterstate {
		t.Fatal("no business state configured, must not be interstate")
	}
}

func TestCalculate_IntrastateGSTSplit(t *testing.T) {
	snap := validIndiaSnapshot()
	breakdown, err := Calculate(snap, QuoteInput{
		Lines: []QuoteLine{hundredDollarLine()},
		ShippingAddress: types.Address{
			StateCode:   "MH",
			CountryCode: "IN",
		},
		TaxDate:           testEpoch,
		BusinessStateCode: "MH",
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	if breakdown.IsInterstate {
		t.Fatal("same state must be intrastate")
	}
	amounts := taxAmounts(t, breakdown.PerLine[0])
	if got := amounts[enums.TaxTypeCGST]; !got.Equal(rate("9.00")) {
		t.Fatalf("CGST = %s, want 9.00", got)
	}
	if got := amounts[enums.TaxTypeSGST]; !got.Equal(rate("9.00")) {
		t.Fatalf("SGST = %s, want 9.00", got)
	}
	if _, ok := amounts[enums.TaxTypeIGST]; ok {
		t.Fatal("IGST must not apply to an intrastate sale")
	}
	if !breakdown.TotalTax.Equal(rate("18.00")) {
		t.Fatalf("total tax = %s, want 18.00", breakdown.TotalTax)
	}
}

func TestCalculate_InterstateGSTSplit(t *testing.T) {
	snap := validIndiaSnapshot()
	breakdown, err := Calculate(snap, QuoteInput{
		Lines: []QuoteLine{hundredDollarLine()},
		ShippingAddress: types.Address{
			StateCode:   "DL",
			CountryCode: "IN",
		},
		TaxDate:           testEpoch,
		BusinessStateCode: "MH",
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}

	if !breakdown.IsInterstate {
		t.Fatal("different states must be interstate")
	}
	amounts := taxAmounts(t, breakdown.PerLine[0])
	if got := amounts[enums.TaxTypeIGST]; !got.Equal(rate("18.00")) {
		t.Fatalf("IGST = %s, want 18.00", got)
	}
	// the total matching is not enough; the split itself must flip
	if _, ok := amounts[enums.TaxTypeCGST]; ok {
		t.Fatal("CGST must not apply to an interstate sale")
	}
	if _, ok := amounts[enums.TaxTypeSGST]; ok {
		t.Fatal("SGST must not apply to an interstate sale")
	}
	if !breakdown.TotalTax.Equal(rate("18.00")) {
		t.Fatalf("total tax = %s, want 18.00", breakdown.TotalTax)
	}
}

func TestCalculate_BusinessStateByName(t *testing.T) {
	snap := validIndiaSnapshot()
	breakdown, err := Calculate(snap, QuoteInput{
		Lines:             []QuoteLine{hundredDollarLine()},
		ShippingAddress:   types.Address{StateCode: "MH", CountryCode: "IN"},
		TaxDate:           testEpoch,
		BusinessStateCode: "Maharashtra",
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if breakdown.IsInterstate {
		t.Fatal("business state by name must match the destination state code")
	}
}

func TestCalculate_UnknownDestinationStateIsIntrastate(t *testing.T) {
	snap := validIndiaSnapshot()
	breakdown, err := Calculate(snap, QuoteInput{
		Lines:             []QuoteLine{hundredDollarLine()},
		ShippingAddress:   types.Address{CountryCode: "IN"},
		TaxDate:           testEpoch,
		BusinessStateCode: "MH",
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if breakdown.IsInterstate {
		t.Fatal("unknown destination state must default to intrastate")
	}
	amounts := taxAmounts(t, breakdown.PerLine[0])
	if _, ok := amounts[enums.TaxTypeIGST]; ok {
		t.Fatal("IGST must not apply when the destination state is unknown")
	}
}

func TestCalculate_ZeroRate(t *testing.T) {
	countryID := uuid.New()
	snap := Snapshot{
		CountryCode: "AE",
		Jurisdictions: []Jurisdiction{
			{ID: countryID, Kind: enums.JurisdictionKindCountry, Code: "AE", Name: "United Arab Emirates"},
		},
		Rates: []Rate{
			{ID: uuid.New(), JurisdictionID: countryID, TaxType: enums.TaxTypeVAT, Rate: decimal.Zero, EffectiveFrom: testEpoch},
		},
	}

	breakdown, err := Calculate(snap, QuoteInput{
		Lines:           []QuoteLine{hundredDollarLine()},
		ShippingAddress: types.Address{CountryCode: "AE"},
		TaxDate:         testEpoch,
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if !breakdown.TotalTax.IsZero() {
		t.Fatalf("total tax = %s, want 0", breakdown.TotalTax)
	}
	if len(breakdown.PerLine) != 1 {
		t.Fatalf("expected one line entry, got %d", len(breakdown.PerLine))
	}
	if len(breakdown.PerLine[0].Taxes) != 0 {
		t.Fatalf("zero-rate line must carry no tax entries, got %d", len(breakdown.PerLine[0].Taxes))
	}
}

func TestCalculate_DiscountAndQuantity(t *testing.T) {
	snap := validIndiaSnapshot()
	breakdown, err := Calculate(snap, QuoteInput{
		Lines: []QuoteLine{{
			LineID:    "line-1",
			UnitPrice: rate("40"),
			Quantity:  3,
			Discount:  rate("20"),
		}},
		ShippingAddress:   types.Address{StateCode: "DL", CountryCode: "IN"},
		TaxDate:           testEpoch,
		BusinessStateCode: "MH",
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	// (40 * 3 - 20) * 18% = 18.00
	if !breakdown.TotalTax.Equal(rate("18.00")) {
		t.Fatalf("total tax = %s, want 18.00", breakdown.TotalTax)
	}
}

func TestCalculate_DiscountExceedingSubtotal(t *testing.T) {
	snap := validIndiaSnapshot()
	breakdown, err := Calculate(snap, QuoteInput{
		Lines: []QuoteLine{{
			LineID:    "line-1",
			UnitPrice: rate("10"),
			Quantity:  1,
			Discount:  rate("25"),
		}},
		ShippingAddress:   types.Address{StateCode: "MH", CountryCode: "IN"},
		TaxDate:           testEpoch,
		BusinessStateCode: "MH",
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if !breakdown.TotalTax.IsZero() {
		t.Fatalf("negative line base must clamp to zero tax, got %s", breakdown.TotalTax)
	}
}

func TestCalculate_RejectsNonPositiveQuantity(t *testing.T) {
	snap := validIndiaSnapshot()
	_, err := Calculate(snap, QuoteInput{
		Lines: []QuoteLine{{
			LineID:    "line-1",
			UnitPrice: rate("10"),
			Quantity:  0,
		}},
		ShippingAddress: types.Address{CountryCode: "IN"},
		TaxDate:         testEpoch,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCalculate_MultiLineTotals(t *testing.T) {
	snap := canadaSnapshot()
	breakdown, err := Calculate(snap, QuoteInput{
		Lines: []QuoteLine{
			{LineID: "a", UnitPrice: rate("100"), Quantity: 1},
			{LineID: "b", UnitPrice: rate("50"), Quantity: 2},
		},
		ShippingAddress: types.Address{StateCode: "QC", CountryCode: "CA"},
		TaxDate:         testEpoch,
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(breakdown.PerLine) != 2 {
		t.Fatalf("expected two lines, got %d", len(breakdown.PerLine))
	}
	// each line is 100.00 taxable: 5.00 GST + 10.47 QST
	for _, line := range breakdown.PerLine {
		if got := line.LineTaxTotal(); !got.Equal(rate("15.47")) {
			t.Fatalf("line %s tax total = %s, want 15.47", line.LineID, got)
		}
	}
	if !breakdown.TotalTax.Equal(rate("30.94")) {
		t.Fatalf("total tax = %s, want 30.94", breakdown.TotalTax)
	}
}
