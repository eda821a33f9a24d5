package tax

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercatohq/mercato-backend/pkg/enums"
	pkgerrors "github.com/mercatohq/mercato-backend/pkg/errors"
	"github.com/mercatohq/mercato-backend/pkg/types"
)

// QuoteLine is one order line submitted for tax computation. CategoryID is
// optional and drives category override lookup.
type QuoteLine struct {
	LineID     string
	UnitPrice  decimal.Decimal
	Quantity   int
	Discount   decimal.Decimal
	CategoryID string
}

// QuoteInput carries everything the calculator needs. BusinessStateCode is
// the seller's registered state and drives the interstate switch.
type QuoteInput struct {
	Lines             []QuoteLine
	ShippingAddress   types.Address
	TaxDate           time.Time
	BusinessStateCode string
}

// AppliedTax is one levy amount inside a line's breakdown.
type AppliedTax struct {
	JurisdictionCode string
	TaxType          enums.TaxType
	Rate             decimal.Decimal
	Amount           decimal.Decimal
}

// LineTaxes is the per-line slice of applied levies.
type LineTaxes struct {
	LineID string
	Taxes  []AppliedTax
}

// Breakdown is the full quote result.
type Breakdown struct {
	PerLine      []LineTaxes
	TotalTax     decimal.Decimal
	IsInterstate bool
}

const minorUnitDigits = 2

var gstSplitTypes = []enums.TaxType{enums.TaxTypeCGST, enums.TaxTypeSGST, enums.TaxTypeIGST}

// Calculate resolves the destination jurisdiction chain, selects effective
// rates and computes the per-line breakdown. The interstate switch is
// evaluated once per order, before rate selection, so the selector only sees
// the applicable half of the GST split. Each levy amount is rounded half-up
// to the currency minor unit at line level; the line and order totals are
// sums of those rounded amounts, so the stored breakdown always adds up.
func Calculate(snap Snapshot, input QuoteInput) (Breakdown, error) {
	if input.TaxDate.IsZero() {
		input.TaxDate = time.Now().UTC()
	}

	chain, err := ResolveJurisdictions(snap, input.ShippingAddress)
	if err != nil {
		return Breakdown{}, err
	}

	isInterstate := interstateSwitch(chain, input.BusinessStateCode)
	excluded := excludedTypes(snap, chain, isInterstate)

	breakdown := Breakdown{IsInterstate: isInterstate, TotalTax: decimal.Zero}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive").
				WithDetails(map[string]any{"line_id": line.LineID})
		}

		selected, err := SelectRates(snap, chain, input.TaxDate, line.CategoryID, excluded)
		if err != nil {
			return Breakdown{}, err
		}

		lineResult := computeLine(line, selected)
		for _, tax := range lineResult.Taxes {
			breakdown.TotalTax = breakdown.TotalTax.Add(tax.Amount)
		}
		breakdown.PerLine = append(breakdown.PerLine, lineResult)
	}

	return breakdown, nil
}

// interstateSwitch compares the destination state against the seller's
// registered state. The switch only trips when both sides are known;
// otherwise the sale is treated as intrastate.
func interstateSwitch(chain []Jurisdiction, businessState string) bool {
	businessState = strings.TrimSpace(businessState)
	if businessState == "" {
		return false
	}
	destState, ok := StateOf(chain)
	if !ok {
		return false
	}
	return !strings.EqualFold(destState.Code, businessState) &&
		!strings.EqualFold(destState.Name, businessState)
}

// excludedTypes suppresses the inapplicable half of the GST split. Countries
// without CGST/SGST/IGST configuration are untouched.
func excludedTypes(snap Snapshot, chain []Jurisdiction, isInterstate bool) map[enums.TaxType]bool {
	hasSplit := false
	for _, j := range chain {
		for _, r := range snap.RatesFor(j.ID) {
			for _, t := range gstSplitTypes {
				if r.TaxType == t {
					hasSplit = true
				}
			}
		}
	}
	if !hasSplit {
		return nil
	}
	if isInterstate {
		return map[enums.TaxType]bool{
			enums.TaxTypeCGST: true,
			enums.TaxTypeSGST: true,
		}
	}
	return map[enums.TaxType]bool{enums.TaxTypeIGST: true}
}

func computeLine(line QuoteLine, selected []SelectedRate) LineTaxes {
	result := LineTaxes{LineID: line.LineID}

	lineSubtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Sub(line.Discount)
	if lineSubtotal.IsNegative() {
		lineSubtotal = decimal.Zero
	}

	// unrounded base amounts feed the compound pass
	baseAmounts := make(map[uuid.UUID]decimal.Decimal, len(selected))

	for _, sr := range selected {
		taxable := lineSubtotal
		if sr.Rate.IsCompound && sr.Rate.CompoundBaseID != nil {
			if baseAmount, ok := baseAmounts[*sr.Rate.CompoundBaseID]; ok {
				taxable = lineSubtotal.Add(baseAmount)
			}
		}

		amount := taxable.Mul(sr.EffectiveRate)
		if !sr.Rate.IsCompound {
			baseAmounts[sr.Rate.ID] = amount
		}

		rounded := amount.Round(minorUnitDigits)
		if rounded.IsZero() {
			continue
		}
		result.Taxes = append(result.Taxes, AppliedTax{
			JurisdictionCode: sr.Jurisdiction.Code,
			TaxType:          sr.Rate.TaxType,
			Rate:             sr.EffectiveRate,
			Amount:           rounded,
		})
	}

	return result
}

// LineTaxTotal sums the applied amounts for one line.
func (l LineTaxes) LineTaxTotal() decimal.Decimal {
	total := decimal.Zero
	for _, t := range l.Taxes {
		total = total.Add(t.Amount)
	}
	return total
}
