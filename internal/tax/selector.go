package tax

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercatohq/mercato-backend/pkg/enums"
	pkgerrors "github.com/mercatohq/mercato-backend/pkg/errors"
)

// SelectedRate is one levy chosen for a transaction date, with the category
// override already folded into EffectiveRate.
type SelectedRate struct {
	Rate          Rate
	EffectiveRate decimal.Decimal
	Jurisdiction  Jurisdiction
}

// SelectRates picks the effective rate per jurisdiction and tax type for the
// given date, most specific jurisdiction first. Tax types listed in excluded
// are skipped; callers use this for the interstate/intrastate GST split.
//
// The result is ordered for amount computation: all base rates first, then
// compound rates in the order their base was resolved, so each compound rate
// can be applied to its base's tax-inclusive amount. A compound rate whose
// base is not part of the selection for this date is a configuration fault
// and is reported, never silently dropped.
func SelectRates(snap Snapshot, chain []Jurisdiction, taxDate time.Time, categoryID string, excluded map[enums.TaxType]bool) ([]SelectedRate, error) {
	var selected []SelectedRate

	for _, jurisdiction := range chain {
		rates := snap.RatesFor(jurisdiction.ID)
		seenTypes := make(map[enums.TaxType]bool)
		for _, rate := range rates {
			if excluded[rate.TaxType] || seenTypes[rate.TaxType] {
				continue
			}
			if !rate.EffectiveAt(taxDate) {
				continue
			}
			seenTypes[rate.TaxType] = true
			selected = append(selected, SelectedRate{
				Rate:          rate,
				EffectiveRate: effectiveRateFor(rate, categoryID),
				Jurisdiction:  jurisdiction,
			})
		}
	}

	return orderForCompounding(selected)
}

func effectiveRateFor(rate Rate, categoryID string) decimal.Decimal {
	if categoryID == "" || rate.CategoryOverrides == nil {
		return rate.Rate
	}
	if override, ok := rate.CategoryOverrides[categoryID]; ok {
		return override
	}
	return rate.Rate
}

// orderForCompounding partitions into base rates followed by compound rates,
// compounds sorted by their base's position in the base list.
func orderForCompounding(selected []SelectedRate) ([]SelectedRate, error) {
	var bases []SelectedRate
	var compounds []SelectedRate
	basePosition := make(map[uuid.UUID]int)

	for _, sr := range selected {
		if sr.Rate.IsCompound {
			compounds = append(compounds, sr)
			continue
		}
		basePosition[sr.Rate.ID] = len(bases)
		bases = append(bases, sr)
	}

	ordered := make([]SelectedRate, 0, len(selected))
	ordered = append(ordered, bases...)

	for len(compounds) > 0 {
		best := -1
		bestPos := 0
		for j, c := range compounds {
			if c.Rate.CompoundBaseID == nil {
				continue
			}
			pos, ok := basePosition[*c.Rate.CompoundBaseID]
			if !ok {
				continue
			}
			if best == -1 || pos < bestPos {
				best = j
				bestPos = pos
			}
		}
		if best == -1 {
			orphan := compounds[0]
			return nil, pkgerrors.New(pkgerrors.CodeDataIntegrity, "compound tax rate has no base rate in the selected set").
				WithDetails(map[string]any{
					"rate_id":  orphan.Rate.ID.String(),
					"tax_type": orphan.Rate.TaxType.String(),
				})
		}
		ordered = append(ordered, compounds[best])
		compounds = append(compounds[:best], compounds[best+1:]...)
	}

	return ordered, nil
}
