package tax

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/mercatohq/mercato-backend/pkg/db/models"
	"github.com/mercatohq/mercato-backend/pkg/enums"
	pkgerrors "github.com/mercatohq/mercato-backend/pkg/errors"
)

// Jurisdiction is the in-memory engine view of a tax authority.
type Jurisdiction struct {
	ID       uuid.UUID              `json:"id"`
	Kind     enums.JurisdictionKind `json:"kind"`
	Code     string                 `json:"code"`
	Name     string                 `json:"name"`
	ParentID *uuid.UUID             `json:"parent_id,omitempty"`
}

// Rate is the in-memory engine view of a levy. CategoryOverrides is keyed by
// category id and replaces the rate fraction when the sold category matches.
type Rate struct {
	ID                uuid.UUID                  `json:"id"`
	JurisdictionID    uuid.UUID                  `json:"jurisdiction_id"`
	TaxType           enums.TaxType              `json:"tax_type"`
	Rate              decimal.Decimal            `json:"rate"`
	IsCompound        bool                       `json:"is_compound"`
	CompoundBaseID    *uuid.UUID                 `json:"compound_base_id,omitempty"`
	EffectiveFrom     time.Time                  `json:"effective_from"`
	EffectiveTo       *time.Time                 `json:"effective_to,omitempty"`
	CategoryOverrides map[string]decimal.Decimal `json:"category_overrides,omitempty"`
}

// EffectiveAt reports whether taxDate falls inside [EffectiveFrom, EffectiveTo).
func (r Rate) EffectiveAt(taxDate time.Time) bool {
	if taxDate.Before(r.EffectiveFrom) {
		return false
	}
	if r.EffectiveTo != nil && !taxDate.Before(*r.EffectiveTo) {
		return false
	}
	return true
}

// Snapshot is the read-only jurisdiction and rate configuration for one
// country, handed to the engine by the caller. It carries no live DB state.
type Snapshot struct {
	CountryCode   string         `json:"country_code"`
	Jurisdictions []Jurisdiction `json:"jurisdictions"`
	Rates         []Rate         `json:"rates"`
}

// NewSnapshot converts persisted rows into an engine snapshot, dropping
// inactive jurisdictions and the rates attached to them.
func NewSnapshot(countryCode string, jurisdictions []models.TaxJurisdiction, rates []models.TaxRate) Snapshot {
	snap := Snapshot{CountryCode: strings.ToUpper(strings.TrimSpace(countryCode))}
	active := make(map[uuid.UUID]bool, len(jurisdictions))
	for _, j := range jurisdictions {
		if !j.IsActive {
			continue
		}
		active[j.ID] = true
		snap.Jurisdictions = append(snap.Jurisdictions, Jurisdiction{
			ID:       j.ID,
			Kind:     j.Kind,
			Code:     j.Code,
			Name:     j.Name,
			ParentID: j.ParentID,
		})
	}
	for _, r := range rates {
		if !active[r.JurisdictionID] {
			continue
		}
		snap.Rates = append(snap.Rates, Rate{
			ID:                r.ID,
			JurisdictionID:    r.JurisdictionID,
			TaxType:           r.TaxType,
			Rate:              r.Rate,
			IsCompound:        r.IsCompound,
			CompoundBaseID:    r.CompoundBaseID,
			EffectiveFrom:     r.EffectiveFrom,
			EffectiveTo:       r.EffectiveTo,
			CategoryOverrides: r.CategoryOverrides,
		})
	}
	return snap
}

// RatesFor returns the rates attached to the jurisdiction.
func (s Snapshot) RatesFor(jurisdictionID uuid.UUID) []Rate {
	var out []Rate
	for _, r := range s.Rates {
		if r.JurisdictionID == jurisdictionID {
			out = append(out, r)
		}
	}
	return out
}

// RateByID returns the rate with the given id.
func (s Snapshot) RateByID(id uuid.UUID) (Rate, bool) {
	for _, r := range s.Rates {
		if r.ID == id {
			return r, true
		}
	}
	return Rate{}, false
}

// Validate checks the configuration invariants: one country row per code,
// parent references of the correct kind, rate fractions inside [0, 1],
// non-overlapping effective ranges per jurisdiction and tax type, and
// compound rates pointing at an existing non-compound base. All violations
// are collected before returning.
func (s Snapshot) Validate() error {
	var errs error

	byID := make(map[uuid.UUID]Jurisdiction, len(s.Jurisdictions))
	countryCodes := make(map[string]int)
	for _, j := range s.Jurisdictions {
		byID[j.ID] = j
		if j.Kind == enums.JurisdictionKindCountry {
			countryCodes[strings.ToUpper(j.Code)]++
		}
	}
	for code, n := range countryCodes {
		if n > 1 {
			errs = multierr.Append(errs, fmt.Errorf("country %s configured %d times", code, n))
		}
	}
	if len(countryCodes) == 0 && len(s.Jurisdictions) > 0 {
		errs = multierr.Append(errs, fmt.Errorf("snapshot has no country jurisdiction"))
	}

	for _, j := range s.Jurisdictions {
		wantKind, hasParent := j.Kind.ParentKind()
		if !hasParent {
			if j.ParentID != nil {
				errs = multierr.Append(errs, fmt.Errorf("jurisdiction %s (%s) must not have a parent", j.Code, j.Kind))
			}
			continue
		}
		if j.ParentID == nil {
			errs = multierr.Append(errs, fmt.Errorf("jurisdiction %s (%s) is missing its parent", j.Code, j.Kind))
			continue
		}
		parent, ok := byID[*j.ParentID]
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("jurisdiction %s (%s) references unknown parent %s", j.Code, j.Kind, j.ParentID))
			continue
		}
		if parent.Kind != wantKind {
			errs = multierr.Append(errs, fmt.Errorf("jurisdiction %s (%s) parent %s has kind %s, want %s", j.Code, j.Kind, parent.Code, parent.Kind, wantKind))
		}
	}

	one := decimal.NewFromInt(1)
	for _, r := range s.Rates {
		if r.Rate.IsNegative() || r.Rate.GreaterThan(one) {
			errs = multierr.Append(errs, fmt.Errorf("rate %s (%s) fraction %s outside [0, 1]", r.ID, r.TaxType, r.Rate))
		}
		if _, ok := byID[r.JurisdictionID]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("rate %s (%s) references unknown jurisdiction %s", r.ID, r.TaxType, r.JurisdictionID))
		}
	}

	errs = multierr.Append(errs, s.validateEffectiveRanges())
	errs = multierr.Append(errs, s.validateCompoundReferences())
	return errs
}

func (s Snapshot) validateEffectiveRanges() error {
	var errs error

	type key struct {
		jurisdiction uuid.UUID
		taxType      enums.TaxType
	}
	grouped := make(map[key][]Rate)
	for _, r := range s.Rates {
		k := key{jurisdiction: r.JurisdictionID, taxType: r.TaxType}
		grouped[k] = append(grouped[k], r)
	}

	for k, rates := range grouped {
		if len(rates) < 2 {
			continue
		}
		sort.Slice(rates, func(i, j int) bool {
			return rates[i].EffectiveFrom.Before(rates[j].EffectiveFrom)
		})
		for i := 1; i < len(rates); i++ {
			prev := rates[i-1]
			if prev.EffectiveTo == nil || rates[i].EffectiveFrom.Before(*prev.EffectiveTo) {
				errs = multierr.Append(errs, fmt.Errorf(
					"overlapping effective ranges for %s on jurisdiction %s: %s and %s",
					k.taxType, k.jurisdiction, prev.ID, rates[i].ID))
			}
		}
	}
	return errs
}

func (s Snapshot) validateCompoundReferences() error {
	var errs error
	for _, r := range s.Rates {
		if !r.IsCompound {
			if r.CompoundBaseID != nil {
				errs = multierr.Append(errs, fmt.Errorf("rate %s (%s) is not compound but references base %s", r.ID, r.TaxType, r.CompoundBaseID))
			}
			continue
		}
		if r.CompoundBaseID == nil {
			errs = multierr.Append(errs, fmt.Errorf("compound rate %s (%s) has no base reference", r.ID, r.TaxType))
			continue
		}
		base, ok := s.RateByID(*r.CompoundBaseID)
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("compound rate %s (%s) references unknown base %s", r.ID, r.TaxType, r.CompoundBaseID))
			continue
		}
		// compound-on-compound would form a chain; bases must be plain rates
		if base.IsCompound {
			errs = multierr.Append(errs, fmt.Errorf("compound rate %s (%s) references compound base %s (%s)", r.ID, r.TaxType, base.ID, base.TaxType))
		}
	}
	return errs
}

// ValidateStrict wraps Validate into a coded configuration error for callers
// that load snapshots at request time.
func (s Snapshot) ValidateStrict() error {
	if err := s.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDataIntegrity, err, "tax configuration invalid").
			WithDetails(map[string]any{"country_code": s.CountryCode})
	}
	return nil
}
