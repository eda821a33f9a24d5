package tax

import (
	"strings"

	"github.com/mercatohq/mercato-backend/pkg/enums"
	pkgerrors "github.com/mercatohq/mercato-backend/pkg/errors"
	"github.com/mercatohq/mercato-backend/pkg/types"
)

// ResolveJurisdictions finds the chain of jurisdictions applicable to the
// address, ordered most specific to least specific (CITY, STATE, COUNTRY).
// Levels absent from the configuration are skipped. A missing country match
// is a hard setup error: tax cannot be computed without one.
//
// Matching is case-insensitive. State matching tries the code first and falls
// back to the name, since some callers only carry the human-readable state.
func ResolveJurisdictions(snap Snapshot, address types.Address) ([]Jurisdiction, error) {
	addr := address.Normalized()

	country, ok := findCountry(snap, addr.CountryCode)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeSetupRequired, "no tax jurisdiction configured for country").
			WithDetails(map[string]any{"country_code": addr.CountryCode})
	}

	chain := []Jurisdiction{country}

	state, hasState := findState(snap, country, addr.StateCode)
	if hasState {
		chain = append([]Jurisdiction{state}, chain...)

		if city, hasCity := findCity(snap, state, addr.City); hasCity {
			chain = append([]Jurisdiction{city}, chain...)
		}
	}

	return chain, nil
}

func findCountry(snap Snapshot, countryCode string) (Jurisdiction, bool) {
	for _, j := range snap.Jurisdictions {
		if j.Kind == enums.JurisdictionKindCountry && strings.EqualFold(j.Code, countryCode) {
			return j, true
		}
	}
	return Jurisdiction{}, false
}

func findState(snap Snapshot, country Jurisdiction, stateCode string) (Jurisdiction, bool) {
	if stateCode == "" {
		return Jurisdiction{}, false
	}
	var byName *Jurisdiction
	for _, j := range snap.Jurisdictions {
		if j.Kind != enums.JurisdictionKindState || j.ParentID == nil || *j.ParentID != country.ID {
			continue
		}
		if strings.EqualFold(j.Code, stateCode) {
			return j, true
		}
		if byName == nil && strings.EqualFold(j.Name, stateCode) {
			match := j
			byName = &match
		}
	}
	if byName != nil {
		return *byName, true
	}
	return Jurisdiction{}, false
}

func findCity(snap Snapshot, state Jurisdiction, city string) (Jurisdiction, bool) {
	if city == "" {
		return Jurisdiction{}, false
	}
	for _, j := range snap.Jurisdictions {
		if j.Kind != enums.JurisdictionKindCity || j.ParentID == nil || *j.ParentID != state.ID {
			continue
		}
		if strings.EqualFold(j.Code, city) || strings.EqualFold(j.Name, city) {
			return j, true
		}
	}
	return Jurisdiction{}, false
}

// StateOf returns the STATE-level entry of a resolved chain, if present.
func StateOf(chain []Jurisdiction) (Jurisdiction, bool) {
	for _, j := range chain {
		if j.Kind == enums.JurisdictionKindState {
			return j, true
		}
	}
	return Jurisdiction{}, false
}
