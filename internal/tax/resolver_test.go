package tax

import (
	"testing"

	"github.com/google/uuid"

	"github.com/mercatohq/mercato-backend/pkg/enums"
	pkgerrors "github.com/mercatohq/mercato-backend/pkg/errors"
	"github.com/mercatohq/mercato-backend/pkg/types"
)

func snapshotWithCity() Snapshot {
	snap := validIndiaSnapshot()
	mhID := snap.Jurisdictions[1].ID
	snap.Jurisdictions = append(snap.Jurisdictions, Jurisdiction{
		ID:       uuid.New(),
		Kind:     enums.JurisdictionKindCity,
		Code:     "MUM",
		Name:     "Mumbai",
		ParentID: uuidPtr(mhID),
	})
	return snap
}

func TestResolveJurisdictions_FullChain(t *testing.T) {
	snap := snapshotWithCity()
	chain, err := ResolveJurisdictions(snap, types.Address{
		City:        "Mumbai",
		StateCode:   "MH",
		CountryCode: "IN",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(chain) != 3 {
		t.Fatalf("expected 3-level chain, got %d", len(chain))
	}
	if chain[0].Kind != enums.JurisdictionKindCity || chain[0].Name != "Mumbai" {
		t.Fatalf("chain[0] = %+v, want Mumbai city", chain[0])
	}
	if chain[1].Kind != enums.JurisdictionKindState || chain[1].Code != "MH" {
		t.Fatalf("chain[1] = %+v, want MH state", chain[1])
	}
	if chain[2].Kind != enums.JurisdictionKindCountry || chain[2].Code != "IN" {
		t.Fatalf("chain[2] = %+v, want IN country", chain[2])
	}
}

func TestResolveJurisdictions_SkipsUnconfiguredCity(t *testing.T) {
	snap := validIndiaSnapshot()
	chain, err := ResolveJurisdictions(snap, types.Address{
		City:        "Pune",
		StateCode:   "MH",
		CountryCode: "IN",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("expected state and country only, got %d levels", len(chain))
	}
	if chain[0].Kind != enums.JurisdictionKindState {
		t.Fatalf("chain[0] kind = %s, want STATE", chain[0].Kind)
	}
}

func TestResolveJurisdictions_CountryOnly(t *testing.T) {
	snap := validIndiaSnapshot()
	chain, err := ResolveJurisdictions(snap, types.Address{CountryCode: "in"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(chain) != 1 || chain[0].Kind != enums.JurisdictionKindCountry {
		t.Fatalf("expected country-only chain, got %+v", chain)
	}
}

func TestResolveJurisdictions_StateNameFallback(t *testing.T) {
	snap := validIndiaSnapshot()
	chain, err := ResolveJurisdictions(snap, types.Address{
		StateCode:   "maharashtra",
		CountryCode: "IN",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	state, ok := StateOf(chain)
	if !ok {
		t.Fatal("expected state in chain")
	}
	if state.Code != "MH" {
		t.Fatalf("state = %s, want MH via name fallback", state.Code)
	}
}

func TestResolveJurisdictions_UnknownStateSkipped(t *testing.T) {
	snap := validIndiaSnapshot()
	chain, err := ResolveJurisdictions(snap, types.Address{
		StateCode:   "ZZ",
		CountryCode: "IN",
	})
	if err != nil {
		t.Fatalf("unknown state must not fail resolution: %v", err)
	}
	if _, ok := StateOf(chain); ok {
		t.Fatal("unmatched state must be absent from the chain")
	}
}

func TestResolveJurisdictions_CountryNotConfigured(t *testing.T) {
	snap := validIndiaSnapshot()
	_, err := ResolveJurisdictions(snap, types.Address{CountryCode: "US"})
	if err == nil {
		t.Fatal("expected setup error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeSetupRequired {
		t.Fatalf("expected %s, got %v", pkgerrors.CodeSetupRequired, err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["country_code"] != "US" {
		t.Fatalf("expected country_code detail, got %v", typed.Details())
	}
}
