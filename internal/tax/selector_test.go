package tax

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercatohq/mercato-backend/pkg/enums"
	pkgerrors "github.com/mercatohq/mercato-backend/pkg/errors"
)

func canadaSnapshot() Snapshot {
	countryID := uuid.New()
	quebecID := uuid.New()
	gstID := uuid.New()
	return Snapshot{
		CountryCode: "CA",
		Jurisdictions: []Jurisdiction{
			{ID: countryID, Kind: enums.JurisdictionKindCountry, Code: "CA", Name: "Canada"},
			{ID: quebecID, Kind: enums.JurisdictionKindState, Code: "QC", Name: "Quebec", ParentID: uuidPtr(countryID)},
		},
		Rates: []Rate{
			{ID: gstID, JurisdictionID: countryID, TaxType: enums.TaxTypeGST, Rate: rate("0.05"), EffectiveFrom: testEpoch},
			{ID: uuid.New(), JurisdictionID: quebecID, TaxType: enums.TaxTypeQST, Rate: rate("0.09975"), IsCompound: true, CompoundBaseID: uuidPtr(gstID), EffectiveFrom: testEpoch},
		},
	}
}

func mustChain(t *testing.T, snap Snapshot, jurisdictionCodes ...string) []Jurisdiction {
	t.Helper()
	var chain []Jurisdiction
	for _, code := range jurisdictionCodes {
		found := false
		for _, j := range snap.Jurisdictions {
			if j.Code == code {
				chain = append(chain, j)
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("jurisdiction %s not in snapshot", code)
		}
	}
	return chain
}

func TestSelectRates_EffectiveWindow(t *testing.T) {
	snap := validIndiaSnapshot()
	countryID := snap.Jurisdictions[0].ID
	cutover := testEpoch.AddDate(1, 0, 0)

	for i := range snap.Rates {
		if snap.Rates[i].TaxType == enums.TaxTypeIGST {
			snap.Rates[i].EffectiveTo = timePtr(cutover)
		}
	}
	newIGST := Rate{
		ID:             uuid.New(),
		JurisdictionID: countryID,
		TaxType:        enums.TaxTypeIGST,
		Rate:           rate("0.28"),
		EffectiveFrom:  cutover,
	}
	snap.Rates = append(snap.Rates, newIGST)

	chain := mustChain(t, snap, "IN")
	excluded := map[enums.TaxType]bool{enums.TaxTypeCGST: true, enums.TaxTypeSGST: true}

	selected, err := SelectRates(snap, chain, cutover.Add(-time.Hour), "", excluded)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(selected) != 1 || !selected[0].EffectiveRate.Equal(rate("0.18")) {
		t.Fatalf("expected old 18%% rate before cutover, got %+v", selected)
	}

	selected, err = SelectRates(snap, chain, cutover, "", excluded)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(selected) != 1 || !selected[0].EffectiveRate.Equal(rate("0.28")) {
		t.Fatalf("expected new 28%% rate from cutover, got %+v", selected)
	}
}

func TestSelectRates_NoRateEffective(t *testing.T) {
	snap := validIndiaSnapshot()
	chain := mustChain(t, snap, "IN")

	selected, err := SelectRates(snap, chain, testEpoch.Add(-time.Hour), "", nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(selected) != 0 {
		t.Fatalf("no rate should be effective before its window, got %d", len(selected))
	}
}

func TestSelectRates_CategoryOverride(t *testing.T) {
	snap := validIndiaSnapshot()
	essentialsID := uuid.NewString()
	for i := range snap.Rates {
		if snap.Rates[i].TaxType == enums.TaxTypeIGST {
			snap.Rates[i].CategoryOverrides = map[string]decimal.Decimal{essentialsID: rate("0.05")}
		}
	}

	chain := mustChain(t, snap, "IN")
	excluded := map[enums.TaxType]bool{enums.TaxTypeCGST: true, enums.TaxTypeSGST: true}

	selected, err := SelectRates(snap, chain, testEpoch, essentialsID, excluded)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(selected) != 1 {
		t.Fatalf("expected one rate, got %d", len(selected))
	}
	if !selected[0].EffectiveRate.Equal(rate("0.05")) {
		t.Fatalf("override not applied: %s", selected[0].EffectiveRate)
	}
	// metadata keeps the configured rate row
	if !selected[0].Rate.Rate.Equal(rate("0.18")) {
		t.Fatalf("underlying rate row must keep its configured fraction, got %s", selected[0].Rate.Rate)
	}

	selected, err = SelectRates(snap, chain, testEpoch, uuid.NewString(), excluded)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !selected[0].EffectiveRate.Equal(rate("0.18")) {
		t.Fatalf("unrelated category must get the default rate, got %s", selected[0].EffectiveRate)
	}
}

func TestSelectRates_CompoundOrdering(t *testing.T) {
	snap := canadaSnapshot()
	chain := mustChain(t, snap, "QC", "CA")

	selected, err := SelectRates(snap, chain, testEpoch, "", nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(selected) != 2 {
		t.Fatalf("expected GST and QST, got %d", len(selected))
	}
	if selected[0].Rate.TaxType != enums.TaxTypeGST {
		t.Fatalf("base rate must come first, got %s", selected[0].Rate.TaxType)
	}
	if selected[1].Rate.TaxType != enums.TaxTypeQST || !selected[1].Rate.IsCompound {
		t.Fatalf("compound rate must come last, got %+v", selected[1].Rate)
	}
}

func TestSelectRates_OrphanCompound(t *testing.T) {
	snap := canadaSnapshot()
	// expire the GST base so only the compound QST is selectable
	expired := testEpoch.Add(time.Hour)
	for i := range snap.Rates {
		if snap.Rates[i].TaxType == enums.TaxTypeGST {
			snap.Rates[i].EffectiveTo = timePtr(expired)
		}
	}

	chain := mustChain(t, snap, "QC", "CA")
	_, err := SelectRates(snap, chain, expired.Add(time.Hour), "", nil)
	if err == nil {
		t.Fatal("expected orphan compound error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDataIntegrity {
		t.Fatalf("expected %s, got %v", pkgerrors.CodeDataIntegrity, err)
	}
}
