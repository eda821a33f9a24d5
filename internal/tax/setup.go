package tax

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercatohq/mercato-backend/pkg/db/models"
	"github.com/mercatohq/mercato-backend/pkg/enums"
	pkgerrors "github.com/mercatohq/mercato-backend/pkg/errors"
)

// Setup presets accepted by SetupCountry.
const (
	PresetIndiaGST     = "india_gst"
	PresetCanadaGSTQST = "canada_gst_qst"
)

type countrySeed struct {
	countryCode   string
	jurisdictions []models.TaxJurisdiction
	rates         []models.TaxRate
}

func seedForPreset(preset string) (countrySeed, error) {
	switch preset {
	case PresetIndiaGST:
		return indiaGSTSeed(), nil
	case PresetCanadaGSTQST:
		return canadaGSTQSTSeed(), nil
	default:
		return countrySeed{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown tax setup preset").
			WithDetails(map[string]any{"preset": preset})
	}
}

// indiaStates is every state and union territory GST registers against.
var indiaStates = []struct {
	code string
	name string
}{
	{"AN", "Andaman and Nicobar Islands"},
	{"AP", "Andhra Pradesh"},
	{"AR", "Arunachal Pradesh"},
	{"AS", "Assam"},
	{"BR", "Bihar"},
	{"CH", "Chandigarh"},
	{"CG", "Chhattisgarh"},
	{"DN", "Dadra and Nagar Haveli and Daman and Diu"},
	{"DL", "Delhi"},
	{"GA", "Goa"},
	{"GJ", "Gujarat"},
	{"HR", "Haryana"},
	{"HP", "Himachal Pradesh"},
	{"JK", "Jammu and Kashmir"},
	{"JH", "Jharkhand"},
	{"KA", "Karnataka"},
	{"KL", "Kerala"},
	{"LA", "Ladakh"},
	{"LD", "Lakshadweep"},
	{"MP", "Madhya Pradesh"},
	{"MH", "Maharashtra"},
	{"MN", "Manipur"},
	{"ML", "Meghalaya"},
	{"MZ", "Mizoram"},
	{"NL", "Nagaland"},
	{"OD", "Odisha"},
	{"PY", "Puducherry"},
	{"PB", "Punjab"},
	{"RJ", "Rajasthan"},
	{"SK", "Sikkim"},
	{"TN", "Tamil Nadu"},
	{"TS", "Telangana"},
	{"TR", "Tripura"},
	{"UP", "Uttar Pradesh"},
	{"UK", "Uttarakhand"},
	{"WB", "West Bengal"},
}

// indiaGSTSeed creates the IN country jurisdiction with every state, and the
// standard 18% slab as country-level rates: CGST 9% + SGST 9% intrastate,
// IGST 18% interstate. The calculator picks the applicable half per order.
func indiaGSTSeed() countrySeed {
	now := time.Now().UTC()
	countryID := uuid.New()

	jurisdictions := []models.TaxJurisdiction{{
		ID:       countryID,
		Kind:     enums.JurisdictionKindCountry,
		Code:     "IN",
		Name:     "India",
		IsActive: true,
	}}
	for _, state := range indiaStates {
		parentID := countryID
		jurisdictions = append(jurisdictions, models.TaxJurisdiction{
			ID:       uuid.New(),
			Kind:     enums.JurisdictionKindState,
			Code:     state.code,
			Name:     state.name,
			ParentID: &parentID,
			IsActive: true,
		})
	}

	rates := []models.TaxRate{
		{
			ID:             uuid.New(),
			JurisdictionID: countryID,
			TaxType:        enums.TaxTypeCGST,
			Rate:           decimal.RequireFromString("0.09"),
			EffectiveFrom:  now,
		},
		{
			ID:             uuid.New(),
			JurisdictionID: countryID,
			TaxType:        enums.TaxTypeSGST,
			Rate:           decimal.RequireFromString("0.09"),
			EffectiveFrom:  now,
		},
		{
			ID:             uuid.New(),
			JurisdictionID: countryID,
			TaxType:        enums.TaxTypeIGST,
			Rate:           decimal.RequireFromString("0.18"),
			EffectiveFrom:  now,
		},
	}

	return countrySeed{countryCode: "IN", jurisdictions: jurisdictions, rates: rates}
}

// canadaGSTQSTSeed creates CA with the federal GST and Quebec's QST, the QST
// compounding on the GST-inclusive amount.
func canadaGSTQSTSeed() countrySeed {
	now := time.Now().UTC()
	countryID := uuid.New()
	quebecID := uuid.New()
	gstRateID := uuid.New()

	countryRef := countryID
	jurisdictions := []models.TaxJurisdiction{
		{
			ID:       countryID,
			Kind:     enums.JurisdictionKindCountry,
			Code:     "CA",
			Name:     "Canada",
			IsActive: true,
		},
		{
			ID:       quebecID,
			Kind:     enums.JurisdictionKindState,
			Code:     "QC",
			Name:     "Quebec",
			ParentID: &countryRef,
			IsActive: true,
		},
	}

	gstBase := gstRateID
	rates := []models.TaxRate{
		{
			ID:             gstRateID,
			JurisdictionID: countryID,
			TaxType:        enums.TaxTypeGST,
			Rate:           decimal.RequireFromString("0.05"),
			EffectiveFrom:  now,
		},
		{
			ID:             uuid.New(),
			JurisdictionID: quebecID,
			TaxType:        enums.TaxTypeQST,
			Rate:           decimal.RequireFromString("0.09975"),
			IsCompound:     true,
			CompoundBaseID: &gstBase,
			EffectiveFrom:  now,
		},
	}

	return countrySeed{countryCode: "CA", jurisdictions: jurisdictions, rates: rates}
}
