package extraction

import (
	"strings"
	"time"

	"github.com/jonathan/cerebro/internal/types"
)

// NormalizeInput carries everything needed to build one record.
type NormalizeInput struct {
	Card         types.CardListData
	Detail       types.DetailData
	IssuerID     string
	BenefitUID   string
	CategoryHint string
	// SourceURL is the detail page the record was read from.
	SourceURL string
	// ListURL is the listing page the card was found on.
	ListURL  string
	Strategy string
}

// Normalize merges list-level and detail-level data into a BenefitRecord.
// Detail fields win over list fields; the only impure input is the clock.
//
// geo_scope is SPECIFIC_STORES when the detail page listed locations and
// NATIONAL otherwise.
func Normalize(in NormalizeInput, clock Clock) types.BenefitRecord {
	title := types.TitleNotFound
	switch {
	case in.Detail.Title != nil && *in.Detail.Title != "":
		title = *in.Detail.Title
	case in.Card.Title != nil && *in.Card.Title != "":
		title = *in.Card.Title
	}

	descriptionShort := in.Card.DiscountText
	if descriptionShort == nil {
		descriptionShort = in.Card.ShortDescription
	}

	var descriptionRules *string
	if len(in.Detail.Rules) > 0 {
		descriptionRules = optional(strings.Join(in.Detail.Rules, " "))
	} else if in.Detail.ValidityText != nil {
		descriptionRules = copyString(in.Detail.ValidityText)
	}

	discount := ""
	if in.Card.DiscountText != nil {
		discount = *in.Card.DiscountText
	}

	locations := make([]types.Location, len(in.Detail.Locations))
	copy(locations, in.Detail.Locations)

	geoScope := types.GeoScopeNational
	if len(locations) > 0 {
		geoScope = types.GeoScopeSpecificStores
	}

	return types.BenefitRecord{
		IssuerID:         in.IssuerID,
		BenefitUID:       in.BenefitUID,
		Title:            title,
		DescriptionShort: copyString(descriptionShort),
		DescriptionRules: descriptionRules,
		Discount: types.Discount{
			Type:  types.DiscountTypeText,
			Value: discount,
		},
		Validity: types.Validity{
			From: types.Pending,
			To:   types.Pending,
			Text: copyString(in.Detail.ValidityText),
		},
		Redemption: types.Redemption{Type: types.Pending},
		GeoScope:   geoScope,
		Locations:  locations,
		Provenance: types.Provenance{
			SourceURL:    in.SourceURL,
			ListURL:      in.ListURL,
			ExtractedAt:  clock.now().UTC().Format(time.RFC3339),
			StrategyUsed: in.Strategy,
		},
		CategoryHint: in.CategoryHint,
	}
}

// copyString detaches the record from the caller's pointers.
func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
