// Package selectors maps listing-page URLs to the CSS selector patterns used to read them.
package selectors

// Pattern is a named set of selectors for one listing/detail page shape.
//
// Card-level fields are read either by explicit selectors (Title, Discount,
// ShortDescription) or, when TextItems is set, by position among the card's
// matching text elements: first is the title, second the discount, third the
// short description. An empty Link means the card element itself carries the
// link attribute.
type Pattern struct {
	Name string

	Card             string
	TextItems        string
	Title            string
	Discount         string
	ShortDescription string
	Link             string
	LinkAttr         string

	DetailTitle           string
	DetailValidity        string
	DetailRulesContainer  string
	DetailRuleItem        string
	DetailLocationCard    string
	DetailLocationAddress string
	DetailLocationCommune string
}

const (
	// PatternBancoChileSabores reads restaurant benefits, which list store addresses.
	PatternBancoChileSabores = "bancochile_sabores"
	// PatternBancoChileBenefits reads the general benefits listing.
	PatternBancoChileBenefits = "bancochile_beneficios"
	// PatternPromoGrid reads grid-style promotion listings.
	PatternPromoGrid = "promo_grid"
	// PatternGenericCard is the fallback for unrecognized URLs.
	PatternGenericCard = "generic_card"
)

// anchorCard is the card shape used across the Banco de Chile benefits site.
const anchorCard = "a.card.group.border-gray-background"

var patterns = map[string]Pattern{
	PatternBancoChileSabores: {
		Name:                  PatternBancoChileSabores,
		Card:                  anchorCard,
		TextItems:             "p",
		LinkAttr:              "href",
		DetailTitle:           "h1",
		DetailValidity:        ".benefit-validity, .vigencia",
		DetailRulesContainer:  ".benefit-conditions, .condiciones",
		DetailRuleItem:        "li",
		DetailLocationCard:    ".location-card, .local",
		DetailLocationAddress: ".location-address, .direccion",
		DetailLocationCommune: ".location-commune, .comuna",
	},
	PatternBancoChileBenefits: {
		Name:                  PatternBancoChileBenefits,
		Card:                  anchorCard,
		TextItems:             "p",
		LinkAttr:              "href",
		DetailTitle:           "h1",
		DetailValidity:        ".benefit-validity, .vigencia",
		DetailRulesContainer:  ".benefit-conditions, .condiciones",
		DetailRuleItem:        "li",
		DetailLocationCard:    ".location-card",
		DetailLocationAddress: ".location-address",
		DetailLocationCommune: ".location-commune",
	},
	PatternPromoGrid: {
		Name:                  PatternPromoGrid,
		Card:                  ".promo-grid .promo-item",
		Title:                 ".promo-title",
		Discount:              ".promo-discount",
		ShortDescription:      ".promo-summary",
		Link:                  "a.promo-link",
		LinkAttr:              "href",
		DetailTitle:           "h1.promo-heading, h1",
		DetailValidity:        ".promo-validity",
		DetailRulesContainer:  ".promo-terms",
		DetailRuleItem:        "li",
		DetailLocationCard:    ".promo-store",
		DetailLocationAddress: ".store-address",
		DetailLocationCommune: ".store-commune",
	},
	PatternGenericCard: {
		Name:                  PatternGenericCard,
		Card:                  anchorCard,
		TextItems:             "p",
		LinkAttr:              "href",
		DetailTitle:           "h1",
		DetailValidity:        ".vigencia, .validity",
		DetailRulesContainer:  ".condiciones, .rules",
		DetailRuleItem:        "li",
		DetailLocationCard:    ".location-card",
		DetailLocationAddress: ".location-address",
		DetailLocationCommune: ".location-commune",
	},
}

// Lookup returns the named pattern.
func Lookup(name string) (Pattern, bool) {
	p, ok := patterns[name]
	return p, ok
}

// Default returns the fallback pattern.
func Default() Pattern {
	return patterns[PatternGenericCard]
}
