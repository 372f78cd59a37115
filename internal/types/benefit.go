//nolint:revive // types is a standard Go package name pattern
package types

// DiscountType classifies how a discount value is expressed.
type DiscountType string

const (
	// DiscountTypeText is a free-form discount description such as "20% dcto".
	DiscountTypeText DiscountType = "TEXT"
	// DiscountTypePercentage is a numeric percentage.
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	// DiscountTypeAmount is a fixed currency amount.
	DiscountTypeAmount DiscountType = "AMOUNT"
)

// GeoScope describes where a benefit can be redeemed.
type GeoScope string

const (
	// GeoScopeNational applies everywhere the issuer operates.
	GeoScopeNational GeoScope = "NATIONAL"
	// GeoScopeSpecificStores applies only at the listed locations.
	GeoScopeSpecificStores GeoScope = "SPECIFIC_STORES"
	// GeoScopeTBD is reserved for records whose scope could not be decided.
	GeoScopeTBD GeoScope = "TBD"
)

// Pending marks a field that is intentionally left undetermined.
const Pending = "TBD"

// TitleNotFound is the sentinel title used when neither page yielded one.
const TitleNotFound = "Title not found"

// Location is one physical place where a benefit applies. Coordinates are
// filled in by a later geocoding stage and are always nil here.
type Location struct {
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// CardListData holds the fields read from one card on a listing page.
type CardListData struct {
	Title            *string
	DiscountText     *string
	ShortDescription *string
	DetailURL        *string
}

// DetailData holds the fields read from one detail page.
type DetailData struct {
	Title        *string
	ValidityText *string
	Rules        []string
	Locations    []Location
}

// IsEmpty reports whether no field was extracted.
func (d DetailData) IsEmpty() bool {
	return d.Title == nil && d.ValidityText == nil && len(d.Rules) == 0 && len(d.Locations) == 0
}

// Discount is the offered discount.
type Discount struct {
	Type  DiscountType `json:"type"`
	Value string       `json:"value"`
}

// Validity is the period a benefit is valid for.
type Validity struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Text *string `json:"text"`
}

// Redemption describes how a benefit is redeemed.
type Redemption struct {
	Type string `json:"type"`
}

// Provenance records where and how a record was extracted.
type Provenance struct {
	SourceURL    string `json:"source_url"`
	ListURL      string `json:"list_url"`
	ExtractedAt  string `json:"extracted_at"`
	StrategyUsed string `json:"strategy_used"`
}

// BenefitRecord is the normalized output unit for one promotional benefit.
// Records are not modified after construction.
type BenefitRecord struct {
	IssuerID         string     `json:"issuer_id"`
	BenefitUID       string     `json:"benefit_uid"`
	Title            string     `json:"title"`
	DescriptionShort *string    `json:"description_short"`
	DescriptionRules *string    `json:"description_rules"`
	Discount         Discount   `json:"discount"`
	Validity         Validity   `json:"validity"`
	Redemption       Redemption `json:"redemption"`
	GeoScope         GeoScope   `json:"geo_scope"`
	Locations        []Location `json:"locations"`
	Provenance       Provenance `json:"provenance"`
	CategoryHint     string     `json:"category_hint"`
}
