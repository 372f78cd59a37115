package extraction

import "github.com/jonathan/cerebro/internal/types"

// DetailResult is the outcome of reading one detail page. Data is always
// usable; Reason is set when the page could not be fetched or parsed and Data
// is therefore empty.
type DetailResult struct {
	Data   types.DetailData
	Reason error
}

// ListResult is the outcome of reading one listing page. Reason is set when
// the page as a whole yielded nothing (selector timeout, navigation failure);
// Skipped lists the cards that were dropped individually.
type ListResult struct {
	Records    []types.BenefitRecord
	CardsFound int
	Skipped    []*CardExtractionError
	Reason     error
}
