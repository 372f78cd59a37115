package vault

import (
	"fmt"

	"github.com/jonathan/cerebro/internal/types"
)

func sampleRecords(issuerID string, n int) []types.BenefitRecord {
	rules := "Pago con tarjeta de crédito"
	records := make([]types.BenefitRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, types.BenefitRecord{
			IssuerID:         issuerID,
			BenefitUID:       fmt.Sprintf("%s-1715963400000-%d", issuerID, i),
			Title:            fmt.Sprintf("Beneficio %d", i),
			DescriptionRules: &rules,
			Discount:         types.Discount{Type: types.DiscountTypeText, Value: "20% dcto"},
			Validity:         types.Validity{From: types.Pending, To: types.Pending},
			Redemption:       types.Redemption{Type: types.Pending},
			GeoScope:         types.GeoScopeSpecificStores,
			Locations:        []types.Location{{Address: "Av. Providencia 1234, Providencia"}},
			Provenance: types.Provenance{
				SourceURL:    fmt.Sprintf("https://x/detail/%d", i),
				ListURL:      "https://x/list",
				ExtractedAt:  "2024-05-17T16:30:00Z",
				StrategyUsed: "bancochile_v1",
			},
			CategoryHint: "food",
		})
	}
	return records
}
