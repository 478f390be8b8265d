package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Tier is a named quantity/price bracket for a product, e.g. "1g" or
// "eighth". Quantity is fractional to support weight-based units.
type Tier struct {
	Label     string
	Quantity  float64
	Unit      string
	Price     decimal.Decimal
	SortOrder int
}

// Schema is a named ordered set of tiers shared across products.
type Schema struct {
	ID    string
	Name  string
	Tiers []Tier
}

// ProductPricing carries the pricing references attached to a catalog
// product. EmbeddedSchema is pre-joined by the data layer when present.
type ProductPricing struct {
	PricingSchemaID *string
	EmbeddedSchema  *Schema
}

// ResolveTiers resolves the purchase tiers for a product. The embedded
// schema wins over a lookup by id; a missing schema yields an empty
// slice, meaning "use base price". Never returns an error.
func ResolveTiers(product ProductPricing, schemas map[string]Schema) []Tier {
	var tiers []Tier
	switch {
	case product.EmbeddedSchema != nil:
		tiers = product.EmbeddedSchema.Tiers
	case product.PricingSchemaID != nil:
		schema, ok := schemas[*product.PricingSchemaID]
		if !ok {
			return []Tier{}
		}
		tiers = schema.Tiers
	default:
		return []Tier{}
	}

	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortOrder < sorted[j].SortOrder
	})
	return sorted
}
