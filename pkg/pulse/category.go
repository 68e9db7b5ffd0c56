package pulse

import (
	"fmt"
	"strings"
)

// Category identifies one record family of the corpus and the table it loads into.
type Category string

const (
	CategoryAggregatedTransaction Category = "aggregated-transaction"
	CategoryAggregatedUser        Category = "aggregated-user"
	CategoryAggregatedInsurance   Category = "aggregated-insurance"
	CategoryMapTransaction        Category = "map-transaction"
	CategoryMapUser               Category = "map-user"
	CategoryMapInsurance          Category = "map-insurance"
	CategoryTopTransaction        Category = "top-transaction"
	CategoryTopUser               Category = "top-user"
)

// AllCategories lists every category in load order.
var AllCategories = []Category{
	CategoryAggregatedTransaction,
	CategoryAggregatedUser,
	CategoryAggregatedInsurance,
	CategoryMapTransaction,
	CategoryMapUser,
	CategoryMapInsurance,
	CategoryTopTransaction,
	CategoryTopUser,
}

var defaultPaths = map[Category]string{
	CategoryAggregatedTransaction: "aggregated/transaction/country/india/state",
	CategoryAggregatedUser:        "aggregated/user/country/india/state",
	CategoryAggregatedInsurance:   "aggregated/insurance/country/india/state",
	CategoryMapTransaction:        "map/transaction/hover/country/india/state",
	CategoryMapUser:               "map/user/hover/country/india/state",
	CategoryMapInsurance:          "map/insurance/hover/country/india/state",
	CategoryTopTransaction:        "top/transaction/country/india/state",
	CategoryTopUser:               "top/user/country/india/state",
}

var naturalKeys = map[Category]string{
	CategoryAggregatedTransaction: "year, quarter, state, transaction_type",
	CategoryAggregatedUser:        "year, quarter, state, device_brand",
	CategoryAggregatedInsurance:   "year, quarter, state, instrument",
	CategoryMapTransaction:        "year, quarter, state, district",
	CategoryMapUser:               "year, quarter, district",
	CategoryMapInsurance:          "year, quarter, state, district",
	CategoryTopTransaction:        "year, quarter, state, pincode",
	CategoryTopUser:               "year, quarter, state, pincode",
}

// ParseCategory resolves a category name, case-insensitively.
// Underscores are accepted in place of hyphens.
func ParseCategory(name string) (Category, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	c := Category(normalized)
	if !c.IsValid() {
		return "", fmt.Errorf("%q: %w", name, ErrUnknownCategory)
	}
	return c, nil
}

func (c Category) String() string {
	return string(c)
}

// IsValid reports whether c is one of AllCategories.
func (c Category) IsValid() bool {
	_, ok := defaultPaths[c]
	return ok
}

// DefaultPath is the category's directory relative to the corpus root.
func (c Category) DefaultPath() string {
	return defaultPaths[c]
}

// NaturalKey describes the attributes that identify one record within a run.
func (c Category) NaturalKey() string {
	return naturalKeys[c]
}
