package report

import (
	"strings"

	"golang.org/x/text/cases"
)

// legacyVariants maps case-folded name fragments of reports created before
// the variant column existed. Order matters: the first match wins.
var legacyVariants = []struct {
	fragment string
	variant  Variant
}{
	{"in transit", VariantContractsInTransit},
	{"cit", VariantContractsInTransit},
	{"f&i manager", VariantFIManager},
	{"models", VariantModels},
	{"product", VariantProducts},
	{"salesperson", VariantSalesperson},
}

// ParseVariant validates a stored variant tag.
func ParseVariant(s string) (Variant, bool) {
	switch v := Variant(s); v {
	case VariantStandard, VariantContractsInTransit, VariantFIManager,
		VariantModels, VariantProducts, VariantSalesperson:
		return v, true
	}
	return "", false
}

// ResolveVariant returns the stored tag when valid and otherwise derives it
// once from the legacy report name.
func ResolveVariant(stored, name string) Variant {
	if v, ok := ParseVariant(stored); ok {
		return v
	}
	folded := cases.Fold().String(name)
	for _, lv := range legacyVariants {
		if strings.Contains(folded, lv.fragment) {
			return lv.variant
		}
	}
	return VariantStandard
}

// UsedCondition reports whether a salesperson report ranks used-vehicle
// deals, as stated in its description.
func UsedCondition(description string) bool {
	return strings.Contains(cases.Fold().String(description), "used")
}
