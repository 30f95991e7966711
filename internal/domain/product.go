package domain

// MaxVariantOptions is the number of generic option slots of a storefront variant.
const MaxVariantOptions = 5

// TargetProduct is the storefront product document built from one SourceProduct.
type TargetProduct struct {
	Handle   string
	Title    string
	Variants []TargetVariant
	Images   []TargetImage
}

// TargetVariant is one storefront variant. Options holds the filled slots in order;
// slots past len(Options) are absent.
type TargetVariant struct {
	SKU     string
	Options []string
}

// Option returns the value of the 1-based slot n, or "" when the slot is absent.
func (v TargetVariant) Option(n int) string {
	if n < 1 || n > len(v.Options) {
		return ""
	}
	return v.Options[n-1]
}

// TargetImage is an image to attach to a storefront product.
type TargetImage struct {
	FileName string
	Src      string
}

// StorefrontProduct is a product as it exists on the storefront.
type StorefrontProduct struct {
	ID     uint64
	Handle string
	Title  string
}

// StorefrontImage is an image as it exists on the storefront.
type StorefrontImage struct {
	ID        uint64
	ProductID uint64
	Src       string
}

// NewTargetVariant maps a trade item onto the storefront option slots.
// Slot 1 is the description, or the SKU when there is none; color, size, material and
// packaging type follow in that order, each taking the next free slot when present.
func NewTargetVariant(item TradeItem) TargetVariant {
	key := item.VariantKey
	first := item.StockKeepingUnit
	if present(key.Description) {
		first = *key.Description
	}

	options := make([]string, 0, MaxVariantOptions)
	options = append(options, first)
	for _, facet := range []*string{key.Color, key.Size, key.Material, key.PackagingType} {
		if present(facet) {
			options = append(options, *facet)
		}
	}

	return TargetVariant{
		SKU:     item.StockKeepingUnit,
		Options: options,
	}
}

func present(s *string) bool {
	return s != nil && *s != ""
}
