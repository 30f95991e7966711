package domain

// SourceProduct is the root of one storefront product in the IMS catalog.
type SourceProduct struct {
	ID            int64  `json:"id"`
	ProductNumber string `json:"productNumber"`
	ProductName   string `json:"productName"`
}

// TradeItem is one sellable variant of a SourceProduct.
type TradeItem struct {
	ID               int64      `json:"id"`
	StockKeepingUnit string     `json:"stockKeepingUnit"`
	ProductNumber    string     `json:"productNumber"`
	VariantKey       VariantKey `json:"productVariantKey"`
}

// VariantKey holds the descriptive facets that identify a trade item within its product.
// A nil facet is absent.
type VariantKey struct {
	Description   *string `json:"description"`
	Color         *string `json:"color"`
	Size          *string `json:"size"`
	Material      *string `json:"material"`
	PackagingType *string `json:"packagingType"`
}

// Attachment is a file attached to a trade item, reachable through a presigned URL.
type Attachment struct {
	ID           int64  `json:"id"`
	FileName     string `json:"fileName"`
	PresignedURL string `json:"presignedUrl"`
}
