package domain

// SellerRecord is one entry of the seller registry as returned by the IMS.
// DataDocument is the raw JSON settings document attached to the seller.
type SellerRecord struct {
	ID           int64  `json:"id"`
	SellerNumber string `json:"sellerNumber"`
	DataDocument string `json:"dataDocument"`
}

// SellerConfig is the tenant configuration resolved for one sync run.
type SellerConfig struct {
	SellerNumber string
	ShopHost     string
	APIKey       string
	APISecret    string
}
