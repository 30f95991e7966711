package ports

import (
	"context"

	"ims-storefront-bridge/internal/domain"
)

// SellerRegistry looks up seller records by seller number
type SellerRegistry interface {
	FindSellers(ctx context.Context, sellerNumber string) ([]domain.SellerRecord, error)
}

// IMSClient defines the IMS catalog operations the bridge depends on.
// Listings are complete: the adapter exhausts pagination.
type IMSClient interface {
	SellerRegistry

	ListProducts(ctx context.Context) ([]domain.SourceProduct, error)
	ListTradeItems(ctx context.Context, productNumber string) ([]domain.TradeItem, error)
	ListAttachments(ctx context.Context, tradeItemID int64) ([]domain.Attachment, error)
}

// IMSFactory builds an IMS client for a single invocation
type IMSFactory interface {
	NewClient(ctx context.Context) (IMSClient, error)
}
