package ports

import (
	"context"
	"net/url"

	"ims-storefront-bridge/internal/domain"
)

// StorefrontClient defines the storefront catalog operations, bound to one shop
type StorefrontClient interface {
	FindProductsByHandle(ctx context.Context, handle string) ([]domain.StorefrontProduct, error)
	CreateProduct(ctx context.Context, product *domain.TargetProduct) (*domain.StorefrontProduct, error)
	CreateImage(ctx context.Context, productID uint64, image domain.TargetImage) (*domain.StorefrontImage, error)
}

// StorefrontFactory builds a storefront client for one shop and access token
type StorefrontFactory interface {
	NewClient(seller *domain.SellerConfig, accessToken string) (StorefrontClient, error)
}

// StorefrontOAuth covers the storefront side of the installation handshake
type StorefrontOAuth interface {
	// VerifyQuery checks the platform HMAC carried in the query parameters.
	VerifyQuery(query url.Values) bool
	AuthorizeURL(shop string, scopes []string, redirectURI string, state string) (string, error)
	ExchangeToken(ctx context.Context, shop string, code string) (*domain.AccessGrant, error)
}
