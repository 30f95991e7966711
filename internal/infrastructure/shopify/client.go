package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ims-storefront-bridge/internal/domain"
	"ims-storefront-bridge/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// Options configures the storefront adapter
type Options struct {
	APIKey     string
	APISecret  string
	APIVersion string
	Retries    int
}

// Factory creates storefront clients bound to one shop
type Factory struct {
	opts   Options
	logger zerolog.Logger
}

// NewFactory creates a new storefront client factory
func NewFactory(opts Options, logger zerolog.Logger) *Factory {
	return &Factory{
		opts:   opts,
		logger: logger,
	}
}

// NewClient creates a storefront client for the seller's shop. The seller's own app
// credentials take precedence over the configured ones.
func (f *Factory) NewClient(seller *domain.SellerConfig, accessToken string) (ports.StorefrontClient, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: empty access token for %s", domain.ErrShopNotInstalled, seller.ShopHost)
	}

	app := goshopify.App{
		ApiKey:    f.opts.APIKey,
		ApiSecret: f.opts.APISecret,
	}
	if seller.APIKey != "" {
		app.ApiKey = seller.APIKey
		app.ApiSecret = seller.APISecret
	}

	logger := f.logger.With().Str("shop", seller.ShopHost).Logger()
	opts := []goshopify.Option{goshopify.WithLogger(newLeveledLogger(logger))}
	if f.opts.APIVersion != "" {
		opts = append(opts, goshopify.WithVersion(f.opts.APIVersion))
	}
	if f.opts.Retries > 0 {
		opts = append(opts, goshopify.WithRetry(f.opts.Retries))
	}

	client, err := goshopify.NewClient(app, seller.ShopHost, accessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Storefront{
		client: client,
		shop:   seller.ShopHost,
		logger: logger,
	}, nil
}

// Storefront is the storefront catalog adapter for one shop
type Storefront struct {
	client *goshopify.Client
	shop   string
	logger zerolog.Logger
}

// handleQuery filters the product listing by handle
type handleQuery struct {
	Handle string `url:"handle"`
	Fields string `url:"fields,omitempty"`
}

// FindProductsByHandle lists the products carrying the given handle
func (s *Storefront) FindProductsByHandle(ctx context.Context, handle string) ([]domain.StorefrontProduct, error) {
	var products []goshopify.Product
	err := s.call(http.MethodGet, "products.json", func() error {
		var err error
		products, err = s.client.Product.List(ctx, handleQuery{Handle: handle, Fields: "id,handle,title"})
		return err
	})
	if err != nil {
		return nil, err
	}

	found := make([]domain.StorefrontProduct, 0, len(products))
	for _, p := range products {
		// Only exact handle matches count as existing.
		if p.Handle != handle {
			continue
		}
		found = append(found, domain.StorefrontProduct{ID: p.Id, Handle: p.Handle, Title: p.Title})
	}
	return found, nil
}

// CreateProduct creates the product with its variants and embedded images in one call
func (s *Storefront) CreateProduct(ctx context.Context, product *domain.TargetProduct) (*domain.StorefrontProduct, error) {
	req := productRequest{Product: newProductBody(product)}
	var resp productResponse
	err := s.call(http.MethodPost, "products.json", func() error {
		return s.client.Post(ctx, "products.json", req, &resp)
	})
	if err != nil {
		return nil, err
	}

	return &domain.StorefrontProduct{
		ID:     resp.Product.ID,
		Handle: resp.Product.Handle,
		Title:  resp.Product.Title,
	}, nil
}

// CreateImage attaches an image to an existing product
func (s *Storefront) CreateImage(ctx context.Context, productID uint64, image domain.TargetImage) (*domain.StorefrontImage, error) {
	path := fmt.Sprintf("products/%d/images.json", productID)
	var created *goshopify.Image
	err := s.call(http.MethodPost, path, func() error {
		var err error
		created, err = s.client.Image.Create(ctx, productID, goshopify.Image{
			Src:      image.Src,
			Filename: image.FileName,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return &domain.StorefrontImage{
		ID:        created.Id,
		ProductID: created.ProductId,
		Src:       created.Src,
	}, nil
}

// call runs one platform request and logs its outcome uniformly
func (s *Storefront) call(method, path string, fn func() error) error {
	start := time.Now()
	err := fn()
	if err != nil {
		err = toUpstreamError(method, path, err)
		s.logger.Error().
			Err(err).
			Str("method", method).
			Str("path", path).
			Int("status", domain.StatusCode(err)).
			Dur("duration", time.Since(start)).
			Msg("Storefront request failed")
		return err
	}

	s.logger.Debug().
		Str("method", method).
		Str("path", path).
		Dur("duration", time.Since(start)).
		Msg("Storefront request succeeded")
	return nil
}

// toUpstreamError converts go-shopify response errors into the domain error
func toUpstreamError(method, path string, err error) error {
	var rateErr goshopify.RateLimitError
	if errors.As(err, &rateErr) {
		return &domain.UpstreamError{
			Service:    "storefront",
			Method:     method,
			Path:       path,
			StatusCode: rateErr.Status,
			Body:       fmt.Sprintf("%s (retry after %ds)", rateErr.Message, rateErr.RetryAfter),
		}
	}

	var respErr goshopify.ResponseError
	if errors.As(err, &respErr) {
		return &domain.UpstreamError{
			Service:    "storefront",
			Method:     method,
			Path:       path,
			StatusCode: respErr.Status,
			Body:       respErr.Error(),
		}
	}

	return fmt.Errorf("storefront %s %s: %w", method, path, err)
}

var (
	_ ports.StorefrontFactory = (*Factory)(nil)
	_ ports.StorefrontClient  = (*Storefront)(nil)
)
