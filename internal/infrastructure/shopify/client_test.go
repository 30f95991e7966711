package shopify

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"ims-storefront-bridge/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductBody(t *testing.T) {
	product := &domain.TargetProduct{
		Handle: "P-100",
		Title:  "Shirt",
		Variants: []domain.TargetVariant{
			{SKU: "SKU-1", Options: []string{"SKU-1", "Red"}},
			{SKU: "SKU-2", Options: []string{"Linen", "Blue", "L", "Linen", "Box"}},
		},
		Images: []domain.TargetImage{{FileName: "front.jpg", Src: "https://files.example.com/front.jpg"}},
	}

	raw, err := json.Marshal(productRequest{Product: newProductBody(product)})
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	body := decoded["product"]
	assert.Equal(t, "P-100", body["handle"])
	assert.Equal(t, "Shirt", body["title"])

	variants := body["variants"].([]any)
	require.Len(t, variants, 2)
	first := variants[0].(map[string]any)
	assert.Equal(t, map[string]any{"sku": "SKU-1", "option1": "SKU-1", "option2": "Red"}, first)
	second := variants[1].(map[string]any)
	assert.Equal(t, "Box", second["option5"])
	assert.Equal(t, "L", second["option3"])

	images := body["images"].([]any)
	assert.Equal(t, map[string]any{"src": "https://files.example.com/front.jpg", "filename": "front.jpg"}, images[0])
}

func TestNewProductBody_NoImages(t *testing.T) {
	raw, err := json.Marshal(newProductBody(&domain.TargetProduct{
		Handle:   "P-1",
		Variants: []domain.TargetVariant{{SKU: "A", Options: []string{"A"}}},
	}))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "images")
}

func TestToUpstreamError(t *testing.T) {
	t.Run("response error", func(t *testing.T) {
		err := toUpstreamError(http.MethodPost, "products.json", goshopify.ResponseError{
			Status:  http.StatusUnprocessableEntity,
			Message: "handle has already been taken",
		})

		assert.ErrorIs(t, err, domain.ErrUpstreamRequestFailed)
		assert.Equal(t, http.StatusUnprocessableEntity, domain.StatusCode(err))
		assert.Contains(t, err.Error(), "handle has already been taken")
	})

	t.Run("rate limited", func(t *testing.T) {
		err := toUpstreamError(http.MethodGet, "products.json", goshopify.RateLimitError{
			ResponseError: goshopify.ResponseError{Status: http.StatusTooManyRequests, Message: "Exceeded 2 calls per second"},
			RetryAfter:    2,
		})

		assert.Equal(t, http.StatusTooManyRequests, domain.StatusCode(err))
		assert.Contains(t, err.Error(), "retry after 2s")
	})

	t.Run("transport error", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := toUpstreamError(http.MethodGet, "products.json", cause)

		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, domain.ErrUpstreamRequestFailed)
	})
}

func TestFactory_NewClient(t *testing.T) {
	factory := NewFactory(Options{APIKey: "app-key", APISecret: "app-secret", APIVersion: "2024-04", Retries: 2}, zerolog.Nop())
	seller := &domain.SellerConfig{SellerNumber: "S-1", ShopHost: "acme.myshopify.com"}

	client, err := factory.NewClient(seller, "shpat_token")
	require.NoError(t, err)
	storefront, ok := client.(*Storefront)
	require.True(t, ok)
	assert.Equal(t, "acme.myshopify.com", storefront.shop)

	_, err = factory.NewClient(seller, "")
	assert.ErrorIs(t, err, domain.ErrShopNotInstalled)
}

func TestLeveledLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLeveledLogger(zerolog.New(&buf))

	l.Warnf("retrying %s in %d seconds", "products.json", 2)

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "retrying products.json in 2 seconds")
	assert.Contains(t, buf.String(), `"component":"go-shopify"`)
}
