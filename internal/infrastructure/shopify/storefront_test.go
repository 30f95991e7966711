package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"ims-storefront-bridge/internal/domain"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	query  map[string][]string
	body   []byte
}

// recordingTransport answers every request with a canned response and keeps what was sent
type recordingTransport struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	payload  string
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}

	rt.mu.Lock()
	rt.requests = append(rt.requests, recordedRequest{
		method: req.Method,
		path:   req.URL.Path,
		query:  req.URL.Query(),
		body:   body,
	})
	rt.mu.Unlock()

	return &http.Response{
		StatusCode: rt.status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(rt.payload)),
		Request:    req,
	}, nil
}

func newTestStorefront(t *testing.T, status int, payload string) (*Storefront, *recordingTransport) {
	t.Helper()

	rt := &recordingTransport{status: status, payload: payload}
	client, err := goshopify.NewClient(
		goshopify.App{ApiKey: "key", ApiSecret: "secret"},
		"acme.myshopify.com",
		"shpat_token",
		goshopify.WithHTTPClient(&http.Client{Transport: rt}),
		goshopify.WithVersion("2024-04"),
	)
	require.NoError(t, err)

	return &Storefront{client: client, shop: "acme.myshopify.com", logger: zerolog.Nop()}, rt
}

func TestStorefront_FindProductsByHandle(t *testing.T) {
	s, rt := newTestStorefront(t, http.StatusOK, `{"products":[
		{"id":7,"handle":"A1","title":"Widget"},
		{"id":8,"handle":"A1x","title":"Other widget"}
	]}`)

	found, err := s.FindProductsByHandle(context.Background(), "A1")

	require.NoError(t, err)
	assert.Equal(t, []domain.StorefrontProduct{{ID: 7, Handle: "A1", Title: "Widget"}}, found)

	require.Len(t, rt.requests, 1)
	req := rt.requests[0]
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "/admin/api/2024-04/products.json", req.path)
	assert.Equal(t, []string{"A1"}, req.query["handle"])
	assert.Equal(t, []string{"id,handle,title"}, req.query["fields"])
}

func TestStorefront_FindProductsByHandle_IgnoresOtherHandles(t *testing.T) {
	s, _ := newTestStorefront(t, http.StatusOK, `{"products":[{"id":8,"handle":"A1x","title":"Other widget"}]}`)

	found, err := s.FindProductsByHandle(context.Background(), "A1")

	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestStorefront_CreateProduct(t *testing.T) {
	s, rt := newTestStorefront(t, http.StatusCreated, `{"product":{"id":42,"handle":"A1","title":"Widget"}}`)

	created, err := s.CreateProduct(context.Background(), &domain.TargetProduct{
		Handle:   "A1",
		Title:    "Widget",
		Variants: []domain.TargetVariant{{SKU: "A1-RED", Options: []string{"A1-RED", "red"}}},
		Images:   []domain.TargetImage{{FileName: "a.jpg", Src: "https://files.example.com/a.jpg"}},
	})

	require.NoError(t, err)
	assert.Equal(t, &domain.StorefrontProduct{ID: 42, Handle: "A1", Title: "Widget"}, created)

	require.Len(t, rt.requests, 1)
	req := rt.requests[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/admin/api/2024-04/products.json", req.path)
	assert.JSONEq(t, `{"product":{
		"handle":"A1",
		"title":"Widget",
		"variants":[{"sku":"A1-RED","option1":"A1-RED","option2":"red"}],
		"images":[{"src":"https://files.example.com/a.jpg","filename":"a.jpg"}]
	}}`, string(req.body))
}

func TestStorefront_CreateProduct_Rejected(t *testing.T) {
	s, _ := newTestStorefront(t, http.StatusUnprocessableEntity, `{"errors":{"handle":["has already been taken"]}}`)

	_, err := s.CreateProduct(context.Background(), &domain.TargetProduct{
		Handle:   "A1",
		Variants: []domain.TargetVariant{{SKU: "A1", Options: []string{"A1"}}},
	})

	require.Error(t, err)
	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnprocessableEntity, upstream.StatusCode)
	assert.Equal(t, http.MethodPost, upstream.Method)
	assert.Equal(t, "products.json", upstream.Path)
	assert.ErrorIs(t, err, domain.ErrUpstreamRequestFailed)
}

func TestStorefront_CreateImage(t *testing.T) {
	s, rt := newTestStorefront(t, http.StatusOK, `{"image":{"id":9,"product_id":42,"src":"https://cdn.example.com/a.jpg"}}`)

	image, err := s.CreateImage(context.Background(), 42, domain.TargetImage{FileName: "a.jpg", Src: "https://files.example.com/a.jpg"})

	require.NoError(t, err)
	assert.Equal(t, &domain.StorefrontImage{ID: 9, ProductID: 42, Src: "https://cdn.example.com/a.jpg"}, image)

	require.Len(t, rt.requests, 1)
	req := rt.requests[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/admin/api/2024-04/products/42/images.json", req.path)

	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(req.body, &body))
	assert.Equal(t, "https://files.example.com/a.jpg", body["image"]["src"])
	assert.Equal(t, "a.jpg", body["image"]["filename"])
}
