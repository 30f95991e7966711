package ims

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ims-storefront-bridge/internal/domain"
	"ims-storefront-bridge/internal/ports"

	"github.com/rs/zerolog"
)

const (
	// maxLoggedBody bounds the response body kept in errors and logs
	maxLoggedBody = 4096
	// defaultMaxPages bounds a paged listing
	defaultMaxPages = 1000
)

// Client is the IMS REST adapter
type Client struct {
	http     *http.Client
	baseURL  *url.URL
	pageSize int
	maxPages int
	logger   zerolog.Logger
}

// NewClient creates an IMS client on top of an already authenticated HTTP client.
// With pageSize > 0 listings are requested in pages of that size until a short or
// repeated page.
func NewClient(httpClient *http.Client, baseURL *url.URL, pageSize int, logger zerolog.Logger) *Client {
	return &Client{
		http:     httpClient,
		baseURL:  baseURL,
		pageSize: pageSize,
		maxPages: defaultMaxPages,
		logger:   logger,
	}
}

// FindSellers returns the seller records matching a seller number
func (c *Client) FindSellers(ctx context.Context, sellerNumber string) ([]domain.SellerRecord, error) {
	return list[domain.SellerRecord](ctx, c, "sellers", url.Values{"sellerNumberMatch": {sellerNumber}})
}

// ListProducts returns every product of the catalog
func (c *Client) ListProducts(ctx context.Context) ([]domain.SourceProduct, error) {
	return list[domain.SourceProduct](ctx, c, "products", nil)
}

// ListTradeItems returns the trade items of one product
func (c *Client) ListTradeItems(ctx context.Context, productNumber string) ([]domain.TradeItem, error) {
	return list[domain.TradeItem](ctx, c, "globalTradeItems", url.Values{"productNumberMatch": {productNumber}})
}

// ListAttachments returns the attachments of one trade item
func (c *Client) ListAttachments(ctx context.Context, tradeItemID int64) ([]domain.Attachment, error) {
	return list[domain.Attachment](ctx, c, fmt.Sprintf("globalTradeItems/%d/attachments", tradeItemID), nil)
}

func list[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	if c.pageSize <= 0 {
		var items []T
		if err := c.get(ctx, path, query, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var all []T
	var previousFirst json.RawMessage
	for page := 0; ; page++ {
		if page >= c.maxPages {
			return nil, fmt.Errorf("IMS GET %s: more than %d pages of %d", path, c.maxPages, c.pageSize)
		}

		paged := url.Values{}
		for k, v := range query {
			paged[k] = v
		}
		paged.Set("limit", strconv.Itoa(c.pageSize))
		paged.Set("offset", strconv.Itoa(page*c.pageSize))

		var raw []json.RawMessage
		if err := c.get(ctx, path, paged, &raw); err != nil {
			return nil, err
		}

		// A server that ignores limit/offset answers the same page again.
		if len(raw) > 0 && previousFirst != nil && bytes.Equal(raw[0], previousFirst) {
			c.logger.Warn().
				Str("path", path).
				Int("page", page).
				Int("pageSize", c.pageSize).
				Msg("IMS repeated a page, stopping pagination")
			return all, nil
		}

		for _, item := range raw {
			var v T
			if err := json.Unmarshal(item, &v); err != nil {
				return nil, fmt.Errorf("failed to decode IMS %s item: %w", path, err)
			}
			all = append(all, v)
		}
		if len(raw) < c.pageSize {
			return all, nil
		}
		previousFirst = raw[0]
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create IMS request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("method", req.Method).
			Str("path", path).
			Dur("duration", time.Since(start)).
			Msg("IMS request failed")
		return fmt.Errorf("IMS GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read IMS response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		upstream := &domain.UpstreamError{
			Service:    "ims",
			Method:     req.Method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       truncate(body),
		}
		c.logger.Error().
			Str("method", req.Method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Dur("duration", time.Since(start)).
			Str("body", upstream.Body).
			Msg("IMS request failed")
		return upstream
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Int("bytes", len(body)).
		Msg("IMS request succeeded")

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode IMS %s response: %w", path, err)
	}
	return nil
}

func truncate(body []byte) string {
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody])
	}
	return string(body)
}

var _ ports.IMSClient = (*Client)(nil)
