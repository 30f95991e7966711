package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ims-storefront-bridge/internal/domain"
	"ims-storefront-bridge/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

// OAuth implements the storefront side of the installation handshake
type OAuth struct {
	app        goshopify.App
	httpClient *http.Client
	logger     zerolog.Logger

	// shopURL returns the admin base URL of a shop
	shopURL func(shop string) string
}

// NewOAuth creates the handshake adapter for the app credentials
func NewOAuth(apiKey, apiSecret string, logger zerolog.Logger) *OAuth {
	return &OAuth{
		app: goshopify.App{
			ApiKey:    apiKey,
			ApiSecret: apiSecret,
		},
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		shopURL: func(shop string) string {
			return "https://" + shop
		},
	}
}

// VerifyQuery checks the hmac parameter of a platform redirect against the app secret
func (o *OAuth) VerifyQuery(query url.Values) bool {
	ok, err := o.app.VerifyAuthorizationURL(&url.URL{RawQuery: query.Encode()})
	if err != nil {
		o.logger.Warn().Err(err).Msg("Failed to verify request signature")
		return false
	}
	return ok
}

// AuthorizeURL builds the authorization URL the merchant is redirected to
func (o *OAuth) AuthorizeURL(shop string, scopes []string, redirectURI string, state string) (string, error) {
	base, err := url.Parse(o.shopURL(shop) + "/admin/oauth/authorize")
	if err != nil {
		return "", fmt.Errorf("invalid shop %q: %w", shop, err)
	}

	// Scopes are comma separated without spaces.
	q := url.Values{}
	q.Set("client_id", o.app.ApiKey)
	q.Set("scope", strings.Join(scopes, ","))
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)
	base.RawQuery = q.Encode()

	o.logger.Debug().
		Str("shop", shop).
		Strs("scopes", scopes).
		Str("redirectUri", redirectURI).
		Msg("Generated OAuth authorization URL")

	return base.String(), nil
}

// ExchangeToken trades an authorization code for a permanent access token
func (o *OAuth) ExchangeToken(ctx context.Context, shop string, code string) (*domain.AccessGrant, error) {
	const path = "/admin/oauth/access_token"

	values := url.Values{}
	values.Set("client_id", o.app.ApiKey)
	values.Set("client_secret", o.app.ApiSecret)
	values.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.shopURL(shop)+path, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := o.httpClient.Do(req)
	if err != nil {
		o.logger.Error().Err(err).Str("shop", shop).Str("path", path).Msg("Token exchange request failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenExchangeFailed, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		upstream := &domain.UpstreamError{
			Service:    "storefront",
			Method:     http.MethodPost,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
		o.logger.Error().
			Str("shop", shop).
			Str("path", path).
			Int("status", resp.StatusCode).
			Dur("duration", time.Since(start)).
			Str("body", upstream.Body).
			Msg("Token exchange failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrTokenExchangeFailed, upstream)
	}

	var grant domain.AccessGrant
	if err := json.Unmarshal(body, &grant); err != nil {
		return nil, fmt.Errorf("%w: failed to decode token response: %v", domain.ErrTokenExchangeFailed, err)
	}
	if grant.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response has no access_token", domain.ErrTokenExchangeFailed)
	}

	o.logger.Info().
		Str("shop", shop).
		Str("scope", grant.Scope).
		Dur("duration", time.Since(start)).
		Msg("Exchanged authorization code for access token")

	return &grant, nil
}

var _ ports.StorefrontOAuth = (*OAuth)(nil)
