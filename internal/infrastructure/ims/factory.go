package ims

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ims-storefront-bridge/internal/ports"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

// Options configures access to the IMS API
type Options struct {
	AuthURL           string
	APIURL            string
	ClientID          string
	ClientSecret      string
	APIKey            string
	PageSize          int
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Factory builds one authenticated IMS client per invocation
type Factory struct {
	opts   Options
	logger zerolog.Logger
}

// NewFactory creates a new IMS client factory
func NewFactory(opts Options, logger zerolog.Logger) *Factory {
	return &Factory{
		opts:   opts,
		logger: logger,
	}
}

// NewClient obtains a bearer token with the client credentials grant and returns a client
// that sends it, together with the API key, on every request
func (f *Factory) NewClient(ctx context.Context) (ports.IMSClient, error) {
	baseURL, err := url.Parse(f.opts.APIURL)
	if err != nil {
		return nil, fmt.Errorf("invalid IMS API url %q: %w", f.opts.APIURL, err)
	}
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}

	timeout := f.opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	creds := clientcredentials.Config{
		ClientID:     f.opts.ClientID,
		ClientSecret: f.opts.ClientSecret,
		TokenURL:     f.opts.AuthURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
	source := creds.TokenSource(tokenCtx)

	// Token is fetched eagerly; bad client credentials abort the run here.
	if _, err := source.Token(); err != nil {
		f.logger.Error().Err(err).Str("tokenUrl", f.opts.AuthURL).Msg("IMS authentication failed")
		return nil, fmt.Errorf("failed to authenticate with IMS: %w", err)
	}

	var limiter *rate.Limiter
	if f.opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(f.opts.RequestsPerSecond), 1)
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &oauth2.Transport{
			Source: source,
			Base: &apiKeyTransport{
				apiKey:  f.opts.APIKey,
				limiter: limiter,
				base:    http.DefaultTransport,
			},
		},
	}

	return NewClient(httpClient, baseURL, f.opts.PageSize, f.logger), nil
}

var _ ports.IMSFactory = (*Factory)(nil)
