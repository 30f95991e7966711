package ims

import (
	"net/http"

	"golang.org/x/time/rate"
)

// apiKeyTransport adds the IMS API key header and throttles outgoing requests
type apiKeyTransport struct {
	apiKey  string
	limiter *rate.Limiter
	base    http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	// RoundTrippers must not modify the caller's request.
	clone := req.Clone(req.Context())
	clone.Header.Set("Accept", "application/json")
	if t.apiKey != "" {
		clone.Header.Set("x-api-key", t.apiKey)
	}
	return t.base.RoundTrip(clone)
}
