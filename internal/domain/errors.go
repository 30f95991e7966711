package domain

import (
	"errors"
	"fmt"
)

var (
	// Seller configuration errors
	ErrConfigNotFound   = errors.New("bridge: seller configuration not found")
	ErrAmbiguousConfig  = errors.New("bridge: more than one seller configuration matches")
	ErrConfigFormat     = errors.New("bridge: seller configuration is malformed")
	ErrShopNotInstalled = errors.New("bridge: shop has no stored credential")

	// Installation errors
	ErrInvalidShopDomain    = errors.New("bridge: invalid shop domain")
	ErrInvalidRequest       = errors.New("bridge: invalid request")
	ErrAuthSignatureInvalid = errors.New("bridge: request signature is invalid")
	ErrSessionMismatch      = errors.New("bridge: install session missing, expired or mismatched")
	ErrTokenExchangeFailed  = errors.New("bridge: access token exchange failed")

	// Sync errors
	ErrUpstreamRequestFailed = errors.New("bridge: upstream request failed")
	ErrProductSyncFailed     = errors.New("bridge: product sync failed")
)

// UpstreamError is returned by the platform adapters when a call answers with a
// non-2xx status.
type UpstreamError struct {
	Service    string
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s %s: status %d: %s", e.Service, e.Method, e.Path, e.StatusCode, e.Body)
}

// Is makes every UpstreamError match ErrUpstreamRequestFailed.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamRequestFailed
}

// ProductSyncError records which product and which step of its synchronization failed.
type ProductSyncError struct {
	ProductNumber string
	Stage         SyncStage
	Err           error
}

func (e *ProductSyncError) Error() string {
	return fmt.Sprintf("sync product %s (%s): %v", e.ProductNumber, e.Stage, e.Err)
}

func (e *ProductSyncError) Unwrap() error {
	return e.Err
}

func (e *ProductSyncError) Is(target error) bool {
	return target == ErrProductSyncFailed
}

// StatusCode extracts the HTTP status of the first UpstreamError in the chain, or 0.
func StatusCode(err error) int {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.StatusCode
	}
	return 0
}
