package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ims-storefront-bridge/internal/domain"
	"ims-storefront-bridge/internal/ports"

	"github.com/rs/zerolog"
)

// CredentialResolver resolves the tenant configuration of a seller from the seller registry
type CredentialResolver struct {
	integrationKey string
	logger         zerolog.Logger
}

// NewCredentialResolver creates a resolver reading the named integration section of the
// seller's settings document
func NewCredentialResolver(integrationKey string, logger zerolog.Logger) *CredentialResolver {
	return &CredentialResolver{
		integrationKey: integrationKey,
		logger:         logger,
	}
}

// integrationSettings is the storefront section of a seller's data document
type integrationSettings struct {
	Host      string `json:"host"`
	APIKey    string `json:"apiKey"`
	APISecret string `json:"apiSecret"`
	Password  string `json:"password"`
}

// Resolve looks up exactly one seller record and parses its settings document
func (r *CredentialResolver) Resolve(ctx context.Context, registry ports.SellerRegistry, sellerNumber string) (*domain.SellerConfig, error) {
	sellerNumber = strings.TrimSpace(sellerNumber)
	if sellerNumber == "" {
		return nil, fmt.Errorf("%w: empty seller number", domain.ErrConfigNotFound)
	}

	records, err := registry.FindSellers(ctx, sellerNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to look up seller %s: %w", sellerNumber, err)
	}

	switch len(records) {
	case 0:
		return nil, fmt.Errorf("%w: no seller with number %s", domain.ErrConfigNotFound, sellerNumber)
	case 1:
	default:
		r.logger.Error().
			Str("sellerNumber", sellerNumber).
			Int("matches", len(records)).
			Msg("Seller registry returned more than one record")
		return nil, fmt.Errorf("%w: %d sellers with number %s", domain.ErrAmbiguousConfig, len(records), sellerNumber)
	}

	record := records[0]
	if strings.TrimSpace(record.DataDocument) == "" {
		return nil, fmt.Errorf("%w: seller %s has no data document", domain.ErrConfigFormat, sellerNumber)
	}

	var document map[string]json.RawMessage
	if err := json.Unmarshal([]byte(record.DataDocument), &document); err != nil {
		return nil, fmt.Errorf("%w: seller %s data document: %v", domain.ErrConfigFormat, sellerNumber, err)
	}

	section, ok := document[r.integrationKey]
	if !ok {
		return nil, fmt.Errorf("%w: seller %s data document has no %q section", domain.ErrConfigFormat, sellerNumber, r.integrationKey)
	}

	var settings integrationSettings
	if err := json.Unmarshal(section, &settings); err != nil {
		return nil, fmt.Errorf("%w: seller %s %q section: %v", domain.ErrConfigFormat, sellerNumber, r.integrationKey, err)
	}

	shop, err := domain.NormalizeShopDomain(settings.Host)
	if err != nil {
		return nil, fmt.Errorf("%w: seller %s host %q: %v", domain.ErrConfigFormat, sellerNumber, settings.Host, err)
	}

	secret := settings.APISecret
	if secret == "" {
		secret = settings.Password
	}

	r.logger.Debug().
		Str("sellerNumber", sellerNumber).
		Str("shop", shop).
		Msg("Resolved seller configuration")

	return &domain.SellerConfig{
		SellerNumber: sellerNumber,
		ShopHost:     shop,
		APIKey:       settings.APIKey,
		APISecret:    secret,
	}, nil
}
