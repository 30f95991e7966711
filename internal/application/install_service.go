package application

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ims-storefront-bridge/internal/domain"
	"ims-storefront-bridge/internal/ports"

	"github.com/rs/zerolog"
)

// nonceBytes is the entropy of an install nonce (64 hex characters)
const nonceBytes = 32

// InstallOptions configures the installation handshake
type InstallOptions struct {
	Scopes             []string
	RedirectURI        string
	SessionTTL         time.Duration
	TimestampTolerance time.Duration
}

// InstallService runs the per-shop installation handshake
type InstallService struct {
	sessions      ports.SessionStore
	shops         ports.ShopRepository
	oauth         ports.StorefrontOAuth
	encryptionSvc ports.EncryptionService
	metrics       ports.Metrics
	opts          InstallOptions
	logger        zerolog.Logger

	now      func() time.Time
	newNonce func() (string, error)
}

// NewInstallService creates a new installation service
func NewInstallService(
	sessions ports.SessionStore,
	shops ports.ShopRepository,
	oauth ports.StorefrontOAuth,
	encryptionSvc ports.EncryptionService,
	metrics ports.Metrics,
	opts InstallOptions,
	logger zerolog.Logger,
) *InstallService {
	return &InstallService{
		sessions:      sessions,
		shops:         shops,
		oauth:         oauth,
		encryptionSvc: encryptionSvc,
		metrics:       metrics,
		opts:          opts,
		logger:        logger,
		now:           time.Now,
		newNonce:      randomNonce,
	}
}

// StartResult is the outcome of a successful install start
type StartResult struct {
	Shop        string
	RedirectURL string
	ExpiresAt   time.Time
}

// Start verifies an install request, opens a fresh session for the shop and returns the
// storefront authorization URL to redirect to
func (s *InstallService) Start(ctx context.Context, query url.Values) (result *StartResult, err error) {
	s.transition(domain.InstallStateStartRequested, query.Get("shop"))
	defer func() {
		if err != nil {
			s.reject(query.Get("shop"), err)
		}
	}()

	shop, err := domain.NormalizeShopDomain(query.Get("shop"))
	if err != nil {
		return nil, err
	}
	if err := s.verify(query); err != nil {
		return nil, err
	}

	nonce, err := s.newNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := s.now()
	session := &domain.InstallSession{
		Shop:      shop,
		Nonce:     nonce,
		Scopes:    s.opts.Scopes,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.opts.SessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save install session: %w", err)
	}

	authURL, err := s.oauth.AuthorizeURL(shop, s.opts.Scopes, s.opts.RedirectURI, nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to build authorization url: %w", err)
	}

	s.transition(domain.InstallStateRedirected, shop)
	return &StartResult{
		Shop:        shop,
		RedirectURL: authURL,
		ExpiresAt:   session.ExpiresAt,
	}, nil
}

// Callback completes the handshake: it consumes the shop's session, exchanges the
// authorization code and persists the resulting credential. No credential is written
// unless every check passes.
func (s *InstallService) Callback(ctx context.Context, query url.Values) (cred *domain.ShopCredential, err error) {
	s.transition(domain.InstallStateCallbackReceived, query.Get("shop"))
	defer func() {
		if err != nil {
			s.reject(query.Get("shop"), err)
		}
	}()

	shop, err := domain.NormalizeShopDomain(query.Get("shop"))
	if err != nil {
		return nil, err
	}
	if err := s.verify(query); err != nil {
		return nil, err
	}

	// The session is gone from here on, whatever the outcome. Every failure up to the
	// credential write is a 4xx and the merchant restarts the install.
	session, err := s.sessions.Consume(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load install session: %v", domain.ErrSessionMismatch, err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: no open session for %s", domain.ErrSessionMismatch, shop)
	}
	state := query.Get("state")
	if state == "" || subtle.ConstantTimeCompare([]byte(state), []byte(session.Nonce)) != 1 {
		return nil, fmt.Errorf("%w: state does not match session for %s", domain.ErrSessionMismatch, shop)
	}
	if session.Expired(s.now()) {
		return nil, fmt.Errorf("%w: session for %s expired at %s", domain.ErrSessionMismatch, shop, session.ExpiresAt.Format(time.RFC3339))
	}

	code := strings.TrimSpace(query.Get("code"))
	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", domain.ErrInvalidRequest)
	}

	grant, err := s.oauth.ExchangeToken(ctx, shop, code)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExchangeFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenExchangeFailed, err)
	}

	encrypted, err := s.encryptionSvc.Encrypt(grant.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encrypt access token: %v", domain.ErrTokenExchangeFailed, err)
	}

	now := s.now()
	cred = &domain.ShopCredential{
		Shop:           shop,
		EncryptedToken: encrypted,
		Scope:          grant.Scope,
		InstalledAt:    now,
		UpdatedAt:      now,
	}
	if err := s.shops.SaveCredential(ctx, cred); err != nil {
		return nil, fmt.Errorf("failed to save shop credential: %w", err)
	}

	s.transition(domain.InstallStateInstalled, shop)
	s.logger.Info().
		Str("shop", shop).
		Str("scope", grant.Scope).
		Msg("Shop installed")

	return cred, nil
}

// verify checks the request HMAC and that its timestamp is recent enough
func (s *InstallService) verify(query url.Values) error {
	if query.Get("hmac") == "" || !s.oauth.VerifyQuery(query) {
		return domain.ErrAuthSignatureInvalid
	}

	if s.opts.TimestampTolerance <= 0 {
		return nil
	}
	ts, err := strconv.ParseInt(query.Get("timestamp"), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: missing or invalid timestamp", domain.ErrAuthSignatureInvalid)
	}
	skew := s.now().Sub(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > s.opts.TimestampTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance (%s)", domain.ErrAuthSignatureInvalid, skew.Round(time.Second))
	}
	return nil
}

func (s *InstallService) transition(state domain.InstallState, shop string) {
	s.metrics.InstallTransition(state)
	s.logger.Debug().Str("shop", shop).Str("state", string(state)).Msg("Install state transition")
}

func (s *InstallService) reject(shop string, err error) {
	s.metrics.InstallTransition(domain.InstallStateRejected)
	s.logger.Warn().
		Err(err).
		Str("shop", shop).
		Str("state", string(domain.InstallStateRejected)).
		Msg("Install request rejected")
}

func randomNonce() (string, error) {
	b := make([]byte, nonceBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
