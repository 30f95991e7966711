package domain

import (
	"strings"
	"time"
)

// ShopCredential is the durable shop → access token mapping written by a successful
// installation. Repositories only ever see EncryptedToken; AccessToken is the decrypted
// value held in memory for the duration of one invocation.
type ShopCredential struct {
	Shop           string    `json:"shop"`
	AccessToken    string    `json:"-"`
	EncryptedToken string    `json:"-"`
	Scope          string    `json:"scope"`
	InstalledAt    time.Time `json:"installed_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AccessGrant is the answer of the storefront token endpoint.
type AccessGrant struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

// NormalizeShopDomain lower-cases and validates a "*.myshopify.com" shop domain.
func NormalizeShopDomain(shop string) (string, error) {
	shop = strings.ToLower(strings.TrimSpace(shop))
	if !strings.HasSuffix(shop, ".myshopify.com") || len(shop) < len("a.myshopify.com") {
		return "", ErrInvalidShopDomain
	}
	if strings.ContainsAny(shop, "/ :?#@") {
		return "", ErrInvalidShopDomain
	}
	return shop, nil
}
