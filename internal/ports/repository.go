package ports

import (
	"context"

	"ims-storefront-bridge/internal/domain"
)

// SessionStore persists install sessions, one per shop
type SessionStore interface {
	// Save stores the session, replacing any previous session for the same shop.
	Save(ctx context.Context, session *domain.InstallSession) error
	// Consume atomically reads and deletes the session of a shop.
	// It returns nil, nil when there is none.
	Consume(ctx context.Context, shop string) (*domain.InstallSession, error)
}

// ShopRepository persists shop credentials
type ShopRepository interface {
	SaveCredential(ctx context.Context, cred *domain.ShopCredential) error
	// GetCredential returns nil, nil when the shop has never been installed.
	GetCredential(ctx context.Context, shop string) (*domain.ShopCredential, error)
}

// SyncRunRepository keeps the history of sync reports
type SyncRunRepository interface {
	SaveRun(ctx context.Context, report *domain.SyncReport) error
	LatestRun(ctx context.Context, sellerNumber string) (*domain.SyncReport, error)
}
