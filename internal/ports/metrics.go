package ports

import "ims-storefront-bridge/internal/domain"

// Metrics receives operational counters from the application services
type Metrics interface {
	InstallTransition(state domain.InstallState)
	ProductSynced(status domain.SyncStatus)
	SyncRunFinished(report *domain.SyncReport, err error)
}
