package domain

import "time"

// InstallState is a step of the installation handshake
type InstallState string

const (
	InstallStateStartRequested   InstallState = "START_REQUESTED"
	InstallStateRedirected       InstallState = "REDIRECTED"
	InstallStateCallbackReceived InstallState = "CALLBACK_RECEIVED"
	InstallStateInstalled        InstallState = "INSTALLED"
	InstallStateRejected         InstallState = "REJECTED"
)

// IsTerminal reports whether no further transition can happen from s.
func (s InstallState) IsTerminal() bool {
	return s == InstallStateInstalled || s == InstallStateRejected
}

// InstallSession binds an authorization redirect to its callback
type InstallSession struct {
	Shop      string    `json:"shop"`
	Nonce     string    `json:"nonce"`
	Scopes    []string  `json:"scopes"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session can no longer be consumed at now.
func (s *InstallSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
