package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidProvider  = errors.New("core: invalid oauth provider")
	ErrSessionNotFound  = errors.New("core: session not found")
	ErrProviderNotFound = errors.New("core: provider config not found")
)

// Provider identifies a third-party OAuth identity/API provider.
type Provider string

const (
	ProviderGoogle    Provider = "google"
	ProviderMicrosoft Provider = "microsoft"
)

func ParseProvider(value string) (Provider, error) {
	normalized := Provider(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case ProviderGoogle, ProviderMicrosoft:
		return normalized, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidProvider, value)
}

// Session binds an opaque refresh token to a user for a bounded validity
// window. ExpiresAt is fixed at creation; IsActive only ever transitions
// true -> false (logout or lazy expiry), never back.
type Session struct {
	ID           string
	RefreshToken string
	UserID       string
	DeviceInfo   string
	IPAddress    string
	UserAgent    string
	CreatedAt    time.Time
	LastUsedAt   time.Time
	ExpiresAt    time.Time
	IsActive     bool
}

// IsSessionExpired reports whether the session's expiry instant has passed.
// The comparison is strict: a session expiring exactly at now is still valid.
func IsSessionExpired(session Session, now time.Time) bool {
	return session.ExpiresAt.Before(now)
}

// ProviderConfig is a workspace-level OAuth provider configuration. The
// client secret is stored encrypted; logical uniqueness on
// (workspace_id, provider) is enforced by application-level upsert
// serialization, not by storage.
type ProviderConfig struct {
	ID                    string
	WorkspaceID           string
	Provider              Provider
	Enabled               bool
	ClientID              string
	EncryptedClientSecret string
	TenantID              string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// ProviderConfigRef is the minimal projection returned by id lookups.
type ProviderConfigRef struct {
	ID          string
	Provider    Provider
	WorkspaceID string
}

// Connection is a per-user, per-workspace authorized OAuth connection with
// encrypted tokens. Logical uniqueness on (user_id, workspace_id, provider)
// is likewise application-enforced.
type Connection struct {
	ID                    string
	WorkspaceID           string
	UserID                string
	Provider              Provider
	EncryptedAccessToken  string
	EncryptedRefreshToken string
	TokenExpiresAt        *time.Time
	Scopes                []string
	AccountEmail          string
	AccountName           string
	AccountAvatarURL      string
	ProviderAccountID     string
	CreatedAt             time.Time
	UpdatedAt             time.Time
	LastUsedAt            time.Time
}

// DecryptedTokens carries live credentials for delegated API calls. Values
// must never be cached or persisted beyond the handling request.
type DecryptedTokens struct {
	AccessToken    string
	RefreshToken   string
	TokenExpiresAt *time.Time
	Scopes         []string
	AccountEmail   string
}
