package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type sessionRecord struct {
	bun.BaseModel `bun:"table:auth_sessions,alias:as"`

	ID           string    `bun:"id,pk"`
	RefreshToken string    `bun:"refresh_token,notnull"`
	UserID       string    `bun:"user_id,notnull"`
	DeviceInfo   string    `bun:"device_info"`
	IPAddress    string    `bun:"ip_address"`
	UserAgent    string    `bun:"user_agent"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	LastUsedAt   time.Time `bun:"last_used_at,nullzero,notnull,default:current_timestamp"`
	ExpiresAt    time.Time `bun:"expires_at,notnull"`
	IsActive     bool      `bun:"is_active,notnull"`
}

// No unique index covers (workspace_id, provider); the single logical row
// per pair is enforced by upsert serialization above the store.
type providerConfigRecord struct {
	bun.BaseModel `bun:"table:auth_oauth_provider_configs,alias:pc"`

	ID                    string    `bun:"id,pk"`
	WorkspaceID           string    `bun:"workspace_id,notnull"`
	Provider              string    `bun:"provider,notnull"`
	Enabled               bool      `bun:"enabled,notnull"`
	ClientID              string    `bun:"client_id,notnull"`
	EncryptedClientSecret string    `bun:"encrypted_client_secret,notnull"`
	TenantID              string    `bun:"tenant_id"`
	CreatedAt             time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt             time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type userConnectionRecord struct {
	bun.BaseModel `bun:"table:auth_user_oauth_connections,alias:uc"`

	ID                    string     `bun:"id,pk"`
	WorkspaceID           string     `bun:"workspace_id,notnull"`
	UserID                string     `bun:"user_id,notnull"`
	Provider              string     `bun:"provider,notnull"`
	EncryptedAccessToken  string     `bun:"encrypted_access_token,notnull"`
	EncryptedRefreshToken string     `bun:"encrypted_refresh_token"`
	TokenExpiresAt        *time.Time `bun:"token_expires_at,nullzero"`
	Scopes                []string   `bun:"scopes,type:jsonb,notnull"`
	AccountEmail          string     `bun:"account_email"`
	AccountName           string     `bun:"account_name"`
	AccountAvatarURL      string     `bun:"account_avatar_url"`
	ProviderAccountID     string     `bun:"provider_account_id"`
	CreatedAt             time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt             time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	LastUsedAt            time.Time  `bun:"last_used_at,nullzero,notnull,default:current_timestamp"`
}
