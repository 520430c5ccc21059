package sqlstore

import (
	"time"

	"github.com/AlpinAI/2ly-sub007/core"
)

func newSessionRecord(in core.CreateSessionInput, now time.Time) *sessionRecord {
	return &sessionRecord{
		RefreshToken: in.RefreshToken,
		UserID:       in.UserID,
		DeviceInfo:   in.DeviceInfo,
		IPAddress:    in.IPAddress,
		UserAgent:    in.UserAgent,
		CreatedAt:    now,
		LastUsedAt:   now,
		ExpiresAt:    in.ExpiresAt,
		IsActive:     true,
	}
}

func (r *sessionRecord) toDomain() core.Session {
	if r == nil {
		return core.Session{}
	}
	return core.Session{
		ID:           r.ID,
		RefreshToken: r.RefreshToken,
		UserID:       r.UserID,
		DeviceInfo:   r.DeviceInfo,
		IPAddress:    r.IPAddress,
		UserAgent:    r.UserAgent,
		CreatedAt:    r.CreatedAt,
		LastUsedAt:   r.LastUsedAt,
		ExpiresAt:    r.ExpiresAt,
		IsActive:     r.IsActive,
	}
}

func newProviderConfigRecord(workspaceID string, in core.ProviderConfigInput, now time.Time) *providerConfigRecord {
	return &providerConfigRecord{
		WorkspaceID:           workspaceID,
		Provider:              string(in.Provider),
		Enabled:               in.Enabled,
		ClientID:              in.ClientID,
		EncryptedClientSecret: in.EncryptedClientSecret,
		TenantID:              in.TenantID,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

func (r *providerConfigRecord) toDomain() core.ProviderConfig {
	if r == nil {
		return core.ProviderConfig{}
	}
	return core.ProviderConfig{
		ID:                    r.ID,
		WorkspaceID:           r.WorkspaceID,
		Provider:              core.Provider(r.Provider),
		Enabled:               r.Enabled,
		ClientID:              r.ClientID,
		EncryptedClientSecret: r.EncryptedClientSecret,
		TenantID:              r.TenantID,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

func newUserConnectionRecord(userID, workspaceID string, in core.Connection, now time.Time) *userConnectionRecord {
	record := &userConnectionRecord{
		WorkspaceID:           workspaceID,
		UserID:                userID,
		Provider:              string(in.Provider),
		EncryptedAccessToken:  in.EncryptedAccessToken,
		EncryptedRefreshToken: in.EncryptedRefreshToken,
		Scopes:                append([]string(nil), in.Scopes...),
		AccountEmail:          in.AccountEmail,
		AccountName:           in.AccountName,
		AccountAvatarURL:      in.AccountAvatarURL,
		ProviderAccountID:     in.ProviderAccountID,
		CreatedAt:             now,
		UpdatedAt:             now,
		LastUsedAt:            now,
	}
	if record.Scopes == nil {
		record.Scopes = []string{}
	}
	if in.TokenExpiresAt != nil {
		expiresAt := in.TokenExpiresAt.UTC()
		record.TokenExpiresAt = &expiresAt
	}
	return record
}

func (r *userConnectionRecord) toDomain() core.Connection {
	if r == nil {
		return core.Connection{}
	}
	connection := core.Connection{
		ID:                    r.ID,
		WorkspaceID:           r.WorkspaceID,
		UserID:                r.UserID,
		Provider:              core.Provider(r.Provider),
		EncryptedAccessToken:  r.EncryptedAccessToken,
		EncryptedRefreshToken: r.EncryptedRefreshToken,
		Scopes:                append([]string(nil), r.Scopes...),
		AccountEmail:          r.AccountEmail,
		AccountName:           r.AccountName,
		AccountAvatarURL:      r.AccountAvatarURL,
		ProviderAccountID:     r.ProviderAccountID,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
		LastUsedAt:            r.LastUsedAt,
	}
	if r.TokenExpiresAt != nil {
		expiresAt := r.TokenExpiresAt.UTC()
		connection.TokenExpiresAt = &expiresAt
	}
	return connection
}
