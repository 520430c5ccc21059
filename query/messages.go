package query

import (
	"strings"

	"github.com/AlpinAI/2ly-sub007/core"
)

const (
	TypeFindSession         = "auth.query.session.find"
	TypeListActiveSessions  = "auth.query.session.list_active"
	TypeListProviderConfigs = "auth.query.provider.list"
	TypeFindProviderConfig  = "auth.query.provider.find"
	TypeListConnections     = "auth.query.connection.list"
	TypeHasConnection       = "auth.query.connection.exists"
	TypeDelegatedTokens     = "auth.query.connection.delegated_tokens"
)

type FindSessionMessage struct {
	RefreshToken string
}

func (FindSessionMessage) Type() string { return TypeFindSession }

func (m FindSessionMessage) Validate() error {
	if strings.TrimSpace(m.RefreshToken) == "" {
		return queryValidationError("refresh_token", "refresh token is required")
	}
	return nil
}

type ListActiveSessionsMessage struct {
	UserID string
}

func (ListActiveSessionsMessage) Type() string { return TypeListActiveSessions }

func (m ListActiveSessionsMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return queryValidationError("user_id", "user id is required")
	}
	return nil
}

type ListProviderConfigsMessage struct {
	WorkspaceID string
}

func (ListProviderConfigsMessage) Type() string { return TypeListProviderConfigs }

func (m ListProviderConfigsMessage) Validate() error {
	if strings.TrimSpace(m.WorkspaceID) == "" {
		return queryValidationError("workspace_id", "workspace id is required")
	}
	return nil
}

type FindProviderConfigMessage struct {
	WorkspaceID string
	Provider    core.Provider
}

func (FindProviderConfigMessage) Type() string { return TypeFindProviderConfig }

func (m FindProviderConfigMessage) Validate() error {
	if strings.TrimSpace(m.WorkspaceID) == "" {
		return queryValidationError("workspace_id", "workspace id is required")
	}
	if strings.TrimSpace(string(m.Provider)) == "" {
		return queryValidationError("provider", "provider is required")
	}
	return nil
}

type ListConnectionsMessage struct {
	UserID      string
	WorkspaceID string
}

func (ListConnectionsMessage) Type() string { return TypeListConnections }

func (m ListConnectionsMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return queryValidationError("user_id", "user id is required")
	}
	if strings.TrimSpace(m.WorkspaceID) == "" {
		return queryValidationError("workspace_id", "workspace id is required")
	}
	return nil
}

type HasConnectionMessage struct {
	UserID      string
	WorkspaceID string
	Provider    core.Provider
}

func (HasConnectionMessage) Type() string { return TypeHasConnection }

func (m HasConnectionMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return queryValidationError("user_id", "user id is required")
	}
	if strings.TrimSpace(m.WorkspaceID) == "" {
		return queryValidationError("workspace_id", "workspace id is required")
	}
	if strings.TrimSpace(string(m.Provider)) == "" {
		return queryValidationError("provider", "provider is required")
	}
	return nil
}

type DelegatedTokensMessage struct {
	UserID      string
	WorkspaceID string
	Provider    core.Provider
}

func (DelegatedTokensMessage) Type() string { return TypeDelegatedTokens }

func (m DelegatedTokensMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return queryValidationError("user_id", "user id is required")
	}
	if strings.TrimSpace(m.WorkspaceID) == "" {
		return queryValidationError("workspace_id", "workspace id is required")
	}
	if strings.TrimSpace(string(m.Provider)) == "" {
		return queryValidationError("provider", "provider is required")
	}
	return nil
}
