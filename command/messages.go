package command

import (
	"strings"

	"github.com/AlpinAI/2ly-sub007/core"
)

const (
	TypeCreateSession          = "auth.command.session.create"
	TypeDeactivateSession      = "auth.command.session.deactivate"
	TypeDeactivateUserSessions = "auth.command.session.deactivate_all"
	TypeTouchSession           = "auth.command.session.touch"
	TypeCleanupSessions        = "auth.command.session.cleanup"
	TypeConfigureProvider      = "auth.command.provider.configure"
	TypeSetProviderEnabled     = "auth.command.provider.set_enabled"
	TypeDeleteProviderConfig   = "auth.command.provider.delete"
	TypeCreateConnection       = "auth.command.connection.create"
	TypeUpsertConnection       = "auth.command.connection.upsert"
	TypeDeleteConnection       = "auth.command.connection.delete"
)

type CreateSessionMessage struct {
	Request core.CreateSessionRequest
}

func (CreateSessionMessage) Type() string { return TypeCreateSession }

func (m CreateSessionMessage) Validate() error {
	if strings.TrimSpace(m.Request.RefreshToken) == "" {
		return commandValidationError("refresh_token", "refresh token is required")
	}
	if strings.TrimSpace(m.Request.UserID) == "" {
		return commandValidationError("user_id", "user id is required")
	}
	return nil
}

type DeactivateSessionMessage struct {
	SessionID string
}

func (DeactivateSessionMessage) Type() string { return TypeDeactivateSession }

func (m DeactivateSessionMessage) Validate() error {
	if strings.TrimSpace(m.SessionID) == "" {
		return commandValidationError("session_id", "session id is required")
	}
	return nil
}

type DeactivateUserSessionsMessage struct {
	UserID string
}

func (DeactivateUserSessionsMessage) Type() string { return TypeDeactivateUserSessions }

func (m DeactivateUserSessionsMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return commandValidationError("user_id", "user id is required")
	}
	return nil
}

type TouchSessionMessage struct {
	SessionID string
}

func (TouchSessionMessage) Type() string { return TypeTouchSession }

func (m TouchSessionMessage) Validate() error {
	if strings.TrimSpace(m.SessionID) == "" {
		return commandValidationError("session_id", "session id is required")
	}
	return nil
}

// CleanupSessionsMessage carries no payload; the cutoff is the service
// clock's now.
type CleanupSessionsMessage struct{}

func (CleanupSessionsMessage) Type() string { return TypeCleanupSessions }

func (CleanupSessionsMessage) Validate() error { return nil }

type ConfigureProviderMessage struct {
	Request core.ConfigureProviderRequest
}

func (ConfigureProviderMessage) Type() string { return TypeConfigureProvider }

func (m ConfigureProviderMessage) Validate() error {
	if strings.TrimSpace(m.Request.WorkspaceID) == "" {
		return commandValidationError("workspace_id", "workspace id is required")
	}
	if strings.TrimSpace(string(m.Request.Provider)) == "" {
		return commandValidationError("provider", "provider is required")
	}
	return nil
}

type SetProviderEnabledMessage struct {
	ConfigID string
	Enabled  bool
}

func (SetProviderEnabledMessage) Type() string { return TypeSetProviderEnabled }

func (m SetProviderEnabledMessage) Validate() error {
	if strings.TrimSpace(m.ConfigID) == "" {
		return commandValidationError("config_id", "provider config id is required")
	}
	return nil
}

type DeleteProviderConfigMessage struct {
	ConfigID string
}

func (DeleteProviderConfigMessage) Type() string { return TypeDeleteProviderConfig }

func (m DeleteProviderConfigMessage) Validate() error {
	if strings.TrimSpace(m.ConfigID) == "" {
		return commandValidationError("config_id", "provider config id is required")
	}
	return nil
}

type CreateConnectionMessage struct {
	UserID      string
	WorkspaceID string
	Input       core.ConnectionInput
}

func (CreateConnectionMessage) Type() string { return TypeCreateConnection }

func (m CreateConnectionMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return commandValidationError("user_id", "user id is required")
	}
	if strings.TrimSpace(m.WorkspaceID) == "" {
		return commandValidationError("workspace_id", "workspace id is required")
	}
	if strings.TrimSpace(string(m.Input.Provider)) == "" {
		return commandValidationError("provider", "provider is required")
	}
	if strings.TrimSpace(m.Input.AccessToken) == "" {
		return commandValidationError("access_token", "access token is required")
	}
	return nil
}

type UpsertConnectionMessage struct {
	UserID      string
	WorkspaceID string
	Provider    core.Provider
	Request     core.UpdateConnectionRequest
}

func (UpsertConnectionMessage) Type() string { return TypeUpsertConnection }

func (m UpsertConnectionMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return commandValidationError("user_id", "user id is required")
	}
	if strings.TrimSpace(m.WorkspaceID) == "" {
		return commandValidationError("workspace_id", "workspace id is required")
	}
	if strings.TrimSpace(string(m.Provider)) == "" {
		return commandValidationError("provider", "provider is required")
	}
	return nil
}

type DeleteConnectionMessage struct {
	ConnectionID string
}

func (DeleteConnectionMessage) Type() string { return TypeDeleteConnection }

func (m DeleteConnectionMessage) Validate() error {
	if strings.TrimSpace(m.ConnectionID) == "" {
		return commandValidationError("connection_id", "connection id is required")
	}
	return nil
}
