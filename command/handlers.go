package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/AlpinAI/2ly-sub007/core"
)

// MutatingService is the write surface of the auth service the command
// handlers dispatch into.
type MutatingService interface {
	CreateSession(ctx context.Context, req core.CreateSessionRequest) (core.Session, error)
	DeactivateSession(ctx context.Context, id string) error
	DeactivateAllUserSessions(ctx context.Context, userID string) (int, error)
	UpdateSessionLastUsed(ctx context.Context, id string) error
	CleanupExpiredSessions(ctx context.Context) (int, error)
	ConfigureProvider(ctx context.Context, req core.ConfigureProviderRequest) (core.ConfigureProviderResult, error)
	UpdateProviderEnabled(ctx context.Context, id string, enabled bool) (core.ProviderConfig, error)
	DeleteProviderConfig(ctx context.Context, id string) (bool, error)
	CreateConnection(ctx context.Context, userID, workspaceID string, in core.ConnectionInput) (core.Connection, error)
	UpsertConnection(ctx context.Context, userID, workspaceID string, provider core.Provider, req core.UpdateConnectionRequest) (core.Connection, error)
	DeleteConnection(ctx context.Context, id string) (bool, error)
}

type CreateSessionCommand struct {
	service MutatingService
}

func NewCreateSessionCommand(service MutatingService) *CreateSessionCommand {
	return &CreateSessionCommand{service: service}
}

func (c *CreateSessionCommand) Execute(ctx context.Context, msg CreateSessionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: session service is required")
	}
	out, err := c.service.CreateSession(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeactivateSessionCommand struct {
	service MutatingService
}

func NewDeactivateSessionCommand(service MutatingService) *DeactivateSessionCommand {
	return &DeactivateSessionCommand{service: service}
}

func (c *DeactivateSessionCommand) Execute(ctx context.Context, msg DeactivateSessionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: session service is required")
	}
	return c.service.DeactivateSession(ctx, msg.SessionID)
}

type DeactivateUserSessionsCommand struct {
	service MutatingService
}

func NewDeactivateUserSessionsCommand(service MutatingService) *DeactivateUserSessionsCommand {
	return &DeactivateUserSessionsCommand{service: service}
}

func (c *DeactivateUserSessionsCommand) Execute(ctx context.Context, msg DeactivateUserSessionsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: session service is required")
	}
	count, err := c.service.DeactivateAllUserSessions(ctx, msg.UserID)
	if err != nil {
		return err
	}
	storeResult(ctx, count)
	return nil
}

type TouchSessionCommand struct {
	service MutatingService
}

func NewTouchSessionCommand(service MutatingService) *TouchSessionCommand {
	return &TouchSessionCommand{service: service}
}

func (c *TouchSessionCommand) Execute(ctx context.Context, msg TouchSessionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: session service is required")
	}
	return c.service.UpdateSessionLastUsed(ctx, msg.SessionID)
}

type CleanupSessionsCommand struct {
	service MutatingService
}

func NewCleanupSessionsCommand(service MutatingService) *CleanupSessionsCommand {
	return &CleanupSessionsCommand{service: service}
}

func (c *CleanupSessionsCommand) Execute(ctx context.Context, _ CleanupSessionsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: session service is required")
	}
	count, err := c.service.CleanupExpiredSessions(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, count)
	return nil
}

type ConfigureProviderCommand struct {
	service MutatingService
}

func NewConfigureProviderCommand(service MutatingService) *ConfigureProviderCommand {
	return &ConfigureProviderCommand{service: service}
}

func (c *ConfigureProviderCommand) Execute(ctx context.Context, msg ConfigureProviderMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: provider service is required")
	}
	out, err := c.service.ConfigureProvider(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SetProviderEnabledCommand struct {
	service MutatingService
}

func NewSetProviderEnabledCommand(service MutatingService) *SetProviderEnabledCommand {
	return &SetProviderEnabledCommand{service: service}
}

func (c *SetProviderEnabledCommand) Execute(ctx context.Context, msg SetProviderEnabledMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: provider service is required")
	}
	out, err := c.service.UpdateProviderEnabled(ctx, msg.ConfigID, msg.Enabled)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeleteProviderConfigCommand struct {
	service MutatingService
}

func NewDeleteProviderConfigCommand(service MutatingService) *DeleteProviderConfigCommand {
	return &DeleteProviderConfigCommand{service: service}
}

func (c *DeleteProviderConfigCommand) Execute(ctx context.Context, msg DeleteProviderConfigMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: provider service is required")
	}
	deleted, err := c.service.DeleteProviderConfig(ctx, msg.ConfigID)
	if err != nil {
		return err
	}
	storeResult(ctx, deleted)
	return nil
}

type CreateConnectionCommand struct {
	service MutatingService
}

func NewCreateConnectionCommand(service MutatingService) *CreateConnectionCommand {
	return &CreateConnectionCommand{service: service}
}

func (c *CreateConnectionCommand) Execute(ctx context.Context, msg CreateConnectionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: connection service is required")
	}
	out, err := c.service.CreateConnection(ctx, msg.UserID, msg.WorkspaceID, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpsertConnectionCommand struct {
	service MutatingService
}

func NewUpsertConnectionCommand(service MutatingService) *UpsertConnectionCommand {
	return &UpsertConnectionCommand{service: service}
}

func (c *UpsertConnectionCommand) Execute(ctx context.Context, msg UpsertConnectionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: connection service is required")
	}
	out, err := c.service.UpsertConnection(ctx, msg.UserID, msg.WorkspaceID, msg.Provider, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeleteConnectionCommand struct {
	service MutatingService
}

func NewDeleteConnectionCommand(service MutatingService) *DeleteConnectionCommand {
	return &DeleteConnectionCommand{service: service}
}

func (c *DeleteConnectionCommand) Execute(ctx context.Context, msg DeleteConnectionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: connection service is required")
	}
	deleted, err := c.service.DeleteConnection(ctx, msg.ConnectionID)
	if err != nil {
		return err
	}
	storeResult(ctx, deleted)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
