package auth

import (
	"fmt"

	authcommand "github.com/AlpinAI/2ly-sub007/command"
	authquery "github.com/AlpinAI/2ly-sub007/query"
)

// CommandQueryService is the surface the facade wires wrappers against.
// *core.Service satisfies it.
type CommandQueryService interface {
	authcommand.MutatingService
	authquery.SessionReader
	authquery.ProviderConfigReader
	authquery.ConnectionReader
}

type Commands struct {
	CreateSession          *authcommand.CreateSessionCommand
	DeactivateSession      *authcommand.DeactivateSessionCommand
	DeactivateUserSessions *authcommand.DeactivateUserSessionsCommand
	TouchSession           *authcommand.TouchSessionCommand
	CleanupSessions        *authcommand.CleanupSessionsCommand
	ConfigureProvider      *authcommand.ConfigureProviderCommand
	SetProviderEnabled     *authcommand.SetProviderEnabledCommand
	DeleteProviderConfig   *authcommand.DeleteProviderConfigCommand
	CreateConnection       *authcommand.CreateConnectionCommand
	UpsertConnection       *authcommand.UpsertConnectionCommand
	DeleteConnection       *authcommand.DeleteConnectionCommand
}

type Queries struct {
	FindSession         *authquery.FindSessionQuery
	ListActiveSessions  *authquery.ListActiveSessionsQuery
	ListProviderConfigs *authquery.ListProviderConfigsQuery
	FindProviderConfig  *authquery.FindProviderConfigQuery
	ListConnections     *authquery.ListConnectionsQuery
	HasConnection       *authquery.HasConnectionQuery
	DelegatedTokens     *authquery.DelegatedTokensQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("auth: command/query service is required")
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		CreateSession:          authcommand.NewCreateSessionCommand(service),
		DeactivateSession:      authcommand.NewDeactivateSessionCommand(service),
		DeactivateUserSessions: authcommand.NewDeactivateUserSessionsCommand(service),
		TouchSession:           authcommand.NewTouchSessionCommand(service),
		CleanupSessions:        authcommand.NewCleanupSessionsCommand(service),
		ConfigureProvider:      authcommand.NewConfigureProviderCommand(service),
		SetProviderEnabled:     authcommand.NewSetProviderEnabledCommand(service),
		DeleteProviderConfig:   authcommand.NewDeleteProviderConfigCommand(service),
		CreateConnection:       authcommand.NewCreateConnectionCommand(service),
		UpsertConnection:       authcommand.NewUpsertConnectionCommand(service),
		DeleteConnection:       authcommand.NewDeleteConnectionCommand(service),
	}
	facade.queries = Queries{
		FindSession:         authquery.NewFindSessionQuery(service),
		ListActiveSessions:  authquery.NewListActiveSessionsQuery(service),
		ListProviderConfigs: authquery.NewListProviderConfigsQuery(service),
		FindProviderConfig:  authquery.NewFindProviderConfigQuery(service),
		ListConnections:     authquery.NewListConnectionsQuery(service),
		HasConnection:       authquery.NewHasConnectionQuery(service),
		DelegatedTokens:     authquery.NewDelegatedTokensQuery(service),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
