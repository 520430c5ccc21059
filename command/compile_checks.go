package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[CreateSessionMessage]          = (*CreateSessionCommand)(nil)
	_ gocmd.Commander[DeactivateSessionMessage]      = (*DeactivateSessionCommand)(nil)
	_ gocmd.Commander[DeactivateUserSessionsMessage] = (*DeactivateUserSessionsCommand)(nil)
	_ gocmd.Commander[TouchSessionMessage]           = (*TouchSessionCommand)(nil)
	_ gocmd.Commander[CleanupSessionsMessage]        = (*CleanupSessionsCommand)(nil)
	_ gocmd.Commander[ConfigureProviderMessage]      = (*ConfigureProviderCommand)(nil)
	_ gocmd.Commander[SetProviderEnabledMessage]     = (*SetProviderEnabledCommand)(nil)
	_ gocmd.Commander[DeleteProviderConfigMessage]   = (*DeleteProviderConfigCommand)(nil)
	_ gocmd.Commander[CreateConnectionMessage]       = (*CreateConnectionCommand)(nil)
	_ gocmd.Commander[UpsertConnectionMessage]       = (*UpsertConnectionCommand)(nil)
	_ gocmd.Commander[DeleteConnectionMessage]       = (*DeleteConnectionCommand)(nil)
)
