package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/AlpinAI/2ly-sub007/core"
)

var (
	_ gocmd.Querier[FindSessionMessage, *core.Session]                 = (*FindSessionQuery)(nil)
	_ gocmd.Querier[ListActiveSessionsMessage, []core.Session]         = (*ListActiveSessionsQuery)(nil)
	_ gocmd.Querier[ListProviderConfigsMessage, []core.ProviderConfig] = (*ListProviderConfigsQuery)(nil)
	_ gocmd.Querier[FindProviderConfigMessage, *core.ProviderConfig]   = (*FindProviderConfigQuery)(nil)
	_ gocmd.Querier[ListConnectionsMessage, []core.Connection]         = (*ListConnectionsQuery)(nil)
	_ gocmd.Querier[HasConnectionMessage, bool]                        = (*HasConnectionQuery)(nil)
	_ gocmd.Querier[DelegatedTokensMessage, *core.DecryptedTokens]     = (*DelegatedTokensQuery)(nil)
)
