package sqlstore

import "github.com/AlpinAI/2ly-sub007/core"

var (
	_ core.SessionStore           = (*SessionStore)(nil)
	_ core.ProviderConfigStore    = (*ProviderConfigStore)(nil)
	_ core.ConnectionStore        = (*UserConnectionStore)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
