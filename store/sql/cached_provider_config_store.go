package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/AlpinAI/2ly-sub007/core"
)

const providerConfigCacheKeyPrefix = "auth::provider_config::v1"

// cachedProviderConfigEntry carries the at-rest row, so only the encrypted
// secret representation ever enters the cache. Misses are cached too; every
// write path invalidates both key families.
type cachedProviderConfigEntry struct {
	Config core.ProviderConfig
	Found  bool
}

// CachedProviderConfigStore layers read caching over a provider config
// store. Workspace provider configs are read on every delegated tool call
// but change only when an admin reconfigures, which makes them the one
// cache-friendly surface in this package.
type CachedProviderConfigStore struct {
	base  core.ProviderConfigStore
	cache repositorycache.CacheService
}

func NewCachedProviderConfigStore(base core.ProviderConfigStore, cacheService repositorycache.CacheService) (*CachedProviderConfigStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base provider config store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: provider config cache service is required")
	}
	return &CachedProviderConfigStore{base: base, cache: cacheService}, nil
}

// ProviderConfigIDCacheKey is the key contract for id lookups:
// auth::provider_config::v1::id::<config_id> with the id URL-path escaped.
func ProviderConfigIDCacheKey(id string) string {
	return strings.Join([]string{providerConfigCacheKeyPrefix, "id", url.PathEscape(strings.TrimSpace(id))}, "::")
}

// ProviderConfigPairCacheKey is the key contract for (workspace, provider)
// lookups: auth::provider_config::v1::pair::<workspace_id>::<provider>.
func ProviderConfigPairCacheKey(workspaceID string, provider core.Provider) string {
	return strings.Join([]string{
		providerConfigCacheKeyPrefix,
		"pair",
		url.PathEscape(strings.TrimSpace(workspaceID)),
		url.PathEscape(string(provider)),
	}, "::")
}

func (s *CachedProviderConfigStore) Create(ctx context.Context, workspaceID string, in core.ProviderConfigInput, now time.Time) (core.ProviderConfig, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.ProviderConfig{}, fmt.Errorf("sqlstore: cached provider config store is not configured")
	}
	created, err := s.base.Create(ctx, workspaceID, in, now)
	if err != nil {
		return core.ProviderConfig{}, err
	}
	if err := s.invalidate(ctx, created.ID, created.WorkspaceID, created.Provider); err != nil {
		return core.ProviderConfig{}, err
	}
	return created, nil
}

func (s *CachedProviderConfigStore) GetByID(ctx context.Context, id string) (core.ProviderConfig, bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.ProviderConfig{}, false, fmt.Errorf("sqlstore: cached provider config store is not configured")
	}
	entry, err := repositorycache.GetOrFetch(ctx, s.cache, ProviderConfigIDCacheKey(id), func(ctx context.Context) (cachedProviderConfigEntry, error) {
		config, found, fetchErr := s.base.GetByID(ctx, id)
		if fetchErr != nil {
			return cachedProviderConfigEntry{}, fetchErr
		}
		return cachedProviderConfigEntry{Config: config, Found: found}, nil
	})
	if err != nil {
		return core.ProviderConfig{}, false, err
	}
	return entry.Config, entry.Found, nil
}

func (s *CachedProviderConfigStore) ListByWorkspace(ctx context.Context, workspaceID string) ([]core.ProviderConfig, error) {
	if s == nil || s.base == nil {
		return nil, fmt.Errorf("sqlstore: cached provider config store is not configured")
	}
	return s.base.ListByWorkspace(ctx, workspaceID)
}

func (s *CachedProviderConfigStore) FindByWorkspaceAndProvider(ctx context.Context, workspaceID string, provider core.Provider) (core.ProviderConfig, bool, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.ProviderConfig{}, false, fmt.Errorf("sqlstore: cached provider config store is not configured")
	}
	entry, err := repositorycache.GetOrFetch(ctx, s.cache, ProviderConfigPairCacheKey(workspaceID, provider), func(ctx context.Context) (cachedProviderConfigEntry, error) {
		config, found, fetchErr := s.base.FindByWorkspaceAndProvider(ctx, workspaceID, provider)
		if fetchErr != nil {
			return cachedProviderConfigEntry{}, fetchErr
		}
		return cachedProviderConfigEntry{Config: config, Found: found}, nil
	})
	if err != nil {
		return core.ProviderConfig{}, false, err
	}
	return entry.Config, entry.Found, nil
}

func (s *CachedProviderConfigStore) Update(ctx context.Context, id string, update core.ProviderConfigUpdate, now time.Time) (core.ProviderConfig, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.ProviderConfig{}, fmt.Errorf("sqlstore: cached provider config store is not configured")
	}
	updated, err := s.base.Update(ctx, id, update, now)
	if err != nil {
		return core.ProviderConfig{}, err
	}
	if err := s.invalidate(ctx, updated.ID, updated.WorkspaceID, updated.Provider); err != nil {
		return core.ProviderConfig{}, err
	}
	return updated, nil
}

func (s *CachedProviderConfigStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached provider config store is not configured")
	}
	current, found, err := s.base.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.base.Delete(ctx, id); err != nil {
		return err
	}
	if !found {
		return s.cache.Delete(ctx, ProviderConfigIDCacheKey(id))
	}
	return s.invalidate(ctx, current.ID, current.WorkspaceID, current.Provider)
}

func (s *CachedProviderConfigStore) invalidate(ctx context.Context, id, workspaceID string, provider core.Provider) error {
	if err := s.cache.Delete(ctx, ProviderConfigIDCacheKey(id)); err != nil {
		return err
	}
	return s.cache.Delete(ctx, ProviderConfigPairCacheKey(workspaceID, provider))
}

var _ core.ProviderConfigStore = (*CachedProviderConfigStore)(nil)
