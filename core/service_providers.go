package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	msgCreateProviderConfigFailed = "failed to create provider config"
	msgFindProviderConfigFailed   = "failed to find provider config"
	msgUpdateProviderConfigFailed = "failed to update provider config"
	msgDeleteProviderConfigFailed = "failed to delete provider config"
)

// ConfigureProviderRequest carries admin-supplied plaintext credentials.
type ConfigureProviderRequest struct {
	WorkspaceID  string
	Provider     Provider
	ClientID     string
	ClientSecret string
	TenantID     string
}

// ConfigureProviderResult mirrors the validation-first contract: an invalid
// request produces Valid=false with no storage or cipher access and no error.
type ConfigureProviderResult struct {
	Valid  bool
	Error  string
	Config *ProviderConfig
}

// GetWorkspaceProviderConfigs lists every provider configured for a workspace.
func (s *Service) GetWorkspaceProviderConfigs(ctx context.Context, workspaceID string) (configs []ProviderConfig, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"workspace_id": workspaceID}
	defer func() { s.observeOperation(ctx, startedAt, "provider.list", err, fields) }()

	if s == nil || s.providerConfigStore == nil {
		return nil, s.mapError(fmt.Errorf("core: provider config store is not configured"))
	}
	if strings.TrimSpace(workspaceID) == "" {
		return nil, s.mapError(fmt.Errorf("core: workspace id is required"))
	}
	listed, storeErr := s.providerConfigStore.ListByWorkspace(ctx, workspaceID)
	if storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgFindProviderConfigFailed, fields)
		return nil, err
	}
	return listed, nil
}

// FindProviderConfigByType returns the workspace's config for one provider,
// or nil when the provider has not been configured.
func (s *Service) FindProviderConfigByType(ctx context.Context, workspaceID string, provider Provider) (config *ProviderConfig, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"workspace_id": workspaceID, "provider": string(provider)}
	defer func() { s.observeOperation(ctx, startedAt, "provider.find_by_type", err, fields) }()

	if s == nil || s.providerConfigStore == nil {
		return nil, s.mapError(fmt.Errorf("core: provider config store is not configured"))
	}
	found, ok, storeErr := s.providerConfigStore.FindByWorkspaceAndProvider(ctx, workspaceID, provider)
	if storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgFindProviderConfigFailed, fields)
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &found, nil
}

// FindProviderConfigByID returns the minimal projection used by callers that
// only need to resolve an id back to its provider and workspace.
func (s *Service) FindProviderConfigByID(ctx context.Context, id string) (ref *ProviderConfigRef, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"config_id": id}
	defer func() { s.observeOperation(ctx, startedAt, "provider.find_by_id", err, fields) }()

	if s == nil || s.providerConfigStore == nil {
		return nil, s.mapError(fmt.Errorf("core: provider config store is not configured"))
	}
	found, ok, storeErr := s.providerConfigStore.GetByID(ctx, id)
	if storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgFindProviderConfigFailed, fields)
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &ProviderConfigRef{ID: found.ID, Provider: found.Provider, WorkspaceID: found.WorkspaceID}, nil
}

// CreateProviderConfig persists a config whose secret is already encrypted.
func (s *Service) CreateProviderConfig(ctx context.Context, workspaceID string, in ProviderConfigInput) (config ProviderConfig, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"workspace_id": workspaceID, "provider": string(in.Provider)}
	defer func() { s.observeOperation(ctx, startedAt, "provider.create", err, fields) }()

	if s == nil || s.providerConfigStore == nil {
		return ProviderConfig{}, s.mapError(fmt.Errorf("core: provider config store is not configured"))
	}
	if strings.TrimSpace(workspaceID) == "" {
		return ProviderConfig{}, s.mapError(fmt.Errorf("core: workspace id is required"))
	}
	created, storeErr := s.providerConfigStore.Create(ctx, workspaceID, in, s.timeNow())
	if storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgCreateProviderConfigFailed, fields)
		return ProviderConfig{}, err
	}
	return created, nil
}

// UpdateProviderConfig applies a partial update: nil fields are forwarded as
// absent and the store preserves the stored values.
func (s *Service) UpdateProviderConfig(ctx context.Context, id string, update ProviderConfigUpdate) (config ProviderConfig, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"config_id": id}
	defer func() { s.observeOperation(ctx, startedAt, "provider.update", err, fields) }()

	if s == nil || s.providerConfigStore == nil {
		return ProviderConfig{}, s.mapError(fmt.Errorf("core: provider config store is not configured"))
	}
	if strings.TrimSpace(id) == "" {
		return ProviderConfig{}, s.mapError(fmt.Errorf("core: provider config id is required"))
	}
	updated, storeErr := s.providerConfigStore.Update(ctx, id, update, s.timeNow())
	if storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgUpdateProviderConfigFailed, fields)
		return ProviderConfig{}, err
	}
	return updated, nil
}

// UpdateProviderEnabled toggles only the enabled flag.
func (s *Service) UpdateProviderEnabled(ctx context.Context, id string, enabled bool) (config ProviderConfig, err error) {
	return s.UpdateProviderConfig(ctx, id, ProviderConfigUpdate{Enabled: &enabled})
}

// UpsertProviderConfig creates the workspace's config for a provider when
// absent, otherwise partially updates the existing row. The find-then-write
// sequence is two round trips with no storage-level unique key, so writes
// are serialized per (workspace, provider) through the upsert locker.
func (s *Service) UpsertProviderConfig(ctx context.Context, workspaceID string, provider Provider, update ProviderConfigUpdate) (config ProviderConfig, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"workspace_id": workspaceID, "provider": string(provider)}
	defer func() { s.observeOperation(ctx, startedAt, "provider.upsert", err, fields) }()

	if s == nil || s.providerConfigStore == nil {
		return ProviderConfig{}, s.mapError(fmt.Errorf("core: provider config store is not configured"))
	}
	if strings.TrimSpace(workspaceID) == "" {
		return ProviderConfig{}, s.mapError(fmt.Errorf("core: workspace id is required"))
	}

	if s.upsertLocker != nil {
		handle, lockErr := s.upsertLocker.Acquire(ctx, UpsertKey("provider_config", workspaceID, string(provider)), 0)
		if lockErr != nil {
			err = s.mapError(lockErr)
			return ProviderConfig{}, err
		}
		defer handle.Unlock(ctx)
	}

	existing, ok, storeErr := s.providerConfigStore.FindByWorkspaceAndProvider(ctx, workspaceID, provider)
	if storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgFindProviderConfigFailed, fields)
		return ProviderConfig{}, err
	}

	if !ok {
		created, createErr := s.providerConfigStore.Create(ctx, workspaceID, providerConfigInputFromUpdate(provider, update), s.timeNow())
		if createErr != nil {
			err = s.wrapStorageError(ctx, createErr, msgCreateProviderConfigFailed, fields)
			return ProviderConfig{}, err
		}
		return created, nil
	}

	updated, updateErr := s.providerConfigStore.Update(ctx, existing.ID, update, s.timeNow())
	if updateErr != nil {
		err = s.wrapStorageError(ctx, updateErr, msgUpdateProviderConfigFailed, fields)
		return ProviderConfig{}, err
	}
	return updated, nil
}

// ConfigureProvider validates admin input, encrypts the client secret, and
// upserts the workspace config with enabled forced on. Validation failures
// return early with no storage or cipher access.
func (s *Service) ConfigureProvider(ctx context.Context, req ConfigureProviderRequest) (result ConfigureProviderResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"workspace_id": req.WorkspaceID, "provider": string(req.Provider)}
	defer func() { s.observeOperation(ctx, startedAt, "provider.configure", err, fields) }()

	if s == nil || s.providerConfigStore == nil {
		return ConfigureProviderResult{}, s.mapError(fmt.Errorf("core: provider config store is not configured"))
	}
	if s.secretProvider == nil {
		return ConfigureProviderResult{}, s.mapError(fmt.Errorf("core: secret provider is not configured"))
	}

	validation := ValidateProviderConfig(req.Provider, req.ClientID, req.ClientSecret, req.TenantID)
	if !validation.Valid {
		return ConfigureProviderResult{Valid: false, Error: validation.Error}, nil
	}

	encrypted, encryptErr := s.secretProvider.Encrypt(ctx, []byte(req.ClientSecret))
	if encryptErr != nil {
		err = s.mapError(fmt.Errorf("core: encrypt client secret: %w", encryptErr))
		return ConfigureProviderResult{}, err
	}

	enabled := true
	clientID := req.ClientID
	encryptedSecret := string(encrypted)
	update := ProviderConfigUpdate{
		Enabled:               &enabled,
		ClientID:              &clientID,
		EncryptedClientSecret: &encryptedSecret,
	}
	if strings.TrimSpace(req.TenantID) != "" {
		tenantID := req.TenantID
		update.TenantID = &tenantID
	}

	upserted, upsertErr := s.UpsertProviderConfig(ctx, req.WorkspaceID, req.Provider, update)
	if upsertErr != nil {
		err = upsertErr
		return ConfigureProviderResult{}, err
	}
	return ConfigureProviderResult{Valid: true, Config: &upserted}, nil
}

// DeleteProviderConfig removes the row. No referential check against
// existing user connections happens here.
func (s *Service) DeleteProviderConfig(ctx context.Context, id string) (deleted bool, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"config_id": id}
	defer func() { s.observeOperation(ctx, startedAt, "provider.delete", err, fields) }()

	if s == nil || s.providerConfigStore == nil {
		return false, s.mapError(fmt.Errorf("core: provider config store is not configured"))
	}
	if strings.TrimSpace(id) == "" {
		return false, s.mapError(fmt.Errorf("core: provider config id is required"))
	}
	if storeErr := s.providerConfigStore.Delete(ctx, id); storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgDeleteProviderConfigFailed, fields)
		return false, err
	}
	return true, nil
}

func providerConfigInputFromUpdate(provider Provider, update ProviderConfigUpdate) ProviderConfigInput {
	in := ProviderConfigInput{Provider: provider}
	if update.Enabled != nil {
		in.Enabled = *update.Enabled
	}
	if update.ClientID != nil {
		in.ClientID = *update.ClientID
	}
	if update.EncryptedClientSecret != nil {
		in.EncryptedClientSecret = *update.EncryptedClientSecret
	}
	if update.TenantID != nil {
		in.TenantID = *update.TenantID
	}
	return in
}
