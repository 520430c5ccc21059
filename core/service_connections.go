package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	msgCreateConnectionFailed = "failed to create connection"
	msgFindConnectionFailed   = "failed to find connection"
	msgUpdateConnectionFailed = "failed to update connection"
	msgDeleteConnectionFailed = "failed to delete connection"
)

// UpdateConnectionRequest carries plaintext token material; only supplied
// fields are re-encrypted and written, omitted fields preserve the stored
// values. TokenExpiresAt distinguishes "leave untouched" (nil) from an
// explicit new value, including clearing to null.
type UpdateConnectionRequest struct {
	AccessToken       *string
	RefreshToken      *string
	TokenExpiresAt    **time.Time
	Scopes            *[]string
	AccountEmail      *string
	AccountName       *string
	AccountAvatarURL  *string
	ProviderAccountID *string
}

// FindUserConnections returns every connection owned by a user within a
// workspace. The store can only filter on the presence of both owner
// relations server-side, so the exact (user, workspace) match is applied
// here after the fetch.
func (s *Service) FindUserConnections(ctx context.Context, userID, workspaceID string) (connections []Connection, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"user_id": userID, "workspace_id": workspaceID}
	defer func() { s.observeOperation(ctx, startedAt, "connection.list", err, fields) }()

	if s == nil || s.connectionStore == nil {
		return nil, s.mapError(fmt.Errorf("core: connection store is not configured"))
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(workspaceID) == "" {
		return nil, s.mapError(fmt.Errorf("core: user id and workspace id are required"))
	}

	owned, storeErr := s.connectionStore.ListOwned(ctx)
	if storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgFindConnectionFailed, fields)
		return nil, err
	}
	matched := make([]Connection, 0, len(owned))
	for _, connection := range owned {
		if connection.UserID == userID && connection.WorkspaceID == workspaceID {
			matched = append(matched, connection)
		}
	}
	return matched, nil
}

// FindUserConnectionByProvider narrows the provider's connections to the
// (user, workspace) pair client-side, returning nil when absent.
func (s *Service) FindUserConnectionByProvider(ctx context.Context, userID, workspaceID string, provider Provider) (connection *Connection, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"user_id": userID, "workspace_id": workspaceID, "provider": string(provider)}
	defer func() { s.observeOperation(ctx, startedAt, "connection.find_by_provider", err, fields) }()

	if s == nil || s.connectionStore == nil {
		return nil, s.mapError(fmt.Errorf("core: connection store is not configured"))
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(workspaceID) == "" {
		return nil, s.mapError(fmt.Errorf("core: user id and workspace id are required"))
	}

	candidates, storeErr := s.connectionStore.ListByProvider(ctx, provider)
	if storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgFindConnectionFailed, fields)
		return nil, err
	}
	for i := range candidates {
		if candidates[i].UserID == userID && candidates[i].WorkspaceID == workspaceID {
			found := candidates[i]
			return &found, nil
		}
	}
	return nil, nil
}

// CreateConnection encrypts the access token (and the refresh token when
// present) before anything reaches the store.
func (s *Service) CreateConnection(ctx context.Context, userID, workspaceID string, in ConnectionInput) (connection Connection, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"user_id": userID, "workspace_id": workspaceID, "provider": string(in.Provider)}
	defer func() { s.observeOperation(ctx, startedAt, "connection.create", err, fields) }()

	if s == nil || s.connectionStore == nil {
		return Connection{}, s.mapError(fmt.Errorf("core: connection store is not configured"))
	}
	if s.secretProvider == nil {
		return Connection{}, s.mapError(fmt.Errorf("core: secret provider is not configured"))
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(workspaceID) == "" {
		return Connection{}, s.mapError(fmt.Errorf("core: user id and workspace id are required"))
	}
	if strings.TrimSpace(in.AccessToken) == "" {
		return Connection{}, s.mapError(fmt.Errorf("core: access token is required"))
	}

	encryptedAccess, encryptErr := s.secretProvider.Encrypt(ctx, []byte(in.AccessToken))
	if encryptErr != nil {
		err = s.mapError(fmt.Errorf("core: encrypt access token: %w", encryptErr))
		return Connection{}, err
	}
	record := Connection{
		WorkspaceID:          workspaceID,
		UserID:               userID,
		Provider:             in.Provider,
		EncryptedAccessToken: string(encryptedAccess),
		TokenExpiresAt:       cloneTimeValue(in.TokenExpiresAt),
		Scopes:               append([]string(nil), in.Scopes...),
		AccountEmail:         in.AccountEmail,
		AccountName:          in.AccountName,
		AccountAvatarURL:     in.AccountAvatarURL,
		ProviderAccountID:    in.ProviderAccountID,
	}
	if in.RefreshToken != "" {
		encryptedRefresh, refreshErr := s.secretProvider.Encrypt(ctx, []byte(in.RefreshToken))
		if refreshErr != nil {
			err = s.mapError(fmt.Errorf("core: encrypt refresh token: %w", refreshErr))
			return Connection{}, err
		}
		record.EncryptedRefreshToken = string(encryptedRefresh)
	}

	created, storeErr := s.connectionStore.Create(ctx, userID, workspaceID, record, s.timeNow())
	if storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgCreateConnectionFailed, fields)
		return Connection{}, err
	}
	return created, nil
}

// UpdateConnection partially updates a connection, re-encrypting only the
// token fields actually supplied.
func (s *Service) UpdateConnection(ctx context.Context, id string, req UpdateConnectionRequest) (connection Connection, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"connection_id": id}
	defer func() { s.observeOperation(ctx, startedAt, "connection.update", err, fields) }()

	if s == nil || s.connectionStore == nil {
		return Connection{}, s.mapError(fmt.Errorf("core: connection store is not configured"))
	}
	if strings.TrimSpace(id) == "" {
		return Connection{}, s.mapError(fmt.Errorf("core: connection id is required"))
	}

	update, buildErr := s.buildConnectionUpdate(ctx, req)
	if buildErr != nil {
		err = s.mapError(buildErr)
		return Connection{}, err
	}
	updated, storeErr := s.connectionStore.Update(ctx, id, update, s.timeNow())
	if storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgUpdateConnectionFailed, fields)
		return Connection{}, err
	}
	return updated, nil
}

// TouchConnectionLastUsed bumps the delegation telemetry timestamp. It is
// best-effort: failures are logged and reported in the discardable outcome,
// never propagated, because telemetry must not abort a delegation call.
func (s *Service) TouchConnectionLastUsed(ctx context.Context, id string) TouchOutcome {
	if s == nil || s.connectionStore == nil {
		return TouchOutcome{Err: fmt.Errorf("core: connection store is not configured")}
	}
	if strings.TrimSpace(id) == "" {
		return TouchOutcome{Err: fmt.Errorf("core: connection id is required")}
	}
	if storeErr := s.connectionStore.SetLastUsed(ctx, id, s.timeNow()); storeErr != nil {
		s.logError(ctx, "connection last-used bump failed", map[string]any{
			"connection_id": id,
			"cause":         storeErr.Error(),
		})
		return TouchOutcome{Err: storeErr}
	}
	return TouchOutcome{Updated: true}
}

// UpsertConnection creates the (user, workspace, provider) connection when
// absent and partially updates it otherwise, serialized per key through the
// upsert locker since storage enforces no unique constraint.
func (s *Service) UpsertConnection(ctx context.Context, userID, workspaceID string, provider Provider, req UpdateConnectionRequest) (connection Connection, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"user_id": userID, "workspace_id": workspaceID, "provider": string(provider)}
	defer func() { s.observeOperation(ctx, startedAt, "connection.upsert", err, fields) }()

	if s == nil || s.connectionStore == nil {
		return Connection{}, s.mapError(fmt.Errorf("core: connection store is not configured"))
	}
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(workspaceID) == "" {
		return Connection{}, s.mapError(fmt.Errorf("core: user id and workspace id are required"))
	}

	if s.upsertLocker != nil {
		handle, lockErr := s.upsertLocker.Acquire(ctx, UpsertKey("connection", userID, workspaceID, string(provider)), 0)
		if lockErr != nil {
			err = s.mapError(lockErr)
			return Connection{}, err
		}
		defer handle.Unlock(ctx)
	}

	existing, findErr := s.FindUserConnectionByProvider(ctx, userID, workspaceID, provider)
	if findErr != nil {
		err = findErr
		return Connection{}, err
	}

	if existing == nil {
		in := connectionInputFromUpdate(provider, req)
		created, createErr := s.CreateConnection(ctx, userID, workspaceID, in)
		if createErr != nil {
			err = createErr
			return Connection{}, err
		}
		return created, nil
	}

	updated, updateErr := s.UpdateConnection(ctx, existing.ID, req)
	if updateErr != nil {
		err = updateErr
		return Connection{}, err
	}
	return updated, nil
}

// GetDecryptedTokens returns live credentials for a connection id, or nil
// when the connection does not exist. The refresh token is decrypted only
// when one was stored.
func (s *Service) GetDecryptedTokens(ctx context.Context, id string) (tokens *DecryptedTokens, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"connection_id": id}
	defer func() { s.observeOperation(ctx, startedAt, "connection.decrypt_tokens", err, fields) }()

	if s == nil || s.connectionStore == nil {
		return nil, s.mapError(fmt.Errorf("core: connection store is not configured"))
	}
	if s.secretProvider == nil {
		return nil, s.mapError(fmt.Errorf("core: secret provider is not configured"))
	}

	found, ok, storeErr := s.connectionStore.GetByID(ctx, id)
	if storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgFindConnectionFailed, fields)
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	decrypted, decryptErr := s.decryptConnection(ctx, found)
	if decryptErr != nil {
		err = s.mapError(decryptErr)
		return nil, err
	}
	return decrypted, nil
}

// GetDecryptedTokensByProvider is the delegation entry point used by the
// tool-execution runtime to act on the user's behalf. A hit observably
// bumps lastUsedAt through the best-effort touch; a miss returns nil with
// no side effects. Expired tokens are returned as-is; detecting downstream
// 401s and driving re-authorization is the caller's responsibility.
func (s *Service) GetDecryptedTokensByProvider(ctx context.Context, userID, workspaceID string, provider Provider) (tokens *DecryptedTokens, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"user_id": userID, "workspace_id": workspaceID, "provider": string(provider)}
	defer func() { s.observeOperation(ctx, startedAt, "connection.delegate", err, fields) }()

	if s == nil || s.connectionStore == nil {
		return nil, s.mapError(fmt.Errorf("core: connection store is not configured"))
	}
	if s.secretProvider == nil {
		return nil, s.mapError(fmt.Errorf("core: secret provider is not configured"))
	}

	found, findErr := s.FindUserConnectionByProvider(ctx, userID, workspaceID, provider)
	if findErr != nil {
		err = findErr
		return nil, err
	}
	if found == nil {
		return nil, nil
	}

	_ = s.TouchConnectionLastUsed(ctx, found.ID)

	decrypted, decryptErr := s.decryptConnection(ctx, *found)
	if decryptErr != nil {
		err = s.mapError(decryptErr)
		return nil, err
	}
	return decrypted, nil
}

// GetDelegatedTokens resolves delegation through the workspace's provider
// configuration first: asking for a provider the workspace never configured
// is a caller error, not an empty result.
func (s *Service) GetDelegatedTokens(ctx context.Context, userID, workspaceID string, provider Provider) (tokens *DecryptedTokens, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"user_id": userID, "workspace_id": workspaceID, "provider": string(provider)}
	defer func() { s.observeOperation(ctx, startedAt, "connection.delegate_checked", err, fields) }()

	config, configErr := s.FindProviderConfigByType(ctx, workspaceID, provider)
	if configErr != nil {
		err = configErr
		return nil, err
	}
	if config == nil || !config.Enabled {
		err = s.mapError(fmt.Errorf("OAuth provider %s is not configured", provider))
		return nil, err
	}
	return s.GetDecryptedTokensByProvider(ctx, userID, workspaceID, provider)
}

// HasConnection is the existence check backing connection badges in the UI.
func (s *Service) HasConnection(ctx context.Context, userID, workspaceID string, provider Provider) (bool, error) {
	found, err := s.FindUserConnectionByProvider(ctx, userID, workspaceID, provider)
	if err != nil {
		return false, err
	}
	return found != nil, nil
}

// DeleteConnection disconnects the provider for the user.
func (s *Service) DeleteConnection(ctx context.Context, id string) (deleted bool, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"connection_id": id}
	defer func() { s.observeOperation(ctx, startedAt, "connection.delete", err, fields) }()

	if s == nil || s.connectionStore == nil {
		return false, s.mapError(fmt.Errorf("core: connection store is not configured"))
	}
	if strings.TrimSpace(id) == "" {
		return false, s.mapError(fmt.Errorf("core: connection id is required"))
	}
	if storeErr := s.connectionStore.Delete(ctx, id); storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgDeleteConnectionFailed, fields)
		return false, err
	}
	return true, nil
}

func (s *Service) decryptConnection(ctx context.Context, connection Connection) (*DecryptedTokens, error) {
	access, err := s.secretProvider.Decrypt(ctx, []byte(connection.EncryptedAccessToken))
	if err != nil {
		return nil, fmt.Errorf("core: decrypt access token: %w", err)
	}
	tokens := &DecryptedTokens{
		AccessToken:    string(access),
		TokenExpiresAt: cloneTimeValue(connection.TokenExpiresAt),
		Scopes:         append([]string(nil), connection.Scopes...),
		AccountEmail:   connection.AccountEmail,
	}
	if connection.EncryptedRefreshToken != "" {
		refresh, err := s.secretProvider.Decrypt(ctx, []byte(connection.EncryptedRefreshToken))
		if err != nil {
			return nil, fmt.Errorf("core: decrypt refresh token: %w", err)
		}
		tokens.RefreshToken = string(refresh)
	}
	return tokens, nil
}

func (s *Service) buildConnectionUpdate(ctx context.Context, req UpdateConnectionRequest) (ConnectionUpdate, error) {
	update := ConnectionUpdate{
		TokenExpiresAt:    req.TokenExpiresAt,
		Scopes:            req.Scopes,
		AccountEmail:      req.AccountEmail,
		AccountName:       req.AccountName,
		AccountAvatarURL:  req.AccountAvatarURL,
		ProviderAccountID: req.ProviderAccountID,
	}
	if req.AccessToken != nil {
		if s.secretProvider == nil {
			return ConnectionUpdate{}, fmt.Errorf("core: secret provider is not configured")
		}
		encrypted, err := s.secretProvider.Encrypt(ctx, []byte(*req.AccessToken))
		if err != nil {
			return ConnectionUpdate{}, fmt.Errorf("core: encrypt access token: %w", err)
		}
		value := string(encrypted)
		update.EncryptedAccessToken = &value
	}
	if req.RefreshToken != nil {
		if s.secretProvider == nil {
			return ConnectionUpdate{}, fmt.Errorf("core: secret provider is not configured")
		}
		encrypted, err := s.secretProvider.Encrypt(ctx, []byte(*req.RefreshToken))
		if err != nil {
			return ConnectionUpdate{}, fmt.Errorf("core: encrypt refresh token: %w", err)
		}
		value := string(encrypted)
		update.EncryptedRefreshToken = &value
	}
	return update, nil
}

func connectionInputFromUpdate(provider Provider, req UpdateConnectionRequest) ConnectionInput {
	in := ConnectionInput{Provider: provider}
	if req.AccessToken != nil {
		in.AccessToken = *req.AccessToken
	}
	if req.RefreshToken != nil {
		in.RefreshToken = *req.RefreshToken
	}
	if req.TokenExpiresAt != nil {
		in.TokenExpiresAt = cloneTimeValue(*req.TokenExpiresAt)
	}
	if req.Scopes != nil {
		in.Scopes = append([]string(nil), (*req.Scopes)...)
	}
	if req.AccountEmail != nil {
		in.AccountEmail = *req.AccountEmail
	}
	if req.AccountName != nil {
		in.AccountName = *req.AccountName
	}
	if req.AccountAvatarURL != nil {
		in.AccountAvatarURL = *req.AccountAvatarURL
	}
	if req.ProviderAccountID != nil {
		in.ProviderAccountID = *req.ProviderAccountID
	}
	return in
}

func cloneTimeValue(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := value.UTC()
	return &clone
}
