package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

var errContrived = errors.New("contrived storage failure")

// stubCipher is a reversible fake: ciphertext is the plaintext with a
// visible prefix, so tests can assert what reached the store.
type stubCipher struct {
	failEncrypt bool
	failDecrypt bool
}

func (c stubCipher) Encrypt(_ context.Context, plaintext []byte) ([]byte, error) {
	if c.failEncrypt {
		return nil, fmt.Errorf("stub encrypt failure")
	}
	return []byte("enc:" + string(plaintext)), nil
}

func (c stubCipher) Decrypt(_ context.Context, ciphertext []byte) ([]byte, error) {
	if c.failDecrypt {
		return nil, fmt.Errorf("stub decrypt failure")
	}
	value := string(ciphertext)
	if !strings.HasPrefix(value, "enc:") {
		return nil, fmt.Errorf("stub cipher: unexpected ciphertext %q", value)
	}
	return []byte(strings.TrimPrefix(value, "enc:")), nil
}

type fakeSessionStore struct {
	mu              sync.Mutex
	seq             int
	sessions        map[string]Session
	createErr       error
	getErr          error
	deactivateErr   error
	setLastUsedErr  error
	deactivateCalls int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]Session{}}
}

func (f *fakeSessionStore) Create(_ context.Context, in CreateSessionInput, now time.Time) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return Session{}, f.createErr
	}
	f.seq++
	session := Session{
		ID:           fmt.Sprintf("session-%d", f.seq),
		RefreshToken: in.RefreshToken,
		UserID:       in.UserID,
		DeviceInfo:   in.DeviceInfo,
		IPAddress:    in.IPAddress,
		UserAgent:    in.UserAgent,
		CreatedAt:    now,
		LastUsedAt:   now,
		ExpiresAt:    in.ExpiresAt,
		IsActive:     true,
	}
	f.sessions[session.ID] = session
	return session, nil
}

func (f *fakeSessionStore) GetByRefreshToken(_ context.Context, refreshToken string) (Session, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return Session{}, false, f.getErr
	}
	for _, session := range f.sessions {
		if session.RefreshToken == refreshToken {
			return session, true, nil
		}
	}
	return Session{}, false, nil
}

func (f *fakeSessionStore) SetLastUsed(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setLastUsedErr != nil {
		return f.setLastUsedErr
	}
	session, ok := f.sessions[id]
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	session.LastUsedAt = at
	f.sessions[id] = session
	return nil
}

func (f *fakeSessionStore) Deactivate(_ context.Context, id string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deactivateCalls++
	if f.deactivateErr != nil {
		return f.deactivateErr
	}
	session, ok := f.sessions[id]
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	session.IsActive = false
	f.sessions[id] = session
	return nil
}

func (f *fakeSessionStore) DeactivateAllForUser(_ context.Context, userID string, _ time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for id, session := range f.sessions {
		if session.UserID == userID && session.IsActive {
			session.IsActive = false
			f.sessions[id] = session
			count++
		}
	}
	return count, nil
}

func (f *fakeSessionStore) ListActiveForUser(_ context.Context, userID string) ([]Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Session
	for _, session := range f.sessions {
		if session.UserID == userID && session.IsActive {
			out = append(out, session)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) DeactivateExpired(_ context.Context, before time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for id, session := range f.sessions {
		if session.IsActive && session.ExpiresAt.Before(before) {
			session.IsActive = false
			f.sessions[id] = session
			count++
		}
	}
	return count, nil
}

func (f *fakeSessionStore) get(id string) (Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	return session, ok
}

type fakeProviderConfigStore struct {
	mu        sync.Mutex
	seq       int
	configs   map[string]ProviderConfig
	createErr error
	findErr   error
}

func newFakeProviderConfigStore() *fakeProviderConfigStore {
	return &fakeProviderConfigStore{configs: map[string]ProviderConfig{}}
}

func (f *fakeProviderConfigStore) Create(_ context.Context, workspaceID string, in ProviderConfigInput, now time.Time) (ProviderConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return ProviderConfig{}, f.createErr
	}
	f.seq++
	config := ProviderConfig{
		ID:                    fmt.Sprintf("config-%d", f.seq),
		WorkspaceID:           workspaceID,
		Provider:              in.Provider,
		Enabled:               in.Enabled,
		ClientID:              in.ClientID,
		EncryptedClientSecret: in.EncryptedClientSecret,
		TenantID:              in.TenantID,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	f.configs[config.ID] = config
	return config, nil
}

func (f *fakeProviderConfigStore) GetByID(_ context.Context, id string) (ProviderConfig, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	config, ok := f.configs[id]
	return config, ok, nil
}

func (f *fakeProviderConfigStore) ListByWorkspace(_ context.Context, workspaceID string) ([]ProviderConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ProviderConfig
	for _, config := range f.configs {
		if config.WorkspaceID == workspaceID {
			out = append(out, config)
		}
	}
	return out, nil
}

func (f *fakeProviderConfigStore) FindByWorkspaceAndProvider(_ context.Context, workspaceID string, provider Provider) (ProviderConfig, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return ProviderConfig{}, false, f.findErr
	}
	for _, config := range f.configs {
		if config.WorkspaceID == workspaceID && config.Provider == provider {
			return config, true, nil
		}
	}
	return ProviderConfig{}, false, nil
}

func (f *fakeProviderConfigStore) Update(_ context.Context, id string, update ProviderConfigUpdate, now time.Time) (ProviderConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	config, ok := f.configs[id]
	if !ok {
		return ProviderConfig{}, fmt.Errorf("provider config %s not found", id)
	}
	if update.Enabled != nil {
		config.Enabled = *update.Enabled
	}
	if update.ClientID != nil {
		config.ClientID = *update.ClientID
	}
	if update.EncryptedClientSecret != nil {
		config.EncryptedClientSecret = *update.EncryptedClientSecret
	}
	if update.TenantID != nil {
		config.TenantID = *update.TenantID
	}
	config.UpdatedAt = now
	f.configs[id] = config
	return config, nil
}

func (f *fakeProviderConfigStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.configs[id]; !ok {
		return fmt.Errorf("provider config %s not found", id)
	}
	delete(f.configs, id)
	return nil
}

type fakeConnectionStore struct {
	mu             sync.Mutex
	seq            int
	connections    map[string]Connection
	createErr      error
	listErr        error
	setLastUsedErr error
	touchCalls     int
}

func newFakeConnectionStore() *fakeConnectionStore {
	return &fakeConnectionStore{connections: map[string]Connection{}}
}

func (f *fakeConnectionStore) Create(_ context.Context, userID, workspaceID string, record Connection, now time.Time) (Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return Connection{}, f.createErr
	}
	f.seq++
	record.ID = fmt.Sprintf("connection-%d", f.seq)
	record.UserID = userID
	record.WorkspaceID = workspaceID
	record.CreatedAt = now
	record.UpdatedAt = now
	record.LastUsedAt = now
	f.connections[record.ID] = record
	return record, nil
}

func (f *fakeConnectionStore) GetByID(_ context.Context, id string) (Connection, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	connection, ok := f.connections[id]
	return connection, ok, nil
}

func (f *fakeConnectionStore) ListOwned(_ context.Context) ([]Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []Connection
	for _, connection := range f.connections {
		out = append(out, connection)
	}
	return out, nil
}

func (f *fakeConnectionStore) ListByProvider(_ context.Context, provider Provider) ([]Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []Connection
	for _, connection := range f.connections {
		if connection.Provider == provider {
			out = append(out, connection)
		}
	}
	return out, nil
}

func (f *fakeConnectionStore) Update(_ context.Context, id string, update ConnectionUpdate, now time.Time) (Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	connection, ok := f.connections[id]
	if !ok {
		return Connection{}, fmt.Errorf("connection %s not found", id)
	}
	if update.EncryptedAccessToken != nil {
		connection.EncryptedAccessToken = *update.EncryptedAccessToken
	}
	if update.EncryptedRefreshToken != nil {
		connection.EncryptedRefreshToken = *update.EncryptedRefreshToken
	}
	if update.TokenExpiresAt != nil {
		connection.TokenExpiresAt = *update.TokenExpiresAt
	}
	if update.Scopes != nil {
		connection.Scopes = append([]string(nil), (*update.Scopes)...)
	}
	if update.AccountEmail != nil {
		connection.AccountEmail = *update.AccountEmail
	}
	if update.AccountName != nil {
		connection.AccountName = *update.AccountName
	}
	if update.AccountAvatarURL != nil {
		connection.AccountAvatarURL = *update.AccountAvatarURL
	}
	if update.ProviderAccountID != nil {
		connection.ProviderAccountID = *update.ProviderAccountID
	}
	connection.UpdatedAt = now
	f.connections[id] = connection
	return connection, nil
}

func (f *fakeConnectionStore) SetLastUsed(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touchCalls++
	if f.setLastUsedErr != nil {
		return f.setLastUsedErr
	}
	connection, ok := f.connections[id]
	if !ok {
		return fmt.Errorf("connection %s not found", id)
	}
	connection.LastUsedAt = at
	f.connections[id] = connection
	return nil
}

func (f *fakeConnectionStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.connections[id]; !ok {
		return fmt.Errorf("connection %s not found", id)
	}
	delete(f.connections, id)
	return nil
}

func (f *fakeConnectionStore) get(id string) (Connection, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	connection, ok := f.connections[id]
	return connection, ok
}

type testEnv struct {
	service     *Service
	sessions    *fakeSessionStore
	providers   *fakeProviderConfigStore
	connections *fakeConnectionStore
	now         *time.Time
}

func newTestEnv(t *testing.T, extra ...Option) testEnv {
	t.Helper()
	sessions := newFakeSessionStore()
	providers := newFakeProviderConfigStore()
	connections := newFakeConnectionStore()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	options := []Option{
		WithSessionStore(sessions),
		WithProviderConfigStore(providers),
		WithConnectionStore(connections),
		WithSecretProvider(stubCipher{}),
		WithClock(ClockFunc(func() time.Time { return now })),
	}
	options = append(options, extra...)

	service, err := NewService(DefaultConfig(), options...)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return testEnv{service: service, sessions: sessions, providers: providers, connections: connections, now: &now}
}

func strPtr(value string) *string { return &value }
