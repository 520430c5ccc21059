package sqlstore_test

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"testing"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/AlpinAI/2ly-sub007/core"
	authmigrations "github.com/AlpinAI/2ly-sub007/migrations"
	sqlstore "github.com/AlpinAI/2ly-sub007/store/sql"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "auth-tests"
}

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	for _, table := range []string{"auth_sessions", "auth_oauth_provider_configs", "auth_user_oauth_connections"} {
		var tableName string
		if err := client.DB().NewRaw(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
			table,
		).Scan(context.Background(), &tableName); err != nil {
			t.Fatalf("query sqlite master for %s: %v", table, err)
		}
		if tableName != table {
			t.Fatalf("expected table %s after migrations, got %q", table, tableName)
		}
	}
}

func TestSessionStore_RoundTrip(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("build repository factory: %v", err)
	}
	store := factory.SessionStore()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	created, err := store.Create(ctx, core.CreateSessionInput{
		RefreshToken: "token-round-trip",
		UserID:       "user-1",
		DeviceInfo:   "Chrome on Mac OS",
		IPAddress:    "203.0.113.7",
		UserAgent:    "Mozilla/5.0",
		ExpiresAt:    now.Add(time.Hour),
	}, now)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated session id")
	}
	if !created.IsActive {
		t.Fatalf("expected new session to be active")
	}

	found, ok, err := store.GetByRefreshToken(ctx, "token-round-trip")
	if err != nil {
		t.Fatalf("get by refresh token: %v", err)
	}
	if !ok {
		t.Fatalf("expected session lookup hit")
	}
	if found.ID != created.ID {
		t.Fatalf("expected session %s, got %s", created.ID, found.ID)
	}
	if found.DeviceInfo != "Chrome on Mac OS" {
		t.Fatalf("unexpected device info %q", found.DeviceInfo)
	}

	if _, ok, err := store.GetByRefreshToken(ctx, "no-such-token"); err != nil {
		t.Fatalf("get missing token: %v", err)
	} else if ok {
		t.Fatalf("expected miss for unknown refresh token")
	}

	touchAt := now.Add(10 * time.Minute)
	if err := store.SetLastUsed(ctx, created.ID, touchAt); err != nil {
		t.Fatalf("set last used: %v", err)
	}
	touched, _, err := store.GetByRefreshToken(ctx, "token-round-trip")
	if err != nil {
		t.Fatalf("reload touched session: %v", err)
	}
	if touched.LastUsedAt.Unix() != touchAt.Unix() {
		t.Fatalf("expected last_used_at %v, got %v", touchAt, touched.LastUsedAt)
	}

	if err := store.SetLastUsed(ctx, "missing-session", touchAt); err == nil {
		t.Fatalf("expected error touching unknown session")
	}

	if err := store.Deactivate(ctx, created.ID, touchAt); err != nil {
		t.Fatalf("deactivate session: %v", err)
	}
	if err := store.Deactivate(ctx, created.ID, touchAt); err != nil {
		t.Fatalf("expected repeated deactivate to succeed: %v", err)
	}
	deactivated, _, err := store.GetByRefreshToken(ctx, "token-round-trip")
	if err != nil {
		t.Fatalf("reload deactivated session: %v", err)
	}
	if deactivated.IsActive {
		t.Fatalf("expected session to be inactive after deactivate")
	}
}

func TestSessionStore_BulkDeactivation(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("build repository factory: %v", err)
	}
	store := factory.SessionStore()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	seedSession := func(token, userID string, expiresAt time.Time) core.Session {
		t.Helper()
		session, err := store.Create(ctx, core.CreateSessionInput{
			RefreshToken: token,
			UserID:       userID,
			ExpiresAt:    expiresAt,
		}, now)
		if err != nil {
			t.Fatalf("seed session %s: %v", token, err)
		}
		return session
	}

	seedSession("bulk-a", "user-bulk", now.Add(time.Hour))
	seedSession("bulk-b", "user-bulk", now.Add(2*time.Hour))
	other := seedSession("bulk-other", "user-other", now.Add(time.Hour))

	active, err := store.ListActiveForUser(ctx, "user-bulk")
	if err != nil {
		t.Fatalf("list active sessions: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active sessions, got %d", len(active))
	}

	affected, err := store.DeactivateAllForUser(ctx, "user-bulk", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("deactivate all for user: %v", err)
	}
	if affected != 2 {
		t.Fatalf("expected 2 deactivated sessions, got %d", affected)
	}

	again, err := store.DeactivateAllForUser(ctx, "user-bulk", now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("repeat deactivate all: %v", err)
	}
	if again != 0 {
		t.Fatalf("expected no rows on repeat deactivation, got %d", again)
	}

	deactivated, err := store.ListActiveForUser(ctx, "user-bulk")
	if err != nil {
		t.Fatalf("list deactivated user's sessions: %v", err)
	}
	if len(deactivated) != 0 {
		t.Fatalf("expected no active sessions after bulk deactivation, got %d", len(deactivated))
	}

	remaining, err := store.ListActiveForUser(ctx, "user-other")
	if err != nil {
		t.Fatalf("list other user's sessions: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != other.ID {
		t.Fatalf("expected other user's session untouched, got %+v", remaining)
	}

	seedSession("bulk-expired", "user-cleanup", now.Add(-time.Hour))
	seedSession("bulk-live", "user-cleanup", now.Add(time.Hour))

	cleaned, err := store.DeactivateExpired(ctx, now)
	if err != nil {
		t.Fatalf("deactivate expired: %v", err)
	}
	if cleaned != 1 {
		t.Fatalf("expected 1 expired session deactivated, got %d", cleaned)
	}

	recleaned, err := store.DeactivateExpired(ctx, now)
	if err != nil {
		t.Fatalf("repeat deactivate expired: %v", err)
	}
	if recleaned != 0 {
		t.Fatalf("expected repeat expiry sweep to deactivate nothing, got %d", recleaned)
	}

	live, err := store.ListActiveForUser(ctx, "user-cleanup")
	if err != nil {
		t.Fatalf("list cleanup user's sessions: %v", err)
	}
	if len(live) != 1 || live[0].RefreshToken != "bulk-live" {
		t.Fatalf("expected only the unexpired session to stay active, got %+v", live)
	}
}

func TestProviderConfigStore_CRUD(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("build repository factory: %v", err)
	}
	store := factory.ProviderConfigStore()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	created, err := store.Create(ctx, "ws-1", core.ProviderConfigInput{
		Provider:              core.ProviderGoogle,
		Enabled:               true,
		ClientID:              "client-abc",
		EncryptedClientSecret: "sealed-secret",
	}, now)
	if err != nil {
		t.Fatalf("create provider config: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated config id")
	}

	byID, ok, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if !ok || byID.ClientID != "client-abc" {
		t.Fatalf("unexpected config by id: ok=%v config=%+v", ok, byID)
	}

	if _, ok, err := store.GetByID(ctx, "missing-config"); err != nil {
		t.Fatalf("get missing config: %v", err)
	} else if ok {
		t.Fatalf("expected miss for unknown config id")
	}

	byPair, ok, err := store.FindByWorkspaceAndProvider(ctx, "ws-1", core.ProviderGoogle)
	if err != nil {
		t.Fatalf("find by workspace and provider: %v", err)
	}
	if !ok || byPair.ID != created.ID {
		t.Fatalf("unexpected pair lookup: ok=%v config=%+v", ok, byPair)
	}

	if _, ok, err := store.FindByWorkspaceAndProvider(ctx, "ws-1", core.ProviderMicrosoft); err != nil {
		t.Fatalf("find unconfigured provider: %v", err)
	} else if ok {
		t.Fatalf("expected miss for unconfigured provider")
	}

	if _, err := store.Create(ctx, "ws-1", core.ProviderConfigInput{
		Provider:              core.ProviderMicrosoft,
		ClientID:              "client-ms",
		EncryptedClientSecret: "sealed-ms",
		TenantID:              "common",
	}, now); err != nil {
		t.Fatalf("create second provider config: %v", err)
	}
	listed, err := store.ListByWorkspace(ctx, "ws-1")
	if err != nil {
		t.Fatalf("list by workspace: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 workspace configs, got %d", len(listed))
	}

	disabled := false
	newClientID := "client-rotated"
	updated, err := store.Update(ctx, created.ID, core.ProviderConfigUpdate{
		Enabled:  &disabled,
		ClientID: &newClientID,
	}, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("update provider config: %v", err)
	}
	if updated.Enabled {
		t.Fatalf("expected config disabled after update")
	}
	if updated.ClientID != "client-rotated" {
		t.Fatalf("expected rotated client id, got %q", updated.ClientID)
	}
	if updated.EncryptedClientSecret != "sealed-secret" {
		t.Fatalf("expected omitted secret to be preserved, got %q", updated.EncryptedClientSecret)
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete provider config: %v", err)
	}
	if _, ok, err := store.GetByID(ctx, created.ID); err != nil {
		t.Fatalf("get deleted config: %v", err)
	} else if ok {
		t.Fatalf("expected config gone after delete")
	}
	if err := store.Delete(ctx, created.ID); err == nil {
		t.Fatalf("expected error deleting already-deleted config")
	}
}

func TestUserConnectionStore_CRUD(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("build repository factory: %v", err)
	}
	store := factory.ConnectionStore()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	tokenExpiry := now.Add(45 * time.Minute)

	created, err := store.Create(ctx, "user-1", "ws-1", core.Connection{
		Provider:              core.ProviderGoogle,
		EncryptedAccessToken:  "sealed-access",
		EncryptedRefreshToken: "sealed-refresh",
		TokenExpiresAt:        &tokenExpiry,
		Scopes:                []string{"email", "calendar"},
		AccountEmail:          "person@example.com",
		AccountName:           "Person Example",
	}, now)
	if err != nil {
		t.Fatalf("create connection: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated connection id")
	}
	if created.TokenExpiresAt == nil || created.TokenExpiresAt.Unix() != tokenExpiry.Unix() {
		t.Fatalf("unexpected token expiry %v", created.TokenExpiresAt)
	}

	byID, ok, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get connection by id: %v", err)
	}
	if !ok || byID.AccountEmail != "person@example.com" {
		t.Fatalf("unexpected connection by id: ok=%v connection=%+v", ok, byID)
	}
	if len(byID.Scopes) != 2 || byID.Scopes[0] != "email" {
		t.Fatalf("unexpected scopes %v", byID.Scopes)
	}

	byProvider, err := store.ListByProvider(ctx, core.ProviderGoogle)
	if err != nil {
		t.Fatalf("list by provider: %v", err)
	}
	if len(byProvider) != 1 || byProvider[0].ID != created.ID {
		t.Fatalf("unexpected provider listing %+v", byProvider)
	}

	newAccess := "sealed-access-2"
	newScopes := []string{"email"}
	var clearedExpiry *time.Time
	updated, err := store.Update(ctx, created.ID, core.ConnectionUpdate{
		EncryptedAccessToken: &newAccess,
		Scopes:               &newScopes,
		TokenExpiresAt:       &clearedExpiry,
	}, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("update connection: %v", err)
	}
	if updated.EncryptedAccessToken != "sealed-access-2" {
		t.Fatalf("expected re-sealed access token, got %q", updated.EncryptedAccessToken)
	}
	if updated.EncryptedRefreshToken != "sealed-refresh" {
		t.Fatalf("expected omitted refresh token preserved, got %q", updated.EncryptedRefreshToken)
	}
	if updated.TokenExpiresAt != nil {
		t.Fatalf("expected token expiry cleared, got %v", updated.TokenExpiresAt)
	}
	if len(updated.Scopes) != 1 || updated.Scopes[0] != "email" {
		t.Fatalf("unexpected narrowed scopes %v", updated.Scopes)
	}

	touchAt := now.Add(30 * time.Minute)
	if err := store.SetLastUsed(ctx, created.ID, touchAt); err != nil {
		t.Fatalf("set connection last used: %v", err)
	}
	touched, _, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("reload touched connection: %v", err)
	}
	if touched.LastUsedAt.Unix() != touchAt.Unix() {
		t.Fatalf("expected last_used_at %v, got %v", touchAt, touched.LastUsedAt)
	}

	owned, err := store.ListOwned(ctx)
	if err != nil {
		t.Fatalf("list owned connections: %v", err)
	}
	if len(owned) != 1 {
		t.Fatalf("expected 1 owned connection, got %d", len(owned))
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete connection: %v", err)
	}
	if _, ok, err := store.GetByID(ctx, created.ID); err != nil {
		t.Fatalf("get deleted connection: %v", err)
	} else if ok {
		t.Fatalf("expected connection gone after delete")
	}
	if err := store.Delete(ctx, created.ID); err == nil {
		t.Fatalf("expected error deleting already-deleted connection")
	}
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:auth-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{
		driver: "sqlite3",
		server: dsn,
	}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	_, err = authmigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != authmigrations.DialectSQLite {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, authmigrations.WithValidationTargets(authmigrations.DialectSQLite))
	if err != nil {
		_ = client.Close()
		t.Fatalf("register migrations: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	return client, func() {
		_ = client.Close()
	}
}
