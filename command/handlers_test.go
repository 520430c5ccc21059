package command

import (
	"context"
	"errors"
	"testing"
	"time"

	gocmd "github.com/goliatone/go-command"

	"github.com/AlpinAI/2ly-sub007/core"
)

type stubMutatingService struct {
	createSessionFn          func(ctx context.Context, req core.CreateSessionRequest) (core.Session, error)
	deactivateSessionFn      func(ctx context.Context, id string) error
	deactivateUserSessionsFn func(ctx context.Context, userID string) (int, error)
	touchSessionFn           func(ctx context.Context, id string) error
	cleanupSessionsFn        func(ctx context.Context) (int, error)
	configureProviderFn      func(ctx context.Context, req core.ConfigureProviderRequest) (core.ConfigureProviderResult, error)
	setProviderEnabledFn     func(ctx context.Context, id string, enabled bool) (core.ProviderConfig, error)
	deleteProviderConfigFn   func(ctx context.Context, id string) (bool, error)
	createConnectionFn       func(ctx context.Context, userID, workspaceID string, in core.ConnectionInput) (core.Connection, error)
	upsertConnectionFn       func(ctx context.Context, userID, workspaceID string, provider core.Provider, req core.UpdateConnectionRequest) (core.Connection, error)
	deleteConnectionFn       func(ctx context.Context, id string) (bool, error)
}

func (s stubMutatingService) CreateSession(ctx context.Context, req core.CreateSessionRequest) (core.Session, error) {
	return s.createSessionFn(ctx, req)
}

func (s stubMutatingService) DeactivateSession(ctx context.Context, id string) error {
	return s.deactivateSessionFn(ctx, id)
}

func (s stubMutatingService) DeactivateAllUserSessions(ctx context.Context, userID string) (int, error) {
	return s.deactivateUserSessionsFn(ctx, userID)
}

func (s stubMutatingService) UpdateSessionLastUsed(ctx context.Context, id string) error {
	return s.touchSessionFn(ctx, id)
}

func (s stubMutatingService) CleanupExpiredSessions(ctx context.Context) (int, error) {
	return s.cleanupSessionsFn(ctx)
}

func (s stubMutatingService) ConfigureProvider(ctx context.Context, req core.ConfigureProviderRequest) (core.ConfigureProviderResult, error) {
	return s.configureProviderFn(ctx, req)
}

func (s stubMutatingService) UpdateProviderEnabled(ctx context.Context, id string, enabled bool) (core.ProviderConfig, error) {
	return s.setProviderEnabledFn(ctx, id, enabled)
}

func (s stubMutatingService) DeleteProviderConfig(ctx context.Context, id string) (bool, error) {
	return s.deleteProviderConfigFn(ctx, id)
}

func (s stubMutatingService) CreateConnection(ctx context.Context, userID, workspaceID string, in core.ConnectionInput) (core.Connection, error) {
	return s.createConnectionFn(ctx, userID, workspaceID, in)
}

func (s stubMutatingService) UpsertConnection(ctx context.Context, userID, workspaceID string, provider core.Provider, req core.UpdateConnectionRequest) (core.Connection, error) {
	return s.upsertConnectionFn(ctx, userID, workspaceID, provider, req)
}

func (s stubMutatingService) DeleteConnection(ctx context.Context, id string) (bool, error) {
	return s.deleteConnectionFn(ctx, id)
}

func TestCreateSessionCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := core.Session{ID: "sess_1", UserID: "user_1", IsActive: true}
	called := false

	svc := stubMutatingService{
		createSessionFn: func(_ context.Context, req core.CreateSessionRequest) (core.Session, error) {
			called = true
			if req.UserID != "user_1" {
				t.Fatalf("expected user_1, got %q", req.UserID)
			}
			return expected, nil
		},
	}

	cmd := NewCreateSessionCommand(svc)
	collector := gocmd.NewResult[core.Session]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, CreateSessionMessage{Request: core.CreateSessionRequest{
		RefreshToken: "token-1",
		UserID:       "user_1",
		ExpiresAt:    time.Now().Add(time.Hour),
	}})
	if err != nil {
		t.Fatalf("execute create session: %v", err)
	}
	if !called {
		t.Fatalf("expected create session invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.ID != expected.ID || !result.IsActive {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestSessionCommands_DelegateToService(t *testing.T) {
	t.Run("deactivate", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			deactivateSessionFn: func(_ context.Context, id string) error {
				called = true
				if id != "sess_1" {
					t.Fatalf("unexpected session id %q", id)
				}
				return nil
			},
		}
		cmd := NewDeactivateSessionCommand(svc)
		if err := cmd.Execute(context.Background(), DeactivateSessionMessage{SessionID: "sess_1"}); err != nil {
			t.Fatalf("execute deactivate: %v", err)
		}
		if !called {
			t.Fatalf("expected deactivate invocation")
		}
	})

	t.Run("deactivate all stores count", func(t *testing.T) {
		svc := stubMutatingService{
			deactivateUserSessionsFn: func(_ context.Context, userID string) (int, error) {
				if userID != "user_1" {
					t.Fatalf("unexpected user id %q", userID)
				}
				return 3, nil
			},
		}
		cmd := NewDeactivateUserSessionsCommand(svc)
		collector := gocmd.NewResult[int]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := cmd.Execute(ctx, DeactivateUserSessionsMessage{UserID: "user_1"}); err != nil {
			t.Fatalf("execute deactivate all: %v", err)
		}
		count, ok := collector.Load()
		if !ok || count != 3 {
			t.Fatalf("expected stored count 3, got %d ok=%v", count, ok)
		}
	})

	t.Run("touch", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			touchSessionFn: func(_ context.Context, id string) error {
				called = true
				return nil
			},
		}
		cmd := NewTouchSessionCommand(svc)
		if err := cmd.Execute(context.Background(), TouchSessionMessage{SessionID: "sess_1"}); err != nil {
			t.Fatalf("execute touch: %v", err)
		}
		if !called {
			t.Fatalf("expected touch invocation")
		}
	})

	t.Run("cleanup stores count", func(t *testing.T) {
		svc := stubMutatingService{
			cleanupSessionsFn: func(_ context.Context) (int, error) {
				return 7, nil
			},
		}
		cmd := NewCleanupSessionsCommand(svc)
		collector := gocmd.NewResult[int]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := cmd.Execute(ctx, CleanupSessionsMessage{}); err != nil {
			t.Fatalf("execute cleanup: %v", err)
		}
		count, ok := collector.Load()
		if !ok || count != 7 {
			t.Fatalf("expected stored count 7, got %d ok=%v", count, ok)
		}
	})
}

func TestProviderCommands_DelegateToService(t *testing.T) {
	t.Run("configure", func(t *testing.T) {
		expected := core.ConfigureProviderResult{Valid: true, Config: &core.ProviderConfig{ID: "cfg_1"}}
		svc := stubMutatingService{
			configureProviderFn: func(_ context.Context, req core.ConfigureProviderRequest) (core.ConfigureProviderResult, error) {
				if req.WorkspaceID != "ws_1" || req.Provider != core.ProviderGoogle {
					t.Fatalf("unexpected configure payload: %#v", req)
				}
				return expected, nil
			},
		}
		cmd := NewConfigureProviderCommand(svc)
		collector := gocmd.NewResult[core.ConfigureProviderResult]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		err := cmd.Execute(ctx, ConfigureProviderMessage{Request: core.ConfigureProviderRequest{
			WorkspaceID:  "ws_1",
			Provider:     core.ProviderGoogle,
			ClientID:     "client",
			ClientSecret: "secret",
		}})
		if err != nil {
			t.Fatalf("execute configure: %v", err)
		}
		result, ok := collector.Load()
		if !ok || !result.Valid || result.Config.ID != "cfg_1" {
			t.Fatalf("unexpected configure result: %#v ok=%v", result, ok)
		}
	})

	t.Run("set enabled", func(t *testing.T) {
		svc := stubMutatingService{
			setProviderEnabledFn: func(_ context.Context, id string, enabled bool) (core.ProviderConfig, error) {
				if id != "cfg_1" || enabled {
					t.Fatalf("unexpected set enabled payload: %q %v", id, enabled)
				}
				return core.ProviderConfig{ID: id, Enabled: enabled}, nil
			},
		}
		cmd := NewSetProviderEnabledCommand(svc)
		if err := cmd.Execute(context.Background(), SetProviderEnabledMessage{ConfigID: "cfg_1", Enabled: false}); err != nil {
			t.Fatalf("execute set enabled: %v", err)
		}
	})

	t.Run("delete stores outcome", func(t *testing.T) {
		svc := stubMutatingService{
			deleteProviderConfigFn: func(_ context.Context, id string) (bool, error) {
				return id == "cfg_1", nil
			},
		}
		cmd := NewDeleteProviderConfigCommand(svc)
		collector := gocmd.NewResult[bool]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := cmd.Execute(ctx, DeleteProviderConfigMessage{ConfigID: "cfg_1"}); err != nil {
			t.Fatalf("execute delete: %v", err)
		}
		deleted, ok := collector.Load()
		if !ok || !deleted {
			t.Fatalf("expected stored deletion outcome, got %v ok=%v", deleted, ok)
		}
	})
}

func TestConnectionCommands_DelegateToService(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		expected := core.Connection{ID: "conn_1", Provider: core.ProviderGoogle}
		svc := stubMutatingService{
			createConnectionFn: func(_ context.Context, userID, workspaceID string, in core.ConnectionInput) (core.Connection, error) {
				if userID != "user_1" || workspaceID != "ws_1" {
					t.Fatalf("unexpected owner pair: %q %q", userID, workspaceID)
				}
				return expected, nil
			},
		}
		cmd := NewCreateConnectionCommand(svc)
		collector := gocmd.NewResult[core.Connection]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		err := cmd.Execute(ctx, CreateConnectionMessage{
			UserID:      "user_1",
			WorkspaceID: "ws_1",
			Input: core.ConnectionInput{
				Provider:    core.ProviderGoogle,
				AccessToken: "at",
			},
		})
		if err != nil {
			t.Fatalf("execute create connection: %v", err)
		}
		result, ok := collector.Load()
		if !ok || result.ID != "conn_1" {
			t.Fatalf("unexpected connection result: %#v ok=%v", result, ok)
		}
	})

	t.Run("upsert", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			upsertConnectionFn: func(_ context.Context, userID, workspaceID string, provider core.Provider, _ core.UpdateConnectionRequest) (core.Connection, error) {
				called = true
				if provider != core.ProviderMicrosoft {
					t.Fatalf("unexpected provider %q", provider)
				}
				return core.Connection{ID: "conn_2", Provider: provider}, nil
			},
		}
		cmd := NewUpsertConnectionCommand(svc)
		err := cmd.Execute(context.Background(), UpsertConnectionMessage{
			UserID:      "user_1",
			WorkspaceID: "ws_1",
			Provider:    core.ProviderMicrosoft,
		})
		if err != nil {
			t.Fatalf("execute upsert connection: %v", err)
		}
		if !called {
			t.Fatalf("expected upsert invocation")
		}
	})

	t.Run("delete propagates error", func(t *testing.T) {
		wantErr := errors.New("contrived delete failure")
		svc := stubMutatingService{
			deleteConnectionFn: func(_ context.Context, id string) (bool, error) {
				return false, wantErr
			},
		}
		cmd := NewDeleteConnectionCommand(svc)
		err := cmd.Execute(context.Background(), DeleteConnectionMessage{ConnectionID: "conn_1"})
		if !errors.Is(err, wantErr) {
			t.Fatalf("expected delete error, got %v", err)
		}
	})
}

func TestMessages_TypesAreStable(t *testing.T) {
	checks := map[string]string{
		CreateSessionMessage{}.Type():          "auth.command.session.create",
		DeactivateSessionMessage{}.Type():      "auth.command.session.deactivate",
		DeactivateUserSessionsMessage{}.Type(): "auth.command.session.deactivate_all",
		TouchSessionMessage{}.Type():           "auth.command.session.touch",
		CleanupSessionsMessage{}.Type():        "auth.command.session.cleanup",
		ConfigureProviderMessage{}.Type():      "auth.command.provider.configure",
		SetProviderEnabledMessage{}.Type():     "auth.command.provider.set_enabled",
		DeleteProviderConfigMessage{}.Type():   "auth.command.provider.delete",
		CreateConnectionMessage{}.Type():       "auth.command.connection.create",
		UpsertConnectionMessage{}.Type():       "auth.command.connection.upsert",
		DeleteConnectionMessage{}.Type():       "auth.command.connection.delete",
	}
	for got, want := range checks {
		if got != want {
			t.Fatalf("expected message type %q, got %q", want, got)
		}
	}
}
