package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// Clock abstracts time for deterministic expiry tests.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

func SystemClock() Clock {
	return ClockFunc(func() time.Time { return time.Now().UTC() })
}

// SecretProvider is the credential cipher capability. Implementations are
// synchronous and perform no I/O; production backs this with an authenticated
// symmetric cipher keyed from externally loaded configuration.
type SecretProvider interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type CreateSessionInput struct {
	RefreshToken string
	UserID       string
	DeviceInfo   string
	IPAddress    string
	UserAgent    string
	ExpiresAt    time.Time
}

// SessionStore is the persistence surface for sessions. Finders expose at
// most one exact-field filter plus one owning-relation filter; anything
// narrower is the application layer's job.
type SessionStore interface {
	Create(ctx context.Context, in CreateSessionInput, now time.Time) (Session, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (Session, bool, error)
	SetLastUsed(ctx context.Context, id string, at time.Time) error
	Deactivate(ctx context.Context, id string, at time.Time) error
	DeactivateAllForUser(ctx context.Context, userID string, at time.Time) (int, error)
	ListActiveForUser(ctx context.Context, userID string) ([]Session, error)
	DeactivateExpired(ctx context.Context, before time.Time) (int, error)
}

// ProviderConfigInput carries an already-encrypted client secret.
type ProviderConfigInput struct {
	Provider              Provider
	Enabled               bool
	ClientID              string
	EncryptedClientSecret string
	TenantID              string
}

// ProviderConfigUpdate is a partial update: nil fields preserve the stored
// value server-side, they never clear it.
type ProviderConfigUpdate struct {
	Enabled               *bool
	ClientID              *string
	EncryptedClientSecret *string
	TenantID              *string
}

type ProviderConfigStore interface {
	Create(ctx context.Context, workspaceID string, in ProviderConfigInput, now time.Time) (ProviderConfig, error)
	GetByID(ctx context.Context, id string) (ProviderConfig, bool, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]ProviderConfig, error)
	FindByWorkspaceAndProvider(ctx context.Context, workspaceID string, provider Provider) (ProviderConfig, bool, error)
	Update(ctx context.Context, id string, update ProviderConfigUpdate, now time.Time) (ProviderConfig, error)
	Delete(ctx context.Context, id string) error
}

// ConnectionInput carries plaintext tokens; the service encrypts before the
// store ever sees them.
type ConnectionInput struct {
	Provider          Provider
	AccessToken       string
	RefreshToken      string
	TokenExpiresAt    *time.Time
	Scopes            []string
	AccountEmail      string
	AccountName       string
	AccountAvatarURL  string
	ProviderAccountID string
}

// ConnectionUpdate follows the same partial semantics as
// ProviderConfigUpdate. Token fields arrive pre-encrypted from the service.
type ConnectionUpdate struct {
	EncryptedAccessToken  *string
	EncryptedRefreshToken *string
	TokenExpiresAt        **time.Time
	Scopes                *[]string
	AccountEmail          *string
	AccountName           *string
	AccountAvatarURL      *string
	ProviderAccountID     *string
}

// ConnectionStore preserves the persistence contract limitation: compound
// (user, workspace) filters are not supported server-side, so the broad
// finders return every row carrying both owner relations and callers narrow
// client-side.
type ConnectionStore interface {
	Create(ctx context.Context, userID, workspaceID string, record Connection, now time.Time) (Connection, error)
	GetByID(ctx context.Context, id string) (Connection, bool, error)
	ListOwned(ctx context.Context) ([]Connection, error)
	ListByProvider(ctx context.Context, provider Provider) ([]Connection, error)
	Update(ctx context.Context, id string, update ConnectionUpdate, now time.Time) (Connection, error)
	SetLastUsed(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// StoreProvider is implemented by repository factories.
type StoreProvider interface {
	SessionStore() SessionStore
	ProviderConfigStore() ProviderConfigStore
	ConnectionStore() ConnectionStore
}

// ValidationResult is the non-thrown outcome of provider config validation.
type ValidationResult struct {
	Valid bool
	Error string
}

// TouchOutcome is the explicitly discardable result of a best-effort
// last-used bump.
type TouchOutcome struct {
	Updated bool
	Err     error
}

// JobExecutionMessage describes a queued maintenance job, mapped onto go-job
// by adapters/gojob.
type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

// JobWorkerEvent mirrors the queue worker lifecycle for observability hooks.
type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}
