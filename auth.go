package auth

import "github.com/AlpinAI/2ly-sub007/core"

type Config = core.Config

type SessionConfig = core.SessionConfig

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type SessionStore = core.SessionStore
type ProviderConfigStore = core.ProviderConfigStore
type ConnectionStore = core.ConnectionStore
type SecretProvider = core.SecretProvider
type UpsertLocker = core.UpsertLocker
type Clock = core.Clock

type Provider = core.Provider
type Session = core.Session
type ProviderConfig = core.ProviderConfig
type ProviderConfigRef = core.ProviderConfigRef
type Connection = core.Connection
type DecryptedTokens = core.DecryptedTokens

type CreateSessionRequest = core.CreateSessionRequest

type ConfigureProviderRequest = core.ConfigureProviderRequest
type ConfigureProviderResult = core.ConfigureProviderResult

type UpdateConnectionRequest = core.UpdateConnectionRequest

const (
	ProviderGoogle    = core.ProviderGoogle
	ProviderMicrosoft = core.ProviderMicrosoft
)

var (
	WithLogger              = core.WithLogger
	WithLoggerProvider      = core.WithLoggerProvider
	WithMetricsRecorder     = core.WithMetricsRecorder
	WithErrorFactory        = core.WithErrorFactory
	WithErrorMapper         = core.WithErrorMapper
	WithSecretProvider      = core.WithSecretProvider
	WithPersistenceClient   = core.WithPersistenceClient
	WithRepositoryFactory   = core.WithRepositoryFactory
	WithConfigProvider      = core.WithConfigProvider
	WithOptionsResolver     = core.WithOptionsResolver
	WithUpsertLocker        = core.WithUpsertLocker
	WithClock               = core.WithClock
	WithSessionStore        = core.WithSessionStore
	WithProviderConfigStore = core.WithProviderConfigStore
	WithConnectionStore     = core.WithConnectionStore
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}

func ParseProvider(value string) (Provider, error) {
	return core.ParseProvider(value)
}
