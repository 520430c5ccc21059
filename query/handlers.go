package query

import (
	"context"

	"github.com/AlpinAI/2ly-sub007/core"
)

type SessionReader interface {
	FindSessionByRefreshToken(ctx context.Context, refreshToken string) (*core.Session, error)
	GetUserActiveSessions(ctx context.Context, userID string) ([]core.Session, error)
}

type ProviderConfigReader interface {
	GetWorkspaceProviderConfigs(ctx context.Context, workspaceID string) ([]core.ProviderConfig, error)
	FindProviderConfigByType(ctx context.Context, workspaceID string, provider core.Provider) (*core.ProviderConfig, error)
}

type ConnectionReader interface {
	FindUserConnections(ctx context.Context, userID, workspaceID string) ([]core.Connection, error)
	HasConnection(ctx context.Context, userID, workspaceID string, provider core.Provider) (bool, error)
	GetDelegatedTokens(ctx context.Context, userID, workspaceID string, provider core.Provider) (*core.DecryptedTokens, error)
}

type FindSessionQuery struct {
	reader SessionReader
}

func NewFindSessionQuery(reader SessionReader) *FindSessionQuery {
	return &FindSessionQuery{reader: reader}
}

func (q *FindSessionQuery) Query(ctx context.Context, msg FindSessionMessage) (*core.Session, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: session reader is required")
	}
	return q.reader.FindSessionByRefreshToken(ctx, msg.RefreshToken)
}

type ListActiveSessionsQuery struct {
	reader SessionReader
}

func NewListActiveSessionsQuery(reader SessionReader) *ListActiveSessionsQuery {
	return &ListActiveSessionsQuery{reader: reader}
}

func (q *ListActiveSessionsQuery) Query(ctx context.Context, msg ListActiveSessionsMessage) ([]core.Session, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: session reader is required")
	}
	return q.reader.GetUserActiveSessions(ctx, msg.UserID)
}

type ListProviderConfigsQuery struct {
	reader ProviderConfigReader
}

func NewListProviderConfigsQuery(reader ProviderConfigReader) *ListProviderConfigsQuery {
	return &ListProviderConfigsQuery{reader: reader}
}

func (q *ListProviderConfigsQuery) Query(ctx context.Context, msg ListProviderConfigsMessage) ([]core.ProviderConfig, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: provider config reader is required")
	}
	return q.reader.GetWorkspaceProviderConfigs(ctx, msg.WorkspaceID)
}

type FindProviderConfigQuery struct {
	reader ProviderConfigReader
}

func NewFindProviderConfigQuery(reader ProviderConfigReader) *FindProviderConfigQuery {
	return &FindProviderConfigQuery{reader: reader}
}

func (q *FindProviderConfigQuery) Query(ctx context.Context, msg FindProviderConfigMessage) (*core.ProviderConfig, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: provider config reader is required")
	}
	return q.reader.FindProviderConfigByType(ctx, msg.WorkspaceID, msg.Provider)
}

type ListConnectionsQuery struct {
	reader ConnectionReader
}

func NewListConnectionsQuery(reader ConnectionReader) *ListConnectionsQuery {
	return &ListConnectionsQuery{reader: reader}
}

func (q *ListConnectionsQuery) Query(ctx context.Context, msg ListConnectionsMessage) ([]core.Connection, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: connection reader is required")
	}
	return q.reader.FindUserConnections(ctx, msg.UserID, msg.WorkspaceID)
}

type HasConnectionQuery struct {
	reader ConnectionReader
}

func NewHasConnectionQuery(reader ConnectionReader) *HasConnectionQuery {
	return &HasConnectionQuery{reader: reader}
}

func (q *HasConnectionQuery) Query(ctx context.Context, msg HasConnectionMessage) (bool, error) {
	if q == nil || q.reader == nil {
		return false, queryDependencyError("query: connection reader is required")
	}
	return q.reader.HasConnection(ctx, msg.UserID, msg.WorkspaceID, msg.Provider)
}

// DelegatedTokensQuery returns live plaintext credentials. Callers use them
// for the current request and drop them; nothing downstream may cache them.
type DelegatedTokensQuery struct {
	reader ConnectionReader
}

func NewDelegatedTokensQuery(reader ConnectionReader) *DelegatedTokensQuery {
	return &DelegatedTokensQuery{reader: reader}
}

func (q *DelegatedTokensQuery) Query(ctx context.Context, msg DelegatedTokensMessage) (*core.DecryptedTokens, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: connection reader is required")
	}
	return q.reader.GetDelegatedTokens(ctx, msg.UserID, msg.WorkspaceID, msg.Provider)
}
