package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/AlpinAI/2ly-sub007/core"
)

// UserConnectionStore persists per-user OAuth connections. The finders here
// filter on at most one column; narrowing a (user, workspace) or
// (user, workspace, provider) pair is done by the caller, matching the
// persistence contract the service is written against.
type UserConnectionStore struct {
	db   *bun.DB
	repo repository.Repository[*userConnectionRecord]
}

func (s *UserConnectionStore) Create(ctx context.Context, userID, workspaceID string, record core.Connection, now time.Time) (core.Connection, error) {
	if s == nil || s.repo == nil {
		return core.Connection{}, fmt.Errorf("sqlstore: user connection store is not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return core.Connection{}, fmt.Errorf("sqlstore: user id is required")
	}
	if strings.TrimSpace(workspaceID) == "" {
		return core.Connection{}, fmt.Errorf("sqlstore: workspace id is required")
	}
	if strings.TrimSpace(record.EncryptedAccessToken) == "" {
		return core.Connection{}, fmt.Errorf("sqlstore: encrypted access token is required")
	}

	created, err := s.repo.Create(ctx, newUserConnectionRecord(
		strings.TrimSpace(userID), strings.TrimSpace(workspaceID), record, now.UTC(),
	))
	if err != nil {
		return core.Connection{}, err
	}
	return created.toDomain(), nil
}

func (s *UserConnectionStore) GetByID(ctx context.Context, id string) (core.Connection, bool, error) {
	if s == nil || s.repo == nil {
		return core.Connection{}, false, fmt.Errorf("sqlstore: user connection store is not configured")
	}
	record, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if isNotFound(err) {
			return core.Connection{}, false, nil
		}
		return core.Connection{}, false, err
	}
	return record.toDomain(), true, nil
}

func (s *UserConnectionStore) ListOwned(ctx context.Context) ([]core.Connection, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: user connection store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}
	return connectionRecordsToDomain(records), nil
}

func (s *UserConnectionStore) ListByProvider(ctx context.Context, provider core.Provider) ([]core.Connection, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: user connection store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("provider", "=", string(provider)),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}
	return connectionRecordsToDomain(records), nil
}

func (s *UserConnectionStore) Update(ctx context.Context, id string, update core.ConnectionUpdate, now time.Time) (core.Connection, error) {
	if s == nil || s.repo == nil {
		return core.Connection{}, fmt.Errorf("sqlstore: user connection store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return core.Connection{}, fmt.Errorf("sqlstore: connection id is required")
	}
	current, err := s.repo.GetByID(ctx, trimmedID)
	if err != nil {
		return core.Connection{}, err
	}

	if update.EncryptedAccessToken != nil {
		current.EncryptedAccessToken = *update.EncryptedAccessToken
	}
	if update.EncryptedRefreshToken != nil {
		current.EncryptedRefreshToken = *update.EncryptedRefreshToken
	}
	if update.TokenExpiresAt != nil {
		if inner := *update.TokenExpiresAt; inner != nil {
			expiresAt := inner.UTC()
			current.TokenExpiresAt = &expiresAt
		} else {
			current.TokenExpiresAt = nil
		}
	}
	if update.Scopes != nil {
		current.Scopes = append([]string(nil), (*update.Scopes)...)
		if current.Scopes == nil {
			current.Scopes = []string{}
		}
	}
	if update.AccountEmail != nil {
		current.AccountEmail = *update.AccountEmail
	}
	if update.AccountName != nil {
		current.AccountName = *update.AccountName
	}
	if update.AccountAvatarURL != nil {
		current.AccountAvatarURL = *update.AccountAvatarURL
	}
	if update.ProviderAccountID != nil {
		current.ProviderAccountID = *update.ProviderAccountID
	}
	current.UpdatedAt = now.UTC()

	updated, err := s.repo.Update(ctx, current, repository.UpdateByID(trimmedID))
	if err != nil {
		return core.Connection{}, err
	}
	return updated.toDomain(), nil
}

func (s *UserConnectionStore) SetLastUsed(ctx context.Context, id string, at time.Time) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: user connection store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return fmt.Errorf("sqlstore: connection id is required")
	}
	res, err := s.db.NewUpdate().
		Model((*userConnectionRecord)(nil)).
		Set("last_used_at = ?", at.UTC()).
		Where("id = ?", trimmedID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("sqlstore: connection %s not found", trimmedID)
	}
	return nil
}

func (s *UserConnectionStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: user connection store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return fmt.Errorf("sqlstore: connection id is required")
	}
	res, err := s.db.NewDelete().
		Model((*userConnectionRecord)(nil)).
		Where("id = ?", trimmedID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("sqlstore: connection %s not found", trimmedID)
	}
	return nil
}

func connectionRecordsToDomain(records []*userConnectionRecord) []core.Connection {
	out := make([]core.Connection, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out
}
