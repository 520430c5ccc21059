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

type SessionStore struct {
	db   *bun.DB
	repo repository.Repository[*sessionRecord]
}

func (s *SessionStore) Create(ctx context.Context, in core.CreateSessionInput, now time.Time) (core.Session, error) {
	if s == nil || s.repo == nil {
		return core.Session{}, fmt.Errorf("sqlstore: session store is not configured")
	}
	if strings.TrimSpace(in.RefreshToken) == "" {
		return core.Session{}, fmt.Errorf("sqlstore: refresh token is required")
	}
	if strings.TrimSpace(in.UserID) == "" {
		return core.Session{}, fmt.Errorf("sqlstore: user id is required")
	}

	created, err := s.repo.Create(ctx, newSessionRecord(in, now.UTC()))
	if err != nil {
		return core.Session{}, err
	}
	return created.toDomain(), nil
}

func (s *SessionStore) GetByRefreshToken(ctx context.Context, refreshToken string) (core.Session, bool, error) {
	if s == nil || s.repo == nil {
		return core.Session{}, false, fmt.Errorf("sqlstore: session store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("refresh_token", "=", strings.TrimSpace(refreshToken)),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.Session{}, false, err
	}
	if len(records) == 0 {
		return core.Session{}, false, nil
	}
	return records[0].toDomain(), true, nil
}

func (s *SessionStore) SetLastUsed(ctx context.Context, id string, at time.Time) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: session store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return fmt.Errorf("sqlstore: session id is required")
	}
	res, err := s.db.NewUpdate().
		Model((*sessionRecord)(nil)).
		Set("last_used_at = ?", at.UTC()).
		Where("id = ?", trimmedID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("sqlstore: session %s not found", trimmedID)
	}
	return nil
}

func (s *SessionStore) Deactivate(ctx context.Context, id string, at time.Time) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: session store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return fmt.Errorf("sqlstore: session id is required")
	}
	// Idempotent: deactivating an already-inactive session rewrites the
	// same false value.
	res, err := s.db.NewUpdate().
		Model((*sessionRecord)(nil)).
		Set("is_active = ?", false).
		Set("last_used_at = ?", at.UTC()).
		Where("id = ?", trimmedID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("sqlstore: session %s not found", trimmedID)
	}
	return nil
}

func (s *SessionStore) DeactivateAllForUser(ctx context.Context, userID string, at time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: session store is not configured")
	}
	trimmedUserID := strings.TrimSpace(userID)
	if trimmedUserID == "" {
		return 0, fmt.Errorf("sqlstore: user id is required")
	}
	res, err := s.db.NewUpdate().
		Model((*sessionRecord)(nil)).
		Set("is_active = ?", false).
		Set("last_used_at = ?", at.UTC()).
		Where("user_id = ?", trimmedUserID).
		Where("is_active = ?", true).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func (s *SessionStore) ListActiveForUser(ctx context.Context, userID string) ([]core.Session, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: session store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("user_id", "=", strings.TrimSpace(userID)),
		repository.SelectBy("is_active", "=", "1"),
		repository.OrderBy("last_used_at DESC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.Session, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *SessionStore) DeactivateExpired(ctx context.Context, before time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: session store is not configured")
	}
	res, err := s.db.NewUpdate().
		Model((*sessionRecord)(nil)).
		Set("is_active = ?", false).
		Where("expires_at < ?", before.UTC()).
		Where("is_active = ?", true).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}
