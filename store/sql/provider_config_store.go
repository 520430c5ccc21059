package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/AlpinAI/2ly-sub007/core"
)

type ProviderConfigStore struct {
	db   *bun.DB
	repo repository.Repository[*providerConfigRecord]
}

func (s *ProviderConfigStore) Create(ctx context.Context, workspaceID string, in core.ProviderConfigInput, now time.Time) (core.ProviderConfig, error) {
	if s == nil || s.repo == nil {
		return core.ProviderConfig{}, fmt.Errorf("sqlstore: provider config store is not configured")
	}
	if strings.TrimSpace(workspaceID) == "" {
		return core.ProviderConfig{}, fmt.Errorf("sqlstore: workspace id is required")
	}
	if strings.TrimSpace(string(in.Provider)) == "" {
		return core.ProviderConfig{}, fmt.Errorf("sqlstore: provider is required")
	}

	created, err := s.repo.Create(ctx, newProviderConfigRecord(strings.TrimSpace(workspaceID), in, now.UTC()))
	if err != nil {
		return core.ProviderConfig{}, err
	}
	return created.toDomain(), nil
}

func (s *ProviderConfigStore) GetByID(ctx context.Context, id string) (core.ProviderConfig, bool, error) {
	if s == nil || s.repo == nil {
		return core.ProviderConfig{}, false, fmt.Errorf("sqlstore: provider config store is not configured")
	}
	record, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if isNotFound(err) {
			return core.ProviderConfig{}, false, nil
		}
		return core.ProviderConfig{}, false, err
	}
	return record.toDomain(), true, nil
}

func (s *ProviderConfigStore) ListByWorkspace(ctx context.Context, workspaceID string) ([]core.ProviderConfig, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: provider config store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("workspace_id", "=", strings.TrimSpace(workspaceID)),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.ProviderConfig, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *ProviderConfigStore) FindByWorkspaceAndProvider(ctx context.Context, workspaceID string, provider core.Provider) (core.ProviderConfig, bool, error) {
	if s == nil || s.repo == nil {
		return core.ProviderConfig{}, false, fmt.Errorf("sqlstore: provider config store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("workspace_id", "=", strings.TrimSpace(workspaceID)),
		repository.SelectBy("provider", "=", string(provider)),
		repository.OrderBy("created_at ASC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.ProviderConfig{}, false, err
	}
	if len(records) == 0 {
		return core.ProviderConfig{}, false, nil
	}
	return records[0].toDomain(), true, nil
}

func (s *ProviderConfigStore) Update(ctx context.Context, id string, update core.ProviderConfigUpdate, now time.Time) (core.ProviderConfig, error) {
	if s == nil || s.repo == nil {
		return core.ProviderConfig{}, fmt.Errorf("sqlstore: provider config store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return core.ProviderConfig{}, fmt.Errorf("sqlstore: provider config id is required")
	}
	current, err := s.repo.GetByID(ctx, trimmedID)
	if err != nil {
		return core.ProviderConfig{}, err
	}

	if update.Enabled != nil {
		current.Enabled = *update.Enabled
	}
	if update.ClientID != nil {
		current.ClientID = *update.ClientID
	}
	if update.EncryptedClientSecret != nil {
		current.EncryptedClientSecret = *update.EncryptedClientSecret
	}
	if update.TenantID != nil {
		current.TenantID = *update.TenantID
	}
	current.UpdatedAt = now.UTC()

	updated, err := s.repo.Update(ctx, current, repository.UpdateByID(trimmedID))
	if err != nil {
		return core.ProviderConfig{}, err
	}
	return updated.toDomain(), nil
}

func (s *ProviderConfigStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: provider config store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return fmt.Errorf("sqlstore: provider config id is required")
	}
	res, err := s.db.NewDelete().
		Model((*providerConfigRecord)(nil)).
		Where("id = ?", trimmedID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("sqlstore: provider config %s not found", trimmedID)
	}
	return nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found") ||
		strings.Contains(strings.ToLower(err.Error()), "no rows")
}
