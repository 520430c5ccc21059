package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// CreateSessionRequest is produced by the external login/register flow. When
// ExpiresAt is zero the configured session TTL applies; when DeviceInfo is
// blank it is derived from the user agent and address.
type CreateSessionRequest struct {
	RefreshToken string
	UserID       string
	DeviceInfo   string
	IPAddress    string
	UserAgent    string
	ExpiresAt    time.Time
}

func (s *Service) CreateSession(ctx context.Context, req CreateSessionRequest) (session Session, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"user_id": req.UserID}
	defer func() { s.observeOperation(ctx, startedAt, "session.create", err, fields) }()

	if s == nil || s.sessionStore == nil {
		return Session{}, s.mapError(fmt.Errorf("core: session store is not configured"))
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		return Session{}, s.mapError(fmt.Errorf("core: refresh token is required"))
	}
	if strings.TrimSpace(req.UserID) == "" {
		return Session{}, s.mapError(fmt.Errorf("core: user id is required"))
	}

	now := s.timeNow()
	expiresAt := req.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now.Add(s.config.Session.TTL)
	}
	deviceInfo := strings.TrimSpace(req.DeviceInfo)
	if deviceInfo == "" {
		deviceInfo = GenerateDeviceInfo(req.UserAgent, req.IPAddress)
	}

	created, storeErr := s.sessionStore.Create(ctx, CreateSessionInput{
		RefreshToken: req.RefreshToken,
		UserID:       req.UserID,
		DeviceInfo:   deviceInfo,
		IPAddress:    req.IPAddress,
		UserAgent:    req.UserAgent,
		ExpiresAt:    expiresAt,
	}, now)
	if storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgCreateSessionFailed, fields)
		return Session{}, err
	}
	return created, nil
}

// FindSessionByRefreshToken resolves a refresh token to its session. An
// expired session is deactivated on first sight and reported as absent, so
// callers never observe a session past its expiry even before the scheduled
// cleanup runs. A session expiring exactly at the lookup instant is still
// returned.
func (s *Service) FindSessionByRefreshToken(ctx context.Context, refreshToken string) (session *Session, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() { s.observeOperation(ctx, startedAt, "session.find_by_refresh_token", err, fields) }()

	if s == nil || s.sessionStore == nil {
		return nil, s.mapError(fmt.Errorf("core: session store is not configured"))
	}
	if strings.TrimSpace(refreshToken) == "" {
		return nil, s.mapError(fmt.Errorf("core: refresh token is required"))
	}

	found, ok, storeErr := s.sessionStore.GetByRefreshToken(ctx, refreshToken)
	if storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgFindSessionFailed, fields)
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	fields["user_id"] = found.UserID

	now := s.timeNow()
	if IsSessionExpired(found, now) {
		if found.IsActive {
			if deactivateErr := s.sessionStore.Deactivate(ctx, found.ID, now); deactivateErr != nil {
				// Lazy deactivation is idempotent and retried on the next
				// lookup; the expired session stays hidden either way.
				s.logError(ctx, "lazy session deactivation failed", map[string]any{
					"session_id": found.ID,
					"error":      deactivateErr.Error(),
				})
			}
		}
		return nil, nil
	}
	return &found, nil
}

func (s *Service) UpdateSessionLastUsed(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"session_id": id}
	defer func() { s.observeOperation(ctx, startedAt, "session.update_last_used", err, fields) }()

	if s == nil || s.sessionStore == nil {
		return s.mapError(fmt.Errorf("core: session store is not configured"))
	}
	if strings.TrimSpace(id) == "" {
		return s.mapError(fmt.Errorf("core: session id is required"))
	}
	if storeErr := s.sessionStore.SetLastUsed(ctx, id, s.timeNow()); storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgUpdateSessionFailed, fields)
		return err
	}
	return nil
}

// DeactivateSession performs single-session logout.
func (s *Service) DeactivateSession(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"session_id": id}
	defer func() { s.observeOperation(ctx, startedAt, "session.deactivate", err, fields) }()

	if s == nil || s.sessionStore == nil {
		return s.mapError(fmt.Errorf("core: session store is not configured"))
	}
	if strings.TrimSpace(id) == "" {
		return s.mapError(fmt.Errorf("core: session id is required"))
	}
	if storeErr := s.sessionStore.Deactivate(ctx, id, s.timeNow()); storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgDeactivateSessionFailed, fields)
		return err
	}
	return nil
}

// DeactivateAllUserSessions performs logout-everywhere for a user.
func (s *Service) DeactivateAllUserSessions(ctx context.Context, userID string) (count int, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"user_id": userID}
	defer func() { s.observeOperation(ctx, startedAt, "session.deactivate_all", err, fields) }()

	if s == nil || s.sessionStore == nil {
		return 0, s.mapError(fmt.Errorf("core: session store is not configured"))
	}
	if strings.TrimSpace(userID) == "" {
		return 0, s.mapError(fmt.Errorf("core: user id is required"))
	}
	affected, storeErr := s.sessionStore.DeactivateAllForUser(ctx, userID, s.timeNow())
	if storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgDeactivateSessionFailed, fields)
		return 0, err
	}
	return affected, nil
}

// GetUserActiveSessions lists active sessions for device-management UIs.
func (s *Service) GetUserActiveSessions(ctx context.Context, userID string) (sessions []Session, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"user_id": userID}
	defer func() { s.observeOperation(ctx, startedAt, "session.list_active", err, fields) }()

	if s == nil || s.sessionStore == nil {
		return nil, s.mapError(fmt.Errorf("core: session store is not configured"))
	}
	if strings.TrimSpace(userID) == "" {
		return nil, s.mapError(fmt.Errorf("core: user id is required"))
	}
	listed, storeErr := s.sessionStore.ListActiveForUser(ctx, userID)
	if storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgFindSessionFailed, fields)
		return nil, err
	}
	return listed, nil
}

// CleanupExpiredSessions bulk-deactivates every session past its expiry and
// returns the number of rows affected. It is intended for scheduled
// execution, not the request path, and re-running it after a successful
// sweep finds nothing newly eligible.
func (s *Service) CleanupExpiredSessions(ctx context.Context) (count int, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() { s.observeOperation(ctx, startedAt, "session.cleanup_expired", err, fields) }()

	if s == nil || s.sessionStore == nil {
		return 0, s.mapError(fmt.Errorf("core: session store is not configured"))
	}
	affected, storeErr := s.sessionStore.DeactivateExpired(ctx, s.timeNow())
	if storeErr != nil {
		err = s.wrapStorageError(ctx, storeErr, msgCleanupSessionsFailed, fields)
		return 0, err
	}
	fields["deactivated"] = affected
	return affected, nil
}

// wrapStorageError logs the original cause and re-surfaces a stable generic
// message so callers never depend on storage-engine error shapes.
func (s *Service) wrapStorageError(ctx context.Context, cause error, message string, fields map[string]any) error {
	logFields := cloneFields(fields)
	logFields["cause"] = cause.Error()
	s.logError(ctx, message, logFields)
	if s != nil && s.errorFactory != nil {
		return ensureAuthErrorEnvelope(
			s.errorFactory(message, goerrors.CategoryExternal).
				WithTextCode(AuthErrorStorageFailed),
		)
	}
	return s.mapError(errors.New(message))
}
