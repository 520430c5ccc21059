package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	AuthErrorBadInput              = "AUTH_BAD_INPUT"
	AuthErrorSessionNotFound       = "AUTH_SESSION_NOT_FOUND"
	AuthErrorProviderNotConfigured = "AUTH_PROVIDER_NOT_CONFIGURED"
	AuthErrorUpsertLocked          = "AUTH_UPSERT_LOCKED"
	AuthErrorStorageFailed         = "AUTH_STORAGE_FAILED"
	AuthErrorInternal              = "AUTH_INTERNAL_ERROR"
)

// Stable messages persisted failures are wrapped with. Callers never see
// storage-engine error shapes.
const (
	msgCreateSessionFailed     = "failed to create session"
	msgFindSessionFailed       = "failed to find session"
	msgUpdateSessionFailed     = "failed to update session"
	msgDeactivateSessionFailed = "failed to deactivate session"
	msgCleanupSessionsFailed   = "failed to cleanup sessions"
)

func authErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureAuthErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "session not found"):
		return newAuthError(err.Error(), goerrors.CategoryNotFound, AuthErrorSessionNotFound)
	case strings.Contains(msg, "oauth provider") && strings.Contains(msg, "is not configured"),
		strings.Contains(msg, "config not found"):
		return newAuthError(err.Error(), goerrors.CategoryNotFound, AuthErrorProviderNotConfigured)
	case strings.Contains(msg, "upsert lock"), strings.Contains(msg, "lock already held"):
		return newAuthError(err.Error(), goerrors.CategoryConflict, AuthErrorUpsertLocked)
	case strings.Contains(msg, "failed to create"), strings.Contains(msg, "failed to find"),
		strings.Contains(msg, "failed to update"), strings.Contains(msg, "failed to deactivate"),
		strings.Contains(msg, "failed to cleanup"), strings.Contains(msg, "failed to delete"):
		return newAuthError(err.Error(), goerrors.CategoryExternal, AuthErrorStorageFailed)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "must be"):
		return newAuthError(err.Error(), goerrors.CategoryBadInput, AuthErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureAuthErrorEnvelope(mapped)
}

func newAuthError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureAuthErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureAuthErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = authHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultAuthTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultAuthTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return AuthErrorBadInput
	case goerrors.CategoryNotFound:
		return AuthErrorSessionNotFound
	case goerrors.CategoryConflict:
		return AuthErrorUpsertLocked
	case goerrors.CategoryExternal:
		return AuthErrorStorageFailed
	default:
		return AuthErrorInternal
	}
}

func authHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
