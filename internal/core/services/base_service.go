package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/lecturer_claims_app/internal/apperrors"
	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
	portssvc "github.com/SscSPs/lecturer_claims_app/internal/core/ports/services"
	"github.com/SscSPs/lecturer_claims_app/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Identity portssvc.IdentitySvc
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs an expected business rejection
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizeUser resolves userID and, when roles are given, requires at least one of them.
func (s *BaseService) AuthorizeUser(ctx context.Context, userID string, roles ...domain.Role) (*domain.Principal, error) {
	if s.Identity == nil {
		return nil, fmt.Errorf("%w: identity provider not configured", apperrors.ErrInternal)
	}
	principal, err := s.Identity.ResolvePrincipal(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(roles) > 0 && !principal.HasAnyRole(roles...) {
		s.LogWarn(ctx, "Principal lacks required role",
			slog.String("user_id", userID),
			slog.Any("required_roles", roles))
		return nil, fmt.Errorf("%w: requires one of %v", apperrors.ErrUnauthorizedPrincipal, roles)
	}
	return principal, nil
}
