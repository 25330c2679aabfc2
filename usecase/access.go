package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/repository"
	"github.com/fastygo/tasktrack/usecase/lifecycle"
)

// ResolveActor loads userID's membership in projectID. Outsiders get domain.ErrNotMember.
func ResolveActor(ctx context.Context, members repository.MemberRepository, projectID, userID string) (lifecycle.Actor, error) {
	if userID == "" {
		return lifecycle.Actor{}, domain.ErrUnauthorized
	}
	member, err := members.GetByProjectAndUser(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return lifecycle.Actor{}, domain.ErrNotMember
		}
		return lifecycle.Actor{}, err
	}
	return lifecycle.Actor{UserID: userID, Role: member.Role}, nil
}

// Observe counts the outcome of operation and passes err through.
func Observe(rec Recorder, operation string, err error) error {
	if rec == nil {
		return err
	}
	if err != nil {
		rec.Rejected(operation, string(domain.CodeOf(err)))
		return err
	}
	rec.Accepted(operation)
	return nil
}

// Record appends an activity entry. Failures are logged and swallowed.
func Record(ctx context.Context, repo repository.ActivityRepository, logger *zap.Logger, activity domain.Activity) {
	if repo == nil {
		return
	}
	if err := repo.Append(ctx, activity); err != nil {
		logger.Warn("failed to append activity",
			zap.String("entity", activity.Entity),
			zap.String("entity_id", activity.EntityID),
			zap.String("action", activity.Action),
			zap.Error(err))
	}
}

// Retryable reports whether err is an infrastructure failure worth buffering.
func Retryable(err error) bool {
	return err != nil && domain.CodeOf(err) == domain.ErrCodeInternal
}
