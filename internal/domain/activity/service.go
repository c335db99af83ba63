package activity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Service handles activity log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, logger: logger}
}

// LogActivity logs an activity entry with the current timestamp if missing.
func (s *Service) LogActivity(ctx context.Context, entry *ActivityEntry) error {
	if entry == nil || entry.ProjectID == "" || entry.ActivityType == "" {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	return nil
}

// Record logs a status change for a project. Logging failures are reported
// but never fail the caller.
func (s *Service) Record(ctx context.Context, projectID string, typ ActivityType, summary string, failed bool) {
	entry := &ActivityEntry{
		ProjectID:    projectID,
		ActivityType: typ,
		Summary:      summary,
		Failed:       failed,
	}
	if err := s.LogActivity(ctx, entry); err != nil {
		s.logger.Warn("failed to record activity", "project_id", projectID, "type", typ, "error", err)
	}
}

// GetRecentActivity lists activity entries with filtering.
func (s *Service) GetRecentActivity(ctx context.Context, opts ListActivityOptions) ([]ActivityEntry, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	entries, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	return entries, nil
}
