// Package workspace runs the estimating workflow for a project: uploads,
// scans, chat, audit and item edits. Every operation reports its progress
// and outcome through the project's status message.
package workspace

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rpggio/estimator/internal/document"
	"github.com/rpggio/estimator/internal/domain/activity"
	"github.com/rpggio/estimator/internal/domain/project"
)

// Kind is a long-running operation guarded by a busy flag.
type Kind string

const (
	KindSummary   Kind = "summary"
	KindDivisions Kind = "divisions"
	KindTakeoff   Kind = "takeoff"
	KindSpec      Kind = "spec"
	KindChat      Kind = "chat"
)

// BusyFlags reports which operations are running for a project.
type BusyFlags struct {
	Summary   bool `json:"summary"`
	Divisions bool `json:"divisions"`
	Takeoff   bool `json:"takeoff"`
	Spec      bool `json:"spec"`
	Chat      bool `json:"chat"`
}

// Options configures a Service.
type Options struct {
	// MaxFileSize rejects larger uploads. Zero disables the check.
	MaxFileSize int64
	// IngestDelay is waited after uploads before the automatic summary scan.
	IngestDelay time.Duration
	// Archive, when set, receives a copy of every uploaded document.
	Archive document.Archive
}

// Service orchestrates the backend and the project store.
type Service struct {
	store    *project.Store
	backend  Backend
	activity *activity.Service
	opts     Options
	logger   *slog.Logger
	now      func() time.Time

	mu   sync.Mutex
	busy map[string]map[Kind]bool
}

// NewService creates a workspace service. activity may be nil.
func NewService(store *project.Store, backend Backend, activity *activity.Service, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		store:    store,
		backend:  backend,
		activity: activity,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		busy:     map[string]map[Kind]bool{},
	}
}

// Store returns the project store the service writes to.
func (s *Service) Store() *project.Store {
	return s.store
}

// Busy returns the busy flags of a project.
func (s *Service) Busy(projectID string) BusyFlags {
	s.mu.Lock()
	defer s.mu.Unlock()
	flags := s.busy[projectID]
	return BusyFlags{
		Summary:   flags[KindSummary],
		Divisions: flags[KindDivisions],
		Takeoff:   flags[KindTakeoff],
		Spec:      flags[KindSpec],
		Chat:      flags[KindChat],
	}
}

func (s *Service) acquire(projectID string, kind Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	flags := s.busy[projectID]
	if flags == nil {
		flags = map[Kind]bool{}
		s.busy[projectID] = flags
	}
	if flags[kind] {
		return ErrBusy
	}
	flags[kind] = true
	return nil
}

func (s *Service) release(projectID string, kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flags := s.busy[projectID]
	delete(flags, kind)
	if len(flags) == 0 {
		delete(s.busy, projectID)
	}
}

// setStatus writes the status message and records it as activity.
func (s *Service) setStatus(ctx context.Context, projectID string, typ activity.ActivityType, message string, failed bool) {
	if err := s.store.SetMessage(ctx, projectID, message); err != nil {
		s.logger.Warn("failed to set status message", "project_id", projectID, "error", err)
	}
	s.record(ctx, projectID, typ, message, failed)
}

func (s *Service) record(ctx context.Context, projectID string, typ activity.ActivityType, summary string, failed bool) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, projectID, typ, summary, failed)
}

// checkScannable applies the guards shared by every scan.
func (s *Service) checkScannable(ctx context.Context, projectID string, typ activity.ActivityType) (project.Project, error) {
	proj, err := s.store.Get(projectID)
	if err != nil {
		return project.Project{}, err
	}
	if proj.UploadsPending() {
		s.setStatus(ctx, projectID, typ, "Please wait for all uploads to finish.", true)
		return project.Project{}, ErrUploadsPending
	}
	if len(proj.Files) == 0 {
		s.setStatus(ctx, projectID, typ, "Please upload at least one file to scan.", true)
		return project.Project{}, ErrNoFiles
	}
	return proj, nil
}

// errorText renders an error for a status message.
func errorText(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return err.Error()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
