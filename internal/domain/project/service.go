package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/estimator/internal/domain/takeoff"
	"github.com/rpggio/estimator/internal/repository"
)

// Store owns the project list. It is the only writer: every mutation replaces
// the affected project wholesale and persists the full list.
type Store struct {
	repo   Repository
	remote Remote
	logger *slog.Logger
	now    func() time.Time
	ids    *takeoff.Sequence

	mu       sync.RWMutex
	projects []Project
	selected string
}

// NewStore creates a new project store. remote may be nil for offline use.
func NewStore(repo Repository, remote Remote, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		repo:   repo,
		remote: remote,
		logger: logger,
		now:    time.Now,
		ids:    takeoff.NewSequence(time.Now()),
	}
}

// IDs returns the item identifier generator owned by the store.
func (s *Store) IDs() takeoff.IDGenerator {
	return s.ids
}

// Load reads the persisted list, defaulting missing fields.
func (s *Store) Load(ctx context.Context) error {
	loaded, err := s.repo.LoadProjects(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("loading projects: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range loaded {
		s.observeIDs(p)
	}
	s.projects = make([]Project, 0, len(loaded))
	filled := false
	for _, p := range loaded {
		if p.ID == "" {
			p.ID = TemporaryIDPrefix + uuid.NewString()
			p.IsTemporary = true
		}
		if missingItemIDs(p) {
			p = s.fillItemIDs(p)
			filled = true
		}
		p = p.WithDefaults()
		p.Message = ""
		s.projects = append(s.projects, p)
	}
	if len(s.projects) > 0 {
		s.selected = s.projects[0].ID
	}
	if filled {
		s.persist(ctx)
	}
	return nil
}

// List returns copies of every project in order.
func (s *Store) List() []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p.clone())
	}
	return out
}

// Get returns a copy of the project.
func (s *Store) Get(id string) (Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return Project{}, ErrProjectNotFound
	}
	return s.projects[idx].clone(), nil
}

// Selected returns the active project.
func (s *Store) Selected() (Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(s.selected)
	if idx < 0 {
		return Project{}, false
	}
	return s.projects[idx].clone(), true
}

// Select makes id the active project.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) < 0 {
		return ErrProjectNotFound
	}
	s.selected = id
	return nil
}

// Create adds a temporary project and selects it.
func (s *Store) Create(ctx context.Context) (Project, error) {
	proj := Project{
		ID:          TemporaryIDPrefix + uuid.NewString(),
		Name:        DefaultName,
		Preferences: DefaultPreferences(),
		IsTemporary: true,
		Message:     "Upload blueprints, specs, or addenda to initialize this project",
	}.WithDefaults()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = append(s.projects, proj)
	s.selected = proj.ID
	s.persist(ctx)
	return proj.clone(), nil
}

// Update replaces the project with fn's result. fn receives a copy and may
// change the identifier only to one that is not already in use.
func (s *Store) Update(ctx context.Context, id string, fn func(Project) Project) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Project{}, ErrProjectNotFound
	}
	next := fn(s.projects[idx].clone())
	if next.ID == "" {
		next.ID = id
	}
	if next.ID != id {
		if s.indexOf(next.ID) >= 0 {
			return Project{}, fmt.Errorf("%w: project id %q already exists", ErrInvalidInput, next.ID)
		}
		if s.selected == id {
			s.selected = next.ID
		}
	}
	s.observeIDs(next)
	s.projects[idx] = next
	s.persist(ctx)
	return next.clone(), nil
}

// Patch shallow-merges a partial update into the project.
func (s *Store) Patch(ctx context.Context, id string, patch Patch) (Project, error) {
	return s.Update(ctx, id, patch.Apply)
}

// SetMessage replaces the project's status message.
func (s *Store) SetMessage(ctx context.Context, id, message string) error {
	_, err := s.Update(ctx, id, func(p Project) Project {
		p.Message = message
		return p
	})
	return err
}

// Rename sets a trimmed name. Blank names are ignored.
func (s *Store) Rename(ctx context.Context, id, name string) (Project, error) {
	return s.Patch(ctx, id, Patch{Name: &name})
}

// Delete removes a project. Synced projects are deleted remotely first, then
// their files. If the remote delete fails, confirm decides whether to delete
// locally anyway; a nil confirm declines.
func (s *Store) Delete(ctx context.Context, id string, confirm ConfirmFunc) error {
	proj, err := s.Get(id)
	if err != nil {
		return err
	}

	if !proj.IsTemporary && s.remote != nil {
		if err := s.deleteRemote(ctx, proj); err != nil {
			s.logger.Warn("remote project delete failed", "project_id", id, "error", err)
			if confirm == nil || !confirm(err) {
				return fmt.Errorf("%w: %v", ErrDeleteDeclined, err)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrProjectNotFound
	}
	s.projects = append(s.projects[:idx:idx], s.projects[idx+1:]...)
	if s.selected == id {
		s.selected = ""
		if len(s.projects) > 0 {
			s.selected = s.projects[0].ID
		}
	}
	s.persist(ctx)
	return nil
}

func (s *Store) deleteRemote(ctx context.Context, proj Project) error {
	if err := s.remote.DeleteProject(ctx, proj.ID); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	for _, f := range proj.Files {
		if !f.HasID() {
			continue
		}
		if err := s.remote.DeleteFile(ctx, proj.ID, f.FileID()); err != nil {
			s.logger.Warn("remote file delete failed", "project_id", proj.ID, "file", f.Name, "error", err)
		}
	}
	return nil
}

// Sync replaces every synced project with the backend's list, keeping
// temporary projects after them. On failure the local list is kept.
func (s *Store) Sync(ctx context.Context) error {
	if s.remote == nil {
		return nil
	}
	fetched, err := s.remote.ListProjects(ctx)
	if err != nil {
		s.logger.Warn("project sync failed, keeping local projects", "error", err)
		return fmt.Errorf("syncing projects: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]Project, 0, len(fetched)+len(s.projects))
	for _, p := range fetched {
		s.observeIDs(p)
	}
	for _, p := range fetched {
		p = s.fillItemIDs(p.WithDefaults())
		p.IsTemporary = false
		next = append(next, p)
	}
	for _, p := range s.projects {
		if p.IsTemporary {
			next = append(next, p)
		}
	}
	s.projects = next
	if s.indexOf(s.selected) < 0 {
		s.selected = ""
		if len(fetched) > 0 {
			s.selected = next[0].ID
		}
	}
	s.persist(ctx)
	s.logger.Info("projects synced", "remote", len(fetched), "total", len(next))
	return nil
}

// persist writes the list; callers hold the lock. Failures are logged so that
// the in-memory state keeps working offline.
func (s *Store) persist(ctx context.Context) {
	snapshot := make([]Project, len(s.projects))
	copy(snapshot, s.projects)
	if err := s.repo.SaveProjects(ctx, snapshot); err != nil {
		s.logger.Error("failed to persist projects", "error", err)
	}
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, p := range s.projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) observeIDs(p Project) {
	for _, it := range p.Takeoff {
		s.ids.Observe(it.ID)
	}
}

func missingItemIDs(p Project) bool {
	for _, it := range p.Takeoff {
		if it.ID == 0 {
			return true
		}
	}
	return false
}

// fillItemIDs numbers items stored or sent without an identifier.
func (s *Store) fillItemIDs(p Project) Project {
	for i := range p.Takeoff {
		if p.Takeoff[i].ID == 0 {
			p.Takeoff[i].ID = s.ids.Next()
		}
	}
	return p
}
