package workspace

import (
	"context"
	"fmt"

	"github.com/rpggio/estimator/internal/domain/activity"
	"github.com/rpggio/estimator/internal/domain/project"
)

// CreateProject adds and selects a new temporary project.
func (s *Service) CreateProject(ctx context.Context) (project.Project, error) {
	p, err := s.store.Create(ctx)
	if err != nil {
		return project.Project{}, err
	}
	s.record(ctx, p.ID, activity.TypeProjectCreated, "Project created.", false)
	return p, nil
}

// DeleteProject removes a project. When the backend delete fails the local
// copy is only removed if force is set.
func (s *Service) DeleteProject(ctx context.Context, projectID string, force bool) error {
	proj, err := s.store.Get(projectID)
	if err != nil {
		return err
	}
	err = s.store.Delete(ctx, projectID, func(error) bool { return force })
	if err != nil {
		s.record(ctx, projectID, activity.TypeProjectDeleted, fmt.Sprintf("Failed to delete %s: %s", proj.Name, errorText(err)), true)
		return err
	}
	s.record(ctx, projectID, activity.TypeProjectDeleted, fmt.Sprintf("Deleted %s.", proj.Name), false)
	return nil
}

// SyncProjects refreshes the project list from the backend. On failure the
// local list is returned with the error. Each synced project gets an activity
// entry.
func (s *Service) SyncProjects(ctx context.Context) ([]project.Project, error) {
	if err := s.store.Sync(ctx); err != nil {
		return s.store.List(), err
	}
	projects := s.store.List()
	for _, p := range projects {
		if !p.IsTemporary {
			s.record(ctx, p.ID, activity.TypeProjectSynced, "Project synced from backend.", false)
		}
	}
	return projects, nil
}

// Activity lists recent activity entries. It returns an empty list when no
// activity log is configured.
func (s *Service) Activity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	if s.activity == nil {
		return []activity.ActivityEntry{}, nil
	}
	return s.activity.GetRecentActivity(ctx, opts)
}

// Projects lists every project in order.
func (s *Service) Projects() []project.Project {
	return s.store.List()
}

// Selected returns the active project.
func (s *Service) Selected() (project.Project, bool) {
	return s.store.Selected()
}
