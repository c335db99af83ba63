package project

import "context"

// Repository persists the full project list as one unit.
type Repository interface {
	LoadProjects(ctx context.Context) ([]Project, error)
	SaveProjects(ctx context.Context, projects []Project) error
}

// Remote is the backend's view of projects.
type Remote interface {
	ListProjects(ctx context.Context) ([]Project, error)
	DeleteProject(ctx context.Context, projectID string) error
	DeleteFile(ctx context.Context, projectID, fileID string) error
}

// ConfirmFunc decides whether to continue after a remote failure.
type ConfirmFunc func(err error) bool
