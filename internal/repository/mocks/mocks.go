package mocks

import (
	"context"

	"github.com/rpggio/estimator/internal/domain/activity"
	"github.com/rpggio/estimator/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// StateRepository is a mock for project.Repository.
type StateRepository struct {
	mock.Mock
}

func (m *StateRepository) LoadProjects(ctx context.Context) ([]project.Project, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StateRepository) SaveProjects(ctx context.Context, projects []project.Project) error {
	args := m.Called(ctx, projects)
	return args.Error(0)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Remote is a mock for project.Remote.
type Remote struct {
	mock.Mock
}

func (m *Remote) ListProjects(ctx context.Context) ([]project.Project, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Remote) DeleteProject(ctx context.Context, projectID string) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

func (m *Remote) DeleteFile(ctx context.Context, projectID, fileID string) error {
	args := m.Called(ctx, projectID, fileID)
	return args.Error(0)
}
