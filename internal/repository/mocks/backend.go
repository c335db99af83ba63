package mocks

import (
	"context"
	"encoding/json"

	"github.com/rpggio/estimator/internal/backend"
	"github.com/rpggio/estimator/internal/domain/project"
	"github.com/rpggio/estimator/internal/domain/takeoff"
	"github.com/stretchr/testify/mock"
)

// Backend is a mock for workspace.Backend.
type Backend struct {
	mock.Mock
}

func (m *Backend) ClassifyItem(ctx context.Context, description string) (string, error) {
	args := m.Called(ctx, description)
	return args.String(0), args.Error(1)
}

func (m *Backend) Upload(ctx context.Context, projectID, filename string, data []byte) (string, error) {
	args := m.Called(ctx, projectID, filename, data)
	return args.String(0), args.Error(1)
}

func (m *Backend) GetFile(ctx context.Context, projectID, fileID string) ([]byte, error) {
	args := m.Called(ctx, projectID, fileID)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) DeleteFile(ctx context.Context, projectID, fileID string) error {
	args := m.Called(ctx, projectID, fileID)
	return args.Error(0)
}

func (m *Backend) ParseSpec(ctx context.Context, filename string, data []byte) ([]json.RawMessage, error) {
	args := m.Called(ctx, filename, data)
	if index, ok := args.Get(0).([]json.RawMessage); ok {
		return index, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) ScanSummary(ctx context.Context, projectID string) (backend.SummaryResult, error) {
	args := m.Called(ctx, projectID)
	res, _ := args.Get(0).(backend.SummaryResult)
	return res, args.Error(1)
}

func (m *Backend) ScanDivisions(ctx context.Context, projectID string) (map[string]string, error) {
	args := m.Called(ctx, projectID)
	if d, ok := args.Get(0).(map[string]string); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) ScanTakeoff(ctx context.Context, projectID string) ([]takeoff.Candidate, error) {
	args := m.Called(ctx, projectID)
	if c, ok := args.Get(0).([]takeoff.Candidate); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) Chat(ctx context.Context, req backend.ChatRequest) (backend.ChatReply, error) {
	args := m.Called(ctx, req)
	reply, _ := args.Get(0).(backend.ChatReply)
	return reply, args.Error(1)
}

func (m *Backend) Audit(ctx context.Context, projectID string, req backend.AuditRequest) ([]backend.AuditIssue, error) {
	args := m.Called(ctx, projectID, req)
	if r, ok := args.Get(0).([]backend.AuditIssue); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Backend) RecordOutcome(ctx context.Context, projectID string, outcome project.Outcome) error {
	args := m.Called(ctx, projectID, outcome)
	return args.Error(0)
}

func (m *Backend) PricingIntelligence(ctx context.Context, description, location string) (backend.PricingIntel, error) {
	args := m.Called(ctx, description, location)
	intel, _ := args.Get(0).(backend.PricingIntel)
	return intel, args.Error(1)
}

func (m *Backend) RecordPriceCorrection(ctx context.Context, projectID string, correction backend.PriceCorrection) error {
	args := m.Called(ctx, projectID, correction)
	return args.Error(0)
}

func (m *Backend) Analytics(ctx context.Context, days int, region string) backend.Analytics {
	args := m.Called(ctx, days, region)
	a, _ := args.Get(0).(backend.Analytics)
	return a
}
