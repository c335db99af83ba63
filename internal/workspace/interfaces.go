package workspace

import (
	"context"
	"encoding/json"

	"github.com/rpggio/estimator/internal/backend"
	"github.com/rpggio/estimator/internal/domain/project"
	"github.com/rpggio/estimator/internal/domain/takeoff"
)

// Backend is the AI backend as seen by the workspace.
type Backend interface {
	takeoff.Classifier

	Upload(ctx context.Context, projectID, filename string, data []byte) (string, error)
	GetFile(ctx context.Context, projectID, fileID string) ([]byte, error)
	DeleteFile(ctx context.Context, projectID, fileID string) error
	ParseSpec(ctx context.Context, filename string, data []byte) ([]json.RawMessage, error)
	ScanSummary(ctx context.Context, projectID string) (backend.SummaryResult, error)
	ScanDivisions(ctx context.Context, projectID string) (map[string]string, error)
	ScanTakeoff(ctx context.Context, projectID string) ([]takeoff.Candidate, error)
	Chat(ctx context.Context, req backend.ChatRequest) (backend.ChatReply, error)
	Audit(ctx context.Context, projectID string, req backend.AuditRequest) ([]backend.AuditIssue, error)
	RecordOutcome(ctx context.Context, projectID string, outcome project.Outcome) error
	PricingIntelligence(ctx context.Context, description, location string) (backend.PricingIntel, error)
	RecordPriceCorrection(ctx context.Context, projectID string, correction backend.PriceCorrection) error
	Analytics(ctx context.Context, days int, region string) backend.Analytics
}

var _ Backend = (*backend.Client)(nil)
