package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeProjectCreated ActivityType = "project_created"
	TypeProjectDeleted ActivityType = "project_deleted"
	TypeProjectSynced  ActivityType = "project_synced"
	TypeUpload         ActivityType = "upload"
	TypeFileDeleted    ActivityType = "file_deleted"
	TypeSpecParse      ActivityType = "spec_parse"
	TypeScanSummary    ActivityType = "scan_summary"
	TypeScanDivisions  ActivityType = "scan_divisions"
	TypeScanTakeoff    ActivityType = "scan_takeoff"
	TypeItemAdded      ActivityType = "item_added"
	TypeChat           ActivityType = "chat"
	TypeAudit          ActivityType = "audit"
	TypePricing        ActivityType = "pricing"
	TypeOutcome        ActivityType = "outcome"
)

// ActivityEntry represents an event in a project's activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ProjectID    string       `json:"project_id"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Failed       bool         `json:"failed,omitempty"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
