package backend

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/rpggio/estimator/internal/domain/chat"
	"github.com/rpggio/estimator/internal/domain/project"
	"github.com/rpggio/estimator/internal/domain/takeoff"
)

// Text is a string field that also accepts numbers and null.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}
	*t = Text(strings.Trim(string(data), `"`))
	return nil
}

// ScanType selects what a scan derives.
type ScanType string

const (
	ScanSummary   ScanType = "summary"
	ScanDivisions ScanType = "divisions"
	ScanTakeoff   ScanType = "takeoff"
)

// SummaryResult is the response to a summary scan.
type SummaryResult struct {
	Summary   string `json:"summary"`
	Title     string `json:"title"`
	ProjectID Text   `json:"project_id"`
}

// DivisionsResult is the response to a divisions scan.
type DivisionsResult struct {
	DivisionDescriptions map[string]string `json:"divisionDescriptions"`
}

// TakeoffResult is the response to a takeoff scan.
type TakeoffResult struct {
	Takeoff []takeoff.Candidate `json:"takeoff"`
}

// SpecParseResult is the response to a spec parse.
type SpecParseResult struct {
	SpecIndex []json.RawMessage `json:"specIndex"`
}

// ChatProjectData is the project context sent with a chat turn.
type ChatProjectData struct {
	Summary              string              `json:"summary"`
	Notes                []project.Note      `json:"notes"`
	DivisionDescriptions map[string]string   `json:"divisionDescriptions"`
	Takeoff              []takeoff.Item      `json:"takeoff"`
	Preferences          project.Preferences `json:"preferences"`
	SpecIndex            []json.RawMessage   `json:"specIndex"`
}

// ChatRequest is a chat turn.
type ChatRequest struct {
	Discussion  []chat.Message  `json:"discussion"`
	ProjectData ChatProjectData `json:"project_data"`
}

// ChatReply is the assistant's answer.
type ChatReply struct {
	Reply   string            `json:"reply"`
	Actions []json.RawMessage `json:"actions"`
}

// AuditRequest asks the backend to compare the takeoff with the specs.
type AuditRequest struct {
	Takeoff              []takeoff.Item    `json:"takeoff"`
	DivisionDescriptions map[string]string `json:"divisionDescriptions"`
	SpecIndex            []json.RawMessage `json:"specIndex"`
}

// AuditIssue is one discrepancy found by an audit.
type AuditIssue struct {
	Division string `json:"division"`
	Issue    string `json:"issue"`
	Detail   string `json:"detail"`
	Page     Text   `json:"page"`
}

// PricingIntel is the backend's pricing suggestion for an item description.
type PricingIntel struct {
	SuggestedPrice float64        `json:"suggested_price"`
	Confidence     float64        `json:"confidence"`
	RegionalIntel  *RegionalIntel `json:"regional_intel,omitempty"`
	YourHistory    *PriceHistory  `json:"your_history,omitempty"`
}

// ConfidenceLevel buckets the confidence score.
func (p PricingIntel) ConfidenceLevel() string {
	switch {
	case p.Confidence > 0.8:
		return "High"
	case p.Confidence > 0.5:
		return "Medium"
	}
	return "Low"
}

// RegionalIntel summarizes regional pricing.
type RegionalIntel struct {
	Average    float64 `json:"average"`
	Trend      string  `json:"trend"`
	DataPoints int     `json:"data_points"`
}

// PriceHistory is the caller's own pricing history.
type PriceHistory struct {
	LastUsed *float64 `json:"last_used"`
}

// PriceCorrection teaches the backend a corrected price.
type PriceCorrection struct {
	ItemID         int64   `json:"item_id"`
	OriginalPrice  float64 `json:"original_price"`
	CorrectedPrice float64 `json:"corrected_price"`
	Reason         string  `json:"reason"`
}

// remoteProject is the backend's project shape.
type remoteProject struct {
	ID                   Text              `json:"id"`
	Title                string            `json:"title"`
	Name                 string            `json:"name"`
	Summary              string            `json:"summary"`
	Files                []remoteFile      `json:"files"`
	DivisionDescriptions map[string]string `json:"division_descriptions"`
	TakeoffItems         []remoteItem      `json:"takeoff_items"`
	Tables               []remoteTable     `json:"tables"`
}

type remoteFile struct {
	ID       Text   `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Accepted bool   `json:"accepted"`
}

type remoteItem struct {
	ID          takeoff.Number        `json:"id"`
	Division    string                `json:"division"`
	Description string                `json:"description"`
	Quantity    takeoff.Number        `json:"quantity"`
	Unit        string                `json:"unit"`
	UnitCost    takeoff.Number        `json:"unitCost"`
	Modifier    takeoff.Number        `json:"modifier"`
	SourceFiles []string              `json:"sourceFiles"`
	CreatedAt   string                `json:"createdAt"`
	Hash        string                `json:"hash"`
	UserEdited  bool                  `json:"userEdited"`
	Source      string                `json:"source"`
	Comment     string                `json:"comment"`
	Metadata    *takeoff.ItemMetadata `json:"metadata"`
}

type remoteTable struct {
	ID          Text           `json:"id"`
	TableType   string         `json:"tableType"`
	Title       string         `json:"title"`
	Filename    string         `json:"filename"`
	SourcePage  takeoff.Number `json:"sourcePage"`
	HTML        string         `json:"html"`
	Text        string         `json:"text"`
	RowCount    takeoff.Number `json:"rowCount"`
	ColumnCount takeoff.Number `json:"columnCount"`
	Comment     string         `json:"comment"`
}

func (rp remoteProject) toProject() project.Project {
	name := strings.TrimSpace(rp.Title)
	if name == "" {
		name = strings.TrimSpace(rp.Name)
	}
	if name == "" {
		name = project.UntitledName
	}

	p := project.Project{
		ID:                   string(rp.ID),
		Name:                 name,
		Summary:              rp.Summary,
		DivisionDescriptions: rp.DivisionDescriptions,
		Preferences:          project.DefaultPreferences(),
	}
	for _, f := range rp.Files {
		rec := project.FileRecord{Name: f.Name, Type: project.FileOther, Accepted: f.Accepted}
		if t, ok := project.ParseFileType(f.Type); ok {
			rec.Type = t
		}
		if f.ID != "" {
			id := string(f.ID)
			rec.ID = &id
		}
		p.Files = append(p.Files, rec)
	}
	for _, it := range rp.TakeoffItems {
		p.Takeoff = append(p.Takeoff, it.toItem())
	}
	for _, t := range rp.Tables {
		p.Tables = append(p.Tables, project.Table{
			ID:          string(t.ID),
			TableType:   t.TableType,
			Title:       t.Title,
			Filename:    t.Filename,
			SourcePage:  int(t.SourcePage),
			HTML:        t.HTML,
			Text:        t.Text,
			RowCount:    int(t.RowCount),
			ColumnCount: int(t.ColumnCount),
			Comment:     t.Comment,
		})
	}
	return p.WithDefaults()
}

func (ri remoteItem) toItem() takeoff.Item {
	item := takeoff.Item{
		ID:          int64(ri.ID),
		Division:    ri.Division,
		Description: ri.Description,
		Quantity:    ri.Quantity.Float64(),
		Unit:        ri.Unit,
		UnitCost:    ri.UnitCost.Float64(),
		Modifier:    ri.Modifier.Float64(),
		SourceFiles: ri.SourceFiles,
		Hash:        ri.Hash,
		UserEdited:  ri.UserEdited,
		Source:      takeoff.SourceGPT,
		Comment:     ri.Comment,
		Metadata:    ri.Metadata,
	}
	if item.Division == "" {
		item.Division = takeoff.UnknownDivision
	}
	if ri.Source == string(takeoff.SourceManual) {
		item.Source = takeoff.SourceManual
	}
	if item.SourceFiles == nil {
		item.SourceFiles = []string{}
	}
	if ts, err := time.Parse(time.RFC3339, ri.CreatedAt); err == nil {
		item.CreatedAt = ts
	}
	return item
}
