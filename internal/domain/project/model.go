package project

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rpggio/estimator/internal/domain/chat"
	"github.com/rpggio/estimator/internal/domain/takeoff"
)

// DefaultName is given to projects created before any document is uploaded.
const DefaultName = "New Project (upload a document to start...)"

// UntitledName is used for synced projects that carry no title.
const UntitledName = "Untitled Project"

// TemporaryIDPrefix marks identifiers minted locally.
const TemporaryIDPrefix = "temp_"

// FileType classifies an uploaded document.
type FileType string

const (
	FileSpec      FileType = "spec"
	FileBlueprint FileType = "blueprint"
	FileQuote     FileType = "quote"
	FileAddenda   FileType = "addenda"
	FileOther     FileType = "other"
)

// ParseFileType validates a file type tag.
func ParseFileType(s string) (FileType, bool) {
	switch t := FileType(strings.ToLower(strings.TrimSpace(s))); t {
	case FileSpec, FileBlueprint, FileQuote, FileAddenda, FileOther:
		return t, true
	}
	return "", false
}

// TriggersSummary reports whether uploading this type starts a summary scan.
func (t FileType) TriggersSummary() bool {
	return t == FileSpec || t == FileBlueprint || t == FileAddenda
}

// FileRecord tracks an uploaded document. ID is nil until the upload completes.
type FileRecord struct {
	ID          *string  `json:"id"`
	Name        string   `json:"name"`
	Type        FileType `json:"type"`
	Accepted    bool     `json:"accepted"`
	IsUploading bool     `json:"isUploading"`
	Pages       int      `json:"pages,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// HasID reports whether the file was assigned an identifier.
func (f FileRecord) HasID() bool {
	return f.ID != nil && *f.ID != ""
}

// FileID returns the identifier or "".
func (f FileRecord) FileID() string {
	if f.ID == nil {
		return ""
	}
	return *f.ID
}

// Note is a free-text project note.
type Note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Table is a table extracted from an uploaded document.
type Table struct {
	ID          string `json:"id"`
	TableType   string `json:"tableType,omitempty"`
	Title       string `json:"title,omitempty"`
	Filename    string `json:"filename,omitempty"`
	SourcePage  int    `json:"sourcePage,omitempty"`
	HTML        string `json:"html,omitempty"`
	Text        string `json:"text,omitempty"`
	RowCount    int    `json:"rowCount,omitempty"`
	ColumnCount int    `json:"columnCount,omitempty"`
	Comment     string `json:"comment,omitempty"`
}

// UnclassifiedTable groups tables without a type.
const UnclassifiedTable = "Unclassified"

// Preferences tune estimating behavior for a project.
type Preferences struct {
	ScopeSensitivity    float64 `json:"scopeSensitivity"`
	DefaultLaborRate    float64 `json:"defaultLaborRate"`
	DefaultMaterialRate float64 `json:"defaultMaterialRate"`
}

// DefaultPreferences returns the preferences seeded into new projects.
func DefaultPreferences() Preferences {
	return Preferences{ScopeSensitivity: 0.8}
}

// OutcomeKind is the bid result reported for a project.
type OutcomeKind string

const (
	OutcomeWon       OutcomeKind = "won"
	OutcomeLostPrice OutcomeKind = "lost_price"
	OutcomeLostOther OutcomeKind = "lost_other"
	OutcomePending   OutcomeKind = "pending"
)

// Outcome records how a bid turned out.
type Outcome struct {
	Kind       OutcomeKind `json:"outcome"`
	WinningBid *float64    `json:"winning_bid"`
	Feedback   string      `json:"feedback"`
}

// Project is an estimating workspace.
type Project struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	Files                []FileRecord      `json:"files"`
	Summary              string            `json:"summary"`
	DivisionDescriptions map[string]string `json:"divisionDescriptions"`
	Takeoff              []takeoff.Item    `json:"takeoff"`
	Discussion           []chat.Message    `json:"discussion"`
	Notes                []Note            `json:"notes"`
	Tables               []Table           `json:"tables"`
	Preferences          Preferences       `json:"preferences"`
	SpecIndex            []json.RawMessage `json:"specIndex"`
	IsTemporary          bool              `json:"isTemporary"`
	Message              string            `json:"message"`
	Outcome              *Outcome          `json:"outcome,omitempty"`
}

// Patch is a partial update. Nil fields are left unchanged. Name is trimmed
// and a blank one is ignored.
type Patch struct {
	Name                 *string
	Files                []FileRecord
	Summary              *string
	DivisionDescriptions map[string]string
	Takeoff              []takeoff.Item
	Notes                []Note
	Tables               []Table
	Preferences          *Preferences
	SpecIndex            []json.RawMessage
	Message              *string
}

// Apply merges the patch into p.
func (pt Patch) Apply(p Project) Project {
	if pt.Name != nil {
		if name := strings.TrimSpace(*pt.Name); name != "" {
			p.Name = name
		}
	}
	if pt.Files != nil {
		p.Files = pt.Files
	}
	if pt.Summary != nil {
		p.Summary = *pt.Summary
	}
	if pt.DivisionDescriptions != nil {
		p.DivisionDescriptions = pt.DivisionDescriptions
	}
	if pt.Takeoff != nil {
		p.Takeoff = pt.Takeoff
	}
	if pt.Notes != nil {
		p.Notes = pt.Notes
	}
	if pt.Tables != nil {
		p.Tables = pt.Tables
	}
	if pt.Preferences != nil {
		p.Preferences = *pt.Preferences
	}
	if pt.SpecIndex != nil {
		p.SpecIndex = pt.SpecIndex
	}
	if pt.Message != nil {
		p.Message = *pt.Message
	}
	return p
}

// ProjectSummary is a lightweight listing entry.
type ProjectSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsTemporary bool   `json:"isTemporary"`
	FileCount   int    `json:"fileCount"`
	ItemCount   int    `json:"itemCount"`
	Message     string `json:"message"`
}

// Summarize returns the listing view of p.
func (p Project) Summarize() ProjectSummary {
	return ProjectSummary{
		ID:          p.ID,
		Name:        p.Name,
		IsTemporary: p.IsTemporary,
		FileCount:   len(p.Files),
		ItemCount:   len(p.Takeoff),
		Message:     p.Message,
	}
}

// UploadsPending reports whether any file is still uploading.
func (p Project) UploadsPending() bool {
	for _, f := range p.Files {
		if f.IsUploading {
			return true
		}
	}
	return false
}

// FileNames returns the names of all files in upload order.
func (p Project) FileNames() []string {
	names := make([]string, 0, len(p.Files))
	for _, f := range p.Files {
		names = append(names, f.Name)
	}
	return names
}

// HasFile reports whether a file with the same name and type exists.
func (p Project) HasFile(name string, t FileType) bool {
	for _, f := range p.Files {
		if f.Name == name && f.Type == t {
			return true
		}
	}
	return false
}

// WithDefaults fills zero-valued collections and settings so that records
// persisted by older versions stay usable.
func (p Project) WithDefaults() Project {
	if p.Name == "" {
		p.Name = "New Project"
	}
	if p.Files == nil {
		p.Files = []FileRecord{}
	}
	if p.DivisionDescriptions == nil {
		p.DivisionDescriptions = map[string]string{}
	}
	if p.Takeoff == nil {
		p.Takeoff = []takeoff.Item{}
	}
	if p.Discussion == nil {
		p.Discussion = []chat.Message{}
	}
	if p.Notes == nil {
		p.Notes = []Note{}
	}
	if p.Tables == nil {
		p.Tables = []Table{}
	}
	if p.SpecIndex == nil {
		p.SpecIndex = []json.RawMessage{}
	}
	return p
}

// UnmarshalJSON seeds the default preferences so only a missing or null
// "preferences" key falls back to them. An explicit all-zero object is kept.
func (p *Project) UnmarshalJSON(data []byte) error {
	type plain Project
	v := plain{Preferences: DefaultPreferences()}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Project(v)
	return nil
}

// clone copies the collections of p so callers cannot alias store state.
func (p Project) clone() Project {
	p.Files = cloneSlice(p.Files)
	p.Takeoff = cloneSlice(p.Takeoff)
	p.Discussion = cloneSlice(p.Discussion)
	p.Notes = cloneSlice(p.Notes)
	p.Tables = cloneSlice(p.Tables)
	p.SpecIndex = cloneSlice(p.SpecIndex)
	if p.DivisionDescriptions != nil {
		dd := make(map[string]string, len(p.DivisionDescriptions))
		for k, v := range p.DivisionDescriptions {
			dd[k] = v
		}
		p.DivisionDescriptions = dd
	}
	if p.Outcome != nil {
		o := *p.Outcome
		p.Outcome = &o
	}
	return p
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// ItemIDs returns every takeoff item id in p.
func (p Project) ItemIDs() []int64 {
	ids := make([]int64, 0, len(p.Takeoff))
	for _, it := range p.Takeoff {
		ids = append(ids, it.ID)
	}
	return ids
}
