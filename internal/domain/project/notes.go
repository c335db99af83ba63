package project

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AddNote appends an empty note.
func AddNote(p Project, now time.Time) (Project, Note) {
	note := Note{ID: uuid.NewString(), Text: "", Timestamp: now}
	p.Notes = append(cloneSlice(p.Notes), note)
	return p, note
}

// UpdateNote replaces the text of a note.
func UpdateNote(p Project, noteID, text string) (Project, error) {
	notes := cloneSlice(p.Notes)
	for i := range notes {
		if notes[i].ID == noteID {
			notes[i].Text = text
			p.Notes = notes
			return p, nil
		}
	}
	return p, ErrNoteNotFound
}

// DeleteNote removes a note.
func DeleteNote(p Project, noteID string) (Project, error) {
	notes := make([]Note, 0, len(p.Notes))
	found := false
	for _, n := range p.Notes {
		if n.ID == noteID {
			found = true
			continue
		}
		notes = append(notes, n)
	}
	if !found {
		return p, ErrNoteNotFound
	}
	p.Notes = notes
	return p, nil
}

// CommentTable sets the comment on a table.
func CommentTable(p Project, tableID, comment string) (Project, error) {
	tables := cloneSlice(p.Tables)
	for i := range tables {
		if tables[i].ID == tableID {
			tables[i].Comment = comment
			p.Tables = tables
			return p, nil
		}
	}
	return p, ErrTableNotFound
}

// FindTable returns the table with id.
func FindTable(p Project, tableID string) (Table, bool) {
	for _, t := range p.Tables {
		if t.ID == tableID {
			return t, true
		}
	}
	return Table{}, false
}

// TableFilter narrows the table list.
type TableFilter struct {
	Type   string
	Search string
}

// FilterTables returns tables of the given type (empty or "all" for any) whose
// type, filename or text contains the search term.
func FilterTables(tables []Table, f TableFilter) []Table {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	var out []Table
	for _, t := range tables {
		if f.Type != "" && f.Type != "all" && t.TableType != f.Type {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(t.TableType), term) &&
			!strings.Contains(strings.ToLower(t.Filename), term) &&
			!strings.Contains(strings.ToLower(t.Text), term) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// TableGroup is a set of tables sharing a classification.
type TableGroup struct {
	Type   string  `json:"type"`
	Tables []Table `json:"tables"`
}

// GroupTables groups tables by type, sorted by type name. Untyped tables go
// under "Unclassified".
func GroupTables(tables []Table) []TableGroup {
	byType := map[string][]Table{}
	for _, t := range tables {
		key := t.TableType
		if key == "" {
			key = UnclassifiedTable
		}
		byType[key] = append(byType[key], t)
	}
	groups := make([]TableGroup, 0, len(byType))
	for k, v := range byType {
		groups = append(groups, TableGroup{Type: k, Tables: v})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Type < groups[j].Type })
	return groups
}
