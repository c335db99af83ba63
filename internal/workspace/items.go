package workspace

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rpggio/estimator/internal/domain/activity"
	"github.com/rpggio/estimator/internal/domain/project"
	"github.com/rpggio/estimator/internal/domain/takeoff"
)

// TakeoffView is a filtered, sorted takeoff with totals. Subtotal covers the
// whole project regardless of filters.
type TakeoffView struct {
	Items    []takeoff.Item  `json:"items"`
	Totals   takeoff.Totals  `json:"totals"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Takeoff derives the display view of a project's takeoff.
func (s *Service) Takeoff(projectID string, opts takeoff.ViewOptions) (TakeoffView, error) {
	proj, err := s.store.Get(projectID)
	if err != nil {
		return TakeoffView{}, err
	}
	items := takeoff.DeriveView(proj.Takeoff, opts)
	return TakeoffView{
		Items:    items,
		Totals:   takeoff.DeriveTotals(items),
		Subtotal: takeoff.DeriveTotals(proj.Takeoff).Subtotal,
	}, nil
}

// AddItem classifies and appends a manual item.
func (s *Service) AddItem(ctx context.Context, projectID string, in takeoff.NewItemInput) (takeoff.Item, error) {
	if err := takeoff.ValidateNewItem(in); err != nil {
		return takeoff.Item{}, err
	}
	if _, err := s.store.Get(projectID); err != nil {
		return takeoff.Item{}, err
	}

	item := takeoff.ClassifyAndCreate(ctx, s.backend, in, s.store.IDs(), s.now())
	_, err := s.store.Update(ctx, projectID, func(p project.Project) project.Project {
		p.Takeoff = append(p.Takeoff, item)
		p.Message = "Takeoff item added successfully!"
		return p
	})
	if err != nil {
		return takeoff.Item{}, err
	}
	s.record(ctx, projectID, activity.TypeItemAdded, fmt.Sprintf("Added %q to %s.", item.Description, item.Division), false)
	return item, nil
}

// UpdateItem edits one field. An out-of-range value is ignored: the unchanged
// item is returned with applied set to false.
func (s *Service) UpdateItem(ctx context.Context, projectID string, itemID int64, field, raw string) (item takeoff.Item, applied bool, err error) {
	f, err := takeoff.ParseField(field)
	if err != nil {
		return takeoff.Item{}, false, err
	}
	proj, err := s.store.Get(projectID)
	if err != nil {
		return takeoff.Item{}, false, err
	}
	if takeoff.IndexOf(proj.Takeoff, itemID) < 0 {
		return takeoff.Item{}, false, fmt.Errorf("item %d: %w", itemID, takeoff.ErrItemNotFound)
	}

	found := false
	_, err = s.store.Update(ctx, projectID, func(p project.Project) project.Project {
		idx := takeoff.IndexOf(p.Takeoff, itemID)
		if idx < 0 {
			return p
		}
		found = true
		item, applied = takeoff.ApplyFieldUpdate(p.Takeoff[idx], f, raw)
		p.Takeoff[idx] = item
		return p
	})
	if err != nil {
		return takeoff.Item{}, false, err
	}
	if !found {
		return takeoff.Item{}, false, fmt.Errorf("item %d: %w", itemID, takeoff.ErrItemNotFound)
	}
	return item, applied, nil
}

// DeleteItem removes an item.
func (s *Service) DeleteItem(ctx context.Context, projectID string, itemID int64) error {
	return s.editTakeoff(ctx, projectID, func(items []takeoff.Item) ([]takeoff.Item, error) {
		return takeoff.RemoveItem(items, itemID)
	})
}

// AcceptTableItem marks a table-generated item as reviewed.
func (s *Service) AcceptTableItem(ctx context.Context, projectID string, itemID int64) error {
	return s.editTakeoff(ctx, projectID, func(items []takeoff.Item) ([]takeoff.Item, error) {
		return takeoff.AcceptTableItem(items, itemID)
	})
}

// RejectTableItem removes a table-generated item.
func (s *Service) RejectTableItem(ctx context.Context, projectID string, itemID int64) error {
	return s.editTakeoff(ctx, projectID, func(items []takeoff.Item) ([]takeoff.Item, error) {
		return takeoff.RejectTableItem(items, itemID)
	})
}

func (s *Service) editTakeoff(ctx context.Context, projectID string, fn func([]takeoff.Item) ([]takeoff.Item, error)) error {
	var editErr error
	_, err := s.store.Update(ctx, projectID, func(p project.Project) project.Project {
		items, err := fn(p.Takeoff)
		if err != nil {
			editErr = err
			return p
		}
		p.Takeoff = items
		return p
	})
	if err != nil {
		return err
	}
	return editErr
}

// PatchProject applies the user-editable fields in one update. Out-of-range
// preferences reject the whole patch.
func (s *Service) PatchProject(ctx context.Context, projectID string, edit project.Patch) (project.Project, error) {
	if prefs := edit.Preferences; prefs != nil {
		if prefs.ScopeSensitivity < 0 || prefs.ScopeSensitivity > 1 || prefs.DefaultLaborRate < 0 || prefs.DefaultMaterialRate < 0 {
			return project.Project{}, fmt.Errorf("%w: preferences out of range", project.ErrInvalidInput)
		}
	}
	return s.store.Patch(ctx, projectID, edit)
}

// DeleteFile removes a file from the backend and then from the project.
func (s *Service) DeleteFile(ctx context.Context, projectID, fileID string) (project.Project, error) {
	proj, err := s.store.Get(projectID)
	if err != nil {
		return project.Project{}, err
	}
	var rec *project.FileRecord
	for i := range proj.Files {
		if proj.Files[i].HasID() && proj.Files[i].FileID() == fileID {
			rec = &proj.Files[i]
			break
		}
	}
	if rec == nil {
		return project.Project{}, ErrFileNotFound
	}

	if err := s.backend.DeleteFile(ctx, projectID, fileID); err != nil {
		s.setStatus(ctx, projectID, activity.TypeFileDeleted, fmt.Sprintf(
			"Failed to delete %s. Please check your internet connection and try again.", rec.Name), true)
		return project.Project{}, err
	}

	msg := fmt.Sprintf("Deleted %s successfully!", rec.Name)
	updated, err := s.store.Update(ctx, projectID, func(p project.Project) project.Project {
		files := make([]project.FileRecord, 0, len(p.Files))
		for _, f := range p.Files {
			if f.FileID() != fileID {
				files = append(files, f)
			}
		}
		p.Files = files
		p.Message = msg
		return p
	})
	if err != nil {
		return project.Project{}, err
	}
	s.record(ctx, projectID, activity.TypeFileDeleted, msg, false)
	return updated, nil
}

// AddNote appends an empty note.
func (s *Service) AddNote(ctx context.Context, projectID string) (project.Note, error) {
	var note project.Note
	_, err := s.store.Update(ctx, projectID, func(p project.Project) project.Project {
		p, note = project.AddNote(p, s.now())
		return p
	})
	return note, err
}

// UpdateNote replaces a note's text.
func (s *Service) UpdateNote(ctx context.Context, projectID, noteID, text string) error {
	return s.editProject(ctx, projectID, func(p project.Project) (project.Project, error) {
		return project.UpdateNote(p, noteID, text)
	})
}

// DeleteNote removes a note.
func (s *Service) DeleteNote(ctx context.Context, projectID, noteID string) error {
	return s.editProject(ctx, projectID, func(p project.Project) (project.Project, error) {
		return project.DeleteNote(p, noteID)
	})
}

// CommentTable sets a reviewer comment on an extracted table.
func (s *Service) CommentTable(ctx context.Context, projectID, tableID, comment string) error {
	return s.editProject(ctx, projectID, func(p project.Project) (project.Project, error) {
		return project.CommentTable(p, tableID, comment)
	})
}

func (s *Service) editProject(ctx context.Context, projectID string, fn func(project.Project) (project.Project, error)) error {
	var editErr error
	_, err := s.store.Update(ctx, projectID, func(p project.Project) project.Project {
		next, err := fn(p)
		if err != nil {
			editErr = err
			return p
		}
		return next
	})
	return errors.Join(err, editErr)
}

// TableView is an extracted table with the takeoff items generated from it.
type TableView struct {
	project.Table
	LinkedItems []takeoff.Item `json:"linkedItems"`
}

// TableGroupView is a classification group of tables.
type TableGroupView struct {
	Type   string      `json:"type"`
	Tables []TableView `json:"tables"`
}

// Tables lists a project's extracted tables grouped by classification.
func (s *Service) Tables(projectID string, filter project.TableFilter) ([]TableGroupView, error) {
	proj, err := s.store.Get(projectID)
	if err != nil {
		return nil, err
	}
	groups := project.GroupTables(project.FilterTables(proj.Tables, filter))
	out := make([]TableGroupView, 0, len(groups))
	for _, g := range groups {
		view := TableGroupView{Type: g.Type, Tables: make([]TableView, 0, len(g.Tables))}
		for _, t := range g.Tables {
			view.Tables = append(view.Tables, TableView{
				Table:       t,
				LinkedItems: takeoff.LinkedToTable(proj.Takeoff, t.ID, t.SourcePage),
			})
		}
		out = append(out, view)
	}
	return out, nil
}
