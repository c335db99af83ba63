package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rpggio/estimator/internal/backend"
	"github.com/rpggio/estimator/internal/document"
	"github.com/rpggio/estimator/internal/domain/activity"
	"github.com/rpggio/estimator/internal/domain/project"
	"github.com/rpggio/estimator/internal/domain/takeoff"
)

// ScanSummary asks the backend for the project summary and title.
func (s *Service) ScanSummary(ctx context.Context, projectID string) (project.Project, error) {
	if _, err := s.checkScannable(ctx, projectID, activity.TypeScanSummary); err != nil {
		return project.Project{}, err
	}
	if err := s.acquire(projectID, KindSummary); err != nil {
		return project.Project{}, err
	}
	defer s.release(projectID, KindSummary)
	s.setStatus(ctx, projectID, activity.TypeScanSummary, "Scanning summary...", false)

	res, err := s.backend.ScanSummary(ctx, projectID)
	if err == nil && isBlank(res.Summary) {
		err = ErrEmptySummary
	}
	if err != nil {
		s.setStatus(ctx, projectID, activity.TypeScanSummary, fmt.Sprintf(
			"Summary scan failed: %s. Please check that your files are readable PDFs and try again.", errorText(err)), true)
		return project.Project{}, fmt.Errorf("scanning summary: %w", err)
	}

	updated, err := s.store.Update(ctx, projectID, func(p project.Project) project.Project {
		p = applySummary(p, res)
		p = acceptAll(p)
		p.Message = "Summary scanned successfully!"
		return p
	})
	if err != nil {
		return project.Project{}, err
	}
	s.record(ctx, updated.ID, activity.TypeScanSummary, updated.Message, false)
	return updated, nil
}

// ScanDivisions asks the backend for per-division scope descriptions.
func (s *Service) ScanDivisions(ctx context.Context, projectID string) (project.Project, error) {
	if _, err := s.checkScannable(ctx, projectID, activity.TypeScanDivisions); err != nil {
		return project.Project{}, err
	}
	if err := s.acquire(projectID, KindDivisions); err != nil {
		return project.Project{}, err
	}
	defer s.release(projectID, KindDivisions)
	s.setStatus(ctx, projectID, activity.TypeScanDivisions, "Scanning divisions...", false)

	descriptions, err := s.backend.ScanDivisions(ctx, projectID)
	if err != nil {
		s.setStatus(ctx, projectID, activity.TypeScanDivisions, fmt.Sprintf(
			"Divisions scan failed: %s. Please ensure your documents contain construction specifications and try again.", errorText(err)), true)
		return project.Project{}, fmt.Errorf("scanning divisions: %w", err)
	}

	updated, err := s.store.Update(ctx, projectID, func(p project.Project) project.Project {
		p.DivisionDescriptions = descriptions
		p = acceptAll(p)
		p.Message = "Divisions scanned successfully!"
		return p
	})
	if err != nil {
		return project.Project{}, err
	}
	s.record(ctx, projectID, activity.TypeScanDivisions, updated.Message, false)
	return updated, nil
}

// ScanTakeoff asks the backend for takeoff candidates and merges them into
// the project's takeoff.
func (s *Service) ScanTakeoff(ctx context.Context, projectID string) (project.Project, error) {
	if _, err := s.checkScannable(ctx, projectID, activity.TypeScanTakeoff); err != nil {
		return project.Project{}, err
	}
	if err := s.acquire(projectID, KindTakeoff); err != nil {
		return project.Project{}, err
	}
	defer s.release(projectID, KindTakeoff)
	s.setStatus(ctx, projectID, activity.TypeScanTakeoff, "Scanning takeoff...", false)

	candidates, err := s.backend.ScanTakeoff(ctx, projectID)
	if err != nil {
		s.setStatus(ctx, projectID, activity.TypeScanTakeoff, fmt.Sprintf(
			"Takeoff scan failed: %s. Please verify your documents contain quantity information and try again.", errorText(err)), true)
		return project.Project{}, fmt.Errorf("scanning takeoff: %w", err)
	}
	for _, c := range candidates {
		if isBlank(c.Description) {
			s.logger.Debug("takeoff candidate without description", "project_id", projectID, "division", c.Division)
		}
	}

	updated, err := s.store.Update(ctx, projectID, func(p project.Project) project.Project {
		p.Takeoff = takeoff.Merge(p.Takeoff, candidates, takeoff.MergeOptions{
			IDs:         s.store.IDs(),
			Now:         s.now(),
			SourceFiles: p.FileNames(),
		})
		p = acceptAll(p)
		p.Message = fmt.Sprintf("Takeoff scanned successfully! Added/updated %d items.", len(candidates))
		return p
	})
	if err != nil {
		return project.Project{}, err
	}
	s.record(ctx, projectID, activity.TypeScanTakeoff, updated.Message, false)
	return updated, nil
}

// ParseSpec indexes the first uploaded specification manual.
func (s *Service) ParseSpec(ctx context.Context, projectID string) (project.Project, error) {
	proj, err := s.store.Get(projectID)
	if err != nil {
		return project.Project{}, err
	}
	if proj.UploadsPending() {
		s.setStatus(ctx, projectID, activity.TypeSpecParse, "Please wait for all uploads to finish.", true)
		return project.Project{}, ErrUploadsPending
	}
	var spec *project.FileRecord
	for i := range proj.Files {
		if proj.Files[i].Type == project.FileSpec && proj.Files[i].HasID() {
			spec = &proj.Files[i]
			break
		}
	}
	if spec == nil {
		s.setStatus(ctx, projectID, activity.TypeSpecParse, "Please upload a specification PDF to parse.", true)
		return project.Project{}, ErrNoSpec
	}

	if err := s.acquire(projectID, KindSpec); err != nil {
		return project.Project{}, err
	}
	defer s.release(projectID, KindSpec)

	data, err := s.fetchFile(ctx, projectID, *spec)
	if err != nil {
		s.setStatus(ctx, projectID, activity.TypeSpecParse, fmt.Sprintf("Spec parse failed: %s", errorText(err)), true)
		return project.Project{}, err
	}
	if err := s.parseSpec(ctx, projectID, *spec, data); err != nil {
		return project.Project{}, err
	}
	return s.store.Get(projectID)
}

// parseSpec sends a spec file to the backend. The caller holds the spec flag.
func (s *Service) parseSpec(ctx context.Context, projectID string, rec project.FileRecord, data []byte) error {
	s.setStatus(ctx, projectID, activity.TypeSpecParse, "Parsing specification manual...", false)

	index, err := s.backend.ParseSpec(ctx, rec.Name, data)
	if err != nil {
		s.setStatus(ctx, projectID, activity.TypeSpecParse, fmt.Sprintf("Spec parse failed: %s", errorText(err)), true)
		return fmt.Errorf("parsing spec: %w", err)
	}

	_, err = s.store.Update(ctx, projectID, func(p project.Project) project.Project {
		p.SpecIndex = index
		for i := range p.Files {
			if p.Files[i].FileID() == rec.FileID() {
				p.Files[i].Accepted = true
			}
		}
		p.Message = "Spec manual parsed successfully!"
		return p
	})
	if err != nil {
		return err
	}
	s.record(ctx, projectID, activity.TypeSpecParse, "Spec manual parsed successfully!", false)
	return nil
}

// fetchFile reads a document from the archive, falling back to the backend.
func (s *Service) fetchFile(ctx context.Context, projectID string, rec project.FileRecord) ([]byte, error) {
	if s.opts.Archive != nil {
		data, err := s.opts.Archive.Get(ctx, projectID, rec.Name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, document.ErrNotArchived) {
			s.logger.Warn("archive read failed, using backend copy", "project_id", projectID, "file", rec.Name, "error", err)
		}
	}
	return s.backend.GetFile(ctx, projectID, rec.FileID())
}

// applySummary stores a summary result. A temporary project becomes permanent
// and takes the backend's identifier when one is reported.
func applySummary(p project.Project, res backend.SummaryResult) project.Project {
	p.Summary = res.Summary
	if title := strings.TrimSpace(res.Title); title != "" {
		p.Name = title
	}
	if p.IsTemporary && res.ProjectID != "" {
		p.ID = string(res.ProjectID)
	}
	p.IsTemporary = false
	return p
}

func acceptAll(p project.Project) project.Project {
	for i := range p.Files {
		p.Files[i].Accepted = true
	}
	return p
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
