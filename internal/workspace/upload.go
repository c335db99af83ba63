package workspace

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpggio/estimator/internal/document"
	"github.com/rpggio/estimator/internal/domain/activity"
	"github.com/rpggio/estimator/internal/domain/project"
)

// Upload is a file submitted by the user.
type Upload struct {
	Name string
	Data []byte
}

// UploadResult describes a finished batch.
type UploadResult struct {
	Uploaded   []project.FileRecord `json:"uploaded"`
	Duplicates []string             `json:"duplicates"`
	Project    project.Project      `json:"project"`
}

// UploadFiles uploads a batch one file at a time. Files already present with
// the same name and type are skipped. The first invalid file or failed upload
// aborts the rest of the batch. Afterwards spec files are parsed and, for
// document types that describe the project, a summary scan runs once the
// ingest delay has passed.
func (s *Service) UploadFiles(ctx context.Context, projectID string, fileType project.FileType, files []Upload) (UploadResult, error) {
	if _, ok := project.ParseFileType(string(fileType)); !ok {
		return UploadResult{}, fmt.Errorf("%w: %q", ErrInvalidFileType, fileType)
	}
	proj, err := s.store.Get(projectID)
	if err != nil {
		return UploadResult{}, err
	}

	result := UploadResult{Uploaded: []project.FileRecord{}, Duplicates: []string{}}
	var batch []Upload
	seen := map[string]bool{}
	for _, f := range files {
		if proj.HasFile(f.Name, fileType) || seen[f.Name] {
			result.Duplicates = append(result.Duplicates, f.Name)
			continue
		}
		seen[f.Name] = true
		batch = append(batch, f)
	}
	if len(batch) == 0 {
		result.Project = proj
		return result, nil
	}

	status := fmt.Sprintf("Uploading %d %s(s)...", len(batch), fileType)
	_, err = s.store.Update(ctx, projectID, func(p project.Project) project.Project {
		for _, f := range batch {
			p.Files = append(p.Files, project.FileRecord{Name: f.Name, Type: fileType, IsUploading: true})
		}
		p.Message = status
		return p
	})
	if err != nil {
		return result, err
	}
	s.record(ctx, projectID, activity.TypeUpload, status, false)

	data := map[string][]byte{}
	for i, f := range batch {
		pages, err := document.Validate(f.Name, f.Data, s.opts.MaxFileSize)
		if err != nil {
			msg := fmt.Sprintf("Only PDF files are supported: %s skipped.", f.Name)
			if errors.Is(err, document.ErrTooLarge) {
				msg = fmt.Sprintf("%s exceeds the %d MB upload limit.", f.Name, s.opts.MaxFileSize/(1024*1024))
			}
			s.abortBatch(ctx, projectID, fileType, batch[i:], msg)
			s.logger.Warn("upload batch aborted", "project_id", projectID, "file", f.Name, "error", err)
			result.Project, _ = s.store.Get(projectID)
			return result, fmt.Errorf("validating %s: %w", f.Name, err)
		}

		fileID, err := s.backend.Upload(ctx, projectID, f.Name, f.Data)
		if err != nil {
			msg := fmt.Sprintf("Upload failed for %s. Please check your internet connection and try again.", f.Name)
			s.abortBatch(ctx, projectID, fileType, batch[i:], msg)
			s.logger.Error("upload failed", "project_id", projectID, "file", f.Name, "error", err)
			result.Project, _ = s.store.Get(projectID)
			return result, err
		}

		rec, err := s.completeUpload(ctx, projectID, f.Name, fileType, fileID, pages)
		if err != nil {
			return result, err
		}
		result.Uploaded = append(result.Uploaded, rec)
		data[fileID] = f.Data

		if s.opts.Archive != nil {
			if err := s.opts.Archive.Put(ctx, projectID, f.Name, f.Data); err != nil {
				s.logger.Warn("failed to archive document", "project_id", projectID, "file", f.Name, "error", err)
			}
		}
	}

	s.setStatus(ctx, projectID, activity.TypeUpload,
		fmt.Sprintf("%d file(s) uploaded successfully. Processing...", len(result.Uploaded)), false)

	projectID = s.afterUpload(ctx, projectID, fileType, result.Uploaded, data)
	result.Project, _ = s.store.Get(projectID)
	return result, nil
}

// completeUpload assigns the backend identifier to the uploading record.
func (s *Service) completeUpload(ctx context.Context, projectID, name string, fileType project.FileType, fileID string, pages int) (project.FileRecord, error) {
	var rec project.FileRecord
	_, err := s.store.Update(ctx, projectID, func(p project.Project) project.Project {
		idx := uploadingIndex(p, name, fileType)
		if idx < 0 {
			return p
		}
		id := fileID
		p.Files[idx].ID = &id
		p.Files[idx].IsUploading = false
		p.Files[idx].Pages = pages
		p.Files[idx].Error = ""
		rec = p.Files[idx]
		return p
	})
	return rec, err
}

// abortBatch marks the remaining files failed and reports why.
func (s *Service) abortBatch(ctx context.Context, projectID string, fileType project.FileType, rest []Upload, reason string) {
	_, err := s.store.Update(ctx, projectID, func(p project.Project) project.Project {
		for _, f := range rest {
			if idx := uploadingIndex(p, f.Name, fileType); idx >= 0 {
				p.Files[idx].IsUploading = false
				p.Files[idx].Error = reason
			}
		}
		p.Message = reason
		return p
	})
	if err != nil {
		s.logger.Warn("failed to mark aborted uploads", "project_id", projectID, "error", err)
	}
	s.record(ctx, projectID, activity.TypeUpload, reason, true)
}

func uploadingIndex(p project.Project, name string, fileType project.FileType) int {
	for i, f := range p.Files {
		if f.Name == name && f.Type == fileType && f.IsUploading {
			return i
		}
	}
	return -1
}

// afterUpload runs the automatic spec parse and summary scan. A failed spec
// parse ends the run. It returns the project id, which changes when the
// backend assigns a permanent one.
func (s *Service) afterUpload(ctx context.Context, projectID string, fileType project.FileType, uploaded []project.FileRecord, data map[string][]byte) string {
	if fileType == project.FileSpec {
		for _, rec := range uploaded {
			if err := s.acquire(projectID, KindSpec); err != nil {
				s.logger.Info("spec parse already running, skipping automatic parse", "project_id", projectID)
				break
			}
			err := s.parseSpec(ctx, projectID, rec, data[rec.FileID()])
			s.release(projectID, KindSpec)
			if err != nil {
				// The failure status stays visible instead of being replaced by the scan.
				s.logger.Warn("automatic spec parse failed, skipping summary scan", "project_id", projectID, "error", err)
				return projectID
			}
		}
	}

	if !fileType.TriggersSummary() {
		return projectID
	}
	if err := sleep(ctx, s.opts.IngestDelay); err != nil {
		return projectID
	}
	if err := s.acquire(projectID, KindSummary); err != nil {
		s.logger.Info("summary scan already running, skipping auto-scan", "project_id", projectID)
		return projectID
	}
	defer s.release(projectID, KindSummary)

	uploadedIDs := map[string]bool{}
	for _, rec := range uploaded {
		uploadedIDs[rec.FileID()] = true
	}
	markUploaded := func(p project.Project, accepted bool) project.Project {
		for i := range p.Files {
			if uploadedIDs[p.Files[i].FileID()] {
				p.Files[i].Accepted = accepted
			}
		}
		return p
	}

	res, err := s.backend.ScanSummary(ctx, projectID)
	if err == nil && isBlank(res.Summary) {
		err = ErrEmptySummary
	}
	if err != nil {
		msg := fmt.Sprintf("Auto-scan failed: %s. You can try scanning manually from the Summary tab.", errorText(err))
		if _, uerr := s.store.Update(ctx, projectID, func(p project.Project) project.Project {
			p = markUploaded(p, false)
			p.Message = msg
			return p
		}); uerr != nil {
			s.logger.Warn("failed to record auto-scan failure", "project_id", projectID, "error", uerr)
		}
		s.record(ctx, projectID, activity.TypeScanSummary, msg, true)
		return projectID
	}

	updated, err := s.store.Update(ctx, projectID, func(p project.Project) project.Project {
		p = applySummary(p, res)
		p = markUploaded(p, true)
		p.Message = "Project initialized successfully!"
		return p
	})
	if err != nil {
		s.logger.Warn("failed to apply auto-scan", "project_id", projectID, "error", err)
		return projectID
	}
	s.record(ctx, updated.ID, activity.TypeScanSummary, updated.Message, false)
	return updated.ID
}
