package workspace

import "errors"

var (
	// ErrBusy indicates an operation of the same kind is already running.
	ErrBusy = errors.New("operation already in progress")
	// ErrUploadsPending indicates files are still uploading.
	ErrUploadsPending = errors.New("uploads still in progress")
	// ErrNoFiles indicates the project has no files to scan.
	ErrNoFiles = errors.New("no files to scan")
	// ErrNoSpec indicates no uploaded specification is available.
	ErrNoSpec = errors.New("no specification uploaded")
	// ErrEmptySummary indicates the backend returned no summary.
	ErrEmptySummary = errors.New("summary generation failed - no summary returned")
	// ErrFileNotFound indicates the file doesn't exist on the project.
	ErrFileNotFound = errors.New("file not found")
	// ErrInvalidFileType indicates an unknown file type tag.
	ErrInvalidFileType = errors.New("invalid file type")
	// ErrEmptyMessage indicates a blank chat message.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrInvalidOutcome indicates an unknown bid outcome.
	ErrInvalidOutcome = errors.New("invalid outcome")
)
