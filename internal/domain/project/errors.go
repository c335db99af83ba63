package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrDeleteDeclined indicates the remote delete failed and local deletion
	// was not confirmed.
	ErrDeleteDeclined = errors.New("delete declined after remote failure")
	// ErrNoteNotFound indicates the note doesn't exist.
	ErrNoteNotFound = errors.New("note not found")
	// ErrTableNotFound indicates the table doesn't exist.
	ErrTableNotFound = errors.New("table not found")
)
