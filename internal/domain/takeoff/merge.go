package takeoff

import (
	"strings"
	"time"
)

// MergeOptions carries the context a scan merge needs.
type MergeOptions struct {
	IDs         IDGenerator
	Now         time.Time
	SourceFiles []string
}

// Normalize converts a scanned candidate into a fresh GPT-sourced item.
func Normalize(c Candidate, opts MergeOptions) Item {
	files := make([]string, len(opts.SourceFiles))
	copy(files, opts.SourceFiles)
	return Item{
		ID:          opts.IDs.Next(),
		Division:    DivisionLabel(c.Division),
		Description: c.Description,
		Quantity:    c.Quantity.Float64(),
		Unit:        c.Unit,
		UnitCost:    c.UnitCost.Float64(),
		Modifier:    c.Modifier.Float64(),
		SourceFiles: files,
		CreatedAt:   opts.Now,
		Hash:        c.Hash,
		UserEdited:  false,
		Source:      SourceGPT,
		Comment:     c.Comment,
	}
}

// Merge folds scanned candidates into the existing takeoff.
//
// A candidate matches an existing item when descriptions are equal ignoring
// case and division labels are equal exactly. The first match in list order
// wins. Unmatched candidates are appended. Matched items that the user has
// edited are left alone; other matches are replaced in place, keeping the
// existing id and creation time. The input slice is not modified.
func Merge(existing []Item, candidates []Candidate, opts MergeOptions) []Item {
	merged := make([]Item, len(existing), len(existing)+len(candidates))
	copy(merged, existing)

	for _, c := range candidates {
		next := Normalize(c, opts)
		idx := findMatch(existing, next)
		switch {
		case idx < 0:
			merged = append(merged, next)
		case existing[idx].UserEdited:
			// user edits win over rescans
		default:
			next.ID = existing[idx].ID
			next.CreatedAt = existing[idx].CreatedAt
			merged[idx] = next
		}
	}
	return merged
}

func findMatch(items []Item, candidate Item) int {
	for i, it := range items {
		if strings.EqualFold(it.Description, candidate.Description) && it.Division == candidate.Division {
			return i
		}
	}
	return -1
}
