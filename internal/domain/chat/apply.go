package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/estimator/internal/domain/takeoff"
)

// ApplyOptions supplies identifiers and time for added items.
type ApplyOptions struct {
	IDs takeoff.IDGenerator
	Now time.Time
}

// Apply runs each action against items in order. Actions that cannot be
// applied are skipped without affecting the rest. The input slice is not
// modified.
func Apply(items []takeoff.Item, actions []Action, opts ApplyOptions) ([]takeoff.Item, Outcome) {
	out := make([]takeoff.Item, len(items))
	copy(out, items)

	var result Outcome
	for _, a := range actions {
		var err error
		switch act := a.(type) {
		case UpdateTakeoff:
			out, err = applyUpdate(out, act)
		case AddTakeoff:
			out, err = applyAdd(out, act, opts)
		case Unknown:
			err = fmt.Errorf("unsupported action %q", act.Type)
		default:
			err = fmt.Errorf("unsupported action %T", a)
		}
		if err != nil {
			result.Skipped = append(result.Skipped, err.Error())
			continue
		}
		result.Applied++
	}
	return out, result
}

func applyUpdate(items []takeoff.Item, act UpdateTakeoff) ([]takeoff.Item, error) {
	if strings.TrimSpace(act.Description) == "" {
		return items, fmt.Errorf("updateTakeoff: missing description")
	}
	field, err := takeoff.ParseField(act.Field)
	if err != nil {
		return items, fmt.Errorf("updateTakeoff: %w", err)
	}
	idx := takeoff.FindByDescription(items, act.Description)
	if idx < 0 {
		return items, fmt.Errorf("updateTakeoff: no item matching %q", act.Description)
	}
	updated, ok := takeoff.ApplyFieldUpdate(items[idx], field, act.Value)
	if !ok {
		return items, fmt.Errorf("updateTakeoff: rejected %s=%q", field, act.Value)
	}
	items[idx] = updated
	return items, nil
}

func applyAdd(items []takeoff.Item, act AddTakeoff, opts ApplyOptions) ([]takeoff.Item, error) {
	in := takeoff.NewItemInput{
		Description: act.Description,
		Quantity:    act.Quantity,
		UnitCost:    act.UnitCost,
		Modifier:    act.Modifier,
	}
	if err := takeoff.ValidateNewItem(in); err != nil {
		return items, fmt.Errorf("addTakeoff: %w", err)
	}
	return append(items, takeoff.Item{
		ID:          opts.IDs.Next(),
		Division:    takeoff.DivisionLabel(act.DivisionCode),
		Description: act.Description,
		Quantity:    act.Quantity,
		Unit:        act.Unit,
		UnitCost:    act.UnitCost,
		Modifier:    act.Modifier,
		SourceFiles: []string{},
		CreatedAt:   opts.Now,
		UserEdited:  false,
		Source:      takeoff.SourceGPT,
		Comment:     act.Comment,
	}), nil
}
