package takeoff

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Field names an editable item field.
type Field string

const (
	FieldDescription Field = "description"
	FieldDivision    Field = "division"
	FieldQuantity    Field = "quantity"
	FieldUnit        Field = "unit"
	FieldUnitCost    Field = "unitCost"
	FieldModifier    Field = "modifier"
	FieldComment     Field = "comment"
)

// ParseField validates a field name.
func ParseField(name string) (Field, error) {
	switch f := Field(name); f {
	case FieldDescription, FieldDivision, FieldQuantity, FieldUnit, FieldUnitCost, FieldModifier, FieldComment:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Substantive reports whether editing the field marks the item as user-owned.
func (f Field) Substantive() bool {
	switch f {
	case FieldDescription, FieldQuantity, FieldUnit, FieldUnitCost, FieldModifier:
		return true
	}
	return false
}

// ApplyFieldUpdate returns item with field set from raw. Numeric fields parse
// with a fallback of 0. Negative quantity or unit cost, and modifiers outside
// [-100, 100], are rejected: the original item is returned with false.
func ApplyFieldUpdate(item Item, field Field, raw string) (Item, bool) {
	switch field {
	case FieldQuantity, FieldUnitCost:
		v := ParseNumber(raw)
		if v < 0 {
			return item, false
		}
		if field == FieldQuantity {
			item.Quantity = v
		} else {
			item.UnitCost = v
		}
	case FieldModifier:
		v := ParseNumber(raw)
		if v < -100 || v > 100 {
			return item, false
		}
		item.Modifier = v
	case FieldDescription:
		item.Description = raw
	case FieldDivision:
		item.Division = raw
	case FieldUnit:
		item.Unit = raw
	case FieldComment:
		item.Comment = raw
	default:
		return item, false
	}

	if field.Substantive() {
		item.UserEdited = true
	}
	return item, true
}

// Classifier resolves a free-text description to a division code.
type Classifier interface {
	ClassifyItem(ctx context.Context, description string) (string, error)
}

// ValidateNewItem checks the numeric ranges of a manual item.
func ValidateNewItem(in NewItemInput) error {
	if in.Quantity < 0 || in.UnitCost < 0 {
		return fmt.Errorf("%w: quantity and unit cost must not be negative", ErrInvalidValue)
	}
	if in.Modifier < -100 || in.Modifier > 100 {
		return fmt.Errorf("%w: modifier must be within [-100, 100]", ErrInvalidValue)
	}
	return nil
}

// ClassifyAndCreate builds a manual item. Without an explicit division code the
// classifier is asked; a failed classification leaves the item "Unknown".
func ClassifyAndCreate(ctx context.Context, classifier Classifier, in NewItemInput, ids IDGenerator, now time.Time) Item {
	code := strings.TrimSpace(in.DivisionCode)
	if code == "" && strings.TrimSpace(in.Description) != "" && classifier != nil {
		if classified, err := classifier.ClassifyItem(ctx, in.Description); err == nil {
			code = classified
		}
	}

	return Item{
		ID:          ids.Next(),
		Division:    DivisionLabel(code),
		Description: in.Description,
		Quantity:    in.Quantity,
		Unit:        in.Unit,
		UnitCost:    in.UnitCost,
		Modifier:    in.Modifier,
		SourceFiles: []string{},
		CreatedAt:   now,
		UserEdited:  true,
		Source:      SourceManual,
		Comment:     in.Comment,
	}
}

// IndexOf returns the position of the item with id, or -1.
func IndexOf(items []Item, id int64) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// FindByDescription returns the first item whose description contains needle,
// ignoring case.
func FindByDescription(items []Item, needle string) int {
	needle = strings.ToLower(needle)
	for i, it := range items {
		if strings.Contains(strings.ToLower(it.Description), needle) {
			return i
		}
	}
	return -1
}
