package takeoff

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// SortField names a sortable column. SortTotalCost is derived, not stored.
type SortField string

const (
	SortDivision    SortField = "division"
	SortDescription SortField = "description"
	SortQuantity    SortField = "quantity"
	SortUnit        SortField = "unit"
	SortUnitCost    SortField = "unitCost"
	SortModifier    SortField = "modifier"
	SortTotalCost   SortField = "totalCost"
	SortCreatedAt   SortField = "createdAt"
)

// SortDirection is asc or desc.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// ViewOptions filters and orders a takeoff for display.
type ViewOptions struct {
	SearchTerm    string
	Divisions     []string
	TableOnly     bool
	SortField     SortField
	SortDirection SortDirection
}

// DeriveView returns the filtered, stably sorted subset of items. An empty
// sort field keeps list order.
func DeriveView(items []Item, opts ViewOptions) []Item {
	term := strings.ToLower(strings.TrimSpace(opts.SearchTerm))
	wanted := make(map[string]struct{}, len(opts.Divisions))
	for _, code := range opts.Divisions {
		wanted[code] = struct{}{}
	}

	view := make([]Item, 0, len(items))
	for _, it := range items {
		if term != "" &&
			!strings.Contains(strings.ToLower(it.Description), term) &&
			!strings.Contains(strings.ToLower(it.Division), term) {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[DivisionCode(it.Division)]; !ok {
				continue
			}
		}
		if opts.TableOnly && !it.FromTable() {
			continue
		}
		view = append(view, it)
	}

	if opts.SortField == "" {
		return view
	}
	desc := opts.SortDirection == Descending
	sort.SliceStable(view, func(i, j int) bool {
		c := compareBy(opts.SortField, view[i], view[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return view
}

func compareBy(field SortField, a, b Item) int {
	switch field {
	case SortDivision:
		return strings.Compare(strings.ToLower(a.Division), strings.ToLower(b.Division))
	case SortDescription:
		return strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
	case SortUnit:
		return strings.Compare(strings.ToLower(a.Unit), strings.ToLower(b.Unit))
	case SortQuantity:
		return compareFloat(a.Quantity, b.Quantity)
	case SortUnitCost:
		return compareFloat(a.UnitCost, b.UnitCost)
	case SortModifier:
		return compareFloat(a.Modifier, b.Modifier)
	case SortTotalCost:
		return a.Total().Cmp(b.Total())
	case SortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// DeriveTotals counts items and sums their totals.
func DeriveTotals(items []Item) Totals {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Total())
	}
	return Totals{Count: len(items), Subtotal: sum}
}

// ParseSortField validates a sort field name.
func ParseSortField(name string) (SortField, bool) {
	switch f := SortField(name); f {
	case SortDivision, SortDescription, SortQuantity, SortUnit, SortUnitCost, SortModifier, SortTotalCost, SortCreatedAt:
		return f, true
	}
	return "", false
}

// LinkedToTable returns the items generated from the given table. Items that
// carry no table id are matched on source page.
func LinkedToTable(items []Item, tableID string, sourcePage int) []Item {
	var linked []Item
	for _, it := range items {
		if !it.FromTable() {
			continue
		}
		if it.Metadata.TableID == tableID || (sourcePage > 0 && it.Metadata.SourcePage == sourcePage) {
			linked = append(linked, it)
		}
	}
	return linked
}
