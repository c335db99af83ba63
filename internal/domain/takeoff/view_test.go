package takeoff_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rpggio/estimator/internal/domain/takeoff"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func sampleItems() []takeoff.Item {
	return []takeoff.Item{
		{ID: 1, Division: takeoff.DivisionLabel("09"), Description: "Paint walls", Quantity: 10, UnitCost: 5, Modifier: 10},
		{ID: 2, Division: takeoff.DivisionLabel("03"), Description: "Slab", Quantity: 2, UnitCost: 100},
		{ID: 3, Division: takeoff.DivisionLabel("09"), Description: "Ceiling paint", Quantity: 1, UnitCost: 1,
			Metadata: &takeoff.ItemMetadata{Source: takeoff.MetadataSourceTable, TableID: "t1", SourcePage: 4}},
		{ID: 4, Division: takeoff.DivisionLabel("26"), Description: "Outlets", Quantity: 20, UnitCost: 15},
	}
}

func ids(items []takeoff.Item) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestItemTotal(t *testing.T) {
	item := takeoff.Item{Quantity: 10, UnitCost: 5, Modifier: 10}
	require.True(t, decimal.NewFromInt(55).Equal(item.Total()), item.Total().String())
}

func TestDeriveView_SearchKeepsOrder(t *testing.T) {
	view := takeoff.DeriveView(sampleItems(), takeoff.ViewOptions{SearchTerm: "PAINT"})
	require.Equal(t, []int64{1, 3}, ids(view))

	view = takeoff.DeriveView(sampleItems(), takeoff.ViewOptions{SearchTerm: "finishes"})
	require.Equal(t, []int64{1, 3}, ids(view))
}

func TestDeriveView_DivisionAndTableFilters(t *testing.T) {
	view := takeoff.DeriveView(sampleItems(), takeoff.ViewOptions{Divisions: []string{"03", "26"}})
	require.Equal(t, []int64{2, 4}, ids(view))

	view = takeoff.DeriveView(sampleItems(), takeoff.ViewOptions{Divisions: []string{"09"}, TableOnly: true})
	require.Equal(t, []int64{3}, ids(view))
}

func TestDeriveView_Sorting(t *testing.T) {
	items := sampleItems()

	view := takeoff.DeriveView(items, takeoff.ViewOptions{SortField: takeoff.SortTotalCost, SortDirection: takeoff.Descending})
	require.Equal(t, []int64{4, 2, 1, 3}, ids(view))

	view = takeoff.DeriveView(items, takeoff.ViewOptions{SortField: takeoff.SortDescription, SortDirection: takeoff.Ascending})
	require.Equal(t, []int64{3, 4, 1, 2}, ids(view))

	// ties keep their relative order
	view = takeoff.DeriveView(items, takeoff.ViewOptions{SortField: takeoff.SortDivision, SortDirection: takeoff.Ascending})
	require.Equal(t, []int64{2, 1, 3, 4}, ids(view))
	view = takeoff.DeriveView(items, takeoff.ViewOptions{SortField: takeoff.SortDivision, SortDirection: takeoff.Descending})
	require.Equal(t, []int64{4, 1, 3, 2}, ids(view))

	require.Equal(t, []int64{1, 2, 3, 4}, ids(items), "input must not be reordered")
}

func TestDeriveTotals(t *testing.T) {
	items := sampleItems()
	all := takeoff.DeriveTotals(items)
	require.Equal(t, 4, all.Count)
	require.Equal(t, "556.00", all.Subtotal.StringFixed(2))

	filtered := takeoff.DeriveTotals(takeoff.DeriveView(items, takeoff.ViewOptions{SearchTerm: "paint"}))
	require.Equal(t, 2, filtered.Count)
	require.Equal(t, "56.00", filtered.Subtotal.StringFixed(2))

	empty := takeoff.DeriveTotals(nil)
	require.Equal(t, 0, empty.Count)
	require.True(t, empty.Subtotal.IsZero())
}

func TestDivisionHelpers(t *testing.T) {
	require.Equal(t, "Division 09 – Finishes", takeoff.DivisionLabel("09"))
	require.Equal(t, "Unknown", takeoff.DivisionLabel(""))
	require.Equal(t, "09", takeoff.DivisionCode(takeoff.DivisionLabel("09")))
	require.Equal(t, "", takeoff.DivisionCode("Unknown"))
	require.Len(t, takeoff.Divisions(), 24)
}

func TestLinkedToTable(t *testing.T) {
	items := sampleItems()
	items = append(items, takeoff.Item{ID: 5, Metadata: &takeoff.ItemMetadata{Source: takeoff.MetadataSourceTable, SourcePage: 4}})

	linked := takeoff.LinkedToTable(items, "t1", 4)
	require.Equal(t, []int64{3, 5}, ids(linked))
	require.Empty(t, takeoff.LinkedToTable(items, "t9", 0))
}

func TestCandidateDecodingDefaults(t *testing.T) {
	var got []takeoff.Candidate
	raw := `[{"division":"09","description":"Paint","quantity":"12.5","unitCost":null,"modifier":"n/a"},{"quantity":3}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	require.Len(t, got, 2)
	require.Equal(t, 12.5, got[0].Quantity.Float64())
	require.Equal(t, float64(0), got[0].UnitCost.Float64())
	require.Equal(t, float64(0), got[0].Modifier.Float64())
	require.Equal(t, float64(3), got[1].Quantity.Float64())
}

func TestSequence(t *testing.T) {
	now := time.UnixMilli(1_000)
	seq := takeoff.NewSequence(now, 5_000, 20)
	require.Equal(t, int64(5_001), seq.Next())
	seq.Observe(9_000)
	require.Equal(t, int64(9_001), seq.Next())
	seq.Observe(10)
	require.Equal(t, int64(9_002), seq.Next())
}
