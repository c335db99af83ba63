package chat_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rpggio/estimator/internal/domain/chat"
	"github.com/rpggio/estimator/internal/domain/takeoff"
	"github.com/stretchr/testify/require"
)

type counter struct{ n int64 }

func (c *counter) Next() int64 {
	c.n++
	return c.n
}

func rawActions(t *testing.T, s string) []json.RawMessage {
	t.Helper()
	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

func TestDecodeActions(t *testing.T) {
	actions := chat.DecodeActions(rawActions(t, `[
		{"type":"updateTakeoff","description":"paint","field":"quantity","value":42},
		{"type":"addTakeoff","division":"26","description":"Panel","quantity":"2","unit":"EA","unitCost":1500},
		{"type":"deleteTakeoff","description":"paint"},
		"not an object"
	]`))
	require.Len(t, actions, 4)
	require.Equal(t, chat.UpdateTakeoff{Description: "paint", Field: "quantity", Value: "42"}, actions[0])
	require.Equal(t, chat.AddTakeoff{DivisionCode: "26", Description: "Panel", Quantity: 2, Unit: "EA", UnitCost: 1500}, actions[1])
	require.Equal(t, chat.Unknown{Type: "deleteTakeoff"}, actions[2])
	require.Equal(t, "malformed", chat.Kind(actions[3]))
}

func TestApply_UpdateMarksEditedAndSkipsBadActions(t *testing.T) {
	items := []takeoff.Item{
		{ID: 1, Description: "Paint walls", Division: takeoff.DivisionLabel("09"), Quantity: 100},
		{ID: 2, Description: "Paint ceilings", Division: takeoff.DivisionLabel("09"), Quantity: 5},
	}
	actions := []chat.Action{
		chat.UpdateTakeoff{Description: "PAINT", Field: "quantity", Value: "120"},
		chat.UpdateTakeoff{Description: "carpet", Field: "quantity", Value: "1"},
		chat.UpdateTakeoff{Description: "ceilings", Field: "modifier", Value: "500"},
		chat.UpdateTakeoff{Description: "ceilings", Field: "id", Value: "9"},
		chat.Unknown{Type: "deleteTakeoff"},
	}

	out, outcome := chat.Apply(items, actions, chat.ApplyOptions{IDs: &counter{}, Now: time.Now()})
	require.Equal(t, 1, outcome.Applied)
	require.Len(t, outcome.Skipped, 4)
	require.Equal(t, 5, outcome.Total())

	require.Equal(t, float64(120), out[0].Quantity)
	require.True(t, out[0].UserEdited)
	require.Equal(t, items[1], out[1])
	require.Equal(t, float64(100), items[0].Quantity, "input must not be mutated")
}

func TestApply_AddTakeoff(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	actions := []chat.Action{
		chat.AddTakeoff{DivisionCode: "26", Description: "Panel", Quantity: 2, Unit: "EA", UnitCost: 1500},
		chat.AddTakeoff{Description: "Bad", Quantity: -3},
	}

	out, outcome := chat.Apply(nil, actions, chat.ApplyOptions{IDs: &counter{n: 10}, Now: now})
	require.Equal(t, 1, outcome.Applied)
	require.Len(t, outcome.Skipped, 1)
	require.Len(t, out, 1)

	added := out[0]
	require.Equal(t, int64(11), added.ID)
	require.Equal(t, "Division 26 – Electrical", added.Division)
	require.Equal(t, takeoff.SourceGPT, added.Source)
	require.False(t, added.UserEdited)
	require.Equal(t, now, added.CreatedAt)
}

func TestApply_AddedItemCanBeUpdatedInSameBatch(t *testing.T) {
	actions := []chat.Action{
		chat.AddTakeoff{Description: "Fire extinguisher cabinet", Quantity: 1},
		chat.UpdateTakeoff{Description: "extinguisher", Field: "unitCost", Value: "210.5"},
	}

	out, outcome := chat.Apply(nil, actions, chat.ApplyOptions{IDs: &counter{}, Now: time.Now()})
	require.Equal(t, 2, outcome.Applied)
	require.Equal(t, 210.5, out[0].UnitCost)
	require.True(t, out[0].UserEdited)
	require.Equal(t, takeoff.UnknownDivision, out[0].Division)
}
