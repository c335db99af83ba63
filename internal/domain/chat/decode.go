package chat

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/rpggio/estimator/internal/domain/takeoff"
)

type wireAction struct {
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Field       string          `json:"field"`
	Value       json.RawMessage `json:"value"`
	Division    string          `json:"division"`
	Quantity    takeoff.Number  `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitCost    takeoff.Number  `json:"unitCost"`
	Modifier    takeoff.Number  `json:"modifier"`
	Comment     string          `json:"comment"`
}

// DecodeActions converts raw assistant actions into typed ones. Entries that
// are not JSON objects decode as Unknown so they are reported, not lost.
func DecodeActions(raw []json.RawMessage) []Action {
	actions := make([]Action, 0, len(raw))
	for _, r := range raw {
		var w wireAction
		if err := json.Unmarshal(r, &w); err != nil {
			actions = append(actions, Unknown{Type: "malformed"})
			continue
		}
		switch w.Type {
		case "updateTakeoff":
			actions = append(actions, UpdateTakeoff{
				Description: w.Description,
				Field:       w.Field,
				Value:       rawValue(w.Value),
			})
		case "addTakeoff":
			actions = append(actions, AddTakeoff{
				DivisionCode: w.Division,
				Description:  w.Description,
				Quantity:     w.Quantity.Float64(),
				Unit:         w.Unit,
				UnitCost:     w.UnitCost.Float64(),
				Modifier:     w.Modifier.Float64(),
				Comment:      w.Comment,
			})
		default:
			actions = append(actions, Unknown{Type: w.Type})
		}
	}
	return actions
}

// rawValue renders a JSON scalar the way a form input would hold it.
func rawValue(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return strings.Trim(string(v), `"`)
}
