package mcp

import (
	"github.com/rpggio/estimator/internal/domain/project"
	"github.com/rpggio/estimator/internal/domain/takeoff"
)

type ListProjectsParams struct{}

type ListProjectsResponse struct {
	Projects []project.ProjectSummary `json:"projects"`
	Selected string                   `json:"selected,omitempty"`
}

type GetTakeoffParams struct {
	ProjectID string   `json:"project_id,omitempty" jsonschema:"Project id. The selected project is used when omitted."`
	Search    string   `json:"search,omitempty" jsonschema:"Case-insensitive text matched against description and division"`
	Divisions []string `json:"divisions,omitempty" jsonschema:"Two-digit CSI division codes to include"`
	TableOnly bool     `json:"table_only,omitempty" jsonschema:"Only items generated from extracted tables"`
	Sort      string   `json:"sort,omitempty" jsonschema:"Sort field: division, description, quantity, unit, unitCost, modifier, totalCost or createdAt"`
	Direction string   `json:"direction,omitempty" jsonschema:"asc or desc"`
}

type GetTakeoffResponse struct {
	ProjectID       string         `json:"project_id"`
	Items           []takeoff.Item `json:"items"`
	Count           int            `json:"count"`
	Subtotal        string         `json:"subtotal"`
	ProjectSubtotal string         `json:"project_subtotal"`
}

type UpdateTakeoffItemParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"Project id. The selected project is used when omitted."`
	ItemID    int64  `json:"item_id" jsonschema:"Takeoff item id"`
	Field     string `json:"field" jsonschema:"description, division, quantity, unit, unitCost, modifier or comment"`
	Value     string `json:"value" jsonschema:"New value as typed by a user"`
}

type UpdateTakeoffItemResponse struct {
	Item    takeoff.Item `json:"item"`
	Applied bool         `json:"applied"`
}

type AddTakeoffItemParams struct {
	ProjectID   string  `json:"project_id,omitempty" jsonschema:"Project id. The selected project is used when omitted."`
	Description string  `json:"description" jsonschema:"Item description"`
	Division    string  `json:"division,omitempty" jsonschema:"Two-digit CSI division code. Classified automatically when omitted."`
	Quantity    float64 `json:"quantity,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	UnitCost    float64 `json:"unit_cost,omitempty"`
	Modifier    float64 `json:"modifier,omitempty" jsonschema:"Percentage adjustment within [-100, 100]"`
	Comment     string  `json:"comment,omitempty"`
}

type ScanTakeoffParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"Project id. The selected project is used when omitted."`
}

type ScanTakeoffResponse struct {
	ProjectID string `json:"project_id"`
	Message   string `json:"message"`
	ItemCount int    `json:"item_count"`
}

type ListDivisionsParams struct{}

type ListDivisionsResponse struct {
	Divisions []takeoff.Division `json:"divisions"`
}
