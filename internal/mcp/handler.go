package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/estimator/internal/domain/project"
	"github.com/rpggio/estimator/internal/domain/takeoff"
	"github.com/rpggio/estimator/internal/workspace"
)

// Workspace defines the workspace operations needed by MCP.
type Workspace interface {
	Projects() []project.Project
	Selected() (project.Project, bool)
	Takeoff(projectID string, opts takeoff.ViewOptions) (workspace.TakeoffView, error)
	UpdateItem(ctx context.Context, projectID string, itemID int64, field, raw string) (takeoff.Item, bool, error)
	AddItem(ctx context.Context, projectID string, in takeoff.NewItemInput) (takeoff.Item, error)
	ScanTakeoff(ctx context.Context, projectID string) (project.Project, error)
}

var _ Workspace = (*workspace.Service)(nil)

// Handler implements the MCP tools.
type Handler struct {
	ws Workspace
}

// NewHandler creates a new MCP handler.
func NewHandler(ws Workspace) *Handler {
	return &Handler{ws: ws}
}

func (h *Handler) ListProjects(_ context.Context, _ *sdkmcp.CallToolRequest, _ ListProjectsParams) (*sdkmcp.CallToolResult, any, error) {
	projects := h.ws.Projects()
	resp := ListProjectsResponse{Projects: make([]project.ProjectSummary, 0, len(projects))}
	for _, p := range projects {
		resp.Projects = append(resp.Projects, p.Summarize())
	}
	if sel, ok := h.ws.Selected(); ok {
		resp.Selected = sel.ID
	}
	return jsonResult(resp)
}

func (h *Handler) GetTakeoff(_ context.Context, _ *sdkmcp.CallToolRequest, in GetTakeoffParams) (*sdkmcp.CallToolResult, any, error) {
	projectID, err := h.projectOrSelected(in.ProjectID)
	if err != nil {
		return errorResult(err)
	}
	opts := takeoff.ViewOptions{
		SearchTerm: in.Search,
		Divisions:  in.Divisions,
		TableOnly:  in.TableOnly,
	}
	if in.Sort != "" {
		field, ok := takeoff.ParseSortField(in.Sort)
		if !ok {
			return errorResult(fmt.Errorf("%w: sort %q", takeoff.ErrUnknownField, in.Sort))
		}
		opts.SortField = field
		opts.SortDirection = takeoff.Ascending
		if in.Direction == string(takeoff.Descending) {
			opts.SortDirection = takeoff.Descending
		}
	}

	view, err := h.ws.Takeoff(projectID, opts)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(GetTakeoffResponse{
		ProjectID:       projectID,
		Items:           view.Items,
		Count:           view.Totals.Count,
		Subtotal:        view.Totals.Subtotal.StringFixed(2),
		ProjectSubtotal: view.Subtotal.StringFixed(2),
	})
}

func (h *Handler) UpdateTakeoffItem(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateTakeoffItemParams) (*sdkmcp.CallToolResult, any, error) {
	projectID, err := h.projectOrSelected(in.ProjectID)
	if err != nil {
		return errorResult(err)
	}
	item, applied, err := h.ws.UpdateItem(ctx, projectID, in.ItemID, in.Field, in.Value)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(UpdateTakeoffItemResponse{Item: item, Applied: applied})
}

func (h *Handler) AddTakeoffItem(ctx context.Context, _ *sdkmcp.CallToolRequest, in AddTakeoffItemParams) (*sdkmcp.CallToolResult, any, error) {
	projectID, err := h.projectOrSelected(in.ProjectID)
	if err != nil {
		return errorResult(err)
	}
	item, err := h.ws.AddItem(ctx, projectID, takeoff.NewItemInput{
		Description:  in.Description,
		DivisionCode: in.Division,
		Quantity:     in.Quantity,
		Unit:         in.Unit,
		UnitCost:     in.UnitCost,
		Modifier:     in.Modifier,
		Comment:      in.Comment,
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(item)
}

func (h *Handler) ScanTakeoff(ctx context.Context, _ *sdkmcp.CallToolRequest, in ScanTakeoffParams) (*sdkmcp.CallToolResult, any, error) {
	projectID, err := h.projectOrSelected(in.ProjectID)
	if err != nil {
		return errorResult(err)
	}
	p, err := h.ws.ScanTakeoff(ctx, projectID)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(ScanTakeoffResponse{ProjectID: p.ID, Message: p.Message, ItemCount: len(p.Takeoff)})
}

func (h *Handler) ListDivisions(_ context.Context, _ *sdkmcp.CallToolRequest, _ ListDivisionsParams) (*sdkmcp.CallToolResult, any, error) {
	return jsonResult(ListDivisionsResponse{Divisions: takeoff.Divisions()})
}

func (h *Handler) projectOrSelected(projectID string) (string, error) {
	if projectID != "" {
		return projectID, nil
	}
	sel, ok := h.ws.Selected()
	if !ok {
		return "", project.ErrProjectNotFound
	}
	return sel.ID, nil
}

func jsonResult(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}

// errorResult reports a domain error as a tool error so the model can react
// to it.
func errorResult(err error) (*sdkmcp.CallToolResult, any, error) {
	data, mErr := json.Marshal(MapError(err))
	if mErr != nil {
		return nil, nil, err
	}
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}
