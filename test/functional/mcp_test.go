package functional_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/estimator/internal/domain/project"
	"github.com/rpggio/estimator/internal/domain/takeoff"
	"github.com/rpggio/estimator/internal/testserver"
)

const token = "functional-token"

func seedProject() project.Project {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return project.Project{
		ID:   "p-1",
		Name: "Elementary School Renovation",
		Takeoff: []takeoff.Item{
			{ID: 1, Division: takeoff.DivisionLabel("09"), Description: "Paint walls", Quantity: 100, Unit: "SF", UnitCost: 5, CreatedAt: created, Source: takeoff.SourceGPT},
			{ID: 2, Division: takeoff.DivisionLabel("03"), Description: "Slab on grade", Quantity: 10, Unit: "CY", UnitCost: 150, Modifier: 10, CreatedAt: created, Source: takeoff.SourceGPT},
		},
	}
}

func connect(t *testing.T, ts *testserver.TestServer) *sdkmcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "functional", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: ts.Client(),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any, out any) *sdkmcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, "CallTool %s failed", name)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "tool %s returned no text content", name)
	if out != nil {
		require.NoError(t, json.Unmarshal([]byte(text.Text), out))
	}
	return result
}

func TestMCP_RequiresToken(t *testing.T) {
	ts := testserver.New(t, token)

	resp, err := http.Post(ts.Server.URL+"/mcp", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMCP_TakeoffWorkflow(t *testing.T) {
	ts := testserver.New(t, token, seedProject())
	ts.Backend.On("ClassifyItem", mock.Anything, "Exterior caulking").Return("07", nil).Once()
	session := connect(t, ts)

	var projects struct {
		Projects []project.ProjectSummary `json:"projects"`
		Selected string                   `json:"selected"`
	}
	callTool(t, session, "list_projects", nil, &projects)
	require.Equal(t, "p-1", projects.Selected)
	require.Len(t, projects.Projects, 1)
	require.Equal(t, 2, projects.Projects[0].ItemCount)

	var view struct {
		Items           []takeoff.Item `json:"items"`
		Count           int            `json:"count"`
		Subtotal        string         `json:"subtotal"`
		ProjectSubtotal string         `json:"project_subtotal"`
	}
	callTool(t, session, "get_takeoff", map[string]any{"divisions": []string{"09"}}, &view)
	require.Equal(t, 1, view.Count)
	require.Equal(t, "Paint walls", view.Items[0].Description)
	require.Equal(t, "500.00", view.Subtotal)
	require.Equal(t, "2150.00", view.ProjectSubtotal)

	var updated struct {
		Item    takeoff.Item `json:"item"`
		Applied bool         `json:"applied"`
	}
	callTool(t, session, "update_takeoff_item", map[string]any{"item_id": 1, "field": "quantity", "value": "120"}, &updated)
	require.True(t, updated.Applied)
	require.Equal(t, 120.0, updated.Item.Quantity)
	require.True(t, updated.Item.UserEdited)

	callTool(t, session, "update_takeoff_item", map[string]any{"item_id": 2, "field": "modifier", "value": "250"}, &updated)
	require.False(t, updated.Applied)
	require.Equal(t, 10.0, updated.Item.Modifier)

	var added takeoff.Item
	callTool(t, session, "add_takeoff_item", map[string]any{
		"description": "Exterior caulking",
		"quantity":    400,
		"unit":        "LF",
		"unit_cost":   3,
	}, &added)
	require.Equal(t, takeoff.DivisionLabel("07"), added.Division)
	require.Equal(t, takeoff.SourceManual, added.Source)

	p, err := ts.Workspace.Store().Get("p-1")
	require.NoError(t, err)
	require.Len(t, p.Takeoff, 3)
	ts.Backend.AssertExpectations(t)
}

func TestMCP_ToolErrors(t *testing.T) {
	ts := testserver.New(t, token, seedProject())
	session := connect(t, ts)

	var apiErr struct {
		Code string `json:"code"`
	}
	result := callTool(t, session, "update_takeoff_item", map[string]any{"item_id": 99, "field": "quantity", "value": "1"}, &apiErr)
	require.True(t, result.IsError)
	require.Equal(t, "ITEM_NOT_FOUND", apiErr.Code)

	result = callTool(t, session, "get_takeoff", map[string]any{"project_id": "missing"}, &apiErr)
	require.True(t, result.IsError)
	require.Equal(t, "PROJECT_NOT_FOUND", apiErr.Code)

	result = callTool(t, session, "scan_takeoff", nil, &apiErr)
	require.True(t, result.IsError)
	require.Equal(t, "NO_FILES", apiErr.Code)
}

func TestMCP_DivisionsResource(t *testing.T) {
	ts := testserver.New(t, token)
	session := connect(t, ts)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "estimator://divisions"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)

	var divisions []takeoff.Division
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &divisions))
	require.Equal(t, takeoff.Divisions(), divisions)
}
