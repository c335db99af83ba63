package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/estimator/internal/domain/takeoff"
)

const serverInstructions = `estimator manages construction cost estimates.

Core concepts:
- Project: a bid being estimated. Temporary projects get a permanent id once their first documents are summarized.
- Takeoff: the project's line items (division, description, quantity, unit, unit cost, modifier %).
- Division: a CSI MasterFormat division, written as "Division 09 – Finishes".

Workflow:
1) Orient: call list_projects. Tools default to the selected project when project_id is omitted.
2) Read: call get_takeoff, filtering by divisions or search text.
3) Extract: scan_takeoff merges new items from the uploaded documents. Items a user edited are never overwritten.
4) Edit: update_takeoff_item and add_takeoff_item. Prefer update over delete-and-add so history is kept.

Division table: estimator://divisions
`

// DivisionsURI is the resource listing the CSI divisions.
const DivisionsURI = "estimator://divisions"

func registerDivisionResource(server *sdkmcp.Server) {
	server.AddResource(&sdkmcp.Resource{
		URI:         DivisionsURI,
		Name:        "divisions",
		Title:       "CSI MasterFormat divisions",
		Description: "Division codes and titles used to classify takeoff items.",
		MIMEType:    "application/json",
	}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
		data, err := json.Marshal(takeoff.Divisions())
		if err != nil {
			return nil, fmt.Errorf("encoding divisions: %w", err)
		}
		uri := DivisionsURI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		return &sdkmcp.ReadResourceResult{
			Contents: []*sdkmcp.ResourceContents{{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			}},
		}, nil
	})
}
