package mcp

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools adds every estimator tool to the server.
func registerTools(server *sdkmcp.Server, h *Handler) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List all estimating projects and the selected one",
	}, h.ListProjects)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_takeoff",
		Description: "Get a project's takeoff items, filtered and sorted, with the filtered and overall subtotals",
	}, h.GetTakeoff)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name: "update_takeoff_item",
		Description: "Set one field of a takeoff item. Out-of-range numbers are ignored and reported with applied=false. " +
			"Editing description, quantity, unit, unitCost or modifier protects the item from being overwritten by rescans.",
	}, h.UpdateTakeoffItem)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_takeoff_item",
		Description: "Add a manual takeoff item. Without a division code the description is classified by the backend.",
	}, h.AddTakeoffItem)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "scan_takeoff",
		Description: "Extract takeoff items from the project's documents and merge them into the takeoff",
	}, h.ScanTakeoff)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_divisions",
		Description: "List the CSI MasterFormat divisions used to classify takeoff items",
	}, h.ListDivisions)
}
