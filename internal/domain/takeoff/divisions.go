package takeoff

import (
	"fmt"
	"strings"
)

// Division is a CSI MasterFormat division.
type Division struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// UnknownDivision is the label for items without a division.
const UnknownDivision = "Unknown"

var divisions = []Division{
	{Code: "01", Title: "General Requirements"},
	{Code: "02", Title: "Existing Conditions"},
	{Code: "03", Title: "Concrete"},
	{Code: "04", Title: "Masonry"},
	{Code: "05", Title: "Metals"},
	{Code: "06", Title: "Wood, Plastics, and Composites"},
	{Code: "07", Title: "Thermal and Moisture Protection"},
	{Code: "08", Title: "Openings (Doors, Windows)"},
	{Code: "09", Title: "Finishes"},
	{Code: "10", Title: "Specialties"},
	{Code: "11", Title: "Equipment"},
	{Code: "12", Title: "Furnishings"},
	{Code: "13", Title: "Special Construction"},
	{Code: "14", Title: "Conveying Equipment (Elevators)"},
	{Code: "21", Title: "Fire Suppression"},
	{Code: "22", Title: "Plumbing"},
	{Code: "23", Title: "HVAC"},
	{Code: "25", Title: "Integrated Automation"},
	{Code: "26", Title: "Electrical"},
	{Code: "27", Title: "Communications"},
	{Code: "28", Title: "Electronic Safety and Security"},
	{Code: "31", Title: "Earthwork"},
	{Code: "32", Title: "Exterior Improvements (Landscaping, Paving)"},
	{Code: "33", Title: "Utilities"},
}

// Divisions returns the division table in code order.
func Divisions() []Division {
	out := make([]Division, len(divisions))
	copy(out, divisions)
	return out
}

// DivisionLabel resolves a division code to its display label. Unknown codes
// are returned as-is; an empty code yields "Unknown".
func DivisionLabel(code string) string {
	code = strings.TrimSpace(code)
	for _, d := range divisions {
		if d.Code == code {
			return fmt.Sprintf("Division %s – %s", d.Code, d.Title)
		}
	}
	if code == "" {
		return UnknownDivision
	}
	return code
}

// DivisionCode extracts the code from a label such as "Division 09 – Finishes".
// Labels that are not in that shape have no code.
func DivisionCode(label string) string {
	parts := strings.Split(label, " ")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
