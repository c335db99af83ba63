package takeoff

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies who produced a takeoff item.
type Source string

const (
	SourceGPT    Source = "GPT"
	SourceManual Source = "manual"
)

// MetadataSourceTable marks items generated from an extracted table.
const MetadataSourceTable = "table"

// ItemMetadata is a non-owning back-reference to the table an item came from.
type ItemMetadata struct {
	Source     string `json:"source,omitempty"`
	TableID    string `json:"tableId,omitempty"`
	TableType  string `json:"tableType,omitempty"`
	SourcePage int    `json:"sourcePage,omitempty"`
	Accepted   bool   `json:"accepted,omitempty"`
}

// Item is a single line of the cost estimate.
type Item struct {
	ID          int64         `json:"id"`
	Division    string        `json:"division"`
	Description string        `json:"description"`
	Quantity    float64       `json:"quantity"`
	Unit        string        `json:"unit"`
	UnitCost    float64       `json:"unitCost"`
	Modifier    float64       `json:"modifier"`
	SourceFiles []string      `json:"sourceFiles"`
	CreatedAt   time.Time     `json:"createdAt"`
	Hash        string        `json:"hash"`
	UserEdited  bool          `json:"userEdited"`
	Source      Source        `json:"source"`
	Comment     string        `json:"comment,omitempty"`
	Metadata    *ItemMetadata `json:"metadata,omitempty"`
}

// Total returns quantity × unitCost × (1 + modifier/100).
func (i Item) Total() decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(i.Modifier).Div(decimal.NewFromInt(100)))
	return decimal.NewFromFloat(i.Quantity).Mul(decimal.NewFromFloat(i.UnitCost)).Mul(factor)
}

// FromTable reports whether the item was generated from an extracted table.
func (i Item) FromTable() bool {
	return i.Metadata != nil && i.Metadata.Source == MetadataSourceTable
}

// Candidate is a scanned line item before normalization.
type Candidate struct {
	Division    string `json:"division"`
	Description string `json:"description"`
	Quantity    Number `json:"quantity"`
	Unit        string `json:"unit"`
	UnitCost    Number `json:"unitCost"`
	Modifier    Number `json:"modifier"`
	Hash        string `json:"hash"`
	Comment     string `json:"comment"`
}

// NewItemInput describes a manually entered item.
type NewItemInput struct {
	Description  string
	DivisionCode string
	Quantity     float64
	Unit         string
	UnitCost     float64
	Modifier     float64
	Comment      string
}

// Totals aggregates a list of items.
type Totals struct {
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
}
