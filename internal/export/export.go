// Package export writes a takeoff view as CSV or XLSX.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/rpggio/estimator/internal/domain/takeoff"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat resolves a format name, defaulting to CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Headers are the export column titles.
var Headers = []string{"Division", "Description", "Quantity", "Unit", "Unit Cost", "Modifier %", "Total Cost"}

// SheetName is the XLSX worksheet holding the takeoff.
const SheetName = "Takeoff"

// FileName builds "<project>_takeoff_<YYYY-MM-DD>.<ext>".
func FileName(projectName string, format Format, now time.Time) string {
	name := strings.NewReplacer("/", "_", `\`, "_", `"`, "").Replace(strings.TrimSpace(projectName))
	if name == "" {
		name = "project"
	}
	return fmt.Sprintf("%s_takeoff_%s.%s", name, now.Format("2006-01-02"), format)
}

// Write dispatches to the writer for format.
func Write(w io.Writer, format Format, items []takeoff.Item) error {
	if format == FormatXLSX {
		return WriteXLSX(w, items)
	}
	return WriteCSV(w, items)
}

// WriteCSV writes one quoted row per item. Costs carry two decimals while
// quantity and modifier are written as entered.
func WriteCSV(w io.Writer, items []takeoff.Item) error {
	bw := bufio.NewWriter(w)
	writeRow := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteByte('"')
			bw.WriteString(strings.ReplaceAll(c, `"`, `""`))
			bw.WriteByte('"')
		}
	}

	writeRow(Headers)
	for _, it := range items {
		bw.WriteByte('\n')
		writeRow([]string{
			it.Division,
			it.Description,
			formatNumber(it.Quantity),
			it.Unit,
			decimal.NewFromFloat(it.UnitCost).StringFixed(2),
			formatNumber(it.Modifier),
			it.Total().StringFixed(2),
		})
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// WriteXLSX writes the items to the Takeoff sheet followed by a subtotal row.
func WriteXLSX(w io.Writer, items []takeoff.Item) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	set := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(SheetName, cell, v)
	}

	for i, h := range Headers {
		if err := set(i+1, 1, h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for r, it := range items {
		total, _ := it.Total().Round(2).Float64()
		row := []any{it.Division, it.Description, it.Quantity, it.Unit, it.UnitCost, it.Modifier, total}
		for c, v := range row {
			if err := set(c+1, r+2, v); err != nil {
				return fmt.Errorf("writing row %d: %w", r+2, err)
			}
		}
	}

	subtotal, _ := takeoff.DeriveTotals(items).Subtotal.Round(2).Float64()
	last := len(items) + 2
	if err := set(len(Headers)-1, last, "Subtotal"); err != nil {
		return fmt.Errorf("writing subtotal: %w", err)
	}
	if err := set(len(Headers), last, subtotal); err != nil {
		return fmt.Errorf("writing subtotal: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}
	return nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
