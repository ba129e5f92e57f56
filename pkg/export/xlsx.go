// Package export renders list views as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Column describes one exported column. Value extracts the cell from a row.
type Column[T any] struct {
	Header string
	Width  float64
	Value  func(row T) any
}

// Table is a single sheet export of rows of T.
type Table[T any] struct {
	Sheet   string
	Columns []Column[T]
}

// Write streams the table into a new workbook and writes it to w.
func (t Table[T]) Write(w io.Writer, rows []T) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E0E0E0"}},
	})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("export: stream writer: %w", err)
	}

	for i, col := range t.Columns {
		width := col.Width
		if width <= 0 {
			width = 16
		}
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return fmt.Errorf("export: column width: %w", err)
		}
	}

	header := make([]interface{}, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: col.Header}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("export: header row: %w", err)
	}

	for r, row := range rows {
		cells := make([]interface{}, len(t.Columns))
		for i, col := range t.Columns {
			cells[i] = cellValue(col.Value(row))
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return fmt.Errorf("export: row %d: %w", r+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}
	return f.Write(w)
}

func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.UTC().Format("2006-01-02 15:04")
	case *time.Time:
		if x == nil {
			return ""
		}
		return cellValue(*x)
	case fmt.Stringer:
		return x.String()
	default:
		return x
	}
}

// Serve writes the workbook as an attachment named filename.
func Serve[T any](w http.ResponseWriter, filename string, t Table[T], rows []T) error {
	w.Header().Set("Content-Type", ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return t.Write(w, rows)
}

// Filename builds "<prefix>-<yyyymmdd>.xlsx".
func Filename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s.xlsx", prefix, now.UTC().Format("20060102"))
}
