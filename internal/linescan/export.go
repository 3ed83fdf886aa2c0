package linescan

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV serialises the table with a header row of
// distance,<scan labels...>,mean and one data row per axis point in
// ascending distance order. Absent cells are written as empty fields, never
// as 0. This textual table is the contract surface for downstream consumers.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(t.Scans)+2)
	header = append(header, "distance")
	for _, col := range t.Scans {
		header = append(header, col.Label)
	}
	header = append(header, "mean")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(header))
	for i := 0; i < t.Axis.Len(); i++ {
		row[0] = formatDistance(t.Axis.Distance(i))
		for j, col := range t.Scans {
			row[j+1] = formatCell(col.Cells[i])
		}
		row[len(row)-1] = formatCell(t.Mean[i])
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// formatDistance renders an axis distance. Axis distances are reconstructed
// as index*step, which can carry float representation noise (3*0.2 is not
// exactly 0.6); ten significant digits absorb that without losing real
// precision at line-scan scales.
func formatDistance(d float64) string {
	return strconv.FormatFloat(d, 'g', 10, 64)
}

// formatCell renders a table cell, empty when the value is absent.
func formatCell(c Cell) string {
	if !c.Present {
		return ""
	}
	return strconv.FormatFloat(c.Value, 'g', -1, 64)
}
