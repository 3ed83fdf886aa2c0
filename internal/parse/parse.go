// Package parse loads tabular line scan files into raw scans for the
// averaging pipeline. Only the first two columns (distance, value) of each
// source are used; extra columns are ignored. Header rows need no special
// handling: their cells fail numeric coercion and the normaliser drops them.
package parse

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ebsd-data/linescan.report/internal/linescan"
)

// scanLabelPattern matches the line scan number in source file names such as
// "LS12_kam.csv".
var scanLabelPattern = regexp.MustCompile(`LS(\d+)`)

// ScanLabel derives a scan label from a source name: "LS<digits>" anywhere
// in the base name becomes "scan_<digits>", otherwise the base name itself
// is the label. Labels are not required to be unique across a batch.
func ScanLabel(name string) string {
	base := filepath.Base(name)
	if m := scanLabelPattern.FindStringSubmatch(base); m != nil {
		return "scan_" + m[1]
	}
	return base
}

// ReadScan parses one CSV source into a raw scan labelled from name. Any
// record with fewer than two fields makes the source malformed; cells that
// are empty or non-numeric are carried as nil for the normaliser to drop.
func ReadScan(r io.Reader, name string) (linescan.RawScan, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	scan := linescan.RawScan{Label: ScanLabel(name)}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return linescan.RawScan{}, fmt.Errorf("%s: %w", name, err)
		}
		if len(record) < 2 {
			return linescan.RawScan{}, fmt.Errorf("%s: %w", name, linescan.ErrMalformedInput)
		}
		scan.Rows = append(scan.Rows, linescan.RawRow{
			Distance: coerce(record[0]),
			Value:    coerce(record[1]),
		})
	}
	return scan, nil
}

// ReadScanFile parses one CSV file into a raw scan labelled from its name.
func ReadScanFile(path string) (linescan.RawScan, error) {
	f, err := os.Open(path)
	if err != nil {
		return linescan.RawScan{}, fmt.Errorf("open scan file: %w", err)
	}
	defer f.Close()
	return ReadScan(f, path)
}

// ReadScanFiles loads a whole batch. The first failure aborts the batch:
// there is no partial averaging over a mixed valid/invalid set.
func ReadScanFiles(paths []string) ([]linescan.RawScan, error) {
	scans := make([]linescan.RawScan, 0, len(paths))
	for _, p := range paths {
		s, err := ReadScanFile(p)
		if err != nil {
			return nil, err
		}
		scans = append(scans, s)
	}
	return scans, nil
}

// coerce parses a cell to a float, returning nil for empty or non-numeric
// cells.
func coerce(cell string) *float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil
	}
	return &v
}
