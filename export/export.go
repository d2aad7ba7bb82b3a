package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/climadash/engine"
	"github.com/spektr-org/climadash/schema"
)

// ============================================================================
// EXPORT: Writes the filtered view back out as CSV or XLSX
// ============================================================================
// Columns follow the schema order and carry the original CSV headers so an
// export can be loaded again by the dataset package. Floats use the shortest
// representation that parses back to the same value.
// ============================================================================

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DefaultPrefix is the file name stem used by the dashboard.
const DefaultPrefix = "filtered_export"

// SheetName is the single worksheet written to XLSX exports.
const SheetName = "filtered"

// ErrUnknownFormat is returned for a format other than csv or xlsx.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	case "":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName builds "<prefix>_YYYYMMDD_HHMMSS.<ext>" from now.
func FileName(prefix, ext string, now time.Time) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format("20060102_150405"), strings.TrimPrefix(ext, "."))
}

// Write encodes view in format f.
func Write(w io.Writer, f Format, view engine.RecordView, sch schema.Config) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, view, sch)
	case FormatXLSX:
		return WriteXLSX(w, view, sch)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// WriteCSV writes a header row and one line per record, without an index column.
func WriteCSV(w io.Writer, view engine.RecordView, sch schema.Config) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sch.Headers()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(sch.Columns))
	for i := 0; i < view.Len(); i++ {
		for c, col := range sch.Columns {
			row[c] = formatCell(view, i, col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush CSV: %w", err)
	}
	return nil
}

func formatCell(view engine.RecordView, i int, col schema.ColumnMeta) string {
	switch col.Kind {
	case schema.KindInteger:
		return strconv.FormatInt(int64(view.Measure(i, col.Key)), 10)
	case schema.KindFloat:
		return strconv.FormatFloat(view.Measure(i, col.Key), 'f', -1, 64)
	default:
		return view.Dimension(i, col.Key)
	}
}

// WriteXLSX writes the view as a single-sheet workbook with typed cells.
func WriteXLSX(w io.Writer, view engine.RecordView, sch schema.Config) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	header := make([]interface{}, len(sch.Columns))
	for c, h := range sch.Headers() {
		header[c] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := 0; i < view.Len(); i++ {
		cells := make([]interface{}, len(sch.Columns))
		for c, col := range sch.Columns {
			switch col.Kind {
			case schema.KindInteger:
				cells[c] = int64(view.Measure(i, col.Key))
			case schema.KindFloat:
				cells[c] = view.Measure(i, col.Key)
			default:
				cells[c] = view.Dimension(i, col.Key)
			}
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush workbook: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ToDir writes a timestamped export into dir and returns its path.
func ToDir(dir string, f Format, view engine.RecordView, sch schema.Config, now time.Time) (string, error) {
	if f != FormatCSV && f != FormatXLSX {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(dir, FileName(DefaultPrefix, string(f), now))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export: %w", err)
	}
	if err := Write(out, f, view, sch); err != nil {
		out.Close()
		os.Remove(path)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close export: %w", err)
	}
	return path, nil
}
