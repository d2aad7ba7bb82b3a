package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/spektr-org/climadash/engine"
	"github.com/spektr-org/climadash/schema"
)

// ============================================================================
// CSV LOADER: Parses the climate CSV into an immutable Table
// ============================================================================
// The header is matched against the schema first so a missing column is
// reported by name. Cells are typed by gota with detection disabled; any
// cell gota cannot parse comes back NaN and is reported with its line.
// ============================================================================

// ErrInvalidCell is returned for an empty, unparsable or out-of-domain cell.
var ErrInvalidCell = errors.New("invalid cell")

// Table is an immutable snapshot of the dataset.
type Table struct {
	rows      []engine.Observation
	view      engine.RecordView
	bounds    engine.Bounds
	countries []string
	skipped   []schema.SkippedColumn
	source    string
	loadedAt  time.Time
}

// LoadFile reads and parses the CSV at path.
func LoadFile(path string, sch schema.Config) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	t, err := Load(f, sch)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	t.source = path
	return t, nil
}

// Load parses CSV data using sch for column layout and types.
// A file with a header and no rows is a valid empty table.
func Load(r io.Reader, sch schema.Config) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}

	header, hasRows, err := peek(raw)
	if err != nil {
		return nil, err
	}

	match, err := sch.MatchHeader(header)
	if err != nil {
		return nil, err
	}

	if !hasRows {
		return newTable(nil, match.Skipped), nil
	}

	types := make(map[string]series.Type, len(sch.Columns))
	for _, col := range sch.Columns {
		types[match.Names[match.Index[col.Key]]] = gotaType(col.Kind)
	}

	df := dataframe.ReadCSV(bytes.NewReader(raw),
		dataframe.HasHeader(true),
		dataframe.Names(match.Names...),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(types),
		dataframe.NaNValues([]string{"", "NA", "NaN", "nan", "<nil>"}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("parse CSV: %w", df.Err)
	}

	rows, err := toObservations(df, sch, match)
	if err != nil {
		return nil, err
	}
	return newTable(rows, match.Skipped), nil
}

// peek reads the header row and reports whether any data row follows.
func peek(raw []byte) ([]string, bool, error) {
	cr := csv.NewReader(bytes.NewReader(raw))
	header, err := cr.Read()
	if err == io.EOF {
		return nil, false, fmt.Errorf("read CSV header: empty input")
	}
	if err != nil {
		return nil, false, fmt.Errorf("read CSV header: %w", err)
	}
	_, err = cr.Read()
	if err == io.EOF {
		return header, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read CSV: %w", err)
	}
	return header, true, nil
}

func gotaType(k schema.Kind) series.Type {
	switch k {
	case schema.KindInteger:
		return series.Int
	case schema.KindFloat:
		return series.Float
	default:
		return series.String
	}
}

// columnData holds one typed schema column pulled out of the frame.
type columnData struct {
	meta   schema.ColumnMeta
	floats []float64
	texts  []string
	nan    []bool
}

func toObservations(df dataframe.DataFrame, sch schema.Config, match *schema.HeaderMatch) ([]engine.Observation, error) {
	cols := make(map[string]columnData, len(sch.Columns))
	for _, col := range sch.Columns {
		s := df.Col(match.Names[match.Index[col.Key]])
		if s.Err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Header, s.Err)
		}
		cd := columnData{meta: col, nan: s.IsNaN()}
		if col.Kind == schema.KindText {
			cd.texts = s.Records()
		} else {
			cd.floats = s.Float()
		}
		cols[col.Key] = cd
	}

	n := df.Nrow()
	rows := make([]engine.Observation, n)
	for i := 0; i < n; i++ {
		line := i + 2 // header is line 1
		for _, col := range sch.Columns {
			if err := checkCell(cols[col.Key], i, line, sch); err != nil {
				return nil, err
			}
		}
		rows[i] = engine.Observation{
			Year:           int(cols[engine.KeyYear].floats[i]),
			Country:        strings.TrimSpace(cols[engine.KeyCountry].texts[i]),
			AvgTemperature: cols[engine.KeyTemperature].floats[i],
			CO2PerCapita:   cols[engine.KeyCO2].floats[i],
			RenewablePct:   cols[engine.KeyRenewable].floats[i],
			ExtremeEvents:  int(cols[engine.KeyEvents].floats[i]),
			Population:     int64(cols[engine.KeyPopulation].floats[i]),
		}
	}
	return rows, nil
}

func checkCell(cd columnData, i, line int, sch schema.Config) error {
	if cd.nan[i] {
		return fmt.Errorf("%w: line %d, column %s: missing or not a %s", ErrInvalidCell, line, cd.meta.Header, cd.meta.Kind)
	}
	if cd.meta.Kind == schema.KindText {
		if strings.TrimSpace(cd.texts[i]) == "" {
			return fmt.Errorf("%w: line %d, column %s: empty", ErrInvalidCell, line, cd.meta.Header)
		}
		return nil
	}

	v := cd.floats[i]
	if math.IsInf(v, 0) {
		return fmt.Errorf("%w: line %d, column %s: not finite", ErrInvalidCell, line, cd.meta.Header)
	}
	if m, ok := sch.Measure(cd.meta.Key); ok {
		if m.Min != nil && v < *m.Min {
			return fmt.Errorf("%w: line %d, column %s: %v below %v", ErrInvalidCell, line, cd.meta.Header, v, *m.Min)
		}
		if m.Max != nil && v > *m.Max {
			return fmt.Errorf("%w: line %d, column %s: %v above %v", ErrInvalidCell, line, cd.meta.Header, v, *m.Max)
		}
	}
	return nil
}

func newTable(rows []engine.Observation, skipped []schema.SkippedColumn) *Table {
	view := engine.Observations(rows)
	return &Table{
		rows:      rows,
		view:      view,
		bounds:    engine.ComputeBounds(view),
		countries: sortedCountries(view),
		skipped:   skipped,
		loadedAt:  time.Now(),
	}
}

func sortedCountries(view engine.RecordView) []string {
	out := engine.UniqueValues(view, engine.KeyCountry)
	sort.Strings(out)
	return out
}

// ============================================================================
// ACCESSORS
// ============================================================================

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// View returns a zero-copy view of the rows.
func (t *Table) View() engine.RecordView { return t.view }

// Observations returns a copy of the rows.
func (t *Table) Observations() []engine.Observation {
	return append([]engine.Observation(nil), t.rows...)
}

// Bounds returns the observed extent of every filterable measure.
func (t *Table) Bounds() engine.Bounds { return t.bounds }

// Countries returns the distinct countries, sorted.
func (t *Table) Countries() []string { return append([]string(nil), t.countries...) }

// Skipped lists CSV columns outside the schema.
func (t *Table) Skipped() []schema.SkippedColumn { return t.skipped }

// Source is the file the table was loaded from, if any.
func (t *Table) Source() string { return t.source }

// LoadedAt is when the table was parsed.
func (t *Table) LoadedAt() time.Time { return t.loadedAt }

// Filter applies the dashboard filter to the table.
func (t *Table) Filter(f engine.ClimateFilters) engine.RecordView {
	return f.Apply(t.view)
}
