package schema

// ============================================================================
// SCHEMA: Describes the shape of the climate dataset
// ============================================================================
// The loader uses it to validate headers and type columns.
// The exporter uses Columns to reproduce the source layout.
// The server uses display names and units to label filters and charts.
// ============================================================================

// Kind is the storage type of a column.
type Kind string

const (
	KindText    Kind = "text"
	KindInteger Kind = "integer"
	KindFloat   Kind = "float"
)

// Config describes the complete shape of a dataset.
type Config struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`

	// Columns is the CSV layout in file order.
	Columns []ColumnMeta `json:"columns"`

	Dimensions []DimensionMeta `json:"dimensions"`
	Measures   []MeasureMeta   `json:"measures"`
}

// ColumnMeta maps a CSV header onto an engine key.
type ColumnMeta struct {
	Header string `json:"header"`
	Key    string `json:"key"`
	Kind   Kind   `json:"kind"`
}

// DimensionMeta describes a string field used for grouping/filtering.
type DimensionMeta struct {
	Key           string `json:"key"`
	DisplayName   string `json:"displayName"`
	Description   string `json:"description,omitempty"`
	Groupable     bool   `json:"groupable"`
	Filterable    bool   `json:"filterable"`
	IsTemporal    bool   `json:"isTemporal,omitempty"`
	TemporalOrder string `json:"temporalOrder,omitempty"` // "chronological" or "reverse"
}

// MeasureMeta describes a numeric field used for aggregation.
type MeasureMeta struct {
	Key                string   `json:"key"`
	DisplayName        string   `json:"displayName"`
	Description        string   `json:"description,omitempty"`
	Unit               string   `json:"unit,omitempty"`
	Kind               Kind     `json:"kind"`
	Min                *float64 `json:"min,omitempty"` // valid domain, nil = unbounded
	Max                *float64 `json:"max,omitempty"`
	DefaultAggregation string   `json:"defaultAggregation,omitempty"`
	Format             string   `json:"format,omitempty"` // printf verb, e.g. "%.1f"
}

// SkippedColumn records why a column was ignored while loading.
type SkippedColumn struct {
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// DimensionKeys returns all dimension keys.
func (c Config) DimensionKeys() []string {
	keys := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// MeasureKeys returns all measure keys.
func (c Config) MeasureKeys() []string {
	keys := make([]string, len(c.Measures))
	for i, m := range c.Measures {
		keys[i] = m.Key
	}
	return keys
}

// Headers returns the CSV headers in file order.
func (c Config) Headers() []string {
	out := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		out[i] = col.Header
	}
	return out
}

// Measure looks up a measure by key.
func (c Config) Measure(key string) (MeasureMeta, bool) {
	for _, m := range c.Measures {
		if m.Key == key {
			return m, true
		}
	}
	return MeasureMeta{}, false
}

// DisplayName returns the label for a dimension or measure key.
// Unknown keys fall back to a title-cased version of the key.
func (c Config) DisplayName(key string) string {
	for _, d := range c.Dimensions {
		if d.Key == key {
			return d.DisplayName
		}
	}
	for _, m := range c.Measures {
		if m.Key == key {
			return m.DisplayName
		}
	}
	return ToDisplayName(key)
}
