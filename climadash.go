// Package climadash is a filterable dashboard over a climate indicators CSV.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/climadash/dataset"
//	    "github.com/spektr-org/climadash/engine"
//	    "github.com/spektr-org/climadash/schema"
//	)
//
//	table, err := dataset.LoadFile("update_temperature.csv", schema.Climate())
//	f := engine.DefaultFilters(table.Bounds())
//	f.Countries = []string{"Canada", "India"}
//	dash := engine.BuildDashboard(table.View(), table.Filter(f))
//
// The engine turns a filtered view into render-ready output: summary lines,
// trend insights, and one chart config per dashboard tab. Rendering (PNG),
// export (CSV, XLSX), the HTTP server and the InfluxDB sink live in their own
// packages. The engine never calls any external service.
package climadash
