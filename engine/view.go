package engine

import "strconv"

// ============================================================================
// RECORD VIEW: Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns consumer data. It reads through this interface.
//
// Implementations:
//   DomainView[T]  reads typed structs via accessor functions (zero-copy)
//   SubView        filtered subset (indices into parent, zero-copy)
//
// Observations are registered once in observationAdapter; every filter,
// group and chart reads them through the keys in types.go.
// ============================================================================

// RecordView provides indexed access to a dataset.
// The engine calls Dimension/Measure in tight loops; keep implementations fast.
type RecordView interface {
	Len() int
	Dimension(index int, key string) string
	Measure(index int, key string) float64
	DimensionKeys() []string // available dimension keys
	MeasureKeys() []string   // available measure keys
}

// ============================================================================
// SUB VIEW: filtered subset (zero-copy)
// ============================================================================

// SubView is a filtered subset of a parent RecordView.
// Holds indices into the parent, no data copy.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	// Flatten nested sub-views so repeated filtering stays one hop deep.
	if sv, ok := parent.(*SubView); ok {
		flat := make([]int, len(indices))
		for i, idx := range indices {
			flat[i] = sv.indices[idx]
		}
		return &SubView{parent: sv.parent, indices: flat}
	}
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Dimension(v.indices[i], key)
}

func (v *SubView) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.indices) {
		return 0
	}
	return v.parent.Measure(v.indices[i], key)
}

func (v *SubView) DimensionKeys() []string { return v.parent.DimensionKeys() }
func (v *SubView) MeasureKeys() []string   { return v.parent.MeasureKeys() }

// ============================================================================
// DOMAIN ADAPTER: Zero-copy typed struct access
// ============================================================================
//
// Usage:
//
//	adapter := engine.NewDomainAdapter[Observation]().
//	    Dimension("country", func(o Observation) string { return o.Country }).
//	    Measure("population", func(o Observation) float64 { return float64(o.Population) })
//
//	view := adapter.Bind(rows)
//
// ============================================================================

// DomainAdapter builds a RecordView from typed structs.
// Declare once, bind many times.
type DomainAdapter[T any] struct {
	dimOrder []string
	mesOrder []string
	dims     map[string]func(T) string
	meas     map[string]func(T) float64
}

// NewDomainAdapter creates a new adapter for type T.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{
		dims: make(map[string]func(T) string),
		meas: make(map[string]func(T) float64),
	}
}

// Dimension registers a dimension accessor.
func (a *DomainAdapter[T]) Dimension(key string, fn func(T) string) *DomainAdapter[T] {
	if _, exists := a.dims[key]; !exists {
		a.dimOrder = append(a.dimOrder, key)
	}
	a.dims[key] = fn
	return a
}

// Measure registers a measure accessor.
func (a *DomainAdapter[T]) Measure(key string, fn func(T) float64) *DomainAdapter[T] {
	if _, exists := a.meas[key]; !exists {
		a.mesOrder = append(a.mesOrder, key)
	}
	a.meas[key] = fn
	return a
}

// Bind creates a RecordView from a data slice. Zero-copy, holds a reference.
func (a *DomainAdapter[T]) Bind(data []T) RecordView {
	return &DomainView[T]{
		data:     data,
		dims:     a.dims,
		meas:     a.meas,
		dimKeys:  a.dimOrder,
		measKeys: a.mesOrder,
	}
}

// DomainView reads typed struct fields via registered accessor functions.
type DomainView[T any] struct {
	data     []T
	dims     map[string]func(T) string
	meas     map[string]func(T) float64
	dimKeys  []string
	measKeys []string
}

func (v *DomainView[T]) Len() int { return len(v.data) }

func (v *DomainView[T]) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.data) {
		return ""
	}
	if fn, ok := v.dims[key]; ok {
		return fn(v.data[i])
	}
	return ""
}

func (v *DomainView[T]) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.data) {
		return 0
	}
	if fn, ok := v.meas[key]; ok {
		return fn(v.data[i])
	}
	return 0
}

func (v *DomainView[T]) DimensionKeys() []string { return v.dimKeys }
func (v *DomainView[T]) MeasureKeys() []string   { return v.measKeys }

// At returns the typed row at index i.
func (v *DomainView[T]) At(i int) T { return v.data[i] }

// ============================================================================
// OBSERVATION BINDING
// ============================================================================

var observationAdapter = NewDomainAdapter[Observation]().
	Dimension(KeyYear, func(o Observation) string { return strconv.Itoa(o.Year) }).
	Dimension(KeyCountry, func(o Observation) string { return o.Country }).
	Measure(KeyYear, func(o Observation) float64 { return float64(o.Year) }).
	Measure(KeyTemperature, func(o Observation) float64 { return o.AvgTemperature }).
	Measure(KeyCO2, func(o Observation) float64 { return o.CO2PerCapita }).
	Measure(KeyRenewable, func(o Observation) float64 { return o.RenewablePct }).
	Measure(KeyEvents, func(o Observation) float64 { return float64(o.ExtremeEvents) }).
	Measure(KeyPopulation, func(o Observation) float64 { return float64(o.Population) })

// Observations binds climate rows as a RecordView. The slice is not copied;
// callers must not mutate it afterwards.
func Observations(rows []Observation) RecordView {
	return observationAdapter.Bind(rows)
}

// ObservationAt reconstructs the typed row at index i of any view.
func ObservationAt(view RecordView, i int) Observation {
	if sv, ok := view.(*SubView); ok && i >= 0 && i < len(sv.indices) {
		if dv, ok := sv.parent.(*DomainView[Observation]); ok {
			return dv.At(sv.indices[i])
		}
	}
	if dv, ok := view.(*DomainView[Observation]); ok && i >= 0 && i < dv.Len() {
		return dv.At(i)
	}
	return Observation{
		Year:           int(view.Measure(i, KeyYear)),
		Country:        view.Dimension(i, KeyCountry),
		AvgTemperature: view.Measure(i, KeyTemperature),
		CO2PerCapita:   view.Measure(i, KeyCO2),
		RenewablePct:   view.Measure(i, KeyRenewable),
		ExtremeEvents:  int(view.Measure(i, KeyEvents)),
		Population:     int64(view.Measure(i, KeyPopulation)),
	}
}

// CollectObservations copies every row of a view into a new slice.
func CollectObservations(view RecordView) []Observation {
	out := make([]Observation, view.Len())
	for i := range out {
		out[i] = ObservationAt(view, i)
	}
	return out
}
