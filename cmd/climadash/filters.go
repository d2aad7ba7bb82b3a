package main

import (
	"github.com/spf13/cobra"

	"github.com/spektr-org/climadash/engine"
	"github.com/spektr-org/climadash/server"
)

// filterFlags mirrors the HTTP filter query parameters.
type filterFlags struct {
	yearMin, yearMax   int
	countries          []string
	tempMin, tempMax   float64
	co2Min, co2Max     float64
	renewMin, renewMax float64
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.yearMin, "year-min", 0, "first year (default: dataset minimum)")
	fs.IntVar(&f.yearMax, "year-max", 0, "last year (default: dataset maximum)")
	fs.StringArrayVar(&f.countries, "country", nil, `country to include, repeatable (default "`+engine.AllCountries+`")`)
	fs.Float64Var(&f.tempMin, "temp-min", 0, "minimum average temperature, °C")
	fs.Float64Var(&f.tempMax, "temp-max", 0, "maximum average temperature, °C")
	fs.Float64Var(&f.co2Min, "co2-min", 0, "minimum CO2 tons per capita")
	fs.Float64Var(&f.co2Max, "co2-max", 0, "maximum CO2 tons per capita")
	fs.Float64Var(&f.renewMin, "renew-min", 0, "minimum renewable share, %")
	fs.Float64Var(&f.renewMax, "renew-max", 0, "maximum renewable share, %")
}

// resolve turns the flags that were set into a validated dashboard filter.
func (f *filterFlags) resolve(cmd *cobra.Command, b engine.Bounds) (engine.ClimateFilters, error) {
	fs := cmd.Flags()
	var req server.FilterRequest
	if fs.Changed("year-min") {
		req.YearMin = &f.yearMin
	}
	if fs.Changed("year-max") {
		req.YearMax = &f.yearMax
	}
	req.Countries = f.countries
	floatFlag := func(name string, v *float64) *float64 {
		if fs.Changed(name) {
			return v
		}
		return nil
	}
	req.TempMin = floatFlag("temp-min", &f.tempMin)
	req.TempMax = floatFlag("temp-max", &f.tempMax)
	req.CO2Min = floatFlag("co2-min", &f.co2Min)
	req.CO2Max = floatFlag("co2-max", &f.co2Max)
	req.RenewMin = floatFlag("renew-min", &f.renewMin)
	req.RenewMax = floatFlag("renew-max", &f.renewMax)

	if err := req.Validate(); err != nil {
		return engine.ClimateFilters{}, err
	}
	return req.Filters(b), nil
}
