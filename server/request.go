package server

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/spektr-org/climadash/engine"
)

// FilterRequest is the dashboard filter as sent in the query string.
// Absent bounds fall back to the dataset extent.
type FilterRequest struct {
	YearMin   *int     `form:"year_min"`
	YearMax   *int     `form:"year_max"`
	Countries []string `form:"country" binding:"omitempty,max=500,dive,max=128"`
	TempMin   *float64 `form:"temp_min" binding:"omitempty,finite"`
	TempMax   *float64 `form:"temp_max" binding:"omitempty,finite"`
	CO2Min    *float64 `form:"co2_min" binding:"omitempty,finite"`
	CO2Max    *float64 `form:"co2_max" binding:"omitempty,finite"`
	RenewMin  *float64 `form:"renew_min" binding:"omitempty,finite"`
	RenewMax  *float64 `form:"renew_max" binding:"omitempty,finite"`
}

// ExportRequest selects the export file format.
type ExportRequest struct {
	Format string `form:"format" binding:"omitempty,oneof=csv xlsx"`
}

var registerOnce sync.Once

// registerValidators adds the filter rules to gin's validator engine.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]; name != "" && name != "-" {
				return name
			}
			return f.Name
		})
		_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
			f := fl.Field().Float()
			return !math.IsNaN(f) && !math.IsInf(f, 0)
		})
		v.RegisterStructValidation(validateRanges, FilterRequest{})
	})
}

// validateRanges rejects any pair whose min exceeds its max.
func validateRanges(sl validator.StructLevel) {
	r := sl.Current().Interface().(FilterRequest)
	if r.YearMin != nil && r.YearMax != nil && *r.YearMin > *r.YearMax {
		sl.ReportError(r.YearMax, "year_max", "YearMax", "gtefield", "year_min")
	}
	check := func(lo, hi *float64, field, name, param string) {
		if lo != nil && hi != nil && *lo > *hi {
			sl.ReportError(*hi, name, field, "gtefield", param)
		}
	}
	check(r.TempMin, r.TempMax, "TempMax", "temp_max", "temp_min")
	check(r.CO2Min, r.CO2Max, "CO2Max", "co2_max", "co2_min")
	check(r.RenewMin, r.RenewMax, "RenewMax", "renew_max", "renew_min")
}

// Validate applies the same rules as query binding, for callers outside gin.
func (r FilterRequest) Validate() error {
	registerValidators()
	if err := binding.Validator.ValidateStruct(r); err != nil {
		return errors.New(describe(err))
	}
	return nil
}

// Filters resolves the request against the dataset bounds.
func (r FilterRequest) Filters(b engine.Bounds) engine.ClimateFilters {
	f := engine.DefaultFilters(b)
	if r.YearMin != nil {
		f.YearMin = *r.YearMin
	}
	if r.YearMax != nil {
		f.YearMax = *r.YearMax
	}
	if len(r.Countries) > 0 {
		f.Countries = append([]string(nil), r.Countries...)
	}
	setFloat(&f.TempMin, r.TempMin)
	setFloat(&f.TempMax, r.TempMax)
	setFloat(&f.CO2Min, r.CO2Min)
	setFloat(&f.CO2Max, r.CO2Max)
	setFloat(&f.RenewMin, r.RenewMin)
	setFloat(&f.RenewMax, r.RenewMax)
	return f
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// Query encodes f back into query parameters.
func Query(f engine.ClimateFilters) url.Values {
	q := url.Values{}
	q.Set("year_min", strconv.Itoa(f.YearMin))
	q.Set("year_max", strconv.Itoa(f.YearMax))
	for _, c := range f.Countries {
		q.Add("country", c)
	}
	q.Set("temp_min", formatFloat(f.TempMin))
	q.Set("temp_max", formatFloat(f.TempMax))
	q.Set("co2_min", formatFloat(f.CO2Min))
	q.Set("co2_max", formatFloat(f.CO2Max))
	q.Set("renew_min", formatFloat(f.RenewMin))
	q.Set("renew_max", formatFloat(f.RenewMax))
	return q
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// describe flattens validator errors into one message.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "gtefield":
			msgs = append(msgs, fmt.Sprintf("%s must not be below %s", fe.Field(), fe.Param()))
		case "finite":
			msgs = append(msgs, fmt.Sprintf("%s must be a finite number", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
