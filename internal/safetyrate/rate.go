// Package safetyrate computes accident frequency (TF) and severity (TG)
// rates and compliance percentages.
//
// Rates are always derived from summed numerators and denominators over the
// whole window. SimpleAverage exists only for displaying already-approved
// per-report values and must not feed the weighted path.
package safetyrate

import (
	"github.com/shopspring/decimal"
)

const (
	// HoursUnit converts stored hours_worked (tens of hours) to hours.
	HoursUnit = 10

	RatePlaces    int32 = 4
	PercentPlaces int32 = 2
)

var (
	frequencyFactor = decimal.NewFromInt(1_000_000)
	severityFactor  = decimal.NewFromInt(1_000)
	hoursUnit       = decimal.NewFromInt(HoursUnit)
	hundred         = decimal.NewFromInt(100)
)

// Sums are the numerators and denominator of a window.
type Sums struct {
	Accidents    int64
	LostWorkdays int64
	// HoursWorked is in stored units (tens of hours).
	HoursWorked float64
}

func (s Sums) Add(other Sums) Sums {
	return Sums{
		Accidents:    s.Accidents + other.Accidents,
		LostWorkdays: s.LostWorkdays + other.LostWorkdays,
		HoursWorked:  s.HoursWorked + other.HoursWorked,
	}
}

type Rates struct {
	TF float64 `json:"tf"`
	TG float64 `json:"tg"`
}

// TotalHours returns actual worked hours.
func TotalHours(hoursWorked float64) float64 {
	return decimal.NewFromFloat(hoursWorked).Mul(hoursUnit).InexactFloat64()
}

// ComputeRates returns TF and TG rounded to 4 places. Zero or negative hours
// yield zero rates.
func ComputeRates(s Sums) Rates {
	total := decimal.NewFromFloat(s.HoursWorked).Mul(hoursUnit)
	if !total.IsPositive() {
		return Rates{}
	}
	tf := decimal.NewFromInt(s.Accidents).Mul(frequencyFactor).Div(total)
	tg := decimal.NewFromInt(s.LostWorkdays).Mul(severityFactor).Div(total)
	return Rates{
		TF: tf.Round(RatePlaces).InexactFloat64(),
		TG: tg.Round(RatePlaces).InexactFloat64(),
	}
}

// Percentage returns part/whole*100 rounded to 2 places, or 0 when whole is 0.
func Percentage(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	p := decimal.NewFromFloat(part).Mul(hundred).Div(decimal.NewFromFloat(whole))
	return p.Round(PercentPlaces).InexactFloat64()
}

// Round rounds half away from zero.
func Round(value float64, places int32) float64 {
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

// Mean is the arithmetic mean of values rounded to places, or 0 for none.
func Mean(values []float64, places int32) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.Div(decimal.NewFromInt(int64(len(values)))).Round(places).InexactFloat64()
}

// SimpleAverage averages already-computed per-report rates. It is the
// display path for approved reports only.
func SimpleAverage(rates []Rates) Rates {
	if len(rates) == 0 {
		return Rates{}
	}
	tf := make([]float64, len(rates))
	tg := make([]float64, len(rates))
	for i, r := range rates {
		tf[i] = r.TF
		tg[i] = r.TG
	}
	return Rates{TF: Mean(tf, RatePlaces), TG: Mean(tg, RatePlaces)}
}
