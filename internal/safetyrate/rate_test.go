package safetyrate

import (
	"math"
	"testing"
)

func TestComputeRatesUsesTensOfHours(t *testing.T) {
	got := ComputeRates(Sums{Accidents: 2, LostWorkdays: 3, HoursWorked: 100})
	if got.TF != 2000 {
		t.Fatalf("expected tf 2000, got %v", got.TF)
	}
	if got.TG != 3 {
		t.Fatalf("expected tg 3, got %v", got.TG)
	}
}

func TestComputeRatesZeroHours(t *testing.T) {
	got := ComputeRates(Sums{Accidents: 5, LostWorkdays: 9})
	if got.TF != 0 || got.TG != 0 {
		t.Fatalf("expected zero rates, got %+v", got)
	}
	if math.IsNaN(got.TF) || math.IsInf(got.TF, 0) {
		t.Fatalf("expected finite tf")
	}
}

func TestComputeRatesRoundsToFourPlaces(t *testing.T) {
	got := ComputeRates(Sums{Accidents: 1, LostWorkdays: 1, HoursWorked: 3})
	// 1e6 / 30 = 33333.3333...; 1e3 / 30 = 33.3333...
	if got.TF != 33333.3333 {
		t.Fatalf("unexpected tf %v", got.TF)
	}
	if got.TG != 33.3333 {
		t.Fatalf("unexpected tg %v", got.TG)
	}
}

func TestWeightedDiffersFromSimpleAverage(t *testing.T) {
	small := Sums{Accidents: 1, HoursWorked: 10}
	large := Sums{Accidents: 1, HoursWorked: 990}

	weighted := ComputeRates(small.Add(large))
	averaged := SimpleAverage([]Rates{ComputeRates(small), ComputeRates(large)})

	if weighted.TF != 200 {
		t.Fatalf("expected weighted tf 200, got %v", weighted.TF)
	}
	if averaged.TF == weighted.TF {
		t.Fatalf("expected simple average to differ from weighted rate")
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		part, whole, want float64
	}{
		{1, 3, 33.33},
		{2, 3, 66.67},
		{5, 0, 0},
		{0, 4, 0},
		{4, 4, 100},
	}
	for _, tc := range cases {
		if got := Percentage(tc.part, tc.whole); got != tc.want {
			t.Fatalf("Percentage(%v, %v) = %v, want %v", tc.part, tc.whole, got, tc.want)
		}
	}
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	if got := Round(2.345, 2); got != 2.35 {
		t.Fatalf("expected 2.35, got %v", got)
	}
	if got := Round(-2.345, 2); got != -2.35 {
		t.Fatalf("expected -2.35, got %v", got)
	}
}

func TestMean(t *testing.T) {
	if got := Mean([]float64{80, 90}, PercentPlaces); got != 85 {
		t.Fatalf("expected 85, got %v", got)
	}
	if got := Mean(nil, PercentPlaces); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}
