package pack

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"
)

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want bool
	}{
		{"nested", Span{4000, 3000}, Span{3500, 3200}, true},
		{"partial", Span{4000, 3000}, Span{3200, 2000}, true},
		{"disjoint", Span{4000, 3000}, Span{2900, 2800}, false},
		{"touching", Span{4000, 3000}, Span{3000, 2000}, false},
		{"identical", Span{10, 5}, Span{10, 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("a.Overlaps(b) = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Errorf("b.Overlaps(a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLanesThreeSpeciesFixture(t *testing.T) {
	// Input order deliberately differs from processing order.
	spans := []Span{
		{Start: 2900, End: 2800}, // C
		{Start: 4000, End: 3000}, // A
		{Start: 3200, End: 2000}, // B
	}
	if got, want := Order(spans), []int{1, 2, 0}; !slices.Equal(got, want) {
		t.Fatalf("Order() = %v, want %v (A, B, C)", got, want)
	}
	// A opens lane 0; B overlaps A and opens lane 1; C ends before A starts
	// overlapping nothing in lane 0 ([2800, 2900] vs [3000, 4000]).
	if got, want := Lanes(spans), []int{0, 0, 1}; !slices.Equal(got, want) {
		t.Errorf("Lanes() = %v, want %v", got, want)
	}
}

func TestLanesKnownOverlaps(t *testing.T) {
	spans := []Span{
		{500, 250},
		{480, 300},
		{460, 100},
		{240, 0},
		{290, 200},
		{90, 10},
	}
	// 290-200 clears lane 1 only by touching 300; 90-10 collides with 240-0
	// in lane 0 and drops into lane 1.
	want := []int{0, 1, 2, 0, 1, 1}
	got := Lanes(spans)
	if !slices.Equal(got, want) {
		t.Errorf("Lanes() = %v, want %v", got, want)
	}
	if LaneCount(got) != 3 {
		t.Errorf("LaneCount() = %d, want 3", LaneCount(got))
	}
}

func TestLanesNoOverlapWithinLane(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	spans := make([]Span, 200)
	for i := range spans {
		end := rng.Float64() * 4000
		spans[i] = Span{Start: end + 1 + rng.Float64()*400, End: end}
	}
	lanes := Lanes(spans)
	for i := range spans {
		for j := i + 1; j < len(spans); j++ {
			if lanes[i] == lanes[j] && spans[i].Overlaps(spans[j]) {
				t.Fatalf("spans %d and %d share lane %d but overlap", i, j, lanes[i])
			}
		}
	}
	// First fit in start order is optimal for interval graphs: the lane
	// count equals the maximum number of spans alive at any start instant.
	depth := 0
	for _, s := range spans {
		alive := 0
		for _, o := range spans {
			if o.Start >= s.Start && o.End < s.Start {
				alive++
			}
		}
		depth = max(depth, alive)
	}
	if got := LaneCount(lanes); got != depth {
		t.Errorf("LaneCount() = %d, want clique depth %d", got, depth)
	}
}

func TestLanesEmpty(t *testing.T) {
	if got := Lanes(nil); len(got) != 0 {
		t.Errorf("Lanes(nil) = %v", got)
	}
}

func TestRows(t *testing.T) {
	xs := []float64{100, 150, 300, 120, 400, 260}
	// 400 sits exactly 100px from 300 and stays on row 0.
	got := Rows(xs, 95)
	want := []int{0, 1, 0, 2, 0, 1}
	if !slices.Equal(got, want) {
		t.Errorf("Rows(95) = %v, want %v", got, want)
	}
	if wide, want := Rows(xs, 140), []int{0, 1, 0, 2, 1, 2}; !slices.Equal(wide, want) {
		t.Errorf("Rows(140) = %v, want %v", wide, want)
	}
}

func TestRowsDeterministicAndSeparated(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	xs := make([]float64, 120)
	for i := range xs {
		xs[i] = rng.Float64() * 1400
	}
	for _, threshold := range []float64{95, 140} {
		first := Rows(xs, threshold)
		for i := 0; i < 5; i++ {
			if again := Rows(xs, threshold); !slices.Equal(first, again) {
				t.Fatalf("Rows not deterministic at %v", threshold)
			}
		}
		for i := range xs {
			for j := i + 1; j < len(xs); j++ {
				if first[i] == first[j] && math.Abs(xs[i]-xs[j]) < threshold {
					t.Fatalf("events %d and %d share row %d at %.1fpx apart", i, j, first[i], math.Abs(xs[i]-xs[j]))
				}
			}
		}
	}
}

func TestRowsEmpty(t *testing.T) {
	got := Rows(nil, 95)
	if got == nil || len(got) != 0 {
		t.Errorf("Rows(nil) = %#v, want empty slice", got)
	}
	if RowCount(got) != 0 {
		t.Errorf("RowCount() = %d", RowCount(got))
	}
}
