package lod

import (
	"testing"

	"github.com/matzehuels/deeptime/pkg/dataset"
)

func TestEventEligible(t *testing.T) {
	tests := []struct {
		name  string
		event dataset.Event
		k     float64
		want  bool
	}{
		{"major at identity", dataset.Event{Name: "Cambrian Explosion", Type: dataset.EventOrigin}, 1, true},
		{"major human at identity", dataset.Event{Name: "Homo Sapiens", Type: dataset.EventHuman}, 1, true},
		{"planetary below threshold", dataset.Event{Name: "Snowball Earth", Type: dataset.EventPlanetary}, 2.4, false},
		{"planetary at threshold", dataset.Event{Name: "Snowball Earth", Type: dataset.EventPlanetary}, 2.5, true},
		{"human below threshold", dataset.Event{Name: "Writing", Type: dataset.EventHuman}, 7.9, false},
		{"human at threshold", dataset.Event{Name: "Writing", Type: dataset.EventHuman}, 8, true},
		{"extinction never", dataset.Event{Name: "Great Dying", Type: dataset.EventExtinction}, 100000, false},
		{"extinction with major name", dataset.Event{Name: "First Animals", Type: dataset.EventExtinction}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EventEligible(tt.event, tt.k); got != tt.want {
				t.Errorf("EventEligible(%q, %v) = %v, want %v", tt.event.Name, tt.k, got, tt.want)
			}
		})
	}
}

func TestMonotonicInScale(t *testing.T) {
	events := []dataset.Event{
		{Name: "Writing", Type: dataset.EventHuman},
		{Name: "Snowball Earth", Type: dataset.EventPlanetary},
		{Name: "Origin of Life", Type: dataset.EventOrigin},
	}
	prevBudget := 0
	prevPeriods := false
	prevEligible := make([]bool, len(events))
	for k := 1.0; k <= 100000; k *= 1.25 {
		if b := EventLabelBudget(k); b < prevBudget {
			t.Fatalf("budget shrank at k=%v: %d < %d", k, b, prevBudget)
		} else {
			prevBudget = b
		}
		if prevPeriods && !PeriodsVisible(k) {
			t.Fatalf("periods hidden again at k=%v", k)
		}
		prevPeriods = PeriodsVisible(k)
		for i, e := range events {
			ok := EventEligible(e, k)
			if prevEligible[i] && !ok {
				t.Fatalf("%q lost eligibility at k=%v", e.Name, k)
			}
			prevEligible[i] = ok
		}
	}
}

func TestEventLabelBudget(t *testing.T) {
	tests := []struct {
		k    float64
		want int
	}{
		{1, 16}, {3, 16}, {3.01, 22}, {10, 22}, {10.5, 30}, {5000, 30},
	}
	for _, tt := range tests {
		if got := EventLabelBudget(tt.k); got != tt.want {
			t.Errorf("EventLabelBudget(%v) = %d, want %d", tt.k, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		budget int
		want   string
	}{
		{"Great Oxidation Event", 16, "Great Oxidation…"},
		{"Great Oxidation Event", 22, "Great Oxidation Event"},
		{"Homo Sapiens", 16, "Homo Sapiens"},
		{"Ordovician-Silurian Extinction", 30, "Ordovician-Silurian Extinction"},
		{"Ördovician", 5, "Ördo…"},
		{"abc", 1, "…"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Truncate(tt.in, tt.budget)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.budget, got, tt.want)
			}
			if n := len([]rune(got)); n > tt.budget && tt.budget > 0 {
				t.Errorf("result has %d runes, budget %d", n, tt.budget)
			}
		})
	}
}

func TestBandLabel(t *testing.T) {
	tests := []struct {
		name string
		px   float64
		want string
	}{
		{"Carboniferous", 20, ""},
		{"Carboniferous", 34.9, ""},
		{"Carboniferous", 35, "Carb"},
		{"Jurassic", 64, "Jura"},
		{"Jurassic", 65, "Jurassic"},
		{"Carboniferous", 100, "Carbonife…"},
		{"Ordovician", 100, "Ordovician"},
		{"Carboniferous", 110, "Carboniferous"},
		{"Neo", 40, "Neo"},
	}
	for _, tt := range tests {
		if got := BandLabel(tt.name, tt.px); got != tt.want {
			t.Errorf("BandLabel(%q, %v) = %q, want %q", tt.name, tt.px, got, tt.want)
		}
	}
}

func TestSpeciesLabel(t *testing.T) {
	tests := []struct {
		name string
		px   float64
		want string
	}{
		{"Trilobites", 30, ""},
		{"Trilobites", 50, "Trilob…"},
		{"Birds", 50, "Birds"},
		{"Trilobites", 70, "Trilobites"},
	}
	for _, tt := range tests {
		if got := SpeciesLabel(tt.name, tt.px); got != tt.want {
			t.Errorf("SpeciesLabel(%q, %v) = %q, want %q", tt.name, tt.px, got, tt.want)
		}
	}
}

func TestGeometryRules(t *testing.T) {
	if got := ExtinctionWidth(1); got != 6 {
		t.Errorf("ExtinctionWidth(1) = %v, want 6", got)
	}
	if got := ExtinctionWidth(100); got != 40 {
		t.Errorf("ExtinctionWidth(100) = %v, want 40", got)
	}
	if got := ExtinctionOpacity(0); got != 0.14 {
		t.Errorf("ExtinctionOpacity(0) = %v, want 0.14", got)
	}
	if got := ExtinctionOpacity(100); got != 0.28 {
		t.Errorf("ExtinctionOpacity(100) = %v, want 0.28", got)
	}
	if BandFontSize(50) != 16 || BandFontSize(34) != 14 || BandFontSize(26) != 12 {
		t.Error("BandFontSize thresholds")
	}
	if SpeciesOpacity(3) != 0.6 || SpeciesOpacity(3.5) != 0.9 {
		t.Error("SpeciesOpacity threshold")
	}
	if !AnnotationVisible(1.3) || AnnotationVisible(1.31) {
		t.Error("AnnotationVisible threshold")
	}
	if !KeyboardHintVisible(1.1) || KeyboardHintVisible(1.2) {
		t.Error("KeyboardHintVisible threshold")
	}
}

func TestEonActive(t *testing.T) {
	tests := []struct {
		name           string
		k, x0, x1, iW float64
		want           bool
	}{
		{"identity", 1, 0, 800, 1000, false},
		{"zoomed and wide", 2, -100, 500, 1000, true},
		{"zoomed but narrow", 2, 100, 400, 1000, false},
		{"off screen", 4, -5000, -100, 1000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EonActive(tt.k, tt.x0, tt.x1, tt.iW); got != tt.want {
				t.Errorf("EonActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContrastColor(t *testing.T) {
	if got := ContrastColor("#F9F97F"); got != DarkText {
		t.Errorf("light fill: got %s", got)
	}
	if got := ContrastColor("#812B92"); got != LightText {
		t.Errorf("dark fill: got %s", got)
	}
	if got := ContrastColor("not a color"); got != LightText {
		t.Errorf("invalid fill: got %s", got)
	}
}

func TestContextAt(t *testing.T) {
	eons := []dataset.Interval{{Name: "Phanerozoic", Start: 538.8, End: 0}}
	eras := []dataset.Interval{{Name: "Mesozoic", Start: 251.902, End: 66}, {Name: "Cenozoic", Start: 66, End: 0}}
	periods := []dataset.Interval{{Name: "Cretaceous", Start: 143.1, End: 66}, {Name: "Paleogene", Start: 66, End: 23.03}}

	tests := []struct {
		name  string
		mid   float64
		k     float64
		want  string
		level dataset.Level
	}{
		{"eon at identity", 100, 1, "Phanerozoic", dataset.LevelEon},
		{"era at 1.5", 100, 1.5, "Mesozoic", dataset.LevelEra},
		{"period at 2", 100, 2, "Cretaceous", dataset.LevelPeriod},
		{"shared bound picks first", 66, 5, "Cretaceous", dataset.LevelPeriod},
		{"shared era bound", 66, 1.6, "Mesozoic", dataset.LevelEra},
		{"no period falls back to era", 10, 5, "Cenozoic", dataset.LevelEra},
		{"outside everything", 4000, 5, FullTimeline, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContextAt(tt.mid, tt.k, eons, eras, periods)
			if got.Name != tt.want || got.Level != tt.level {
				t.Errorf("ContextAt(%v, %v) = %s/%s, want %s/%s", tt.mid, tt.k, got.Level, got.Name, tt.level, tt.want)
			}
		})
	}
	if r := ContextAt(100, 1.5, eons, eras, periods).Range; r != "252 Ma – 66 Ma" {
		t.Errorf("Range = %q", r)
	}
}
