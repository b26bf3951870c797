package render

import (
	"context"
	"math"
	"reflect"
	"slices"
	"testing"

	"github.com/matzehuels/deeptime/pkg/dataset"
	"github.com/matzehuels/deeptime/pkg/errors"
	"github.com/matzehuels/deeptime/pkg/layout"
	"github.com/matzehuels/deeptime/pkg/lod"
	"github.com/matzehuels/deeptime/pkg/pack"
	"github.com/matzehuels/deeptime/pkg/view"
)

var desktop = Viewport{Width: 1200, Height: 800}

func newBuiltin(t *testing.T) *Orchestrator {
	t.Helper()
	p, err := dataset.Prepare(dataset.Builtin())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	return New(p)
}

func TestPassIdentity(t *testing.T) {
	o := newBuiltin(t)
	s, err := o.Pass(context.Background(), desktop, view.Identity)
	if err != nil {
		t.Fatalf("Pass: %v", err)
	}

	if got := s.Keys(LayerEons); !slices.Equal(got, []string{"Hadean", "Archean", "Proterozoic", "Phanerozoic"}) {
		t.Errorf("eons = %v", got)
	}
	if len(s.Eras) != 10 {
		t.Errorf("len(Eras) = %d, want 10", len(s.Eras))
	}
	if s.Periods == nil || len(s.Periods) != 0 {
		t.Errorf("periods should be an empty layer at k=1, got %d", len(s.Periods))
	}
	for _, e := range s.Events {
		if !e.Major {
			t.Errorf("non-major event %q visible at k=1", e.Name)
		}
	}
	if len(s.Events) != 8 {
		t.Errorf("len(Events) = %d, want the 8 major events", len(s.Events))
	}
	if len(s.Extinctions) != 6 {
		t.Errorf("len(Extinctions) = %d, want 6", len(s.Extinctions))
	}
	if len(s.Species) != 19 {
		t.Errorf("len(Species) = %d, want 19", len(s.Species))
	}
	if !s.Marker.Visible || math.Abs(s.Marker.X-s.Metrics.InnerWidth) > 1e-9 {
		t.Errorf("marker = %+v, want visible at the right edge", s.Marker)
	}
	if !s.Nav.Annotation || !s.Nav.KeyboardHint {
		t.Error("hints should be visible at identity")
	}
	if s.Nav.Context.Name == "" {
		t.Error("context label is empty")
	}
	if len(s.Axis) == 0 || s.Axis[len(s.Axis)-1].Label != "Present" {
		t.Errorf("axis = %+v", s.Axis)
	}
}

func TestPassLayersAreKeyedUniquely(t *testing.T) {
	o := newBuiltin(t)
	s, err := o.Pass(context.Background(), desktop, view.Transform{X: -2000, K: 40})
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range DrawOrder {
		seen := map[string]bool{}
		for _, k := range s.Keys(l) {
			if seen[k] {
				t.Errorf("layer %s has duplicate key %q", l, k)
			}
			seen[k] = true
		}
	}
}

func TestDrawOrderStacking(t *testing.T) {
	tests := []struct {
		name         string
		below, above Layer
	}{
		{"grid under eons", LayerGrid, LayerEons},
		{"extinctions under eons", LayerExtinctions, LayerEons},
		{"extinctions under periods", LayerExtinctions, LayerPeriods},
		{"eons under eras", LayerEons, LayerEras},
		{"eras under periods", LayerEras, LayerPeriods},
		{"periods under species", LayerPeriods, LayerSpecies},
		{"species under events", LayerSpecies, LayerEvents},
		{"events under marker", LayerEvents, LayerMarker},
		{"marker under axis", LayerMarker, LayerAxis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := slices.Index(DrawOrder, tt.below), slices.Index(DrawOrder, tt.above)
			if lo < 0 || hi < 0 {
				t.Fatalf("DrawOrder %v is missing %s or %s", DrawOrder, tt.below, tt.above)
			}
			if lo >= hi {
				t.Errorf("%s drawn at %d, %s at %d: want %s first", tt.below, lo, tt.above, hi, tt.below)
			}
		})
	}
	if len(DrawOrder) != 9 {
		t.Errorf("len(DrawOrder) = %d, want 9", len(DrawOrder))
	}
}

func TestPassPeriodsAtScaleTwo(t *testing.T) {
	o := newBuiltin(t)
	s, err := o.Pass(context.Background(), desktop, view.Transform{X: -1140, K: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Periods) != 22 {
		t.Errorf("len(Periods) = %d, want 22", len(s.Periods))
	}
}

func TestPassHumanEventsThreshold(t *testing.T) {
	o := newBuiltin(t)
	ctx := context.Background()
	below, err := o.Pass(ctx, desktop, view.Transform{X: -6000, K: 7.9})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := below.Event("Writing"); ok {
		t.Error("human event visible below k=8")
	}
	if _, ok := below.Event("Snowball Earth"); !ok {
		t.Error("planetary event missing at k=7.9")
	}
	at, err := o.Pass(ctx, desktop, view.Transform{X: -6000, K: 8})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := at.Event("Writing"); !ok {
		t.Error("human event missing at k=8")
	}
}

func TestPassRowSeparation(t *testing.T) {
	o := newBuiltin(t)
	for _, vp := range []Viewport{desktop, {Width: 400, Height: 700}} {
		s, err := o.Pass(context.Background(), vp, view.Transform{X: -2500, K: 12})
		if err != nil {
			t.Fatal(err)
		}
		threshold := s.Metrics.RowThreshold
		for i, a := range s.Events {
			if a.Label.Y != s.Metrics.EventLabelY(a.Row) {
				t.Errorf("%s label y = %v, want row %d", a.Name, a.Label.Y, a.Row)
			}
			for _, b := range s.Events[i+1:] {
				if a.Row == b.Row && math.Abs(a.X-b.X) < threshold {
					t.Errorf("%q and %q share row %d %.1fpx apart (threshold %v)", a.Name, b.Name, a.Row, math.Abs(a.X-b.X), threshold)
				}
			}
		}
	}
}

func TestPassDeterministic(t *testing.T) {
	o := newBuiltin(t)
	tr := view.Transform{X: -3000, K: 25}
	a, err := o.Pass(context.Background(), desktop, tr)
	if err != nil {
		t.Fatal(err)
	}
	b, err := o.Pass(context.Background(), desktop, tr)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("passes returned the same snapshot pointer")
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs produced different snapshots")
	}
}

func TestPassRejectsInvalidInput(t *testing.T) {
	o := newBuiltin(t)
	ctx := context.Background()
	tests := []struct {
		name string
		vp   Viewport
		tr   view.Transform
		code errors.Code
	}{
		{"nan scale", desktop, view.Transform{X: 0, K: math.NaN()}, errors.ErrCodeInvalidTransform},
		{"inf translate", desktop, view.Transform{X: math.Inf(1), K: 1}, errors.ErrCodeInvalidTransform},
		{"scale below extent", desktop, view.Transform{X: 0, K: 0.5}, errors.ErrCodeInvalidTransform},
		{"zero width", Viewport{Width: 0, Height: 800}, view.Identity, errors.ErrCodeInvalidViewport},
		{"margins only", Viewport{Width: 24, Height: 800}, view.Identity, errors.ErrCodeInvalidViewport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := o.Pass(ctx, tt.vp, tt.tr)
			if s != nil {
				t.Error("snapshot returned alongside error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestPassCancelled(t *testing.T) {
	o := newBuiltin(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := o.Pass(ctx, desktop, view.Identity); !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("err = %v, want TIMEOUT", err)
	}
}

func TestResizeToCompact(t *testing.T) {
	o := newBuiltin(t)
	ctx := context.Background()
	big, err := o.Pass(ctx, desktop, view.Identity)
	if err != nil {
		t.Fatal(err)
	}
	if big.Metrics.Class != layout.Regular || big.Metrics.RowThreshold != 140 {
		t.Fatalf("desktop metrics = %+v", big.Metrics)
	}
	small, err := o.Pass(ctx, Viewport{Width: 400, Height: 800}, view.Identity)
	if err != nil {
		t.Fatal(err)
	}
	m := small.Metrics
	if m.Class != layout.Compact || m.RowThreshold != 95 || m.InnerWidth != 376 {
		t.Errorf("compact metrics = class %s threshold %v inner %v", m.Class, m.RowThreshold, m.InnerWidth)
	}
	if small.Marker.X != 376 {
		t.Errorf("marker x = %v, want 376", small.Marker.X)
	}
	if big.Metrics.Class != layout.Regular {
		t.Error("earlier snapshot changed after a later pass")
	}

	// Label rows are repacked from scratch with the threshold of the new size.
	zoomed := view.Transform{X: -2500, K: 12}
	tests := []struct {
		name      string
		vp        Viewport
		threshold float64
	}{
		{"desktop", desktop, 140},
		{"compact", Viewport{Width: 400, Height: 800}, 95},
		{"desktop again", desktop, 140},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := o.Pass(ctx, tt.vp, zoomed)
			if err != nil {
				t.Fatal(err)
			}
			if len(s.Events) < 2 {
				t.Fatalf("only %d events at %+v", len(s.Events), zoomed)
			}
			xs := make([]float64, len(s.Events))
			got := make([]int, len(s.Events))
			for i, e := range s.Events {
				xs[i] = e.X
				got[i] = e.Row
			}
			if want := pack.Rows(xs, tt.threshold); !slices.Equal(got, want) {
				t.Errorf("rows = %v, want %v", got, want)
			}
		})
	}
}

func TestZoomToPeriodContext(t *testing.T) {
	o := newBuiltin(t)
	nav, err := o.Navigator(desktop)
	if err != nil {
		t.Fatal(err)
	}
	if !nav.ZoomTo(143.1, 66) {
		t.Fatal("ZoomTo(Cretaceous) was a no-op")
	}
	s, err := o.Pass(context.Background(), desktop, nav.Transform())
	if err != nil {
		t.Fatal(err)
	}
	if c := s.Nav.Context; c.Name != "Cretaceous" || c.Level != dataset.LevelPeriod {
		t.Errorf("context = %+v, want Cretaceous period", c)
	}
	if s.Nav.Annotation || s.Nav.KeyboardHint {
		t.Error("hints visible while zoomed in")
	}
	var cretaceous Band
	for _, b := range s.Periods {
		if b.Name == "Cretaceous" {
			cretaceous = b
		}
	}
	iw := s.Metrics.InnerWidth
	if math.Abs(cretaceous.Rect.X-iw*0.04) > 1 || math.Abs(cretaceous.Rect.Right()-iw*0.96) > 1 {
		t.Errorf("Cretaceous spans [%v, %v], want [%v, %v]", cretaceous.Rect.X, cretaceous.Rect.Right(), iw*0.04, iw*0.96)
	}
	if cretaceous.Label.Text != "Cretaceous" {
		t.Errorf("label = %q", cretaceous.Label.Text)
	}
}

func TestNavEonButtons(t *testing.T) {
	o := newBuiltin(t)
	nav, err := o.Navigator(desktop)
	if err != nil {
		t.Fatal(err)
	}
	nav.Key("4")
	s, err := o.Pass(context.Background(), desktop, nav.Transform())
	if err != nil {
		t.Fatal(err)
	}
	active := map[string]bool{}
	for _, b := range s.Nav.Eons {
		active[b.Name] = b.Active
	}
	if !active["Phanerozoic"] || active["Hadean"] {
		t.Errorf("active = %v", active)
	}
	if s.Nav.Eons[3].Key != "4" {
		t.Errorf("key = %q", s.Nav.Eons[3].Key)
	}
}

func TestExtinctionGeometry(t *testing.T) {
	o := newBuiltin(t)
	s, err := o.Pass(context.Background(), desktop, view.Identity)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range s.Extinctions {
		if e.Rect.W != lod.ExtinctionWidth(1) || e.Rect.H != s.Metrics.Bands.Axis {
			t.Errorf("%s rect = %+v", e.Name, e.Rect)
		}
		if e.Name == "Holocene Extinction" && e.Opacity != lod.ExtinctionOpacity(50) {
			t.Errorf("default severity opacity = %v", e.Opacity)
		}
	}
}
