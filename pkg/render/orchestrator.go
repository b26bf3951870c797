package render

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/matzehuels/deeptime/pkg/axis"
	"github.com/matzehuels/deeptime/pkg/dataset"
	"github.com/matzehuels/deeptime/pkg/errors"
	"github.com/matzehuels/deeptime/pkg/layout"
	"github.com/matzehuels/deeptime/pkg/lod"
	"github.com/matzehuels/deeptime/pkg/observability"
	"github.com/matzehuels/deeptime/pkg/pack"
	"github.com/matzehuels/deeptime/pkg/timescale"
	"github.com/matzehuels/deeptime/pkg/view"
)

// bandOverscan bounds band rectangles to a little beyond the viewport so
// deep zooms never produce huge coordinates.
const bandOverscan = 2000.0

// MarkerText labels the present-day marker.
const MarkerText = "YOU ARE HERE"

// Orchestrator runs render passes over one prepared dataset.
//
// The cached layout is guarded by a mutex so one Orchestrator can serve
// concurrent requests; passes themselves share no mutable state.
type Orchestrator struct {
	data   *dataset.Prepared
	engine *layout.Engine

	mu      sync.Mutex
	metrics layout.Metrics
	valid   bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLayoutEngine replaces the default layout engine, e.g. to apply
// configured row thresholds.
func WithLayoutEngine(e *layout.Engine) Option {
	return func(o *Orchestrator) {
		if e != nil {
			o.engine = e
		}
	}
}

// New creates an orchestrator for a prepared dataset.
func New(data *dataset.Prepared, opts ...Option) *Orchestrator {
	o := &Orchestrator{data: data, engine: layout.New()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Dataset returns the prepared dataset.
func (o *Orchestrator) Dataset() *dataset.Prepared { return o.data }

// Metrics returns the layout for a viewport, reusing the previous result
// when the dimensions are unchanged.
func (o *Orchestrator) Metrics(vp Viewport) (layout.Metrics, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.valid && o.metrics.SameViewport(vp.Width, vp.Height) {
		return o.metrics, nil
	}
	m, err := o.engine.Compute(vp.Width, vp.Height, o.data.MaxLane)
	if err != nil {
		return layout.Metrics{}, err
	}
	o.metrics, o.valid = m, true
	return m, nil
}

// Shortcuts returns the eon ranges bound to the number keys, in dataset
// order.
func (o *Orchestrator) Shortcuts() []view.Range {
	out := make([]view.Range, 0, len(o.data.Eons))
	for _, e := range o.data.Eons {
		out = append(out, view.Range{Name: e.Name, Start: e.Start, End: e.End})
	}
	return out
}

// Navigator returns a navigator over the inner width of vp with the eon
// shortcuts bound.
func (o *Orchestrator) Navigator(vp Viewport) (*view.Navigator, error) {
	m, err := o.Metrics(vp)
	if err != nil {
		return nil, err
	}
	return view.NewNavigator(m.InnerWidth, o.Shortcuts())
}

// Pass computes the snapshot for a viewport and transform. A malformed
// transform or an unusable viewport is rejected before any geometry is
// produced.
func (o *Orchestrator) Pass(ctx context.Context, vp Viewport, t view.Transform) (snap *Snapshot, err error) {
	start := time.Now()
	observability.Render().OnPassStart(ctx, vp.Width, t.K)
	defer func() {
		n := 0
		if snap != nil {
			n = snap.EntityCount()
		}
		observability.Render().OnPassComplete(ctx, n, time.Since(start), err)
	}()

	if err := view.Validate(t); err != nil {
		return nil, err
	}
	m, err := o.Metrics(vp)
	if err != nil {
		return nil, err
	}
	base, err := timescale.New(m.InnerWidth)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTimeout, err, "render pass cancelled")
	}

	eff := view.Compose(base, t)
	left, right := eff.Window()
	p := &pass{data: o.data, m: m, eff: eff, k: t.K}

	s := &Snapshot{
		Viewport:    vp,
		Metrics:     m,
		Transform:   t,
		Window:      [2]float64{left, right},
		Eons:        p.bands(o.data.Eons, m.Bands.Eon, m.Heights.Eon),
		Eras:        p.bands(o.data.Eras, m.Bands.Era, m.Heights.Era),
		Periods:     []Band{},
		Grid:        axis.Grid(eff.Linear()),
		Extinctions: p.extinctions(),
		Events:      p.events(),
		Species:     p.species(),
		Marker:      p.marker(),
		Axis:        axis.Axis(eff.Linear()),
	}
	if lod.PeriodsVisible(t.K) {
		s.Periods = p.bands(o.data.Periods, m.Bands.Period, m.Heights.Period)
	}
	s.Nav = p.nav(o.Shortcuts())
	return s, nil
}

// pass holds the per-frame inputs shared by the layer builders.
type pass struct {
	data *dataset.Prepared
	m    layout.Metrics
	eff  view.Effective
	k    float64
}

// visibleSpan clips [x0, x1] to the viewport and returns the visible extent.
func (p *pass) visibleSpan(x0, x1 float64) (l, r float64) {
	return max(0, x0), min(p.m.InnerWidth, x1)
}

func (p *pass) bands(ivs []dataset.Interval, y, h float64) []Band {
	iw := p.m.InnerWidth
	out := make([]Band, 0, len(ivs))
	for _, iv := range ivs {
		x0, x1 := p.eff.X(iv.Start), p.eff.X(iv.End)
		rx := max(-bandOverscan, x0)
		rw := max(0, min(iw+bandOverscan, x1)-rx)
		vl, vr := p.visibleSpan(x0, x1)
		out = append(out, Band{
			Name:   iv.Name,
			Level:  iv.Level,
			Rect:   layout.Rect{X: rx, Y: y, W: rw, H: h},
			Color:  iv.Color,
			Hidden: x1 < 0 || x0 > iw,
			Start:  iv.Start,
			End:    iv.End,
			Label: Label{
				Text:     lod.BandLabel(iv.Name, vr-vl),
				X:        (vl + vr) / 2,
				Y:        y + h/2,
				Color:    lod.ContrastColor(iv.Color),
				FontSize: lod.BandFontSize(h),
			},
		})
	}
	return out
}

func (p *pass) species() []SpeciesBar {
	out := make([]SpeciesBar, 0, len(p.data.Species))
	for _, sp := range p.data.Species {
		x0, x1 := p.eff.X(sp.Start), p.eff.X(sp.End)
		y := p.m.LaneY(sp.Lane)
		vl, vr := p.visibleSpan(x0, x1)
		out = append(out, SpeciesBar{
			Name:  sp.Name,
			Lane:  sp.Lane,
			Rect:  layout.Rect{X: x0, Y: y, W: max(4, x1-x0), H: p.m.Heights.Lane},
			Color: sp.Color,
			Start: sp.Start,
			End:   sp.End,
			Label: Label{
				Text:     lod.SpeciesLabel(sp.Name, vr-vl),
				X:        vl + 5,
				Y:        y + p.m.Heights.Lane/2,
				FontSize: 13,
				Opacity:  lod.SpeciesOpacity(p.k),
			},
		})
	}
	return out
}

// events filters the eligible events and packs their labels into rows from
// scratch. Event order is the dataset order.
func (p *pass) events() []EventMarker {
	var eligible []dataset.Event
	for _, e := range p.data.Events {
		if lod.EventEligible(e, p.k) {
			eligible = append(eligible, e)
		}
	}
	xs := make([]float64, len(eligible))
	for i, e := range eligible {
		xs[i] = p.eff.X(e.Date)
	}
	rows := pack.Rows(xs, p.m.RowThreshold)
	budget := lod.EventLabelBudget(p.k)

	dotY := p.m.Bands.EventBaseline
	out := make([]EventMarker, 0, len(eligible))
	for i, e := range eligible {
		major := lod.IsMajor(e.Name)
		color := lod.EventColorFor(e.Type)
		out = append(out, EventMarker{
			Name:   e.Name,
			Type:   e.Type,
			Date:   e.Date,
			X:      xs[i],
			DotY:   dotY,
			StemY2: p.m.Bands.Axis,
			Radius: lod.EventRadius(major),
			Color:  color,
			Major:  major,
			Row:    rows[i],
			Label: Label{
				Text:     lod.Truncate(e.Name, budget),
				X:        xs[i] + 6,
				Y:        p.m.EventLabelY(rows[i]),
				Color:    color,
				FontSize: 14,
				Opacity:  lod.EventOpacity(major),
			},
		})
	}
	return out
}

func (p *pass) extinctions() []ExtinctionBand {
	w := lod.ExtinctionWidth(p.k)
	out := make([]ExtinctionBand, 0, len(p.data.Extinctions))
	for _, e := range p.data.Extinctions {
		x := p.eff.X(e.Date)
		out = append(out, ExtinctionBand{
			Name:     e.Name,
			Date:     e.Date,
			Severity: e.Severity,
			Rect:     layout.Rect{X: x - w/2, Y: 0, W: w, H: p.m.Bands.Axis},
			Radius:   w / 3,
			Color:    lod.ExtinctionColor,
			Opacity:  lod.ExtinctionOpacity(e.Severity),
		})
	}
	return out
}

func (p *pass) marker() Marker {
	x := p.eff.X(timescale.Present)
	return Marker{
		X:       x,
		Y:       p.m.Heights.Eon / 2,
		Visible: x >= 0 && x <= p.m.InnerWidth && !math.IsNaN(x),
		Text:    MarkerText,
	}
}

func (p *pass) nav(shortcuts []view.Range) Nav {
	iw := p.m.InnerWidth
	mid := p.eff.Invert(iw / 2)
	buttons := make([]NavButton, 0, len(shortcuts))
	for i, r := range shortcuts {
		key := ""
		if i < 9 {
			key = string(rune('1' + i))
		}
		buttons = append(buttons, NavButton{
			Name:   r.Name,
			Key:    key,
			Active: lod.EonActive(p.k, p.eff.X(r.Start), p.eff.X(r.End), iw),
		})
	}
	return Nav{
		Context:      lod.ContextAt(mid, p.k, p.data.Eons, p.data.Eras, p.data.Periods),
		Eons:         buttons,
		Annotation:   lod.AnnotationVisible(p.k),
		KeyboardHint: lod.KeyboardHintVisible(p.k),
	}
}
