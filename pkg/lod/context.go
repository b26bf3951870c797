package lod

import (
	"github.com/matzehuels/deeptime/pkg/dataset"
	"github.com/matzehuels/deeptime/pkg/format"
)

// Scales at which the context indicator may name an era or a period.
const (
	ContextEraScale    = 1.5
	ContextPeriodScale = PeriodScale
)

// FullTimeline is the context label when nothing more specific applies.
const FullTimeline = "Full Timeline"

// Context names the most specific interval under the viewport center.
type Context struct {
	Level dataset.Level `json:"level,omitempty"` // empty for the full timeline
	Name  string        `json:"name"`
	Start float64       `json:"start"`
	End   float64       `json:"end"`
	Range string        `json:"range"`
}

// ContextAt returns the context for the time mid at scale k: a containing
// period when k >= ContextPeriodScale, else a containing era when
// k >= ContextEraScale, else a containing eon. Within a level the first
// interval in list order whose bounds include mid wins.
func ContextAt(mid, k float64, eons, eras, periods []dataset.Interval) Context {
	if k >= ContextPeriodScale {
		if iv, ok := find(periods, mid); ok {
			return contextOf(iv, dataset.LevelPeriod)
		}
	}
	if k >= ContextEraScale {
		if iv, ok := find(eras, mid); ok {
			return contextOf(iv, dataset.LevelEra)
		}
	}
	if iv, ok := find(eons, mid); ok {
		return contextOf(iv, dataset.LevelEon)
	}
	return Context{
		Name:  FullTimeline,
		Start: format.EarthAge,
		End:   0,
		Range: "4.54 " + format.English.Giga + " – " + format.English.Present,
	}
}

func find(ivs []dataset.Interval, t float64) (dataset.Interval, bool) {
	for _, iv := range ivs {
		if iv.Contains(t) {
			return iv, true
		}
	}
	return dataset.Interval{}, false
}

func contextOf(iv dataset.Interval, l dataset.Level) Context {
	return Context{
		Level: l,
		Name:  iv.Name,
		Start: iv.Start,
		End:   iv.End,
		Range: format.Ma(iv.Start) + " – " + format.Ma(iv.End),
	}
}
