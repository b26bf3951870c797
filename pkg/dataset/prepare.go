package dataset

import (
	"github.com/matzehuels/deeptime/pkg/pack"
)

// Flatten walks the containment tree depth-first, emitting each eon, then
// each of its eras followed by that era's periods. Level is filled in.
func Flatten(eons []Eon) []Interval {
	var out []Interval
	for _, eon := range eons {
		out = append(out, withLevel(eon.Interval, LevelEon))
		for _, era := range eon.Eras {
			out = append(out, withLevel(era.Interval, LevelEra))
			for _, p := range era.Periods {
				out = append(out, withLevel(p, LevelPeriod))
			}
		}
	}
	return out
}

// Prepare validates raw and builds the immutable dataset. Species are
// reordered oldest first and assigned lanes; extinction events are split
// from the other events. raw is not modified.
func Prepare(raw Raw) (*Prepared, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}

	p := &Prepared{Tree: cloneTree(raw.Eons)}
	for _, iv := range Flatten(p.Tree) {
		switch iv.Level {
		case LevelEon:
			p.Eons = append(p.Eons, iv)
		case LevelEra:
			p.Eras = append(p.Eras, iv)
		case LevelPeriod:
			p.Periods = append(p.Periods, iv)
		}
	}

	spans := make([]pack.Span, len(raw.Species))
	for i, s := range raw.Species {
		spans[i] = pack.Span{Start: s.Start, End: s.End}
	}
	lanes := pack.Lanes(spans)
	p.Species = make([]Species, 0, len(raw.Species))
	for _, i := range pack.Order(spans) {
		s := raw.Species[i]
		s.Lane = lanes[i]
		p.Species = append(p.Species, s)
	}
	p.MaxLane = max(0, pack.LaneCount(lanes)-1)

	for _, e := range raw.Events {
		if e.Type == EventExtinction {
			p.Extinctions = append(p.Extinctions, e)
		} else {
			p.Events = append(p.Events, e)
		}
	}
	return p, nil
}

func withLevel(iv Interval, l Level) Interval {
	iv.Level = l
	return iv
}

func cloneTree(eons []Eon) []Eon {
	out := make([]Eon, len(eons))
	for i, eon := range eons {
		out[i] = eon
		out[i].Level = LevelEon
		out[i].Eras = make([]Era, len(eon.Eras))
		for j, era := range eon.Eras {
			out[i].Eras[j] = era
			out[i].Eras[j].Level = LevelEra
			out[i].Eras[j].Periods = make([]Interval, len(era.Periods))
			for k, per := range era.Periods {
				out[i].Eras[j].Periods[k] = withLevel(per, LevelPeriod)
			}
		}
	}
	return out
}
