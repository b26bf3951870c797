package dataset

import (
	"math"

	"github.com/matzehuels/deeptime/pkg/errors"
)

// Validate checks raw for structural problems: inverted or negative
// intervals, empty or duplicate names within a layer, children outside their
// parent, unknown event types and out-of-range severities.
func Validate(raw Raw) error {
	seen := map[Level]map[string]bool{
		LevelEon: {}, LevelEra: {}, LevelPeriod: {},
	}
	for _, eon := range raw.Eons {
		if err := checkInterval(eon.Interval, LevelEon, seen); err != nil {
			return err
		}
		for _, era := range eon.Eras {
			if err := checkInterval(era.Interval, LevelEra, seen); err != nil {
				return err
			}
			if !eon.Encloses(era.Interval) {
				return errors.New(errors.ErrCodeInvalidDataset, "era %q [%v, %v] lies outside eon %q", era.Name, era.Start, era.End, eon.Name)
			}
			for _, p := range era.Periods {
				if err := checkInterval(p, LevelPeriod, seen); err != nil {
					return err
				}
				if !era.Encloses(p) {
					return errors.New(errors.ErrCodeInvalidDataset, "period %q [%v, %v] lies outside era %q", p.Name, p.Start, p.End, era.Name)
				}
			}
		}
	}

	species := map[string]bool{}
	for _, s := range raw.Species {
		if err := checkSpan("species", s.Name, s.Start, s.End); err != nil {
			return err
		}
		if species[s.Name] {
			return errors.New(errors.ErrCodeInvalidDataset, "duplicate species %q", s.Name)
		}
		species[s.Name] = true
	}

	events := map[string]bool{}
	for _, e := range raw.Events {
		if e.Name == "" {
			return errors.New(errors.ErrCodeInvalidDataset, "event at %v Ma has no name", e.Date)
		}
		if events[e.Name] {
			return errors.New(errors.ErrCodeInvalidDataset, "duplicate event %q", e.Name)
		}
		events[e.Name] = true
		if !finite(e.Date) || e.Date < 0 {
			return errors.New(errors.ErrCodeInvalidDataset, "event %q has invalid date %v", e.Name, e.Date)
		}
		if !e.Type.Valid() {
			return errors.New(errors.ErrCodeInvalidDataset, "event %q has unknown type %q", e.Name, e.Type)
		}
		if e.Severity < 0 || e.Severity > 100 {
			return errors.New(errors.ErrCodeInvalidDataset, "event %q severity %v outside [0, 100]", e.Name, e.Severity)
		}
	}
	return nil
}

func checkInterval(iv Interval, l Level, seen map[Level]map[string]bool) error {
	if err := checkSpan(string(l), iv.Name, iv.Start, iv.End); err != nil {
		return err
	}
	if seen[l][iv.Name] {
		return errors.New(errors.ErrCodeInvalidDataset, "duplicate %s %q", l, iv.Name)
	}
	seen[l][iv.Name] = true
	return nil
}

func checkSpan(kind, name string, start, end float64) error {
	if name == "" {
		return errors.New(errors.ErrCodeInvalidDataset, "%s [%v, %v] has no name", kind, start, end)
	}
	if !finite(start) || !finite(end) {
		return errors.New(errors.ErrCodeInvalidDataset, "%s %q has non-finite bounds", kind, name)
	}
	if end < 0 {
		return errors.New(errors.ErrCodeInvalidDataset, "%s %q ends in the future (%v Ma)", kind, name, end)
	}
	if start < end {
		return errors.New(errors.ErrCodeInvalidDataset, "%s %q starts after it ends (%v < %v)", kind, name, start, end)
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
