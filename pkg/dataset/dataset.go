// Package dataset defines the timeline entities and turns provider input
// into the immutable, enriched form the renderer consumes.
//
// A provider supplies a [Raw] dataset: a containment tree of eons, eras and
// periods, a list of species lifespans and a list of point events. [Prepare]
// validates it once, flattens the tree, assigns every species a lane and
// routes extinction events to their own layer. The resulting [Prepared] value
// is never mutated afterwards.
//
// Times are in Ma (millions of years before present); every interval
// satisfies Start >= End >= 0.
package dataset

// Level identifies the depth of a geological interval.
type Level string

const (
	LevelEon    Level = "eon"
	LevelEra    Level = "era"
	LevelPeriod Level = "period"
)

// Levels lists the interval levels from outermost to innermost.
var Levels = []Level{LevelEon, LevelEra, LevelPeriod}

// Interval is a named time span.
type Interval struct {
	Name        string  `json:"name" toml:"name" yaml:"name"`
	Start       float64 `json:"start" toml:"start" yaml:"start"`
	End         float64 `json:"end" toml:"end" yaml:"end"`
	Color       string  `json:"color,omitempty" toml:"color" yaml:"color"`
	Description string  `json:"description,omitempty" toml:"description" yaml:"description"`
	WikiURL     string  `json:"wiki_url,omitempty" toml:"wiki_url" yaml:"wiki_url"`

	// Level is set by Flatten; providers leave it empty.
	Level Level `json:"level,omitempty" toml:"-" yaml:"-"`
}

// Contains reports whether t lies inside the interval, bounds included.
func (iv Interval) Contains(t float64) bool { return t <= iv.Start && t >= iv.End }

// Encloses reports whether o lies entirely inside the interval.
func (iv Interval) Encloses(o Interval) bool { return o.Start <= iv.Start && o.End >= iv.End }

// Era is an era with its periods.
type Era struct {
	Interval `yaml:",inline"`
	Periods  []Interval `json:"periods,omitempty" toml:"periods" yaml:"periods"`
}

// Eon is an eon with its eras.
type Eon struct {
	Interval `yaml:",inline"`
	Eras     []Era `json:"eras,omitempty" toml:"eras" yaml:"eras"`
}

// Species is the lifespan of a group of organisms.
type Species struct {
	Interval `yaml:",inline"`

	// Lane is the vertical slot assigned by Prepare.
	Lane int `json:"lane" toml:"-" yaml:"-"`
}

// EventType classifies point events.
type EventType string

const (
	EventPlanetary  EventType = "planetary"
	EventOrigin     EventType = "origin"
	EventExtinction EventType = "extinction"
	EventHuman      EventType = "human"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventPlanetary, EventOrigin, EventExtinction, EventHuman:
		return true
	}
	return false
}

// Event is a point in time.
type Event struct {
	Name        string    `json:"name" toml:"name" yaml:"name"`
	Date        float64   `json:"date" toml:"date" yaml:"date"`
	Type        EventType `json:"type" toml:"type" yaml:"type"`
	Severity    float64   `json:"severity,omitempty" toml:"severity" yaml:"severity"` // percent of species lost, extinctions only
	Description string    `json:"description,omitempty" toml:"description" yaml:"description"`
	WikiURL     string    `json:"wiki_url,omitempty" toml:"wiki_url" yaml:"wiki_url"`
}

// Raw is the dataset as supplied by a provider.
type Raw struct {
	Eons    []Eon     `json:"eons" toml:"eons" yaml:"eons"`
	Species []Species `json:"species" toml:"species" yaml:"species"`
	Events  []Event   `json:"events" toml:"events" yaml:"events"`
}

// Prepared is the enriched dataset. It is built once by Prepare and shared
// read-only by every render pass.
type Prepared struct {
	Tree        []Eon      `json:"tree"`
	Eons        []Interval `json:"eons"`
	Eras        []Interval `json:"eras"`
	Periods     []Interval `json:"periods"`
	Species     []Species  `json:"species"`     // oldest first, lanes assigned
	Events      []Event    `json:"events"`      // non-extinction events, input order
	Extinctions []Event    `json:"extinctions"` // input order
	MaxLane     int        `json:"max_lane"`
}

// Intervals returns the flattened geology in parent-before-child order.
func (p *Prepared) Intervals() []Interval { return Flatten(p.Tree) }

// Layer returns the intervals of one level.
func (p *Prepared) Layer(l Level) []Interval {
	switch l {
	case LevelEon:
		return p.Eons
	case LevelEra:
		return p.Eras
	case LevelPeriod:
		return p.Periods
	}
	return nil
}
