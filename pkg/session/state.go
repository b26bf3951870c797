package session

import (
	"net/url"

	"github.com/matzehuels/deeptime/pkg/view"
)

// QueryLang is the query parameter carrying the language tag.
const QueryLang = "lang"

// State is the persisted view state.
type State struct {
	X    float64 `json:"x" bson:"x"`
	K    float64 `json:"k" bson:"k"`
	Lang string  `json:"lang,omitempty" bson:"lang,omitempty"`
}

// FromTransform captures a transform and language tag.
func FromTransform(t view.Transform, lang string) State {
	return State{X: t.X, K: t.K, Lang: lang}
}

// Transform returns the view transform.
func (s State) Transform() view.Transform { return view.Transform{X: s.X, K: s.K} }

// Values encodes the state as query parameters; X and K carry two decimals.
func (s State) Values() url.Values {
	v := s.Transform().Values()
	if s.Lang != "" {
		v.Set(QueryLang, s.Lang)
	}
	return v
}

// Query returns the encoded query string.
func (s State) Query() string { return s.Values().Encode() }

// ParseState restores a state from query parameters. It reports false when
// the transform fields are missing or malformed, in which case the caller
// keeps its current view.
func ParseState(v url.Values) (State, bool) {
	t, ok := view.ParseQuery(v)
	if !ok {
		return State{}, false
	}
	return State{X: t.X, K: t.K, Lang: v.Get(QueryLang)}, true
}

// ParseStateQuery parses a raw query string such as "x=-140.50&k=2.00".
func ParseStateQuery(raw string) (State, bool) {
	v, err := url.ParseQuery(raw)
	if err != nil {
		return State{}, false
	}
	return ParseState(v)
}
