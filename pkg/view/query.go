package view

import (
	"math"
	"net/url"
	"strconv"
)

// Query parameter names used to persist a transform.
const (
	QueryX = "x"
	QueryK = "k"
)

// Values encodes t as query parameters with two decimals.
func (t Transform) Values() url.Values {
	v := url.Values{}
	v.Set(QueryX, strconv.FormatFloat(t.X, 'f', 2, 64))
	v.Set(QueryK, strconv.FormatFloat(t.K, 'f', 2, 64))
	return v
}

// Query returns the encoded query string, e.g. "k=2.00&x=-140.50".
func (t Transform) Query() string { return t.Values().Encode() }

// ParseQuery restores a transform from query parameters. It reports false
// when either field is missing or not a finite number, in which case the
// caller keeps its current view.
func ParseQuery(v url.Values) (Transform, bool) {
	x, err := strconv.ParseFloat(v.Get(QueryX), 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return Transform{}, false
	}
	k, err := strconv.ParseFloat(v.Get(QueryK), 64)
	if err != nil || math.IsNaN(k) || math.IsInf(k, 0) {
		return Transform{}, false
	}
	return Transform{X: x, K: k}, true
}
