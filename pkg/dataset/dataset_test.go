package dataset

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/deeptime/pkg/errors"
)

func iv(name string, start, end float64) Interval {
	return Interval{Name: name, Start: start, End: end}
}

func TestFlattenOrder(t *testing.T) {
	eons := []Eon{
		{Interval: iv("A", 100, 50), Eras: []Era{
			{Interval: iv("A1", 100, 70), Periods: []Interval{iv("A1a", 100, 80), iv("A1b", 80, 70)}},
			{Interval: iv("A2", 70, 50)},
		}},
		{Interval: iv("B", 50, 0)},
	}
	var got []string
	for _, i := range Flatten(eons) {
		got = append(got, string(i.Level)+":"+i.Name)
	}
	want := []string{"eon:A", "era:A1", "period:A1a", "period:A1b", "era:A2", "eon:B"}
	if !slices.Equal(got, want) {
		t.Errorf("Flatten() = %v, want %v", got, want)
	}
}

func TestPrepareBuiltin(t *testing.T) {
	p, err := Prepare(Builtin())
	if err != nil {
		t.Fatalf("Prepare(Builtin()) error: %v", err)
	}
	if len(p.Eons) != 4 || len(p.Eras) != 10 || len(p.Periods) != 22 {
		t.Errorf("layers = %d/%d/%d, want 4/10/22", len(p.Eons), len(p.Eras), len(p.Periods))
	}
	if p.MaxLane != 12 {
		t.Errorf("MaxLane = %d, want 12", p.MaxLane)
	}
	for i := 1; i < len(p.Species); i++ {
		if p.Species[i].Start > p.Species[i-1].Start {
			t.Fatalf("species not ordered oldest first at %d", i)
		}
	}
	for _, e := range p.Events {
		if e.Type == EventExtinction {
			t.Errorf("extinction %q leaked into the event layer", e.Name)
		}
	}
	if len(p.Extinctions) != 6 {
		t.Errorf("len(Extinctions) = %d, want 6", len(p.Extinctions))
	}
	for _, l := range Levels {
		for _, i := range p.Layer(l) {
			if i.Level != l {
				t.Errorf("%s has level %q, want %q", i.Name, i.Level, l)
			}
		}
	}
}

func TestPrepareLanes(t *testing.T) {
	raw := Raw{Species: []Species{
		{Interval: iv("C", 2900, 2800)},
		{Interval: iv("A", 4000, 3000)},
		{Interval: iv("B", 3200, 2000)},
	}}
	p, err := Prepare(raw)
	if err != nil {
		t.Fatal(err)
	}
	lanes := map[string]int{}
	var order []string
	for _, s := range p.Species {
		lanes[s.Name] = s.Lane
		order = append(order, s.Name)
	}
	if !slices.Equal(order, []string{"A", "B", "C"}) {
		t.Errorf("order = %v", order)
	}
	if lanes["A"] != 0 || lanes["B"] != 1 || lanes["C"] != 0 {
		t.Errorf("lanes = %v, want A:0 B:1 C:0", lanes)
	}
	if p.MaxLane != 1 {
		t.Errorf("MaxLane = %d, want 1", p.MaxLane)
	}
	if raw.Species[0].Lane != 0 || raw.Species[2].Lane != 0 {
		t.Error("Prepare modified its input")
	}
}

func TestPrepareEmpty(t *testing.T) {
	p, err := Prepare(Raw{})
	if err != nil {
		t.Fatal(err)
	}
	if p.MaxLane != 0 || len(p.Species) != 0 || len(p.Events) != 0 {
		t.Errorf("unexpected content: %+v", p)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		raw  Raw
		msg  string
	}{
		{"inverted", Raw{Species: []Species{{Interval: iv("X", 10, 20)}}}, "starts after it ends"},
		{"negative", Raw{Species: []Species{{Interval: iv("X", 10, -1)}}}, "future"},
		{"unnamed", Raw{Eons: []Eon{{Interval: iv("", 10, 0)}}}, "no name"},
		{"duplicate era", Raw{Eons: []Eon{{Interval: iv("E", 10, 0), Eras: []Era{
			{Interval: iv("R", 10, 5)}, {Interval: iv("R", 5, 0)},
		}}}}, "duplicate era"},
		{"era outside eon", Raw{Eons: []Eon{{Interval: iv("E", 10, 0), Eras: []Era{
			{Interval: iv("R", 12, 5)},
		}}}}, "outside eon"},
		{"period outside era", Raw{Eons: []Eon{{Interval: iv("E", 10, 0), Eras: []Era{
			{Interval: iv("R", 10, 5), Periods: []Interval{iv("P", 6, 4)}},
		}}}}, "outside era"},
		{"event type", Raw{Events: []Event{{Name: "X", Date: 1, Type: "meteor"}}}, "unknown type"},
		{"severity", Raw{Events: []Event{{Name: "X", Date: 1, Type: EventExtinction, Severity: 120}}}, "severity"},
		{"duplicate event", Raw{Events: []Event{
			{Name: "X", Date: 1, Type: EventOrigin}, {Name: "X", Date: 2, Type: EventOrigin},
		}}, "duplicate event"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.raw)
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidDataset) {
				t.Errorf("code = %q, want INVALID_DATASET", errors.GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"data.toml": `
[[eons]]
name = "Phanerozoic"
start = 538.8
end = 0.0

  [[eons.eras]]
  name = "Cenozoic"
  start = 66.0
  end = 0.0

[[events]]
name = "K-Pg Extinction"
date = 66.0
type = "extinction"
severity = 76.0
`,
		"data.yaml": `
eons:
  - name: Phanerozoic
    start: 538.8
    end: 0
    eras:
      - name: Cenozoic
        start: 66
        end: 0
events:
  - name: K-Pg Extinction
    date: 66
    type: extinction
    severity: 76
`,
		"data.json": `{
  "eons": [{"name": "Phanerozoic", "start": 538.8, "end": 0,
            "eras": [{"name": "Cenozoic", "start": 66, "end": 0}]}],
  "events": [{"name": "K-Pg Extinction", "date": 66, "type": "extinction", "severity": 76}]
}`,
	}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			raw, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if len(raw.Eons) != 1 || raw.Eons[0].Name != "Phanerozoic" || raw.Eons[0].Start != 538.8 {
				t.Fatalf("eons = %+v", raw.Eons)
			}
			if len(raw.Eons[0].Eras) != 1 || raw.Eons[0].Eras[0].Name != "Cenozoic" {
				t.Errorf("eras = %+v", raw.Eons[0].Eras)
			}
			if len(raw.Events) != 1 || raw.Events[0].Severity != 76 {
				t.Errorf("events = %+v", raw.Events)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: got %v, want FILE_NOT_FOUND", err)
	}
	if _, err := Load("data.csv"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("csv: got %v, want INVALID_FORMAT", err)
	}
	if _, err := Decode(strings.NewReader("eons = 3"), FormatTOML); !errors.Is(err, errors.ErrCodeInvalidDataset) {
		t.Errorf("bad toml: got %v, want INVALID_DATASET", err)
	}
}

func TestHashStable(t *testing.T) {
	a, _ := Prepare(Builtin())
	b, _ := Prepare(Builtin())
	if Hash(a) != Hash(b) {
		t.Error("hash differs for identical datasets")
	}
	c, _ := Prepare(Raw{})
	if Hash(a) == Hash(c) {
		t.Error("hash collides for different datasets")
	}
}
