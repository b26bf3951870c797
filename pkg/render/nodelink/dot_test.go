package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/deeptime/pkg/dataset"
)

func tree(t *testing.T) []dataset.Eon {
	t.Helper()
	p, err := dataset.Prepare(dataset.Builtin())
	if err != nil {
		t.Fatal(err)
	}
	return p.Tree
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(tree(t), Options{})
	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		`"Phanerozoic" -> "Mesozoic";`,
		`"Mesozoic" -> "Jurassic";`,
		`fillcolor="#34B2C9"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q", want)
		}
	}
	if strings.Count(dot, "->") != 10+22 {
		t.Errorf("edge count = %d, want 32", strings.Count(dot, "->"))
	}
}

func TestToDOTFocus(t *testing.T) {
	tests := []struct {
		focus   string
		present []string
		absent  []string
		edges   int
	}{
		{"Mesozoic", []string{`"Triassic"`, `"Mesozoic" -> "Cretaceous"`}, []string{`"Phanerozoic"`, `"Permian"`}, 3},
		{"Archean", []string{`"Archean" -> "Eoarchean"`}, []string{`"Hadean"`, `"Cambrian"`}, 4},
		{"Nowhere", nil, []string{`"Hadean"`}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.focus, func(t *testing.T) {
			dot := ToDOT(tree(t), Options{Focus: tt.focus, LeftToRight: true})
			for _, s := range tt.present {
				if !strings.Contains(dot, s) {
					t.Errorf("missing %s", s)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(dot, s) {
					t.Errorf("unexpected %s", s)
				}
			}
			if n := strings.Count(dot, "->"); n != tt.edges {
				t.Errorf("edges = %d, want %d", n, tt.edges)
			}
			if !strings.Contains(dot, "rankdir=LR;") {
				t.Error("LeftToRight ignored")
			}
		})
	}
}

func TestDetailedLabel(t *testing.T) {
	iv := dataset.Interval{Name: "Cretaceous", Start: 143.1, End: 66}
	got := fmtLabel(iv, true)
	want := "Cretaceous\n143 Ma – 66 Ma\n77 million years"
	if got != want {
		t.Errorf("fmtLabel() = %q, want %q", got, want)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
}
