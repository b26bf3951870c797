package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/deeptime/pkg/dataset"
	"github.com/matzehuels/deeptime/pkg/render"
	"github.com/matzehuels/deeptime/pkg/view"
)

func snapshot(t *testing.T, tr view.Transform) *render.Snapshot {
	t.Helper()
	p, err := dataset.Prepare(dataset.Builtin())
	if err != nil {
		t.Fatal(err)
	}
	s, err := render.New(p).Pass(context.Background(), render.Viewport{Width: 1200, Height: 800}, tr)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRenderSVGWellFormed(t *testing.T) {
	s := snapshot(t, view.Transform{X: -2000, K: 3})
	svg := RenderSVG(s, WithTitle(`Eons & "Eras"`), WithContext())

	dec := xml.NewDecoder(bytes.NewReader(svg))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("invalid XML: %v", err)
		}
	}
	out := string(svg)
	if !strings.HasPrefix(out, "<svg") {
		t.Error("missing svg root")
	}
	if !strings.Contains(out, "Eons &amp; &#34;Eras&#34;") {
		t.Error("title not escaped")
	}
	if !strings.Contains(out, `class="context"`) {
		t.Error("context indicator missing")
	}
}

func TestRenderSVGDrawOrder(t *testing.T) {
	out := string(RenderSVG(snapshot(t, view.Identity)))
	last := -1
	for _, l := range render.DrawOrder {
		i := strings.Index(out, `class="`+string(l)+`"`)
		if i < 0 {
			t.Fatalf("layer %s missing", l)
		}
		if i < last {
			t.Errorf("layer %s drawn out of order", l)
		}
		last = i
	}
}

func TestRenderSVGHidesPeriodsAtIdentity(t *testing.T) {
	out := string(RenderSVG(snapshot(t, view.Identity)))
	if strings.Contains(out, `data-name="Jurassic"`) {
		t.Error("period drawn at k=1")
	}
	if !strings.Contains(out, `data-name="Phanerozoic"`) {
		t.Error("eon missing")
	}
}

func TestRenderJSON(t *testing.T) {
	s := snapshot(t, view.Identity)
	data, err := RenderJSON(s, WithJSONDataset("abc"), WithJSONVersion("v1.0.0"))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	var out struct {
		Version   string         `json:"version"`
		Dataset   string         `json:"dataset"`
		Transform view.Transform `json:"transform"`
		Eons      []render.Band  `json:"eons"`
		Events    []render.EventMarker
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out.Version != "v1.0.0" || out.Dataset != "abc" {
		t.Errorf("header = %q/%q", out.Version, out.Dataset)
	}
	if out.Transform != view.Identity {
		t.Errorf("Transform = %+v", out.Transform)
	}
	if len(out.Eons) != 4 || len(out.Events) != len(s.Events) {
		t.Errorf("eons = %d, events = %d", len(out.Eons), len(out.Events))
	}
}

func TestRenderJSONLayers(t *testing.T) {
	s := snapshot(t, view.Identity)
	data, err := RenderJSON(s, WithJSONLayers(render.LayerEvents), WithJSONIndent())
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if string(out["eons"]) != "null" {
		t.Errorf("eons = %s, want null", out["eons"])
	}
	if string(out["events"]) == "null" {
		t.Error("events filtered out")
	}
	if len(s.Eons) == 0 {
		t.Error("filtering modified the source snapshot")
	}
	if !bytes.Contains(data, []byte("\n  ")) {
		t.Error("output not indented")
	}
}

func TestRenderPNGUnknownRasterizer(t *testing.T) {
	_, err := RenderPNG(context.Background(), snapshot(t, view.Identity), WithRasterizer("gpu"))
	if err == nil {
		t.Fatal("expected error for unknown rasterizer")
	}
}
