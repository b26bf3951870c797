package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/matzehuels/deeptime/pkg/buildinfo"
	"github.com/matzehuels/deeptime/pkg/errors"
	"github.com/matzehuels/deeptime/pkg/lod"
	"github.com/matzehuels/deeptime/pkg/pipeline"
	"github.com/matzehuels/deeptime/pkg/render"
	"github.com/matzehuels/deeptime/pkg/session"
	"github.com/matzehuels/deeptime/pkg/view"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatDOT:  "text/vnd.graphviz",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

// passOptions builds pipeline options from the query string.
func (s *Server) passOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Dataset:    s.cfg.Dataset,
		Width:      s.cfg.Viewport.Width,
		Height:     s.cfg.Viewport.Height,
		K:          1,
		Theme:      s.cfg.Render.Theme,
		Scale:      s.cfg.Render.Scale,
		Rasterizer: s.cfg.Render.Rasterizer,
		Logger:     s.logger,
	}
	if t, ok := view.ParseQuery(q); ok {
		opts.X, opts.K = t.X, t.K
	} else if q.Has(view.QueryX) || q.Has(view.QueryK) {
		return opts, errors.New(errors.ErrCodeInvalidTransform, "x and k must both be finite numbers")
	}
	err := floatParams(q, map[string]*float64{
		"width":  &opts.Width,
		"height": &opts.Height,
		"start":  &opts.Start,
		"end":    &opts.End,
	})
	if err != nil {
		return opts, err
	}
	if theme := q.Get("theme"); theme != "" {
		opts.Theme = theme
	}
	opts.Title = q.Get("title")
	opts.Context = q.Get("context") == "true"
	return opts, nil
}

func (s *Server) passContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.cfg.Server.PassTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.cfg.Server.PassTimeout)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	opts, err := s.passOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(pipeline.VizTimeline, format); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	ctx, cancel := s.passContext(r)
	defer cancel()
	res, err := s.runner.Execute(ctx, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("X-Deeptime-Query", session.FromTransform(res.Snapshot.Transform, "").Query())
	if res.CacheInfo.SnapshotHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	s.writeArtifact(w, r, format, res.Artifacts[format])
}

type zoomResponse struct {
	OK        bool           `json:"ok"`
	Transform view.Transform `json:"transform"`
	Query     string         `json:"query"`
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("start") || !q.Has("end") {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "start and end are required"))
		return
	}
	start, end := 0.0, 0.0
	width, height := s.cfg.Viewport.Width, s.cfg.Viewport.Height
	err := floatParams(q, map[string]*float64{"start": &start, "end": &end, "width": &width, "height": &height})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	data, hash, err := s.runner.Load(r.Context(), s.cfg.Dataset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	nav, err := s.runner.Orchestrator(data, hash).Navigator(render.Viewport{Width: width, Height: height})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok := nav.ZoomTo(start, end)
	t := nav.Transform()
	writeJSON(w, http.StatusOK, zoomResponse{OK: ok, Transform: t, Query: t.Query()})
}

type contextResponse struct {
	Context lod.Context       `json:"context"`
	Window  [2]float64        `json:"window"`
	Eons    []render.NavButton `json:"eons"`
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	opts, err := s.passOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.passContext(r)
	defer cancel()
	snap, err := s.runner.Snapshot(ctx, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contextResponse{Context: snap.Nav.Context, Window: snap.Window, Eons: snap.Nav.Eons})
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatDOT
	}
	if err := pipeline.ValidateFormat(pipeline.VizTree, format); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.passContext(r)
	defer cancel()
	res, err := s.runner.Execute(ctx, pipeline.Options{
		Dataset:  s.cfg.Dataset,
		VizType:  pipeline.VizTree,
		Formats:  []string{format},
		Focus:    q.Get("focus"),
		Detailed: q.Get("detailed") == "true",
		Logger:   s.logger,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeArtifact(w, r, format, res.Artifacts[format])
}

// viewRequest is the body of view create and update requests.
type viewRequest struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	K    float64 `json:"k"`
	Lang string  `json:"lang,omitempty"`
}

func (v viewRequest) state() (session.State, error) {
	st := session.State{X: v.X, K: v.K, Lang: strings.TrimSpace(v.Lang)}
	if err := view.Validate(st.Transform()); err != nil {
		return session.State{}, err
	}
	return st, nil
}
