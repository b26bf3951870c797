package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/matzehuels/deeptime/pkg/errors"
)

type errorBody struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeArtifact sends an encoded artifact. The status line is already out
// when the body fails, so a write error is only logged.
func (s *Server) writeArtifact(w http.ResponseWriter, r *http.Request, format string, data []byte) {
	w.Header().Set("Content-Type", contentTypes[format])
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("write artifact", "path", r.URL.Path, "format", format, "bytes", len(data), "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if stderrors.Is(err, context.DeadlineExceeded) && errors.GetCode(err) == "" {
		err = errors.Wrap(errors.ErrCodeTimeout, err, "render pass timed out")
	}
	status := errors.HTTPStatus(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}

// floatParam reads a float query parameter, returning def when absent.
func floatParam(q url.Values, name string, def float64) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "parameter %s: %q is not a number", name, raw)
	}
	return v, nil
}

// floatParams reads several float parameters, stopping at the first error.
func floatParams(q url.Values, dst map[string]*float64) error {
	for name, p := range dst {
		v, err := floatParam(q, name, *p)
		if err != nil {
			return err
		}
		*p = v
	}
	return nil
}
