package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/deeptime/pkg/errors"
	"github.com/matzehuels/deeptime/pkg/session"
)

// viewResponse adds the shareable query string to a saved view.
type viewResponse struct {
	*session.Session
	Query string `json:"query"`
}

func newViewResponse(s *session.Session) viewResponse {
	return viewResponse{Session: s, Query: s.State.Query()}
}

func decodeView(w http.ResponseWriter, r *http.Request) (viewRequest, error) {
	var req viewRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode view")
	}
	return req, nil
}

func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]viewResponse, 0, len(list))
	for _, v := range list {
		out = append(out, newViewResponse(v))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateView(w http.ResponseWriter, r *http.Request) {
	req, err := decodeView(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := req.state()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess := session.New(req.Name, st, s.cfg.Session.TTL)
	if err := s.store.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/views/"+sess.ID)
	writeJSON(w, http.StatusCreated, newViewResponse(sess))
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	sess, err := session.Lookup(r.Context(), s.store, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newViewResponse(sess))
}

func (s *Server) handleUpdateView(w http.ResponseWriter, r *http.Request) {
	sess, err := session.Lookup(r.Context(), s.store, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req, err := decodeView(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := req.state()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.State = st
	if req.Name != "" {
		sess.Name = req.Name
	}
	sess.UpdatedAt = time.Now()
	if err := s.store.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newViewResponse(sess))
}

func (s *Server) handleDeleteView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := session.Lookup(r.Context(), s.store, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
