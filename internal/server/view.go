package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"roster-tracker/internal/form"
	"roster-tracker/internal/roster"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ViewModel is the part of roster.Model exposed over HTTP.
type ViewModel interface {
	View() roster.View
	Subscribe(fn func(roster.View)) (unsubscribe func())
	SetKey(id string)
	Refresh()
	BeginEditByID(id string) error
	SetField(field form.Field, value string) error
	Cancel()
	Submit(ctx context.Context) error
	Remove(ctx context.Context, id string) error
}

// ViewServer drives one view model from HTTP commands and streams its
// snapshots to websocket clients.
type ViewServer struct {
	model  ViewModel
	hub    *Hub
	logger zerolog.Logger

	unsubscribe func()
}

func NewViewServer(model *roster.Model, hub *Hub, logger zerolog.Logger) *ViewServer {
	return newViewServer(model, hub, logger)
}

func newViewServer(model ViewModel, hub *Hub, logger zerolog.Logger) *ViewServer {
	s := &ViewServer{
		model:  model,
		hub:    hub,
		logger: logger.With().Str("component", "view_server").Logger(),
	}
	s.unsubscribe = model.Subscribe(func(v roster.View) { hub.Broadcast(v) })
	return s
}

func (s *ViewServer) Routes(r chi.Router) {
	r.Route("/api/view", func(r chi.Router) {
		r.Get("/", s.getView)
		r.Post("/refresh", s.refresh)

		r.Put("/key/{id}", s.setKey)
		r.Delete("/key", s.clearKey)

		r.Patch("/form", s.setField)
		r.Post("/form/edit/{id}", s.beginEdit)
		r.Post("/form/cancel", s.cancel)
		r.Post("/form/submit", s.submit)

		r.Delete("/players/{id}", s.remove)
	})
	r.Get("/ws", s.serveWS)
}

// Close stops broadcasting and disconnects websocket clients.
func (s *ViewServer) Close() {
	s.unsubscribe()
	s.hub.Close()
}

func (s *ViewServer) getView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.model.View())
}

func (s *ViewServer) refresh(w http.ResponseWriter, _ *http.Request) {
	s.model.Refresh()
	writeJSON(w, http.StatusAccepted, s.model.View())
}

func (s *ViewServer) setKey(w http.ResponseWriter, r *http.Request) {
	s.model.SetKey(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusAccepted, s.model.View())
}

func (s *ViewServer) clearKey(w http.ResponseWriter, _ *http.Request) {
	s.model.SetKey("")
	writeJSON(w, http.StatusOK, s.model.View())
}

type setFieldRequest struct {
	Field form.Field `json:"field"`
	Value string     `json:"value"`
}

func (s *ViewServer) setField(w http.ResponseWriter, r *http.Request) {
	var req setFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := s.model.SetField(req.Field, req.Value); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.model.View())
}

func (s *ViewServer) beginEdit(w http.ResponseWriter, r *http.Request) {
	if err := s.model.BeginEditByID(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.model.View())
}

func (s *ViewServer) cancel(w http.ResponseWriter, _ *http.Request) {
	s.model.Cancel()
	writeJSON(w, http.StatusOK, s.model.View())
}

func (s *ViewServer) submit(w http.ResponseWriter, r *http.Request) {
	if err := s.model.Submit(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.model.View())
}

func (s *ViewServer) remove(w http.ResponseWriter, r *http.Request) {
	if err := s.model.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.model.View())
}

func (s *ViewServer) serveWS(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r, s.model.View())
}
