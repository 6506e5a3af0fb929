package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"roster-tracker/internal/database"
	"roster-tracker/internal/domain"
	"roster-tracker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// PlayerServer is the roster API: player CRUD, season lines and similarity
// rankings over the local database.
type PlayerServer struct {
	playerSvc     *service.PlayerService
	similaritySvc *service.SimilarityService
	db            *sql.DB
	logger        zerolog.Logger
}

func NewPlayerServer(playerSvc *service.PlayerService, similaritySvc *service.SimilarityService, db *sql.DB, logger zerolog.Logger) *PlayerServer {
	return &PlayerServer{
		playerSvc:     playerSvc,
		similaritySvc: similaritySvc,
		db:            db,
		logger:        logger.With().Str("component", "player_server").Logger(),
	}
}

func (s *PlayerServer) Routes(r chi.Router) {
	r.Route("/api/players", func(r chi.Router) {
		r.Get("/", s.listPlayers)
		r.Post("/", s.createPlayer)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getPlayer)
			r.Put("/", s.updatePlayer)
			r.Delete("/", s.deletePlayer)
			r.Post("/stats", s.putSeasonStat)
			r.Get("/seasons/{season}/similar", s.getSimilar)
		})
	})
	r.Get("/healthz", s.health)
}

func (s *PlayerServer) listPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.playerSvc.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

func (s *PlayerServer) createPlayer(w http.ResponseWriter, r *http.Request) {
	var fields domain.PlayerFields
	if !decodeBody(w, r, &fields) {
		return
	}

	player, err := s.playerSvc.Create(r.Context(), fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, player)
}

func (s *PlayerServer) getPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := s.playerSvc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writePlayerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (s *PlayerServer) updatePlayer(w http.ResponseWriter, r *http.Request) {
	var fields domain.PlayerFields
	if !decodeBody(w, r, &fields) {
		return
	}

	player, err := s.playerSvc.Update(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		writePlayerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

func (s *PlayerServer) deletePlayer(w http.ResponseWriter, r *http.Request) {
	if err := s.playerSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writePlayerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *PlayerServer) putSeasonStat(w http.ResponseWriter, r *http.Request) {
	var stat domain.SeasonStat
	if !decodeBody(w, r, &stat) {
		return
	}

	stored, err := s.playerSvc.PutSeasonStat(r.Context(), chi.URLParam(r, "id"), stat)
	if err != nil {
		writePlayerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *PlayerServer) getSimilar(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, r, fmt.Errorf("%w: limit must be a positive integer", errBadRequest))
			return
		}
		limit = n
	}

	matches, err := s.similaritySvc.Similar(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "season"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *PlayerServer) health(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error().Err(err).Msg("database health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	version, err := database.SchemaVersion(s.db)
	if err != nil {
		s.logger.Error().Err(err).Msg("schema version check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "schema_version": version})
}

// writePlayerError reports a missing player with the fixed detail clients
// match on.
func writePlayerError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Detail: "Player not found", Kind: domain.KindNotFound})
		return
	}
	writeError(w, r, err)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid JSON body: %v", domain.ErrValidation, err))
		return false
	}
	return true
}
