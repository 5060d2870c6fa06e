// Package api exposes read-only game data over HTTP.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/faideww/reelquest/internal/errors"
	"github.com/faideww/reelquest/internal/game"
	"github.com/faideww/reelquest/internal/store"
	"github.com/gorilla/mux"
)

const maxBoardSize = 50

type Server struct {
	addr   string
	engine *game.Engine
}

func NewServer(addr string, engine *game.Engine) *Server {
	return &Server{addr: addr, engine: engine}
}

// Handler builds the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/players/{id:[0-9]+}", s.player).Methods(http.MethodGet)
	v1.HandleFunc("/guilds/top", s.guildTop).Methods(http.MethodGet)
	v1.HandleFunc("/guilds/{id:[0-9]+}", s.guild).Methods(http.MethodGet)
	v1.HandleFunc("/leaderboard/{metric}", s.leaderboard).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("not found"))
	})

	chain := middlewareChain(requestID, logger)
	return chain(router)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Println("api listening on", s.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "active_casts": s.engine.ActiveCasts()})
}

func (s *Server) player(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	card, err := s.engine.PlayerCard(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if card == nil {
		writeError(w, http.StatusNotFound, errors.New("player not found"))
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) guild(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	v, err := s.engine.GuildByID(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) guildTop(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rows, err := s.engine.GuildTop(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"guilds": rows})
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	metric, err := store.ParseMetric(mux.Vars(r)["metric"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rows, err := s.engine.Leaderboard(r.Context(), metric, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"metric": metric, "players": rows})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apperrors.CodeOf(err) == apperrors.CodeGuildNotFound {
		writeError(w, http.StatusNotFound, errors.New("guild not found"))
		return
	}
	log.Printf("[%s] %s: %v", requestIDFrom(r.Context()), r.URL.Path, err)
	writeError(w, http.StatusServiceUnavailable, errors.New("temporarily unavailable"))
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return game.DefaultBoardSize, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxBoardSize {
		return 0, errors.New("limit must be between 1 and 50")
	}
	return n, nil
}
