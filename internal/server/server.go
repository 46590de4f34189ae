package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AloySobek/ft-gomoku/engine"
	"github.com/AloySobek/ft-gomoku/internal/config"
	"github.com/AloySobek/ft-gomoku/internal/store"
)

type Server struct {
	log      *zap.Logger
	settings *config.SettingsStore
	boards   store.BoardStore
	archive  store.Archive

	ctx    context.Context
	cancel context.CancelFunc
	tasks  sync.WaitGroup

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

func New(log *zap.Logger, settings *config.SettingsStore, boards store.BoardStore, archive store.Archive) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if archive == nil {
		archive = store.NopArchive{}
	}
	if boards == nil {
		boards = store.NewMemoryBoardStore()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		log:      log,
		settings: settings,
		boards:   boards,
		archive:  archive,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[uuid.UUID]*session),
	}
}

// Close stops every running search and waits for pending background work.
func (s *Server) Close() {
	s.cancel()
	s.tasks.Wait()
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log.Named("http")))
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Get("/api/settings", s.handleGetSettings)
	r.Put("/api/settings", s.handlePutSettings)

	r.Route("/api/games", func(r chi.Router) {
		r.Get("/", s.handleListGames)
		r.Post("/", s.handleCreateGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.withSession(s.handleStatus))
			r.Delete("/", s.handleDeleteGame)
			r.Post("/move", s.withSession(s.handleMove))
			r.Post("/help", s.withSession(s.handleHelp))
			r.Post("/reset", s.withSession(s.handleReset))
			r.Get("/movemap", s.withSession(s.handleMoveMap))
			r.Get("/scan/{kind}", s.withSession(s.handleScan))
			r.Get("/board", s.withSession(s.handleExportBoard))
			r.Put("/board", s.withSession(s.handleImportBoard))
			r.Post("/snapshot", s.withSession(s.handleSaveSnapshot))
			r.Post("/restore", s.withSession(s.handleRestoreSnapshot))
			r.Get("/stats", s.withSession(s.handleStats))
			r.Get("/tt", s.withSession(s.handleTTStatus))
			r.Delete("/tt", s.withSession(s.handleTTClear))
			r.Get("/tt/entries", s.withSession(s.handleTTEntries))
			r.Delete("/tt/entries/{hash}", s.withSession(s.handleTTDelete))
		})
	})

	r.Get("/api/archive", s.handleArchiveList)
	r.Get("/api/archive/{id}", s.handleArchiveGet)

	r.Get("/ws/{id}", s.withSession(s.serveWS))
	return r
}

type sessionHandler func(sess *session, w http.ResponseWriter, r *http.Request)

func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid game id")
			return
		}
		s.mu.RLock()
		sess, ok := s.sessions[id]
		s.mu.RUnlock()
		if !ok {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		next(sess, w, r)
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, settingsToDTO(s.settings.Get()))
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var payload settingsDTO
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	settings, err := settingsFromDTO(payload)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	s.settings.Update(settings)
	s.log.Info("default settings updated", zap.Int("depth", settings.Depth), zap.Int("board_size", settings.BoardSize))
	writeJSON(w, http.StatusOK, settingsToDTO(settings))
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	list := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	s.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].created.Before(list[j].created) })
	out := make([]statusResponse, len(list))
	for i, sess := range list {
		out[i] = sess.status()
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var payload createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	mode, err := engine.ParseMode(payload.Mode)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	settings := s.settings.Get()
	if payload.BoardSize != 0 {
		settings.BoardSize = payload.BoardSize
	}
	if payload.Depth > 0 {
		settings.Depth = payload.Depth
	}
	if payload.TimeBudgetMs > 0 {
		settings.TimeBudget = time.Duration(payload.TimeBudgetMs) * time.Millisecond
	}
	if payload.HumanColor != "" {
		human, err := engine.ParseColor(payload.HumanColor)
		if err != nil || human == engine.CellEmpty {
			writeError(w, http.StatusBadRequest, "human_color must be black or white")
			return
		}
		settings.HumanColor = human
	}

	id := uuid.New()
	log := s.log.Named("game").With(zap.String("game", id.String()))
	game, err := engine.NewGame(settings, engine.WithLogger(log), engine.WithSalt(saltFromID(id)))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	ctx, cancel := context.WithCancel(s.ctx)
	sess := &session{
		id:      id,
		mode:    mode,
		created: time.Now(),
		hub:     NewHub(),
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		game:    game,
	}
	if _, err := game.StartGame(ctx, mode); err != nil {
		cancel()
		writeEngineError(w, err)
		return
	}
	go sess.hub.Run(ctx.Done())

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	log.Info("game created", zap.Stringer("mode", mode), zap.Int("board_size", settings.BoardSize), zap.Stringer("human", settings.HumanColor))
	writeJSON(w, http.StatusCreated, sess.status())
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	sess.mu.Lock()
	sess.stopSearchLocked()
	sess.mu.Unlock()
	sess.cancel()
	if err := s.boards.Delete(r.Context(), id.String()); err != nil {
		s.log.Warn("delete snapshot failed", zap.String("game", id.String()), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "id": id.String()})
}

func (s *Server) handleStatus(sess *session, w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sess.status())
}

func (s *Server) handleMove(sess *session, w http.ResponseWriter, r *http.Request) {
	var payload moveRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	applied, err := s.play(r.Context(), sess, payload)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, moveResponse{Applied: applied, Status: sess.status()})
}

func (s *Server) handleHelp(sess *session, w http.ResponseWriter, r *http.Request) {
	move, stats, ttSize, err := s.help(r.Context(), sess)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, helpResponse{Move: moveToDTO(move), Stats: statsToDTO(stats, ttSize)})
}

func (s *Server) handleReset(sess *session, w http.ResponseWriter, r *http.Request) {
	if err := s.reset(r.Context(), sess); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.status())
}

func (s *Server) handleMoveMap(sess *session, w http.ResponseWriter, r *http.Request) {
	sess.mu.Lock()
	m := sess.game.MoveMap()
	sess.mu.Unlock()
	writeJSON(w, http.StatusOK, moveMapResponse{
		Size:   m.Size,
		Player: engine.IntFromTokenColor(m.Side),
		Scores: m.Scores,
		Ranked: m.Ranked(),
	})
}

func (s *Server) handleScan(sess *session, w http.ResponseWriter, r *http.Request) {
	kind, err := engine.ParseScanKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	color := sess.game.ToMove()
	if raw := r.URL.Query().Get("color"); raw != "" {
		c, err := engine.ParseColor(raw)
		if err != nil || c == engine.CellEmpty {
			writeError(w, http.StatusBadRequest, "color must be black or white")
			return
		}
		color = c
	}
	writeJSON(w, http.StatusOK, scanResponse{
		Kind:   kind.String(),
		Player: engine.IntFromTokenColor(color),
		Cells:  sess.game.Scan(kind, color),
	})
}

func (s *Server) handleExportBoard(sess *session, w http.ResponseWriter, r *http.Request) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	g := sess.game
	writeJSON(w, http.StatusOK, rowsRequest{
		Rows:          g.ExportRows(),
		BlackCaptures: g.Captures(engine.CellBlack),
		WhiteCaptures: g.Captures(engine.CellWhite),
		ToMove:        engine.IntFromTokenColor(g.ToMove()),
	})
}

func (s *Server) handleImportBoard(sess *session, w http.ResponseWriter, r *http.Request) {
	var payload rowsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := s.importPosition(sess, payload); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.status())
}

func (s *Server) handleSaveSnapshot(sess *session, w http.ResponseWriter, r *http.Request) {
	sess.mu.Lock()
	snap := store.SnapshotOf(sess.id.String(), sess.mode, sess.game)
	sess.mu.Unlock()
	if err := s.boards.Save(r.Context(), snap); err != nil {
		s.log.Error("save snapshot failed", zap.String("game", snap.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save snapshot")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleRestoreSnapshot(sess *session, w http.ResponseWriter, r *http.Request) {
	snap, err := s.boards.Load(r.Context(), sess.id.String())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if err := s.restore(sess, snap); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.status())
}

func (s *Server) handleStats(sess *session, w http.ResponseWriter, r *http.Request) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusOK, statsToDTO(sess.game.LastStats(), sess.game.TTSize()))
}

func (s *Server) handleTTStatus(sess *session, w http.ResponseWriter, r *http.Request) {
	tt := sess.game.TT()
	writeJSON(w, http.StatusOK, ttStatusResponse{
		Count:      tt.Len(),
		Hits:       tt.Hits(),
		Inserts:    tt.Inserts(),
		Generation: tt.Generation(),
	})
}

func (s *Server) handleTTClear(sess *session, w http.ResponseWriter, r *http.Request) {
	sess.game.TT().Clear()
	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

func (s *Server) handleTTEntries(sess *session, w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	entries, total := sess.game.TT().TopEntriesByHits(offset, limit)
	items := make([]ttEntryDTO, len(entries))
	for i, e := range entries {
		items[i] = ttEntryToDTO(e)
	}
	writeJSON(w, http.StatusOK, ttEntriesResponse{Items: items, Offset: offset, Limit: limit, Total: total})
}

func (s *Server) handleTTDelete(sess *session, w http.ResponseWriter, r *http.Request) {
	hash, err := parseTTKey(chi.URLParam(r, "hash"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hash")
		return
	}
	deleted := sess.game.TT().DeleteByKey(hash)
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted": deleted,
		"hash":    formatTTKey(hash),
	})
}

func (s *Server) handleArchiveList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	records, err := s.archive.Recent(r.Context(), limit)
	if err != nil {
		s.log.Error("list archive failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not read archive")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleArchiveGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.archive.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeEngineError maps domain errors onto status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrGameOver),
		errors.Is(err, engine.ErrOutOfTurn),
		errors.Is(err, errEngineThinking):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrInvalidCoordinate),
		errors.Is(err, engine.ErrInvalidColor),
		errors.Is(err, engine.ErrUnknownColorCode),
		errors.Is(err, engine.ErrInvalidBoardSize),
		errors.Is(err, engine.ErrMalformedRows),
		errors.Is(err, engine.ErrInvalidCaptures),
		errors.Is(err, engine.ErrUnknownMode),
		errors.Is(err, engine.ErrUnknownScanKind):
		status = http.StatusBadRequest
	}
	writeError(w, status, err.Error())
}
