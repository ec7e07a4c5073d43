package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lawnchairsociety/dungeongen/internal/directory"
	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
	"github.com/lawnchairsociety/dungeongen/internal/logger"
	"github.com/lawnchairsociety/dungeongen/internal/render"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// levelFromRequest resolves the {level} URL parameter, writing the error response itself.
func (s *Server) levelFromRequest(w http.ResponseWriter, r *http.Request) (*directory.Level, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "level"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "level must be an integer")
		return nil, false
	}

	lvl, err := s.levels.Get(n)
	switch {
	case errors.Is(err, directory.ErrInvalidLevel):
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	case err != nil:
		logger.Error("Level generation failed", "level", n, "error", err)
		writeError(w, http.StatusInternalServerError, "level generation failed")
		return nil, false
	}
	return lvl, true
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	lvl, ok := s.levelFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, manifestFor(lvl))
}

func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	cx, errX := strconv.Atoi(chi.URLParam(r, "x"))
	cy, errY := strconv.Atoi(chi.URLParam(r, "y"))
	if errX != nil || errY != nil {
		writeError(w, http.StatusBadRequest, "chunk coordinates must be integers")
		return
	}

	lvl, ok := s.levelFromRequest(w, r)
	if !ok {
		return
	}

	c, ok := lvl.Chunks.ChunkAt(cx, cy)
	if !ok {
		writeError(w, http.StatusNotFound, errChunkOutOfRange.Error())
		return
	}
	writeJSON(w, http.StatusOK, chunkPayload(c))
}

func (s *Server) handleLevelMap(w http.ResponseWriter, r *http.Request) {
	lvl, ok := s.levelFromRequest(w, r)
	if !ok {
		return
	}

	sx, sy := directory.FindSpawn(lvl.Carver)
	spawn := &dungeon.Point{X: sx, Y: sy}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(render.ForCarver(lvl.Carver, spawn)))
}
