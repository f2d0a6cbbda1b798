package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	"golang.org/x/text/language"

	"github.com/questforge/questforge/internal/engine"
	"github.com/questforge/questforge/pkg/game"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

const (
	maxPlayerNameLen = 50
	maxActionLen     = 500
	maxSessionIDLen  = 128
)

// GameHandler handles HTTP requests for game sessions.
type GameHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

// NewGameHandler creates a new game handler.
func NewGameHandler(eng *engine.Engine, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		engine: eng,
		logger: logger,
	}
}

// CreateGameRequest defines the request body for creating a session.
type CreateGameRequest struct {
	PlayerName string `json:"player_name"`
	Theme      string `json:"theme"`
	Language   string `json:"language,omitempty"`
}

// ActionRequest defines the request body for a player action.
type ActionRequest struct {
	Action string `json:"action"`
}

// ServeHTTP handles HTTP requests for game operations
// Routes:
// POST /v1/games               - Create new session
// GET /v1/games/{id}           - Read session by ID
// POST /v1/games/{id}/action   - Process a player action
// DELETE /v1/games/{id}        - Delete session by ID (administrative)
func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/games"), "/")

	switch {
	case path == "":
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Use POST to create a session.")
			return
		}
		h.handleCreate(w, r)

	case strings.HasSuffix(path, "/action"):
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Use POST to submit an action.")
			return
		}
		id := strings.TrimSuffix(path, "/action")
		id = strings.Trim(id, "/")
		if !validSessionID(id) {
			h.writeError(w, http.StatusBadRequest, "Invalid session ID")
			return
		}
		h.handleAction(w, r, id)

	default:
		if !validSessionID(path) {
			h.writeError(w, http.StatusBadRequest, "Invalid session ID")
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, path)
		case http.MethodDelete:
			h.handleDelete(w, r, path)
		default:
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
		}
	}
}

func (h *GameHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid create request body", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body. Expected JSON with 'player_name' and 'theme' fields.")
		return
	}

	playerName := sanitizePlayerName(req.PlayerName)
	if playerName == "" || len(playerName) > maxPlayerNameLen {
		h.writeError(w, http.StatusBadRequest, "player_name must be 1-50 characters")
		return
	}

	theme, err := game.ParseTheme(req.Theme)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid theme. Supported themes: "+themeList())
		return
	}

	lang := req.Language
	if lang == "" {
		lang = "en"
	}
	if len(lang) < 2 || len(lang) > 10 {
		h.writeError(w, http.StatusBadRequest, "language must be 2-10 characters")
		return
	}
	if _, err := language.Parse(lang); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid language tag")
		return
	}

	view, err := h.engine.CreateGame(r.Context(), playerName, theme, lang)
	if err != nil {
		// The engine guarantees creation cannot fail on oracle or
		// storage trouble; anything here is a programming error.
		h.logger.Error("Failed to create session", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	h.writeJSON(w, http.StatusCreated, view)
}

func (h *GameHandler) handleAction(w http.ResponseWriter, r *http.Request, id string) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid action request body", "id", id, "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body. Expected JSON with 'action' field.")
		return
	}

	action := strings.TrimSpace(req.Action)
	if action == "" || len(action) > maxActionLen {
		h.writeError(w, http.StatusBadRequest, "action must be 1-500 characters")
		return
	}

	view, err := h.engine.ProcessAction(r.Context(), id, action)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrNotFound):
			h.writeError(w, http.StatusNotFound, "Session not found")
		case errors.Is(err, engine.ErrGameOver):
			h.writeError(w, http.StatusConflict, "Session is already over")
		default:
			h.logger.Error("Failed to process action", "id", id, "error", err)
			h.writeError(w, http.StatusInternalServerError, "Failed to process action")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, view)
}

func (h *GameHandler) handleRead(w http.ResponseWriter, r *http.Request, id string) {
	s, err := h.engine.GetGame(r.Context(), id)
	if err != nil {
		if errors.Is(err, engine.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error("Failed to read session", "id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to read session")
		return
	}

	h.writeJSON(w, http.StatusOK, s.View())
}

func (h *GameHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.engine.DeleteGame(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete session", "id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GameHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *GameHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}

// sanitizePlayerName trims whitespace and strips control characters so
// names are safe for prompts and logs.
func sanitizePlayerName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

func validSessionID(id string) bool {
	return id != "" && len(id) <= maxSessionIDLen && !strings.Contains(id, "/")
}

func themeList() string {
	themes := game.Themes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
