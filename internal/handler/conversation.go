package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"agora/internal/config"
	"agora/internal/conversation"
	"agora/internal/domain"
	"agora/internal/export"
	"agora/internal/httputil"
)

// ConversationHandler exposes the orchestration loop, export, diagnostics
// and reset over HTTP. Handlers only talk to the conversation; the ledger
// itself is never reachable from here except as a read-only snapshot.
type ConversationHandler struct {
	conv   *conversation.Conversation
	cfg    *config.Config
	logger *slog.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(conv *conversation.Conversation, cfg *config.Config, logger *slog.Logger) *ConversationHandler {
	return &ConversationHandler{conv: conv, cfg: cfg, logger: logger}
}

type messageRequest struct {
	Content         string `json:"content"`
	TokenLimit      int    `json:"token_limit,omitempty"`
	NotationEnabled bool   `json:"notation_enabled,omitempty"`
}

func (r *messageRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.TokenLimit, validation.Min(0)),
	)
}

// SendMessage runs one conversation round.
// POST /api/message
func (h *ConversationHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.conv.SendMessage(r.Context(), req.Content, conversation.RoundOptions{
		TokenLimit:      req.TokenLimit,
		NotationEnabled: req.NotationEnabled,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Status reports conversation state for the root endpoint.
// GET /
func (h *ConversationHandler) Status(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":              "ok",
		"conversation_id":     h.conv.ID(),
		"active_participants": h.cfg.ActiveParticipants(),
		"total_turns":         h.conv.Len(),
		"notation_enabled":    h.cfg.Notation.Enabled,
		"notation_mode":       h.cfg.Notation.Mode,
		"timestamp":           time.Now().UTC().Format(time.RFC3339),
	})
}

// Export writes the full ledger to a durable JSON record and returns it.
// GET /api/export
func (h *ConversationHandler) Export(w http.ResponseWriter, r *http.Request) {
	turns := h.conv.Snapshot()
	if len(turns) == 0 {
		h.handleError(w, &domain.NotFoundError{Message: domain.ErrEmptyConversation.Error()})
		return
	}

	record := export.Build(h.conv.ID(), h.cfg.Notation.Mode, turns)
	path, err := record.WriteFile(h.cfg.ExportDir)
	if err != nil {
		h.logger.Error("export failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "failed to write export")
		return
	}

	h.logger.Info("conversation exported", "file", path, "turns", len(turns))
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"file":   path,
		"export": record,
	})
}

// Diagnostics aggregates counts over the ledger.
// GET /api/diagnostics
func (h *ConversationHandler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	turns := h.conv.Snapshot()
	if len(turns) == 0 {
		h.handleError(w, &domain.NotFoundError{Message: domain.ErrEmptyConversation.Error()})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, export.Diagnose(turns))
}

// Reset clears the ledger and the order memory together.
// POST /api/reset
func (h *ConversationHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.conv.Reset()
	h.logger.Info("conversation reset", "conversation", h.conv.ID())
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "reset",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheck reports liveness.
// GET /health
func (h *ConversationHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleError maps domain errors to HTTP responses via the HTTPError
// interface, defaulting to 500.
func (h *ConversationHandler) handleError(w http.ResponseWriter, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}
	h.logger.Error("unhandled error", "error", err)
	httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
}
