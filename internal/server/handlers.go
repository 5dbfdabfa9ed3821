package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"newsdesk/internal/approval"
	"newsdesk/internal/ports"
	"newsdesk/internal/slack"
)

const (
	maxBodySize  = 1 << 20
	storeTimeout = 5 * time.Second
	modalTimeout = 5 * time.Second
)

// Handler owns the webhook endpoints. The machine computes replies; this
// layer translates them into the wire shapes Slack expects and fires the
// best-effort modal open.
type Handler struct {
	verifier *slack.Verifier
	machine  *approval.Machine
	modals   ports.ModalOpener
	logger   *slog.Logger
}

// NewHandler wires the verifier, state machine, and optional modal opener.
func NewHandler(verifier *slack.Verifier, machine *approval.Machine, modals ports.ModalOpener, logger *slog.Logger) *Handler {
	return &Handler{verifier: verifier, machine: machine, modals: modals, logger: logger}
}

// Resume handles Slack interactivity callbacks. Only a failed signature
// check produces a non-200 response; every other failure mode degrades to a
// user-visible reply so Slack does not retry the delivery.
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.logger.Warn("read webhook body failed", "error", err)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	// An empty body is the endpoint registration probe: acknowledge
	// unconditionally, before signature verification.
	if len(bytes.TrimSpace(body)) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if err := h.verifier.Verify(r.Header, body); err != nil {
		h.logger.Warn("webhook verification failed", "error", err)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": err.Error()})
		return
	}

	cmd := slack.ParseInteraction(r.Header.Get("Content-Type"), body)

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	reply := h.machine.Handle(ctx, cmd)

	if reply.Modal != nil {
		h.openModal(*reply.Modal)
	}

	switch reply.Kind {
	case approval.ReplyClear:
		writeJSON(w, http.StatusOK, map[string]any{"response_action": "clear"})
	case approval.ReplyUpdate:
		writeJSON(w, http.StatusOK, map[string]any{"response_action": "update", "text": reply.Text})
	case approval.ReplyText:
		writeJSON(w, http.StatusOK, map[string]any{"text": reply.Text})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

// openModal fires views.open concurrently with the webhook acknowledgment.
// The trigger id expires in seconds, and a failed open must never change the
// response already being written.
func (h *Handler) openModal(req approval.ModalRequest) {
	if h.modals == nil {
		h.logger.Warn("modal opener not configured", "article_id", req.ArticleID)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), modalTimeout)
		defer cancel()

		if err := h.modals.OpenEditModal(ctx, req.TriggerID, req.ArticleID, req.CurrentTitle); err != nil {
			h.logger.Warn("open edit modal failed", "article_id", req.ArticleID, "error", err)
		}
	}()
}

// RunTrigger returns a handler that kicks off a pipeline run in the
// background and acknowledges immediately.
func (h *Handler) RunTrigger(name string, run func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go func() {
			if err := run(context.Background()); err != nil {
				h.logger.Error("triggered run failed", "run", name, "error", err)
			}
		}()

		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
