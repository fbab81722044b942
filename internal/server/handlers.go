package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sadamiak/doodle/internal/core"
	"github.com/sadamiak/doodle/internal/db"
	"github.com/sadamiak/doodle/internal/types"
)

const maxBodyBytes = 8 * 1024

// Handler serves the messages API.
type Handler struct {
	db     *sql.DB
	clock  core.Clock
	logger zerolog.Logger
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Health reports database reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type listResponse struct {
	Messages []types.RawRecord `json:"messages"`
}

// ListMessages serves GET /api/v1/messages?limit=&before=&after=.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	opts := db.ListOptions{
		Before: strings.TrimSpace(query.Get("before")),
		After:  strings.TrimSpace(query.Get("after")),
	}
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		opts.Limit = limit
	}

	messages, err := db.ListMessages(h.db, opts)
	if err != nil {
		if errors.Is(err, db.ErrInvalidCursor) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("list messages")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	cursor := "none"
	switch {
	case opts.After != "":
		cursor = "after"
	case opts.Before != "":
		cursor = "before"
	}
	pagesServed.WithLabelValues(cursor).Inc()

	resp := listResponse{Messages: make([]types.RawRecord, 0, len(messages))}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, toRecord(msg))
	}
	writeJSON(w, http.StatusOK, resp)
}

// PostMessage serves POST /api/v1/messages with {"author","message"}.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var input types.RawRecord
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	body := strings.TrimSpace(input.Body)
	if body == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	msg, err := db.InsertMessage(h.db, input.Author, body, h.clock.Now())
	if err != nil {
		h.logger.Error().Err(err).Msg("insert message")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	messagesPosted.Inc()
	h.logger.Debug().Str("id", msg.ID).Str("author", msg.Author).Msg("message posted")

	writeJSON(w, http.StatusCreated, toRecord(msg))
}

func toRecord(msg types.Message) types.RawRecord {
	return types.RawRecord{
		ID:        msg.ID,
		Author:    msg.Author,
		Body:      msg.Body,
		CreatedAt: msg.CreatedAt,
	}
}
