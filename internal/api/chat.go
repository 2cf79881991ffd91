package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Kerhoff/croowa/internal/auth"
	"github.com/google/uuid"
)

// keepAliveInterval spaces SSE comments that keep idle proxies from closing
// the stream.
const keepAliveInterval = 25 * time.Second

// ---------------------------------------------------------------------------
// Group chat
// ---------------------------------------------------------------------------

type sendChatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request, session auth.Session) {
	id, ok := s.requirePathID(w, r, "group")
	if !ok {
		return
	}

	messages, err := s.svc.ChatMessages(r.Context(), session.UserID, id)
	if err != nil {
		s.respondServiceError(w, r, err, "list chat messages")
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(messages))
}

func (s *Server) handleSendChat(w http.ResponseWriter, r *http.Request, session auth.Session) {
	id, ok := s.requirePathID(w, r, "group")
	if !ok {
		return
	}

	var req sendChatRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	msg, err := s.svc.SendChatMessage(r.Context(), session.UserID, id, req.Message)
	if err != nil {
		s.respondServiceError(w, r, err, "send chat message")
		return
	}
	s.respondJSON(w, http.StatusCreated, msg)
}

// handleChatStream sends the full recent message list as a server-sent event
// on connect and again after every change signalled by the hub. The stream
// ends when the client goes away.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request, session auth.Session) {
	id, ok := s.requirePathID(w, r, "group")
	if !ok {
		return
	}
	if err := s.svc.CanReadChat(r.Context(), session.UserID, id); err != nil {
		s.respondServiceError(w, r, err, "open chat stream")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, "streaming is not supported")
		return
	}

	// Subscribe before the first fetch so no change falls in between.
	signals, cancel := s.hub.Subscribe(id)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	log := s.logger.WithField("group_id", id)
	log.Debug("Chat stream opened")
	defer log.Debug("Chat stream closed")

	if err := s.writeChatEvent(w, r, session.UserID, id); err != nil {
		log.WithError(err).Warn("Failed to write chat event")
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-signals:
			if err := s.writeChatEvent(w, r, session.UserID, id); err != nil {
				log.WithError(err).Warn("Failed to write chat event")
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		}
		flusher.Flush()
	}
}

func (s *Server) writeChatEvent(w http.ResponseWriter, r *http.Request, userID, groupID uuid.UUID) error {
	messages, err := s.svc.ChatMessages(r.Context(), userID, groupID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(nonNil(messages))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: messages\ndata: %s\n\n", data)
	return err
}
