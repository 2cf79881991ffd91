package api

import (
	"net/http"

	"github.com/Kerhoff/croowa/internal/auth"
	"github.com/Kerhoff/croowa/internal/models"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Reactions
// ---------------------------------------------------------------------------

type toggleReactionRequest struct {
	TargetType   models.ReactionTarget `json:"target_type"`
	TargetID     uuid.UUID             `json:"target_id"`
	ReactionType models.ReactionKind   `json:"reaction_type"`
}

type toggleReactionResponse struct {
	Active bool `json:"active"`
}

func (s *Server) handleToggleReaction(w http.ResponseWriter, r *http.Request, session auth.Session) {
	var req toggleReactionRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	active, err := s.svc.ToggleReaction(r.Context(), session.UserID, req.TargetType, req.TargetID, req.ReactionType)
	if err != nil {
		s.respondServiceError(w, r, err, "toggle reaction")
		return
	}
	s.respondJSON(w, http.StatusOK, toggleReactionResponse{Active: active})
}

func (s *Server) handleGetReactions(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	q := r.URL.Query()
	targetID, err := uuid.Parse(q.Get("target_id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "target_id query parameter must be a UUID")
		return
	}

	summary, err := s.svc.ReactionsFor(r.Context(), models.ReactionTarget(q.Get("target_type")), targetID)
	if err != nil {
		s.respondServiceError(w, r, err, "list reactions")
		return
	}
	summary.Reactions = nonNil(summary.Reactions)
	s.respondJSON(w, http.StatusOK, summary)
}

// ---------------------------------------------------------------------------
// Profiles & friends
// ---------------------------------------------------------------------------

func (s *Server) handleSearchProfiles(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	profiles, err := s.svc.SearchProfiles(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.respondServiceError(w, r, err, "search profiles")
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(profiles))
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	id, ok := s.requirePathID(w, r, "user")
	if !ok {
		return
	}

	profile, err := s.svc.Profile(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err, "get profile")
		return
	}
	s.respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	id, ok := s.requirePathID(w, r, "user")
	if !ok {
		return
	}

	stats, err := s.svc.UserStats(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err, "get user stats")
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	id, ok := s.requirePathID(w, r, "user")
	if !ok {
		return
	}

	profiles, err := s.svc.Followers(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err, "list followers")
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(profiles))
}

func (s *Server) handleFollowing(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	id, ok := s.requirePathID(w, r, "user")
	if !ok {
		return
	}

	profiles, err := s.svc.Following(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err, "list following")
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(profiles))
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request, session auth.Session) {
	id, ok := s.requirePathID(w, r, "user")
	if !ok {
		return
	}

	if err := s.svc.Follow(r.Context(), session.UserID, id); err != nil {
		s.respondServiceError(w, r, err, "follow user")
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request, session auth.Session) {
	id, ok := s.requirePathID(w, r, "user")
	if !ok {
		return
	}

	if err := s.svc.Unfollow(r.Context(), session.UserID, id); err != nil {
		s.respondServiceError(w, r, err, "unfollow user")
		return
	}
	s.respondJSON(w, http.StatusNoContent, nil)
}
