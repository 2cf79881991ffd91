package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Kerhoff/croowa/internal/auth"
	"github.com/Kerhoff/croowa/internal/metrics"
	"github.com/Kerhoff/croowa/internal/realtime"
	"github.com/Kerhoff/croowa/internal/service"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Server provides the HTTP JSON API.
type Server struct {
	svc     *service.Service
	hub     *realtime.Hub
	metrics *metrics.Metrics
	logger  *logrus.Logger
	mux     *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it. m may be
// nil to disable request metrics.
func NewServer(svc *service.Service, hub *realtime.Hub, m *metrics.Metrics, logger *logrus.Logger) *Server {
	s := &Server{svc: svc, hub: hub, metrics: m, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.metrics.Middleware(s.mux)
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	// API – Accounts
	s.mux.HandleFunc("POST /api/auth/signup", s.handleSignUp)
	s.mux.HandleFunc("POST /api/auth/signin", s.handleSignIn)
	s.mux.HandleFunc("GET /api/me", s.authed(s.handleMe))
	s.mux.HandleFunc("PUT /api/me/profile", s.authed(s.handleUpdateProfile))
	s.mux.HandleFunc("GET /api/me/gamification", s.authed(s.handleGamification))
	s.mux.HandleFunc("GET /api/me/achievements", s.authed(s.handleAchievements))

	// API – Goals
	s.mux.HandleFunc("GET /api/goals", s.authed(s.handleMyGoals))
	s.mux.HandleFunc("POST /api/goals", s.authed(s.handleCreateGoal))
	s.mux.HandleFunc("GET /api/goals/{id}", s.authed(s.handleGetGoal))
	s.mux.HandleFunc("GET /api/goals/{id}/report", s.authed(s.handleGoalReport))
	s.mux.HandleFunc("GET /api/goals/{id}/contributions", s.authed(s.handleGetContributions))
	s.mux.HandleFunc("POST /api/goals/{id}/contributions", s.authed(s.handleContribute))
	s.mux.HandleFunc("GET /api/goals/{id}/contributors", s.authed(s.handleContributors))

	// API – Groups
	s.mux.HandleFunc("GET /api/groups", s.authed(s.handleMyGroups))
	s.mux.HandleFunc("POST /api/groups", s.authed(s.handleCreateGroup))
	s.mux.HandleFunc("GET /api/groups/public", s.authed(s.handlePublicGroups))
	s.mux.HandleFunc("POST /api/groups/join", s.authed(s.handleJoinByCode))
	s.mux.HandleFunc("GET /api/groups/{id}", s.authed(s.handleGetGroup))
	s.mux.HandleFunc("POST /api/groups/{id}/join", s.authed(s.handleJoinPublic))
	s.mux.HandleFunc("GET /api/groups/{id}/members", s.authed(s.handleMembers))
	s.mux.HandleFunc("GET /api/groups/{id}/total", s.authed(s.handleGroupTotal))
	s.mux.HandleFunc("GET /api/groups/{id}/ranking", s.authed(s.handleGroupRanking))
	s.mux.HandleFunc("GET /api/groups/{id}/invite", s.authed(s.handleInvite))
	s.mux.HandleFunc("GET /api/groups/{id}/goals", s.authed(s.handleGroupGoals))

	// API – Group chat
	s.mux.HandleFunc("GET /api/groups/{id}/chat", s.authed(s.handleGetChat))
	s.mux.HandleFunc("POST /api/groups/{id}/chat", s.authed(s.handleSendChat))
	s.mux.HandleFunc("GET /api/groups/{id}/chat/stream", s.authed(s.handleChatStream))

	// API – Leaderboards
	s.mux.HandleFunc("GET /api/leaderboards/points", s.authed(s.handlePointsLeaderboard))
	s.mux.HandleFunc("GET /api/leaderboards/savings", s.authed(s.handleSavingsLeaderboard))
	s.mux.HandleFunc("GET /api/leaderboards/groups", s.authed(s.handleGroupsLeaderboard))

	// API – Social
	s.mux.HandleFunc("GET /api/reactions", s.authed(s.handleGetReactions))
	s.mux.HandleFunc("POST /api/reactions", s.authed(s.handleToggleReaction))
	s.mux.HandleFunc("GET /api/profiles", s.authed(s.handleSearchProfiles))
	s.mux.HandleFunc("GET /api/profiles/{id}", s.authed(s.handleGetProfile))
	s.mux.HandleFunc("GET /api/profiles/{id}/stats", s.authed(s.handleUserStats))
	s.mux.HandleFunc("GET /api/profiles/{id}/followers", s.authed(s.handleFollowers))
	s.mux.HandleFunc("GET /api/profiles/{id}/following", s.authed(s.handleFollowing))
	s.mux.HandleFunc("POST /api/profiles/{id}/follow", s.authed(s.handleFollow))
	s.mux.HandleFunc("DELETE /api/profiles/{id}/follow", s.authed(s.handleUnfollow))
}

// ---------------------------------------------------------------------------
// Authentication
// ---------------------------------------------------------------------------

type authedHandler func(w http.ResponseWriter, r *http.Request, session auth.Session)

// authed verifies the bearer token before calling h. EventSource clients
// cannot set headers, so an access_token query parameter is accepted too.
func (s *Server) authed(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || token == r.Header.Get("Authorization") {
			token = r.URL.Query().Get("access_token")
		}
		if token == "" {
			s.respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		session, err := s.svc.Authenticate(token)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		h(w, r, session)
	}
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps a service error onto a status code. Anything
// unrecognised is logged and reported as a generic failure to action.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		s.respondJSON(w, http.StatusBadRequest, map[string]any{
			"error":    verr.Error(),
			"problems": verr.Problems(),
		})
	case errors.Is(err, service.ErrNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyMember), errors.Is(err, service.ErrEmailTaken):
		s.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrForbidden):
		s.respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		s.respondError(w, http.StatusUnauthorized, err.Error())
	default:
		s.logger.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Errorf("failed to %s", action)
		s.respondError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// decodeJSON reads the request body into dst and returns an error message on
// failure.  The caller should return immediately when ok == false.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil || r.Body == http.NoBody {
		return false, "request body is empty"
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	return true, ""
}

// pathID extracts the {id} path value as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return uuid.Nil, fmt.Errorf("missing id in path")
	}
	return uuid.Parse(raw)
}

// requirePathID writes a 400 response naming what when {id} is invalid.
func (s *Server) requirePathID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid "+what+" id")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
