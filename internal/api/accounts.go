package api

import (
	"net/http"

	"github.com/Kerhoff/croowa/internal/auth"
	"github.com/Kerhoff/croowa/internal/models"
	"github.com/Kerhoff/croowa/internal/service"
)

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	User    *models.User    `json:"user"`
	Profile *models.Profile `json:"profile"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req service.SignUpInput
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := s.svc.SignUp(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, r, err, "sign up")
		return
	}

	s.respondJSON(w, http.StatusCreated, res)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := s.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondServiceError(w, r, err, "sign in")
		return
	}

	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, session auth.Session) {
	user, err := s.svc.CurrentUser(r.Context(), session)
	if err != nil {
		s.respondServiceError(w, r, err, "get current user")
		return
	}
	profile, err := s.svc.Profile(r.Context(), user.ID)
	if err != nil {
		s.respondServiceError(w, r, err, "get profile")
		return
	}

	s.respondJSON(w, http.StatusOK, meResponse{User: user, Profile: profile})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, session auth.Session) {
	var req service.ProfileInput
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	profile, err := s.svc.UpdateProfile(r.Context(), session.UserID, req)
	if err != nil {
		s.respondServiceError(w, r, err, "update profile")
		return
	}

	s.respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleGamification(w http.ResponseWriter, r *http.Request, session auth.Session) {
	status, err := s.svc.GamificationStatus(r.Context(), session.UserID)
	if err != nil {
		s.respondServiceError(w, r, err, "get gamification status")
		return
	}
	s.respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request, session auth.Session) {
	achievements, err := s.svc.UserAchievements(r.Context(), session.UserID)
	if err != nil {
		s.respondServiceError(w, r, err, "list achievements")
		return
	}
	s.respondJSON(w, http.StatusOK, achievements)
}
