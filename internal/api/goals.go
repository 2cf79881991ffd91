package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/Kerhoff/croowa/internal/auth"
	"github.com/Kerhoff/croowa/internal/models"
	"github.com/Kerhoff/croowa/internal/service"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Goals
// ---------------------------------------------------------------------------

type createGoalRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	TargetAmount int64      `json:"target_amount"` // minor units
	Category     string     `json:"category"`
	Deadline     string     `json:"deadline"` // YYYY-MM-DD, optional
	GroupID      *uuid.UUID `json:"group_id"`
	IsPublic     bool       `json:"is_public"`
}

type contributeRequest struct {
	Amount  int64  `json:"amount"` // minor units
	Message string `json:"message"`
}

func (s *Server) handleMyGoals(w http.ResponseWriter, r *http.Request, session auth.Session) {
	goals, err := s.svc.MyGoals(r.Context(), session.UserID)
	if err != nil {
		s.respondServiceError(w, r, err, "list goals")
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(goals))
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request, session auth.Session) {
	var req createGoalRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	in := service.GoalInput{
		Title:        req.Title,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		Category:     models.Category(req.Category),
		GroupID:      req.GroupID,
		IsPublic:     req.IsPublic,
	}
	if deadline := strings.TrimSpace(req.Deadline); deadline != "" {
		t, err := time.Parse(time.DateOnly, deadline)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "deadline must be YYYY-MM-DD")
			return
		}
		in.Deadline = &t
	}

	goal, err := s.svc.CreateGoal(r.Context(), session.UserID, in)
	if err != nil {
		s.respondServiceError(w, r, err, "create goal")
		return
	}

	s.respondJSON(w, http.StatusCreated, goal)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request, session auth.Session) {
	id, ok := s.requirePathID(w, r, "goal")
	if !ok {
		return
	}

	goal, err := s.svc.Goal(r.Context(), session.UserID, id)
	if err != nil {
		s.respondServiceError(w, r, err, "get goal")
		return
	}
	s.respondJSON(w, http.StatusOK, goal)
}

func (s *Server) handleGoalReport(w http.ResponseWriter, r *http.Request, session auth.Session) {
	id, ok := s.requirePathID(w, r, "goal")
	if !ok {
		return
	}

	report, err := s.svc.GoalReport(r.Context(), session.UserID, id)
	if err != nil {
		s.respondServiceError(w, r, err, "get goal report")
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleGetContributions(w http.ResponseWriter, r *http.Request, session auth.Session) {
	id, ok := s.requirePathID(w, r, "goal")
	if !ok {
		return
	}

	contributions, err := s.svc.ContributionsForGoal(r.Context(), session.UserID, id)
	if err != nil {
		s.respondServiceError(w, r, err, "list contributions")
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(contributions))
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request, session auth.Session) {
	id, ok := s.requirePathID(w, r, "goal")
	if !ok {
		return
	}

	var req contributeRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	res, err := s.svc.Contribute(r.Context(), session.UserID, id, req.Amount, req.Message)
	if err != nil {
		s.respondServiceError(w, r, err, "record contribution")
		return
	}

	s.respondJSON(w, http.StatusCreated, res)
}

func (s *Server) handleContributors(w http.ResponseWriter, r *http.Request, session auth.Session) {
	id, ok := s.requirePathID(w, r, "goal")
	if !ok {
		return
	}

	ranked, err := s.svc.Contributors(r.Context(), session.UserID, id)
	if err != nil {
		s.respondServiceError(w, r, err, "list contributors")
		return
	}
	s.respondJSON(w, http.StatusOK, ranked)
}

// nonNil keeps empty lists encoding as [] rather than null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
