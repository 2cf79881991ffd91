package api

import (
	"net/http"

	"github.com/Kerhoff/croowa/internal/auth"
	"github.com/Kerhoff/croowa/internal/service"
)

// ---------------------------------------------------------------------------
// Groups
// ---------------------------------------------------------------------------

type joinGroupRequest struct {
	InviteCode string `json:"invite_code"`
}

type groupTotalResponse struct {
	Total int64 `json:"total"`
}

type inviteResponse struct {
	Text string `json:"text"`
}

func (s *Server) handleMyGroups(w http.ResponseWriter, r *http.Request, session auth.Session) {
	groups, err := s.svc.MyGroups(r.Context(), session.UserID)
	if err != nil {
		s.respondServiceError(w, r, err, "list groups")
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(groups))
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request, session auth.Session) {
	var req service.GroupInput
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	group, err := s.svc.CreateGroup(r.Context(), session.UserID, req)
	if err != nil {
		s.respondServiceError(w, r, err, "create group")
		return
	}
	s.respondJSON(w, http.StatusCreated, group)
}

func (s *Server) handlePublicGroups(w http.ResponseWriter, r *http.Request, session auth.Session) {
	groups, err := s.svc.PublicGroups(r.Context(), session.UserID)
	if err != nil {
		s.respondServiceError(w, r, err, "list public groups")
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(groups))
}

func (s *Server) handleJoinByCode(w http.ResponseWriter, r *http.Request, session auth.Session) {
	var req joinGroupRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	group, err := s.svc.JoinByInviteCode(r.Context(), session.UserID, req.InviteCode)
	if err != nil {
		s.respondServiceError(w, r, err, "join group")
		return
	}
	s.respondJSON(w, http.StatusOK, group)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request, session auth.Session) {
	id, ok := s.requirePathID(w, r, "group")
	if !ok {
		return
	}

	group, err := s.svc.Group(r.Context(), session.UserID, id)
	if err != nil {
		s.respondServiceError(w, r, err, "get group")
		return
	}
	s.respondJSON(w, http.StatusOK, group)
}

func (s *Server) handleJoinPublic(w http.ResponseWriter, r *http.Request, session auth.Session) {
	id, ok := s.requirePathID(w, r, "group")
	if !ok {
		return
	}

	group, err := s.svc.JoinPublicGroup(r.Context(), session.UserID, id)
	if err != nil {
		s.respondServiceError(w, r, err, "join group")
		return
	}
	s.respondJSON(w, http.StatusOK, group)
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request, session auth.Session) {
	id, ok := s.requirePathID(w, r, "group")
	if !ok {
		return
	}

	members, err := s.svc.Members(r.Context(), session.UserID, id)
	if err != nil {
		s.respondServiceError(w, r, err, "list members")
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(members))
}

func (s *Server) handleGroupTotal(w http.ResponseWriter, r *http.Request, session auth.Session) {
	id, ok := s.requirePathID(w, r, "group")
	if !ok {
		return
	}

	total, err := s.svc.GroupTotal(r.Context(), session.UserID, id)
	if err != nil {
		s.respondServiceError(w, r, err, "get group total")
		return
	}
	s.respondJSON(w, http.StatusOK, groupTotalResponse{Total: total})
}

func (s *Server) handleGroupRanking(w http.ResponseWriter, r *http.Request, session auth.Session) {
	id, ok := s.requirePathID(w, r, "group")
	if !ok {
		return
	}

	ranking, err := s.svc.GroupRanking(r.Context(), session.UserID, id)
	if err != nil {
		s.respondServiceError(w, r, err, "get group ranking")
		return
	}
	s.respondJSON(w, http.StatusOK, ranking)
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request, session auth.Session) {
	id, ok := s.requirePathID(w, r, "group")
	if !ok {
		return
	}

	text, err := s.svc.InviteText(r.Context(), session.UserID, id)
	if err != nil {
		s.respondServiceError(w, r, err, "get invite")
		return
	}
	s.respondJSON(w, http.StatusOK, inviteResponse{Text: text})
}

func (s *Server) handleGroupGoals(w http.ResponseWriter, r *http.Request, session auth.Session) {
	id, ok := s.requirePathID(w, r, "group")
	if !ok {
		return
	}

	goals, err := s.svc.GroupGoals(r.Context(), session.UserID, id)
	if err != nil {
		s.respondServiceError(w, r, err, "list group goals")
		return
	}
	s.respondJSON(w, http.StatusOK, nonNil(goals))
}

// ---------------------------------------------------------------------------
// Leaderboards
// ---------------------------------------------------------------------------

func (s *Server) handlePointsLeaderboard(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	board, err := s.svc.PointsLeaderboard(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err, "get points leaderboard")
		return
	}
	s.respondJSON(w, http.StatusOK, board)
}

func (s *Server) handleSavingsLeaderboard(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	board, err := s.svc.SavingsLeaderboard(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err, "get savings leaderboard")
		return
	}
	s.respondJSON(w, http.StatusOK, board)
}

func (s *Server) handleGroupsLeaderboard(w http.ResponseWriter, r *http.Request, _ auth.Session) {
	board, err := s.svc.GroupsLeaderboard(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err, "get groups leaderboard")
		return
	}
	s.respondJSON(w, http.StatusOK, board)
}
