package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Kerhoff/croowa/internal/auth"
	"github.com/Kerhoff/croowa/internal/realtime"
	"github.com/Kerhoff/croowa/internal/repository/memory"
	"github.com/Kerhoff/croowa/internal/service"
	"github.com/Kerhoff/croowa/pkg/logger"
	"github.com/google/uuid"
)

func newTestServer(t *testing.T) (*Server, *realtime.Hub) {
	t.Helper()
	st := memory.New()
	svc := service.New(service.Repositories{
		Users:         st.Users(),
		Profiles:      st.Profiles(),
		Groups:        st.Groups(),
		Goals:         st.Goals(),
		Contributions: st.Contributions(),
		Milestones:    st.Milestones(),
		Chat:          st.Chat(),
		Gamification:  st.Gamification(),
		Achievements:  st.Achievements(),
		Reactions:     st.Reactions(),
		Friends:       st.Friends(),
	}, auth.NewIssuer("test-secret", time.Hour, nil), logger.Discard())
	hub := realtime.NewHub()
	return NewServer(svc, hub, nil, logger.Discard()), hub
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

// signUp registers a user and returns its token
func signUp(t *testing.T, h http.Handler, email, name string) string {
	t.Helper()
	rec := do(t, h, "POST", "/api/auth/signup", "", map[string]string{
		"email":        email,
		"password":     "hunter22",
		"display_name": name,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup %s: status %d: %s", email, rec.Code, rec.Body.String())
	}
	return decode[struct {
		Token string `json:"token"`
	}](t, rec).Token
}

type idResponse struct {
	ID         string `json:"id"`
	InviteCode string `json:"invite_code"`
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	if rec := do(t, srv.Handler(), "GET", "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestAuthentication(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	if rec := do(t, h, "GET", "/api/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d", rec.Code)
	}
	if rec := do(t, h, "GET", "/api/me", "garbage", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d", rec.Code)
	}

	token := signUp(t, h, "alva@example.com", "Alva")

	rec := do(t, h, "GET", "/api/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status = %d", rec.Code)
	}
	me := decode[struct {
		Profile struct {
			DisplayName string `json:"display_name"`
		} `json:"profile"`
	}](t, rec)
	if me.Profile.DisplayName != "Alva" {
		t.Errorf("display name = %q", me.Profile.DisplayName)
	}

	tests := []struct {
		name string
		path string
		body map[string]string
		want int
	}{
		{"duplicate signup", "/api/auth/signup", map[string]string{"email": "ALVA@example.com", "password": "hunter22", "display_name": "A"}, http.StatusConflict},
		{"invalid signup", "/api/auth/signup", map[string]string{"email": "nope", "password": "1"}, http.StatusBadRequest},
		{"wrong password", "/api/auth/signin", map[string]string{"email": "alva@example.com", "password": "wrong-one"}, http.StatusUnauthorized},
		{"signin", "/api/auth/signin", map[string]string{"email": "alva@example.com", "password": "hunter22"}, http.StatusOK},
	}
	for _, tt := range tests {
		if rec := do(t, h, "POST", tt.path, "", tt.body); rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d (%s)", tt.name, rec.Code, tt.want, rec.Body.String())
		}
	}

	rec = do(t, h, "POST", "/api/auth/signup", "", map[string]string{"email": "nope"})
	problems := decode[struct {
		Problems []string `json:"problems"`
	}](t, rec).Problems
	if len(problems) != 3 {
		t.Errorf("problems = %v, want 3", problems)
	}
}

func TestGoalsAndContributions(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	owner := signUp(t, h, "owner@example.com", "Owner")
	other := signUp(t, h, "other@example.com", "Other")

	rec := do(t, h, "POST", "/api/goals", owner, map[string]any{
		"title":         "Bike",
		"target_amount": 10000,
		"category":      "travel",
		"deadline":      "2099-01-31",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create goal: status = %d: %s", rec.Code, rec.Body.String())
	}
	goal := decode[idResponse](t, rec)

	if rec := do(t, h, "POST", "/api/goals", owner, map[string]any{"title": "x", "target_amount": 1, "deadline": "31/01/2099"}); rec.Code != http.StatusBadRequest {
		t.Errorf("bad deadline: status = %d", rec.Code)
	}

	rec = do(t, h, "POST", "/api/goals/"+goal.ID+"/contributions", owner, map[string]any{"amount": 2500, "message": "payday"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("contribute: status = %d: %s", rec.Code, rec.Body.String())
	}
	res := decode[struct {
		Goal struct {
			CurrentAmount int64 `json:"current_amount"`
		} `json:"goal"`
		Milestones []struct {
			Percentage int `json:"percentage"`
		} `json:"milestones_unlocked"`
	}](t, rec)
	if res.Goal.CurrentAmount != 2500 || len(res.Milestones) != 1 || res.Milestones[0].Percentage != 25 {
		t.Errorf("contribution result = %+v", res)
	}

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"zero amount", "POST", "/api/goals/" + goal.ID + "/contributions", owner, map[string]any{"amount": 0}, http.StatusBadRequest},
		{"empty body", "POST", "/api/goals/" + goal.ID + "/contributions", owner, nil, http.StatusBadRequest},
		{"bad id", "GET", "/api/goals/not-a-uuid", owner, nil, http.StatusBadRequest},
		{"unknown goal", "GET", "/api/goals/00000000-0000-0000-0000-000000000001", owner, nil, http.StatusNotFound},
		{"foreign private goal", "GET", "/api/goals/" + goal.ID, other, nil, http.StatusForbidden},
		{"foreign contribution", "POST", "/api/goals/" + goal.ID + "/contributions", other, map[string]any{"amount": 100}, http.StatusForbidden},
		{"report", "GET", "/api/goals/" + goal.ID + "/report", owner, nil, http.StatusOK},
		{"contributions", "GET", "/api/goals/" + goal.ID + "/contributions", owner, nil, http.StatusOK},
		{"contributors", "GET", "/api/goals/" + goal.ID + "/contributors", owner, nil, http.StatusOK},
		{"my goals", "GET", "/api/goals", owner, nil, http.StatusOK},
		{"gamification", "GET", "/api/me/gamification", owner, nil, http.StatusOK},
		{"savings board", "GET", "/api/leaderboards/savings", other, nil, http.StatusOK},
	}
	for _, tt := range tests {
		if rec := do(t, h, tt.method, tt.path, tt.token, tt.body); rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d (%s)", tt.name, rec.Code, tt.want, rec.Body.String())
		}
	}

	rec = do(t, h, "GET", "/api/goals/"+goal.ID+"/report", owner, nil)
	report := decode[struct {
		Progress struct {
			Percentage float64 `json:"percentage"`
		} `json:"progress"`
		Motivation string `json:"motivation"`
		Unlocked   []struct {
			Percentage int `json:"percentage"`
		} `json:"unlocked_milestones"`
	}](t, rec)
	if report.Progress.Percentage != 25 || report.Motivation == "" {
		t.Errorf("report = %+v", report)
	}
	if len(report.Unlocked) != 1 || report.Unlocked[0].Percentage != 25 {
		t.Errorf("unlocked milestones = %+v", report.Unlocked)
	}
}

func TestGroups(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	admin := signUp(t, h, "admin@example.com", "Admin")
	member := signUp(t, h, "member@example.com", "Member")

	rec := do(t, h, "POST", "/api/groups", admin, map[string]any{"name": "Crew"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create group: status = %d", rec.Code)
	}
	group := decode[idResponse](t, rec)
	if len(group.InviteCode) != 8 {
		t.Errorf("invite code = %q", group.InviteCode)
	}

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"outsider members", "GET", "/api/groups/" + group.ID + "/members", member, nil, http.StatusForbidden},
		{"unknown code", "POST", "/api/groups/join", member, map[string]string{"invite_code": "ZZZZZZZZ"}, http.StatusNotFound},
		{"join", "POST", "/api/groups/join", member, map[string]string{"invite_code": " " + strings.ToLower(group.InviteCode)}, http.StatusOK},
		{"join again", "POST", "/api/groups/join", member, map[string]string{"invite_code": group.InviteCode}, http.StatusConflict},
		{"join private directly", "POST", "/api/groups/" + group.ID + "/join", member, nil, http.StatusForbidden},
		{"members", "GET", "/api/groups/" + group.ID + "/members", member, nil, http.StatusOK},
		{"total", "GET", "/api/groups/" + group.ID + "/total", member, nil, http.StatusOK},
		{"ranking", "GET", "/api/groups/" + group.ID + "/ranking", member, nil, http.StatusOK},
		{"invite", "GET", "/api/groups/" + group.ID + "/invite", member, nil, http.StatusOK},
		{"group goals", "GET", "/api/groups/" + group.ID + "/goals", member, nil, http.StatusOK},
		{"empty chat message", "POST", "/api/groups/" + group.ID + "/chat", member, map[string]string{"message": "  "}, http.StatusBadRequest},
		{"chat message", "POST", "/api/groups/" + group.ID + "/chat", member, map[string]string{"message": "hello"}, http.StatusCreated},
		{"groups board", "GET", "/api/leaderboards/groups", admin, nil, http.StatusOK},
	}
	for _, tt := range tests {
		if rec := do(t, h, tt.method, tt.path, tt.token, tt.body); rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d (%s)", tt.name, rec.Code, tt.want, rec.Body.String())
		}
	}

	rec = do(t, h, "GET", "/api/groups", member, nil)
	groups := decode[[]struct {
		Role string `json:"role"`
	}](t, rec)
	if len(groups) != 1 || groups[0].Role != "member" {
		t.Errorf("my groups = %+v", groups)
	}
}

func TestChatStream(t *testing.T) {
	srv, hub := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	token := signUp(t, srv.Handler(), "alva@example.com", "Alva")
	rec := do(t, srv.Handler(), "POST", "/api/groups", token, map[string]any{"name": "Crew"})
	group := decode[idResponse](t, rec)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", ts.URL+"/api/groups/"+group.ID+"/chat/stream?access_token="+token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		t.Helper()
		var data string
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("read stream: %v", err)
			}
			line = strings.TrimRight(line, "\n")
			if line == "" && data != "" {
				return data
			}
			if strings.HasPrefix(line, "data: ") {
				data = strings.TrimPrefix(line, "data: ")
			}
		}
	}

	if first := readEvent(); first != "[]" {
		t.Errorf("initial event = %s, want []", first)
	}

	if rec := do(t, srv.Handler(), "POST", "/api/groups/"+group.ID+"/chat", token, map[string]string{"message": "hello"}); rec.Code != http.StatusCreated {
		t.Fatalf("send: status = %d", rec.Code)
	}
	hub.Publish(uuid.MustParse(group.ID))

	if next := readEvent(); !strings.Contains(next, `"hello"`) {
		t.Errorf("event after publish = %s", next)
	}
}

func TestChatStreamRequiresMembership(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	owner := signUp(t, h, "owner@example.com", "Owner")
	outsider := signUp(t, h, "outsider@example.com", "Outsider")
	group := decode[idResponse](t, do(t, h, "POST", "/api/groups", owner, map[string]any{"name": "Crew"}))

	if rec := do(t, h, "GET", "/api/groups/"+group.ID+"/chat/stream", outsider, nil); rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
