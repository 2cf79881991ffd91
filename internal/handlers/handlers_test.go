package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Kerhoff/croowa/internal/auth"
	"github.com/Kerhoff/croowa/internal/repository/memory"
	"github.com/Kerhoff/croowa/internal/service"
	"github.com/Kerhoff/croowa/pkg/logger"
)

// fakeTelegram answers the Bot API calls the handlers make and records the
// text of every sent message.
type fakeTelegram struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeTelegram) last(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no message was sent")
	}
	return f.sent[len(f.sent)-1]
}

func newTestBot(t *testing.T) (*tgbotapi.BotAPI, *fakeTelegram) {
	t.Helper()
	fake := &fakeTelegram{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch path.Base(r.URL.Path) {
		case "getMe":
			w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Croowa","username":"croowa_bot"}}`))
		case "sendMessage":
			if err := r.ParseForm(); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			fake.mu.Lock()
			fake.sent = append(fake.sent, r.PostForm.Get("text"))
			fake.mu.Unlock()
			w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"group"}}}`))
		default:
			w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
		}
	}))
	t.Cleanup(srv.Close)

	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint("test-token", srv.URL+"/bot%s/%s")
	if err != nil {
		t.Fatalf("NewBotAPIWithAPIEndpoint: %v", err)
	}
	return bot, fake
}

var testNow = time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

func newTestService() *service.Service {
	store := memory.New()
	repos := service.Repositories{
		Users:         store.Users(),
		Profiles:      store.Profiles(),
		Groups:        store.Groups(),
		Goals:         store.Goals(),
		Contributions: store.Contributions(),
		Milestones:    store.Milestones(),
		Chat:          store.Chat(),
		Gamification:  store.Gamification(),
		Achievements:  store.Achievements(),
		Reactions:     store.Reactions(),
		Friends:       store.Friends(),
	}
	return service.New(repos, auth.NewIssuer("test-secret", time.Hour, nil), logger.Discard(),
		service.WithClock(func() time.Time { return testNow }),
		service.WithTextEscaper(Escape))
}

const familyChat = -1001

func groupMessage(userID int64, name string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, FirstName: name},
		Chat: &tgbotapi.Chat{ID: familyChat, Type: "supergroup", Title: "Family"},
	}
}

func privateMessage(userID int64, name string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, FirstName: name},
		Chat: &tgbotapi.Chat{ID: userID, Type: "private"},
	}
}

func wantContains(t *testing.T, got string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(got, p) {
			t.Errorf("message %q does not contain %q", got, p)
		}
	}
}

func TestGoalSaveFlow(t *testing.T) {
	bot, fake := newTestBot(t)
	svc := newTestService()
	l := logger.Discard()
	catalog := svc.Messages()
	msg := groupMessage(42, "Alva")

	if err := NewGoalsHandler(svc, l).Handle(bot, msg, nil); err != nil {
		t.Fatalf("goals before link: %v", err)
	}
	if got := fake.last(t); got != catalog.Get("errors.no_group") {
		t.Errorf("goals before link = %q", got)
	}

	if err := NewGoalHandler(svc, l).Handle(bot, msg, strings.Fields("1000 2026-12-24 Summer trip")); err != nil {
		t.Fatalf("goal: %v", err)
	}
	wantContains(t, fake.last(t), "Goal created", "Summer trip", "1000.00 SEK")

	ctx := context.Background()
	group, err := svc.ChatGroup(ctx, familyChat)
	if err != nil {
		t.Fatalf("ChatGroup: %v", err)
	}
	if group.Name != "Family" {
		t.Errorf("group name = %q, want chat title", group.Name)
	}
	user, err := svc.EnsureTelegramUser(ctx, 42, "", "Alva", "")
	if err != nil {
		t.Fatalf("EnsureTelegramUser: %v", err)
	}
	goals, err := svc.GroupGoals(ctx, user.ID, group.ID)
	if err != nil || len(goals) != 1 {
		t.Fatalf("GroupGoals = %v, %v", goals, err)
	}
	prefix := goals[0].ShortID()

	if err := NewGoalsHandler(svc, l).Handle(bot, msg, nil); err != nil {
		t.Fatalf("goals: %v", err)
	}
	wantContains(t, fake.last(t), "Goals in Family", prefix, "Summer trip", "0.00 SEK / 1000.00 SEK")

	if err := NewSaveHandler(svc, l).Handle(bot, msg, []string{prefix, "500", "first", "half"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	wantContains(t, fake.last(t), "Alva added 500.00 SEK", "Milestone reached: 25%", "Milestone reached: 50%")

	if err := NewCoachHandler(svc, l).Handle(bot, msg, []string{prefix}); err != nil {
		t.Fatalf("coach: %v", err)
	}
	wantContains(t, fake.last(t), "Summer trip")

	if err := NewSaveHandler(svc, l).Handle(bot, msg, []string{"zzzz", "10"}); err != nil {
		t.Fatalf("save unknown goal: %v", err)
	}
	if got := fake.last(t); got != catalog.Get("errors.goal_not_found") {
		t.Errorf("save unknown goal = %q", got)
	}

	if err := NewRankingHandler(svc, l).Handle(bot, msg, nil); err != nil {
		t.Fatalf("ranking: %v", err)
	}
	wantContains(t, fake.last(t), "Ranking in Family", "1. Alva - 500.00 SEK")

	if err := NewTopHandler(svc, l).Handle(bot, msg, nil); err != nil {
		t.Fatalf("top: %v", err)
	}
	wantContains(t, fake.last(t), "Savings leaderboard", "1. Alva - 500.00 SEK")
}

func TestGoalArgumentErrors(t *testing.T) {
	bot, fake := newTestBot(t)
	svc := newTestService()
	catalog := svc.Messages()
	h := NewGoalHandler(svc, logger.Discard())

	tests := []struct {
		name string
		msg  *tgbotapi.Message
		args string
		want string
	}{
		{"missing title", groupMessage(1, "A"), "100", "errors.missing_fields"},
		{"deadline only", groupMessage(1, "A"), "100 2026-12-24", "errors.missing_fields"},
		{"bad amount", groupMessage(1, "A"), "abc Trip", "errors.invalid_amount"},
		{"negative amount", groupMessage(1, "A"), "-5 Trip", "errors.invalid_amount"},
		{"private chat", privateMessage(1, "A"), "100 Trip", "errors.not_a_group"},
	}
	for _, tt := range tests {
		if err := h.Handle(bot, tt.msg, strings.Fields(tt.args)); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got := fake.last(t); got != catalog.Get(tt.want) {
			t.Errorf("%s: reply = %q, want %s", tt.name, got, tt.want)
		}
	}
}

func TestInviteAndJoin(t *testing.T) {
	bot, fake := newTestBot(t)
	svc := newTestService()
	l := logger.Discard()
	catalog := svc.Messages()

	if err := NewGoalHandler(svc, l).Handle(bot, groupMessage(1, "Alva"), strings.Fields("100 Bike")); err != nil {
		t.Fatalf("goal: %v", err)
	}

	if err := NewInviteHandler(svc, l).Handle(bot, groupMessage(1, "Alva"), nil); err != nil {
		t.Fatalf("invite: %v", err)
	}
	group, err := svc.ChatGroup(context.Background(), familyChat)
	if err != nil {
		t.Fatalf("ChatGroup: %v", err)
	}
	wantContains(t, fake.last(t), group.InviteCode, "Family")

	join := NewJoinHandler(svc, l)
	if err := join.Handle(bot, privateMessage(2, "Bo"), []string{strings.ToLower(group.InviteCode)}); err != nil {
		t.Fatalf("join: %v", err)
	}
	if got, want := fake.last(t), catalog.Format("bot.joined", "Family"); got != want {
		t.Errorf("join = %q, want %q", got, want)
	}

	if err := join.Handle(bot, privateMessage(2, "Bo"), []string{group.InviteCode}); err != nil {
		t.Fatalf("join again: %v", err)
	}
	if got := fake.last(t); got != catalog.Get("errors.already_member") {
		t.Errorf("join again = %q", got)
	}

	if err := join.Handle(bot, privateMessage(2, "Bo"), []string{"NOPE1234"}); err != nil {
		t.Fatalf("join unknown: %v", err)
	}
	if got := fake.last(t); got != catalog.Get("errors.invite_not_found") {
		t.Errorf("join unknown = %q", got)
	}

	if err := join.Handle(bot, privateMessage(2, "Bo"), nil); err != nil {
		t.Fatalf("join without code: %v", err)
	}
	if got := fake.last(t); got != catalog.Get("errors.missing_fields") {
		t.Errorf("join without code = %q", got)
	}
}

func TestMe(t *testing.T) {
	bot, fake := newTestBot(t)
	svc := newTestService()

	if err := NewMeHandler(svc, logger.Discard()).Handle(bot, privateMessage(7, "Cleo"), nil); err != nil {
		t.Fatalf("me: %v", err)
	}
	wantContains(t, fake.last(t), "*Cleo*", "Level 1 - 0 points", "0/100 points", "Streak: 0 days")
}

func TestStartAndHelp(t *testing.T) {
	bot, fake := newTestBot(t)
	svc := newTestService()
	catalog := svc.Messages()

	if err := NewStartHandler(catalog, logger.Discard()).Handle(bot, privateMessage(1, "A"), nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := fake.last(t); got != catalog.Get("bot.start") {
		t.Errorf("start = %q", got)
	}

	if err := NewHelpHandler(catalog, logger.Discard()).Handle(bot, privateMessage(1, "A"), nil); err != nil {
		t.Fatalf("help: %v", err)
	}
	if got := fake.last(t); got != catalog.Get("bot.help") {
		t.Errorf("help = %q", got)
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{0, "░░░░░░░░░░"},
		{55, "▓▓▓▓▓░░░░░"},
		{100, "▓▓▓▓▓▓▓▓▓▓"},
		{140, "▓▓▓▓▓▓▓▓▓▓"},
	}
	for _, tt := range tests {
		if got := progressBar(tt.pct); got != tt.want {
			t.Errorf("progressBar(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}
