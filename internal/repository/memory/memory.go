// Package memory implements the repository interfaces over in-process maps.
// It backs the service and API tests and keeps the same not-found and
// conflict semantics as the Postgres implementation.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Kerhoff/croowa/internal/gamification"
	"github.com/Kerhoff/croowa/internal/models"
	"github.com/Kerhoff/croowa/internal/repository"
	"github.com/google/uuid"
)

// Store holds every entity. The zero value is not usable; call New.
type Store struct {
	mu sync.Mutex

	users         map[uuid.UUID]*models.User
	profiles      map[uuid.UUID]*models.Profile
	groups        map[uuid.UUID]*models.Group
	members       map[uuid.UUID]map[uuid.UUID]*models.GroupMember
	goals         map[uuid.UUID]*models.SavingsGoal
	contributions []*models.Contribution
	milestones    map[uuid.UUID]map[int]*models.MilestoneRecord
	chat          []*models.ChatMessage
	states        map[uuid.UUID]*models.GamificationState
	unlocked      map[uuid.UUID]map[string]time.Time
	reactions     []*models.Reaction
	follows       map[[2]uuid.UUID]bool

	// rewardMu serializes reward transactions
	rewardMu sync.Mutex

	// failGroupCreates makes the next n group inserts report a conflict
	failGroupCreates int
	// failCredits makes the next n reward credits fail
	failCredits int
}

// catalog mirrors the seeded achievements table
var catalog = []*models.Achievement{
	{Code: gamification.FirstContribution, Name: "First Step", Points: 10},
	{Code: gamification.GoalCompleted, Name: "Goal Getter", Points: 100},
	{Code: gamification.Streak7, Name: "On Fire", Points: 50},
	{Code: gamification.Level5, Name: "Seasoned Saver", Points: 50},
	{Code: gamification.GroupFounder, Name: "Founder", Points: 25},
}

func New() *Store {
	return &Store{
		users:      make(map[uuid.UUID]*models.User),
		profiles:   make(map[uuid.UUID]*models.Profile),
		groups:     make(map[uuid.UUID]*models.Group),
		members:    make(map[uuid.UUID]map[uuid.UUID]*models.GroupMember),
		goals:      make(map[uuid.UUID]*models.SavingsGoal),
		milestones: make(map[uuid.UUID]map[int]*models.MilestoneRecord),
		states:     make(map[uuid.UUID]*models.GamificationState),
		unlocked:   make(map[uuid.UUID]map[string]time.Time),
		follows:    make(map[[2]uuid.UUID]bool),
	}
}

func (st *Store) Users() repository.UserRepository { return userStore{st} }
func (st *Store) Profiles() repository.ProfileRepository { return profileStore{st} }
func (st *Store) Groups() repository.GroupRepository { return groupStore{st} }
func (st *Store) Goals() repository.GoalRepository { return goalStore{st} }
func (st *Store) Contributions() repository.ContributionRepository { return contributionStore{st} }
func (st *Store) Milestones() repository.MilestoneRepository { return milestoneStore{st} }
func (st *Store) Chat() repository.ChatRepository { return chatStore{st} }
func (st *Store) Gamification() repository.GamificationRepository { return gamificationStore{st} }
func (st *Store) Achievements() repository.AchievementRepository { return achievementStore{st} }
func (st *Store) Reactions() repository.ReactionRepository { return reactionStore{st} }
func (st *Store) Friends() repository.FriendRepository { return friendStore{st} }

// AddUser inserts a user with a profile and returns its id
func (st *Store) AddUser(displayName string) uuid.UUID {
	st.mu.Lock()
	defer st.mu.Unlock()
	id := uuid.New()
	st.users[id] = &models.User{ID: id}
	st.profiles[id] = &models.Profile{UserID: id, DisplayName: displayName}
	return id
}

// FailGroupCreates makes the next n group creations fail with
// repository.ErrConflict, as an invite code collision would.
func (st *Store) FailGroupCreates(n int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.failGroupCreates = n
}

// FailCredits makes the next n RewardTx.Credit calls fail, rolling back
// their reward transactions.
func (st *Store) FailCredits(n int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.failCredits = n
}

// ---------------------------------------------------------------------------

type userStore struct{ *Store }

func (s userStore) Create(_ context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if u.Email != "" && strings.EqualFold(other.Email, u.Email) {
			return nil, repository.ErrConflict
		}
	}
	u.ID = uuid.New()
	cp := *u
	s.users[u.ID] = &cp
	return u, nil
}

func (s userStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s userStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email != "" && strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s userStore) GetByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.TelegramID != nil && *u.TelegramID == telegramID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s userStore) Update(_ context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	s.users[u.ID] = &cp
	return u, nil
}

// ---------------------------------------------------------------------------

type profileStore struct{ *Store }

func (s profileStore) Create(_ context.Context, p *models.Profile) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.UserID]; !ok {
		cp := *p
		s.profiles[p.UserID] = &cp
	}
	return p, nil
}

func (s profileStore) GetByUserID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (s profileStore) GetByUserIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]*models.Profile)
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (s profileStore) Update(_ context.Context, p *models.Profile) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.UserID]; !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	s.profiles[p.UserID] = &cp
	return p, nil
}

func (s profileStore) Search(_ context.Context, query string, limit int) ([]*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Profile
	for _, p := range s.profiles {
		if strings.Contains(strings.ToLower(p.DisplayName), strings.ToLower(query)) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s profileStore) Stats(_ context.Context, userID uuid.UUID) (*models.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &models.UserStats{}
	for _, c := range s.contributions {
		if c.UserID == userID {
			stats.TotalSaved += c.Amount
			stats.Contributions++
		}
	}
	for _, g := range s.goals {
		if g.UserID == userID {
			stats.GoalsCount++
			if g.IsCompleted() {
				stats.CompletedGoals++
			}
		}
	}
	for _, g := range s.groups {
		if g.CreatedByID == userID {
			stats.GroupsCreated++
		}
	}
	for edge := range s.follows {
		if edge[1] == userID {
			stats.Followers++
		}
		if edge[0] == userID {
			stats.Following++
		}
	}
	return stats, nil
}

// ---------------------------------------------------------------------------

type groupStore struct{ *Store }

func (s groupStore) Create(_ context.Context, g *models.Group) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGroupCreates > 0 {
		s.failGroupCreates--
		return nil, repository.ErrConflict
	}
	for _, other := range s.groups {
		if g.ChatID != nil && other.ChatID != nil && *other.ChatID == *g.ChatID {
			return nil, repository.ErrChatLinked
		}
		if other.InviteCode == g.InviteCode {
			return nil, repository.ErrConflict
		}
	}
	g.ID = uuid.New()
	g.CreatedAt = time.Now()
	cp := *g
	s.groups[g.ID] = &cp
	s.members[g.ID] = map[uuid.UUID]*models.GroupMember{
		g.CreatedByID: {GroupID: g.ID, UserID: g.CreatedByID, Role: models.RoleAdmin, JoinedAt: time.Now()},
	}
	g.Role = models.RoleAdmin
	g.MemberCount = 1
	return g, nil
}

func (s groupStore) find(match func(*models.Group) bool) *models.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if match(g) {
			cp := *g
			return &cp
		}
	}
	return nil
}

func (s groupStore) GetByID(_ context.Context, id uuid.UUID) (*models.Group, error) {
	return s.find(func(g *models.Group) bool { return g.ID == id }), nil
}

func (s groupStore) GetByInviteCode(_ context.Context, code string) (*models.Group, error) {
	return s.find(func(g *models.Group) bool { return g.InviteCode == code }), nil
}

func (s groupStore) GetByChatID(_ context.Context, chatID int64) (*models.Group, error) {
	return s.find(func(g *models.Group) bool { return g.ChatID != nil && *g.ChatID == chatID }), nil
}

func (s groupStore) AddMember(_ context.Context, groupID, userID uuid.UUID, role models.MemberRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[groupID][userID]; ok {
		return repository.ErrConflict
	}
	if s.members[groupID] == nil {
		s.members[groupID] = make(map[uuid.UUID]*models.GroupMember)
	}
	s.members[groupID][userID] = &models.GroupMember{GroupID: groupID, UserID: userID, Role: role, JoinedAt: time.Now()}
	return nil
}

func (s groupStore) GetMember(_ context.Context, groupID, userID uuid.UUID) (*models.GroupMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.members[groupID][userID]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (s groupStore) GetMembers(_ context.Context, groupID uuid.UUID) ([]*models.GroupMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.GroupMember
	for _, m := range s.members[groupID] {
		cp := *m
		if p, ok := s.profiles[m.UserID]; ok {
			cp.DisplayName = p.DisplayName
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (s groupStore) total(groupID uuid.UUID) int64 {
	var total int64
	for _, c := range s.contributions {
		if g := s.goals[c.GoalID]; g != nil && g.GroupID != nil && *g.GroupID == groupID {
			total += c.Amount
		}
	}
	return total
}

func (s groupStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Group
	for id, members := range s.members {
		if m, ok := members[userID]; ok {
			cp := *s.groups[id]
			cp.Role = m.Role
			cp.MemberCount = len(members)
			cp.TotalSaved = s.total(id)
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s groupStore) ListPublic(_ context.Context, exclude uuid.UUID) ([]*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Group
	for id, g := range s.groups {
		if !g.IsPublic {
			continue
		}
		if _, member := s.members[id][exclude]; member {
			continue
		}
		cp := *g
		cp.MemberCount = len(s.members[id])
		cp.TotalSaved = s.total(id)
		out = append(out, &cp)
	}
	return out, nil
}

func (s groupStore) TotalContributions(_ context.Context, groupID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total(groupID), nil
}

// ---------------------------------------------------------------------------

type goalStore struct{ *Store }

func (s goalStore) Create(_ context.Context, g *models.SavingsGoal) (*models.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = uuid.New()
	cp := *g
	s.goals[g.ID] = &cp
	return g, nil
}

func (s goalStore) GetByID(_ context.Context, id uuid.UUID) (*models.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.goals[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, nil
}

func (s goalStore) FindByPrefix(_ context.Context, groupID uuid.UUID, prefix string) (*models.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found []*models.SavingsGoal
	for _, g := range s.goals {
		if g.GroupID != nil && *g.GroupID == groupID && strings.HasPrefix(g.ID.String(), prefix) {
			found = append(found, g)
		}
	}
	if len(found) != 1 {
		return nil, nil
	}
	cp := *found[0]
	return &cp, nil
}

func (s goalStore) list(match func(*models.SavingsGoal) bool) []*models.SavingsGoal {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.SavingsGoal
	for _, g := range s.goals {
		if match(g) {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out
}

func (s goalStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.SavingsGoal, error) {
	return s.list(func(g *models.SavingsGoal) bool { return g.UserID == userID }), nil
}

func (s goalStore) ListByGroup(_ context.Context, groupID uuid.UUID) ([]*models.SavingsGoal, error) {
	return s.list(func(g *models.SavingsGoal) bool { return g.GroupID != nil && *g.GroupID == groupID }), nil
}

func (s goalStore) ListNudgeCandidates(_ context.Context, before time.Time) ([]*repository.NudgeCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*repository.NudgeCandidate
	for _, g := range s.goals {
		if g.GroupID == nil || g.Deadline == nil || g.IsCompleted() {
			continue
		}
		group := s.groups[*g.GroupID]
		if group == nil || group.ChatID == nil {
			continue
		}
		if g.LastNudgedAt != nil && !g.LastNudgedAt.Before(before) {
			continue
		}
		cp := *g
		out = append(out, &repository.NudgeCandidate{Goal: &cp, ChatID: *group.ChatID})
	}
	return out, nil
}

func (s goalStore) MarkNudged(_ context.Context, goalID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[goalID]
	if !ok {
		return repository.ErrNotFound
	}
	g.LastNudgedAt = &at
	return nil
}

// ---------------------------------------------------------------------------

type contributionStore struct{ *Store }

func (s contributionStore) Record(_ context.Context, c *models.Contribution) (*models.SavingsGoal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[c.GoalID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.ID = uuid.New()
	cp := *c
	s.contributions = append(s.contributions, &cp)
	g.CurrentAmount += c.Amount
	out := *g
	return &out, nil
}

func (s contributionStore) ListByGoal(_ context.Context, goalID uuid.UUID, limit int) ([]*models.Contribution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Contribution
	for i := len(s.contributions) - 1; i >= 0 && len(out) < limit; i-- {
		if c := s.contributions[i]; c.GoalID == goalID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s contributionStore) sum(match func(*models.Contribution) bool) []models.ContributionTotal {
	s.mu.Lock()
	defer s.mu.Unlock()
	byUser := make(map[uuid.UUID]int64)
	for _, c := range s.contributions {
		if match(c) {
			byUser[c.UserID] += c.Amount
		}
	}
	var out []models.ContributionTotal
	for id, amount := range byUser {
		out = append(out, models.ContributionTotal{Key: id, Amount: amount})
	}
	return out
}

func (s contributionStore) TotalsByUserForGoal(_ context.Context, goalID uuid.UUID) ([]models.ContributionTotal, error) {
	return s.sum(func(c *models.Contribution) bool { return c.GoalID == goalID }), nil
}

func (s contributionStore) TotalsByUserForGroup(_ context.Context, groupID uuid.UUID) ([]models.ContributionTotal, error) {
	return s.sum(func(c *models.Contribution) bool {
		g := s.goals[c.GoalID]
		return g != nil && g.GroupID != nil && *g.GroupID == groupID
	}), nil
}

func (s contributionStore) TotalsByUser(_ context.Context) ([]models.ContributionTotal, error) {
	return s.sum(func(*models.Contribution) bool { return true }), nil
}

// ---------------------------------------------------------------------------

type milestoneStore struct{ *Store }

func (s milestoneStore) ListByGoal(_ context.Context, goalID uuid.UUID) ([]*models.MilestoneRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.MilestoneRecord
	for _, rec := range s.milestones[goalID] {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (s milestoneStore) Record(_ context.Context, rec *models.MilestoneRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.milestones[rec.GoalID] == nil {
		s.milestones[rec.GoalID] = make(map[int]*models.MilestoneRecord)
	}
	if _, ok := s.milestones[rec.GoalID][rec.Percentage]; ok {
		return false, nil
	}
	cp := *rec
	s.milestones[rec.GoalID][rec.Percentage] = &cp
	return true, nil
}

// ---------------------------------------------------------------------------

type chatStore struct{ *Store }

func (s chatStore) Create(_ context.Context, m *models.ChatMessage) (*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = uuid.New()
	cp := *m
	s.chat = append(s.chat, &cp)
	return m, nil
}

func (s chatStore) ListRecent(_ context.Context, groupID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ChatMessage
	for _, m := range s.chat {
		if m.GroupID == groupID {
			cp := *m
			if p, ok := s.profiles[m.UserID]; ok {
				cp.DisplayName = p.DisplayName
			}
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// ---------------------------------------------------------------------------

type gamificationStore struct{ *Store }

func (s gamificationStore) Get(_ context.Context, userID uuid.UUID) (*models.GamificationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[userID]; ok {
		cp := *st
		return &cp, nil
	}
	return nil, nil
}

func (s gamificationStore) Init(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.states[userID]; !ok {
		s.states[userID] = models.NewGamificationState(userID)
	}
	return nil
}

// Reward runs one transaction at a time. Every write made through the
// transaction registers an undo step, replayed in reverse when fn fails.
func (s gamificationStore) Reward(_ context.Context, userID uuid.UUID, fn func(tx repository.RewardTx) error) error {
	s.rewardMu.Lock()
	defer s.rewardMu.Unlock()

	tx := &rewardTx{store: s.Store, userID: userID}
	if err := fn(tx); err != nil {
		s.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s gamificationStore) Top(_ context.Context, limit int) ([]*models.GamificationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.GamificationState
	for _, st := range s.states {
		cp := *st
		if p, ok := s.profiles[st.UserID]; ok {
			cp.DisplayName = p.DisplayName
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].UserID.String() < out[j].UserID.String()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---------------------------------------------------------------------------

type rewardTx struct {
	store  *Store
	userID uuid.UUID
	// undo steps run with store.mu held
	undo []func()
}

func (tx *rewardTx) State(_ context.Context) (*models.GamificationState, error) {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[tx.userID]
	if !ok {
		state = models.NewGamificationState(tx.userID)
		s.states[tx.userID] = state
		tx.undo = append(tx.undo, func() { delete(s.states, tx.userID) })
	}
	cp := *state
	return &cp, nil
}

func (tx *rewardTx) Milestones() repository.MilestoneRepository {
	return txMilestoneStore{milestoneStore{tx.store}, tx}
}

func (tx *rewardTx) Achievements() repository.AchievementRepository {
	return txAchievementStore{achievementStore{tx.store}, tx}
}

func (tx *rewardTx) Stats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	return profileStore{tx.store}.Stats(ctx, userID)
}

func (tx *rewardTx) Credit(_ context.Context, points, streakDays int, lastContributionOn *time.Time) (*models.GamificationState, error) {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCredits > 0 {
		s.failCredits--
		return nil, errors.New("memory: credit failed")
	}

	state, ok := s.states[tx.userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	prev := *state
	tx.undo = append(tx.undo, func() { *state = prev })

	state.TotalPoints, state.CurrentLevel = gamification.AddPoints(state.TotalPoints, state.CurrentLevel, points)
	state.StreakDays = streakDays
	state.LastContributionOn = lastContributionOn
	state.UpdatedAt = time.Now()
	cp := *state
	return &cp, nil
}

type txMilestoneStore struct {
	milestoneStore
	tx *rewardTx
}

func (s txMilestoneStore) Record(ctx context.Context, rec *models.MilestoneRecord) (bool, error) {
	inserted, err := s.milestoneStore.Record(ctx, rec)
	if inserted {
		goalID, pct := rec.GoalID, rec.Percentage
		s.tx.undo = append(s.tx.undo, func() { delete(s.milestones[goalID], pct) })
	}
	return inserted, err
}

type txAchievementStore struct {
	achievementStore
	tx *rewardTx
}

func (s txAchievementStore) Unlock(ctx context.Context, userID uuid.UUID, code string, at time.Time) (bool, error) {
	unlocked, err := s.achievementStore.Unlock(ctx, userID, code, at)
	if unlocked {
		s.tx.undo = append(s.tx.undo, func() { delete(s.unlocked[userID], code) })
	}
	return unlocked, err
}

// ---------------------------------------------------------------------------

type achievementStore struct{ *Store }

func (s achievementStore) List(_ context.Context) ([]*models.Achievement, error) {
	var out []*models.Achievement
	for _, a := range catalog {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (s achievementStore) ListForUser(_ context.Context, userID uuid.UUID) ([]*models.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Achievement
	for _, a := range catalog {
		cp := *a
		if at, ok := s.unlocked[userID][a.Code]; ok {
			cp.UnlockedAt = &at
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (s achievementStore) Unlock(_ context.Context, userID uuid.UUID, code string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unlocked[userID] == nil {
		s.unlocked[userID] = make(map[string]time.Time)
	}
	if _, ok := s.unlocked[userID][code]; ok {
		return false, nil
	}
	s.unlocked[userID][code] = at
	return true, nil
}

// ---------------------------------------------------------------------------

type reactionStore struct{ *Store }

func (s reactionStore) Toggle(_ context.Context, r *models.Reaction) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.reactions {
		if existing.UserID == r.UserID && existing.TargetType == r.TargetType &&
			existing.TargetID == r.TargetID && existing.Kind == r.Kind {
			s.reactions = append(s.reactions[:i], s.reactions[i+1:]...)
			return false, nil
		}
	}
	r.ID = uuid.New()
	cp := *r
	s.reactions = append(s.reactions, &cp)
	return true, nil
}

func (s reactionStore) ListByTarget(_ context.Context, target models.ReactionTarget, id uuid.UUID) ([]*models.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Reaction
	for _, r := range s.reactions {
		if r.TargetType == target && r.TargetID == id {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------

type friendStore struct{ *Store }

func (s friendStore) Follow(_ context.Context, follower, following uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.follows[[2]uuid.UUID{follower, following}] = true
	return nil
}

func (s friendStore) Unfollow(_ context.Context, follower, following uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]uuid.UUID{follower, following}
	if !s.follows[key] {
		return repository.ErrNotFound
	}
	delete(s.follows, key)
	return nil
}

func (s friendStore) profilesWhere(match func([2]uuid.UUID) (uuid.UUID, bool)) []*models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Profile
	for edge := range s.follows {
		if id, ok := match(edge); ok {
			if p, found := s.profiles[id]; found {
				cp := *p
				out = append(out, &cp)
			}
		}
	}
	return out
}

func (s friendStore) ListFollowing(_ context.Context, userID uuid.UUID) ([]*models.Profile, error) {
	return s.profilesWhere(func(e [2]uuid.UUID) (uuid.UUID, bool) { return e[1], e[0] == userID }), nil
}

func (s friendStore) ListFollowers(_ context.Context, userID uuid.UUID) ([]*models.Profile, error) {
	return s.profilesWhere(func(e [2]uuid.UUID) (uuid.UUID, bool) { return e[0], e[1] == userID }), nil
}
