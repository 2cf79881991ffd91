package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Kerhoff/croowa/internal/auth"
	"github.com/Kerhoff/croowa/internal/messages"
	"github.com/Kerhoff/croowa/internal/metrics"
	"github.com/Kerhoff/croowa/internal/models"
	"github.com/Kerhoff/croowa/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Repositories groups the storage dependencies of the Service
type Repositories struct {
	Users         repository.UserRepository
	Profiles      repository.ProfileRepository
	Groups        repository.GroupRepository
	Goals         repository.GoalRepository
	Contributions repository.ContributionRepository
	Milestones    repository.MilestoneRepository
	Chat          repository.ChatRepository
	Gamification  repository.GamificationRepository
	Achievements  repository.AchievementRepository
	Reactions     repository.ReactionRepository
	Friends       repository.FriendRepository
}

// Service is the central business logic layer shared by the HTTP API, the
// Telegram bot and the background schedulers.
type Service struct {
	Repositories

	logger   *logrus.Logger
	issuer   *auth.Issuer
	messages *messages.Catalog
	metrics  *metrics.Metrics
	currency string
	escape   func(string) string
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces the wall clock, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithMessages(c *messages.Catalog) Option {
	return func(s *Service) { s.messages = c }
}

// WithCurrency sets the currency code used in user-facing text
func WithCurrency(code string) Option {
	return func(s *Service) { s.currency = code }
}

// WithTextEscaper sets how user text is escaped inside formatted chat
// messages such as coach replies and nudges.
func WithTextEscaper(escape func(string) string) Option {
	return func(s *Service) { s.escape = escape }
}

// New creates a new Service with all required dependencies.
func New(repos Repositories, issuer *auth.Issuer, logger *logrus.Logger, opts ...Option) *Service {
	s := &Service{
		Repositories: repos,
		logger:       logger,
		issuer:       issuer,
		messages:     messages.Default(),
		currency:     "SEK",
		escape:       func(text string) string { return text },
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Messages returns the user-facing string table
func (s *Service) Messages() *messages.Catalog {
	return s.messages
}

// Currency returns the configured currency code
func (s *Service) Currency() string {
	return s.currency
}

// Now returns the service clock's current time
func (s *Service) Now() time.Time {
	return s.now()
}

// EnsureTelegramUser retrieves an existing user by Telegram ID, or creates a
// new one with a profile if not found. A changed username is written back.
func (s *Service) EnsureTelegramUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*models.User, error) {
	username = strings.TrimSpace(username)

	user, err := s.Users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup user (telegram_id=%d): %w", telegramID, err)
	}
	if user == nil {
		id := telegramID
		user, err = s.Users.Create(ctx, &models.User{
			TelegramID:       &id,
			TelegramUsername: username,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create user (telegram_id=%d): %w", telegramID, err)
		}

		name := telegramDisplayName(username, firstName, lastName)
		if err := s.initUser(ctx, user, name); err != nil {
			return nil, err
		}

		s.logger.WithFields(logrus.Fields{
			"user_id":     user.ID,
			"telegram_id": telegramID,
		}).Infof("Created new user: %s", name)
		return user, nil
	}

	if user.TelegramUsername != username {
		user.TelegramUsername = username
		user, err = s.Users.Update(ctx, user)
		if err != nil {
			return nil, fmt.Errorf("failed to update user (telegram_id=%d): %w", telegramID, err)
		}
		s.logger.Infof("Updated telegram username for user %s", user.ID)
	}

	return user, nil
}

// initUser creates the profile and gamification rows every user has
func (s *Service) initUser(ctx context.Context, user *models.User, displayName string) error {
	if _, err := s.Profiles.Create(ctx, &models.Profile{UserID: user.ID, DisplayName: displayName}); err != nil {
		return fmt.Errorf("failed to create profile for user %s: %w", user.ID, err)
	}
	if err := s.Gamification.Init(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to create gamification state for user %s: %w", user.ID, err)
	}
	return nil
}

func telegramDisplayName(username, firstName, lastName string) string {
	full := strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
	switch {
	case full != "":
		return truncateRunes(full, maxDisplayName)
	case username != "":
		return truncateRunes("@"+username, maxDisplayName)
	default:
		return ""
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// displayNames resolves profile names for ids, falling back to the
// unknown_user string.
func (s *Service) displayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	profiles, err := s.Profiles.GetByUserIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	names := make(map[uuid.UUID]string, len(profiles))
	for id, p := range profiles {
		names[id] = p.NameOr(s.messages.Get("unknown_user"))
	}
	return names, nil
}
