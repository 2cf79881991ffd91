package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/Kerhoff/croowa/internal/models"
	"github.com/Kerhoff/croowa/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	maxGroupName        = 100
	inviteCodeLength    = 8
	inviteCodeAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeAttempts  = 5
	maxGroupDescription = 1000
)

// GroupInput describes a group to create
type GroupInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AvatarURL   string `json:"avatar_url"`
	IsPublic    bool   `json:"is_public"`
}

// CreateGroup stores a new group with the creator as admin. Invite code
// collisions are retried with a fresh code.
func (s *Service) CreateGroup(ctx context.Context, userID uuid.UUID, in GroupInput) (*models.Group, error) {
	return s.createGroup(ctx, userID, in, nil)
}

func (s *Service) createGroup(ctx context.Context, userID uuid.UUID, in GroupInput, chatID *int64) (*models.Group, error) {
	name := strings.TrimSpace(in.Name)

	v := &validator{}
	v.check(name != "", "name is required")
	v.check(utf8.RuneCountInString(name) <= maxGroupName, "name must be at most %d characters", maxGroupName)
	v.check(utf8.RuneCountInString(in.Description) <= maxGroupDescription, "description must be at most %d characters", maxGroupDescription)
	if err := v.err(); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		code, err := GenerateInviteCode()
		if err != nil {
			return nil, err
		}

		group, err := s.Groups.Create(ctx, &models.Group{
			Name:        name,
			Description: strings.TrimSpace(in.Description),
			AvatarURL:   strings.TrimSpace(in.AvatarURL),
			CreatedByID: userID,
			InviteCode:  code,
			IsPublic:    in.IsPublic,
			ChatID:      chatID,
		})
		if errors.Is(err, repository.ErrConflict) && attempt < inviteCodeAttempts {
			s.logger.Warnf("Invite code collision on attempt %d, retrying", attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create group: %w", err)
		}

		s.logger.WithFields(logrus.Fields{
			"group_id": group.ID,
			"user_id":  userID,
		}).Infof("Created group %q", group.Name)

		if err := s.awardAchievements(ctx, userID); err != nil {
			s.logger.WithError(err).Error("Failed to award group achievements")
		}
		return group, nil
	}
}

// GenerateInviteCode returns a random uppercase alphanumeric code
func GenerateInviteCode() (string, error) {
	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	var b strings.Builder
	b.Grow(inviteCodeLength)
	for i := 0; i < inviteCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		b.WriteByte(inviteCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeInviteCode trims and uppercases a typed code
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// JoinByInviteCode adds the user to the group holding code
func (s *Service) JoinByInviteCode(ctx context.Context, userID uuid.UUID, code string) (*models.Group, error) {
	code = NormalizeInviteCode(code)
	if code == "" {
		return nil, ErrInviteCodeNotFound
	}

	group, err := s.Groups.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup invite code: %w", err)
	}
	if group == nil {
		return nil, ErrInviteCodeNotFound
	}

	if err := s.join(ctx, group, userID); err != nil {
		return nil, err
	}
	return group, nil
}

// JoinPublicGroup adds the user to a public group without a code
func (s *Service) JoinPublicGroup(ctx context.Context, userID, groupID uuid.UUID) (*models.Group, error) {
	group, err := s.group(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsPublic {
		return nil, ErrForbidden
	}

	if err := s.join(ctx, group, userID); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *Service) join(ctx context.Context, group *models.Group, userID uuid.UUID) error {
	member, err := s.Groups.GetMember(ctx, group.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if member != nil {
		return ErrAlreadyMember
	}

	if err := s.Groups.AddMember(ctx, group.ID, userID, models.RoleMember); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrAlreadyMember
		}
		return fmt.Errorf("failed to add user %s to group %s: %w", userID, group.ID, err)
	}

	s.logger.Infof("Added user %s to group %s", userID, group.ID)
	return nil
}

// MyGroups lists the user's groups with role and total saved
func (s *Service) MyGroups(ctx context.Context, userID uuid.UUID) ([]*models.Group, error) {
	groups, err := s.Groups.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// PublicGroups lists public groups the user has not joined
func (s *Service) PublicGroups(ctx context.Context, userID uuid.UUID) ([]*models.Group, error) {
	groups, err := s.Groups.ListPublic(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list public groups: %w", err)
	}
	return groups, nil
}

// Group returns a group visible to the viewer
func (s *Service) Group(ctx context.Context, viewer, groupID uuid.UUID) (*models.Group, error) {
	group, err := s.group(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsPublic {
		if _, err := s.requireMember(ctx, groupID, viewer); err != nil {
			return nil, err
		}
	}
	return group, nil
}

// Members lists the members of a visible group
func (s *Service) Members(ctx context.Context, viewer, groupID uuid.UUID) ([]*models.GroupMember, error) {
	if _, err := s.Group(ctx, viewer, groupID); err != nil {
		return nil, err
	}
	members, err := s.Groups.GetMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	for _, m := range members {
		if m.DisplayName == "" {
			m.DisplayName = s.messages.Get("unknown_user")
		}
	}
	return members, nil
}

// GroupTotal sums all contributions to the group's goals
func (s *Service) GroupTotal(ctx context.Context, viewer, groupID uuid.UUID) (int64, error) {
	if _, err := s.Group(ctx, viewer, groupID); err != nil {
		return 0, err
	}
	total, err := s.Groups.TotalContributions(ctx, groupID)
	if err != nil {
		return 0, fmt.Errorf("failed to get group total: %w", err)
	}
	return total, nil
}

// InviteText returns the shareable invitation for a group the viewer belongs to
func (s *Service) InviteText(ctx context.Context, viewer, groupID uuid.UUID) (string, error) {
	group, err := s.group(ctx, groupID)
	if err != nil {
		return "", err
	}
	if _, err := s.requireMember(ctx, groupID, viewer); err != nil {
		return "", err
	}
	return s.messages.Format("notify.invite_text", group.Name, group.InviteCode), nil
}

// EnsureChatGroup returns the group linked to a Telegram chat, creating it
// with userID as admin on first use. The user is made a member either way.
func (s *Service) EnsureChatGroup(ctx context.Context, chatID int64, chatTitle string, userID uuid.UUID) (*models.Group, error) {
	group, err := s.Groups.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup group (chat_id=%d): %w", chatID, err)
	}
	if group == nil {
		title := strings.TrimSpace(chatTitle)
		if title == "" {
			title = s.messages.Get("unknown_group")
		}
		id := chatID
		group, err = s.createGroup(ctx, userID, GroupInput{Name: truncateRunes(title, maxGroupName)}, &id)
		if err == nil {
			s.logger.Infof("Linked new group %s to chat %d", group.ID, chatID)
			return group, nil
		}
		if !errors.Is(err, repository.ErrChatLinked) {
			return nil, err
		}

		// Another update linked the chat first
		group, err = s.Groups.GetByChatID(ctx, chatID)
		if err != nil {
			return nil, fmt.Errorf("failed to lookup group (chat_id=%d): %w", chatID, err)
		}
		if group == nil {
			return nil, ErrChatNotLinked
		}
	}

	if err := s.join(ctx, group, userID); err != nil && !errors.Is(err, ErrAlreadyMember) {
		return nil, err
	}
	return group, nil
}

// ChatGroup returns the group linked to a Telegram chat
func (s *Service) ChatGroup(ctx context.Context, chatID int64) (*models.Group, error) {
	group, err := s.Groups.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup group (chat_id=%d): %w", chatID, err)
	}
	if group == nil {
		return nil, ErrChatNotLinked
	}
	return group, nil
}

func (s *Service) group(ctx context.Context, groupID uuid.UUID) (*models.Group, error) {
	group, err := s.Groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group %s: %w", groupID, err)
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// requireMember returns the membership or ErrForbidden
func (s *Service) requireMember(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMember, error) {
	member, err := s.Groups.GetMember(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if member == nil {
		return nil, ErrForbidden
	}
	return member, nil
}
