package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Kerhoff/croowa/internal/models"
	"github.com/Kerhoff/croowa/internal/repository"
	"github.com/google/uuid"
)

const (
	searchLimit   = 20
	maxBio        = 500
	maxProfileURL = 255
)

// ReactionSummary lists the reactions on a target with per-kind counts
type ReactionSummary struct {
	Reactions []*models.Reaction          `json:"reactions"`
	Counts    map[models.ReactionKind]int `json:"counts"`
}

// ToggleReaction adds the user's reaction or removes it if present. It
// reports whether the reaction is present afterwards.
func (s *Service) ToggleReaction(ctx context.Context, userID uuid.UUID, target models.ReactionTarget, targetID uuid.UUID, kind models.ReactionKind) (bool, error) {
	v := &validator{}
	v.check(target.Valid(), "target type %q is not supported", target)
	v.check(kind.Valid(), "reaction %q is not supported", kind)
	if err := v.err(); err != nil {
		return false, err
	}

	present, err := s.Reactions.Toggle(ctx, &models.Reaction{
		UserID:     userID,
		TargetType: target,
		TargetID:   targetID,
		Kind:       kind,
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle reaction: %w", err)
	}
	return present, nil
}

// ReactionsFor summarises the reactions on a target
func (s *Service) ReactionsFor(ctx context.Context, target models.ReactionTarget, targetID uuid.UUID) (*ReactionSummary, error) {
	if !target.Valid() {
		v := &validator{}
		v.check(false, "target type %q is not supported", target)
		return nil, v.err()
	}

	reactions, err := s.Reactions.ListByTarget(ctx, target, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}

	counts := make(map[models.ReactionKind]int)
	for _, r := range reactions {
		counts[r.Kind]++
	}
	return &ReactionSummary{Reactions: reactions, Counts: counts}, nil
}

// ProfileInput is an update to the caller's profile
type ProfileInput struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
	Location    string `json:"location"`
	Website     string `json:"website"`
}

// Profile returns a user's profile
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, err := s.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if p == nil {
		return nil, ErrUserNotFound
	}
	return p, nil
}

// UpdateProfile replaces the caller's profile attributes
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*models.Profile, error) {
	p := &models.Profile{
		UserID:      userID,
		DisplayName: strings.TrimSpace(in.DisplayName),
		Bio:         strings.TrimSpace(in.Bio),
		AvatarURL:   strings.TrimSpace(in.AvatarURL),
		Location:    strings.TrimSpace(in.Location),
		Website:     strings.TrimSpace(in.Website),
	}

	v := &validator{}
	v.check(p.DisplayName != "", "display name is required")
	v.check(utf8.RuneCountInString(p.DisplayName) <= maxDisplayName, "display name must be at most %d characters", maxDisplayName)
	v.check(utf8.RuneCountInString(p.Bio) <= maxBio, "bio must be at most %d characters", maxBio)
	v.check(utf8.RuneCountInString(p.Location) <= maxProfileURL, "location must be at most %d characters", maxProfileURL)
	v.check(utf8.RuneCountInString(p.Website) <= maxProfileURL, "website must be at most %d characters", maxProfileURL)
	if err := v.err(); err != nil {
		return nil, err
	}

	updated, err := s.Profiles.Update(ctx, p)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return updated, nil
}

// SearchProfiles finds profiles whose display name contains query
func (s *Service) SearchProfiles(ctx context.Context, query string) ([]*models.Profile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*models.Profile{}, nil
	}
	profiles, err := s.Profiles.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	return profiles, nil
}

// Follow makes follower follow following
func (s *Service) Follow(ctx context.Context, followerID, followingID uuid.UUID) error {
	if followerID == followingID {
		v := &validator{}
		v.check(false, "you cannot follow yourself")
		return v.err()
	}

	target, err := s.Users.GetByID(ctx, followingID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if target == nil {
		return ErrUserNotFound
	}

	if err := s.Friends.Follow(ctx, followerID, followingID); err != nil {
		return fmt.Errorf("failed to follow: %w", err)
	}
	return nil
}

// Unfollow removes a follow edge
func (s *Service) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error {
	if err := s.Friends.Unfollow(ctx, followerID, followingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to unfollow: %w", err)
	}
	return nil
}

// Following lists profiles the user follows
func (s *Service) Following(ctx context.Context, userID uuid.UUID) ([]*models.Profile, error) {
	profiles, err := s.Friends.ListFollowing(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}
	return profiles, nil
}

// Followers lists profiles following the user
func (s *Service) Followers(ctx context.Context, userID uuid.UUID) ([]*models.Profile, error) {
	profiles, err := s.Friends.ListFollowers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	return profiles, nil
}

// UserStats returns the aggregate figures shown on a profile
func (s *Service) UserStats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	stats, err := s.Profiles.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return stats, nil
}
