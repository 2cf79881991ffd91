package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kerhoff/croowa/internal/models"
	"github.com/Kerhoff/croowa/internal/repository"
	"github.com/google/uuid"
)

type friendRepository struct {
	db *sql.DB
}

// NewFriendRepository creates a new follow relationship repository
func NewFriendRepository(db *sql.DB) repository.FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) Follow(ctx context.Context, followerID, followingID uuid.UUID) error {
	query := `
		INSERT INTO friends (follower_id, following_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_id, following_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, followerID, followingID, time.Now()); err != nil {
		return fmt.Errorf("failed to follow user: %w", err)
	}

	return nil
}

func (r *friendRepository) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error {
	query := `DELETE FROM friends WHERE follower_id = $1 AND following_id = $2`

	result, err := r.db.ExecContext(ctx, query, followerID, followingID)
	if err != nil {
		return fmt.Errorf("failed to unfollow user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *friendRepository) ListFollowing(ctx context.Context, userID uuid.UUID) ([]*models.Profile, error) {
	query := `
		SELECT p.user_id, p.display_name, p.bio, p.avatar_url, p.location, p.website, p.updated_at
		FROM friends f
		INNER JOIN profiles p ON p.user_id = f.following_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query following: %w", err)
	}

	return scanProfiles(rows)
}

func (r *friendRepository) ListFollowers(ctx context.Context, userID uuid.UUID) ([]*models.Profile, error) {
	query := `
		SELECT p.user_id, p.display_name, p.bio, p.avatar_url, p.location, p.website, p.updated_at
		FROM friends f
		INNER JOIN profiles p ON p.user_id = f.follower_id
		WHERE f.following_id = $1
		ORDER BY f.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query followers: %w", err)
	}

	return scanProfiles(rows)
}
