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

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

const profileColumns = `user_id, display_name, bio, avatar_url, location, website, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*models.Profile, error) {
	var p models.Profile
	var bio, avatar, location, website sql.NullString
	if err := row.Scan(
		&p.UserID,
		&p.DisplayName,
		&bio,
		&avatar,
		&location,
		&website,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Bio = bio.String
	p.AvatarURL = avatar.String
	p.Location = location.String
	p.Website = website.String
	return &p, nil
}

func scanProfiles(rows *sql.Rows) ([]*models.Profile, error) {
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (user_id, display_name, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING`

	profile.UpdatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query, profile.UserID, profile.DisplayName, profile.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return profile, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return p, nil
}

func (r *profileRepository) GetByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]*models.Profile, error) {
	out := make(map[uuid.UUID]*models.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = ANY($1::uuid[])`

	rows, err := r.db.QueryContext(ctx, query, uuidArray(userIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}

	profiles, err := scanProfiles(rows)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.UserID] = p
	}

	return out, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET display_name = $2, bio = $3, avatar_url = $4, location = $5, website = $6, updated_at = $7
		WHERE user_id = $1
		RETURNING updated_at`

	profile.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		profile.UserID,
		profile.DisplayName,
		nullString(profile.Bio),
		nullString(profile.AvatarURL),
		nullString(profile.Location),
		nullString(profile.Website),
		profile.UpdatedAt,
	).Scan(&profile.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile, nil
}

func (r *profileRepository) Search(ctx context.Context, query string, limit int) ([]*models.Profile, error) {
	sqlQuery := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE display_name ILIKE '%' || $1 || '%'
		ORDER BY display_name ASC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, sqlQuery, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}

	return scanProfiles(rows)
}

func (r *profileRepository) Stats(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	return userStats(ctx, r.db, userID)
}

func userStats(ctx context.Context, q querier, userID uuid.UUID) (*models.UserStats, error) {
	query := `
		SELECT total_saved, goals_count, completed_goals, contributions, groups_created, followers, following
		FROM get_user_stats($1)`

	stats := &models.UserStats{}
	err := q.QueryRowContext(ctx, query, userID).Scan(
		&stats.TotalSaved,
		&stats.GoalsCount,
		&stats.CompletedGoals,
		&stats.Contributions,
		&stats.GroupsCreated,
		&stats.Followers,
		&stats.Following,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	return stats, nil
}
