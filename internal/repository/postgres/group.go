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

type groupRepository struct {
	db *sql.DB
}

// NewGroupRepository creates a new savings group repository
func NewGroupRepository(db *sql.DB) repository.GroupRepository {
	return &groupRepository{db: db}
}

// chatIDConstraint is the unique constraint on savings_groups.chat_id
const chatIDConstraint = "savings_groups_chat_id_key"

const groupColumns = `g.id, g.name, g.description, g.avatar_url, g.created_by, g.invite_code, g.is_public, g.chat_id, g.created_at, g.updated_at`

func scanGroup(row interface{ Scan(...any) error }, extra ...any) (*models.Group, error) {
	var g models.Group
	var description, avatar sql.NullString
	var chatID sql.NullInt64

	dest := []any{
		&g.ID,
		&g.Name,
		&description,
		&avatar,
		&g.CreatedByID,
		&g.InviteCode,
		&g.IsPublic,
		&chatID,
		&g.CreatedAt,
		&g.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	g.Description = description.String
	g.AvatarURL = avatar.String
	g.ChatID = int64Ptr(chatID)
	return &g, nil
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) (*models.Group, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO savings_groups (name, description, avatar_url, created_by, invite_code, is_public, chat_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	group.CreatedAt = now
	group.UpdatedAt = now

	err = tx.QueryRowContext(ctx, query,
		group.Name,
		nullString(group.Description),
		nullString(group.AvatarURL),
		group.CreatedByID,
		group.InviteCode,
		group.IsPublic,
		nullInt64(group.ChatID),
		group.CreatedAt,
		group.UpdatedAt,
	).Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			if violatedConstraint(err) == chatIDConstraint {
				return nil, repository.ErrChatLinked
			}
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	memberQuery := `
		INSERT INTO group_members (group_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := tx.ExecContext(ctx, memberQuery, group.ID, group.CreatedByID, models.RoleAdmin, now); err != nil {
		return nil, fmt.Errorf("failed to add group creator: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit group: %w", err)
	}

	group.Role = models.RoleAdmin
	group.MemberCount = 1
	return group, nil
}

func (r *groupRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	return r.getOne(ctx, "g.id = $1", id, "ID")
}

func (r *groupRepository) GetByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	return r.getOne(ctx, "g.invite_code = $1", code, "invite code")
}

func (r *groupRepository) GetByChatID(ctx context.Context, chatID int64) (*models.Group, error) {
	return r.getOne(ctx, "g.chat_id = $1", chatID, "chat ID")
}

func (r *groupRepository) getOne(ctx context.Context, where string, value any, label string) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM savings_groups g WHERE ` + where

	group, err := scanGroup(r.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group by %s: %w", label, err)
	}

	return group, nil
}

func (r *groupRepository) AddMember(ctx context.Context, groupID, userID uuid.UUID, role models.MemberRole) error {
	query := `
		INSERT INTO group_members (group_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query, groupID, userID, role, time.Now())
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to add group member: %w", err)
	}

	return nil
}

func (r *groupRepository) GetMember(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMember, error) {
	query := `
		SELECT m.group_id, m.user_id, m.role, m.joined_at, COALESCE(p.display_name, '')
		FROM group_members m
		LEFT JOIN profiles p ON p.user_id = m.user_id
		WHERE m.group_id = $1 AND m.user_id = $2`

	member := &models.GroupMember{}
	err := r.db.QueryRowContext(ctx, query, groupID, userID).Scan(
		&member.GroupID,
		&member.UserID,
		&member.Role,
		&member.JoinedAt,
		&member.DisplayName,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group member: %w", err)
	}

	return member, nil
}

func (r *groupRepository) GetMembers(ctx context.Context, groupID uuid.UUID) ([]*models.GroupMember, error) {
	query := `
		SELECT m.group_id, m.user_id, m.role, m.joined_at, COALESCE(p.display_name, '')
		FROM group_members m
		LEFT JOIN profiles p ON p.user_id = m.user_id
		WHERE m.group_id = $1
		ORDER BY m.joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group members: %w", err)
	}
	defer rows.Close()

	var members []*models.GroupMember
	for rows.Next() {
		member := &models.GroupMember{}
		if err := rows.Scan(
			&member.GroupID,
			&member.UserID,
			&member.Role,
			&member.JoinedAt,
			&member.DisplayName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

func (r *groupRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Group, error) {
	query := `
		SELECT ` + groupColumns + `, m.role,
			(SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = g.id),
			get_group_total_contributions(g.id)
		FROM savings_groups g
		INNER JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY m.joined_at DESC`

	return r.list(ctx, query, userID, true)
}

func (r *groupRepository) ListPublic(ctx context.Context, excludeUserID uuid.UUID) ([]*models.Group, error) {
	query := `
		SELECT ` + groupColumns + `,
			(SELECT COUNT(*) FROM group_members gm WHERE gm.group_id = g.id),
			get_group_total_contributions(g.id)
		FROM savings_groups g
		WHERE g.is_public
			AND NOT EXISTS (
				SELECT 1 FROM group_members m WHERE m.group_id = g.id AND m.user_id = $1
			)
		ORDER BY g.created_at DESC`

	return r.list(ctx, query, excludeUserID, false)
}

func (r *groupRepository) list(ctx context.Context, query string, arg any, withRole bool) ([]*models.Group, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		var role models.MemberRole
		var memberCount int
		var total int64

		extra := []any{&memberCount, &total}
		if withRole {
			extra = append([]any{&role}, extra...)
		}

		group, err := scanGroup(rows, extra...)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		group.Role = role
		group.MemberCount = memberCount
		group.TotalSaved = total
		groups = append(groups, group)
	}

	return groups, rows.Err()
}

func (r *groupRepository) TotalContributions(ctx context.Context, groupID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT get_group_total_contributions($1)`, groupID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to get group total: %w", err)
	}
	return total, nil
}
