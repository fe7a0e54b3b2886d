package repository

import (
	"context"
	"fmt"

	"couply-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GroupRepository handles database operations for groups
type GroupRepository struct {
	db *pgxpool.Pool
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(db *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{db: db}
}

const groupColumns = `id, name, description, group_type, is_private, member_count, created_at`

// GetByID retrieves a group by ID
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`
	var g models.Group
	err := r.db.QueryRow(ctx, query, id).Scan(
		&g.ID, &g.Name, &g.Description, &g.GroupType, &g.IsPrivate, &g.MemberCount, &g.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("group not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return &g, nil
}

// ListPublic retrieves public groups ordered by member count descending
func (r *GroupRepository) ListPublic(ctx context.Context) ([]*models.Group, error) {
	query := `
		SELECT ` + groupColumns + `
		FROM groups
		WHERE NOT is_private
		ORDER BY member_count DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		var g models.Group
		err := rows.Scan(
			&g.ID, &g.Name, &g.Description, &g.GroupType, &g.IsPrivate, &g.MemberCount, &g.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	return groups, nil
}

// ListByCoupleID retrieves the memberships of a couple with groups embedded
func (r *GroupRepository) ListByCoupleID(ctx context.Context, coupleID string) ([]*models.GroupMember, error) {
	query := `
		SELECT m.id, m.group_id, m.couple_id, m.role, m.joined_at,
			g.id, g.name, g.description, g.group_type, g.is_private, g.member_count, g.created_at
		FROM group_members m
		JOIN groups g ON g.id = m.group_id
		WHERE m.couple_id = $1
		ORDER BY m.joined_at ASC
	`
	rows, err := r.db.Query(ctx, query, coupleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var members []*models.GroupMember
	for rows.Next() {
		var m models.GroupMember
		var g models.Group
		err := rows.Scan(
			&m.ID, &m.GroupID, &m.CoupleID, &m.Role, &m.JoinedAt,
			&g.ID, &g.Name, &g.Description, &g.GroupType, &g.IsPrivate, &g.MemberCount, &g.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		m.Group = &g
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memberships: %w", err)
	}
	return members, nil
}

// AddMember joins a couple to a group and bumps the member counter in one
// transaction
func (r *GroupRepository) AddMember(ctx context.Context, member *models.GroupMember) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO group_members (id, group_id, couple_id, role, joined_at) VALUES ($1, $2, $3, $4, $5)`,
		member.ID, member.GroupID, member.CoupleID, member.Role, member.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE groups SET member_count = member_count + 1 WHERE id = $1`,
		member.GroupID,
	)
	if err != nil {
		return fmt.Errorf("failed to bump member count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// RemoveMember removes a couple from a group and drops the counter in one
// transaction
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, coupleID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx,
		`DELETE FROM group_members WHERE group_id = $1 AND couple_id = $2`,
		groupID, coupleID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("membership not found")
	}

	_, err = tx.Exec(ctx,
		`UPDATE groups SET member_count = GREATEST(member_count - 1, 0) WHERE id = $1`,
		groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to drop member count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// IsMember checks whether a couple belongs to a group
func (r *GroupRepository) IsMember(ctx context.Context, groupID, coupleID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND couple_id = $2)`
	var exists bool
	err := r.db.QueryRow(ctx, query, groupID, coupleID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

// CreatePost creates a new group post
func (r *GroupRepository) CreatePost(ctx context.Context, post *models.GroupPost) error {
	query := `
		INSERT INTO group_posts (id, group_id, author_id, content, media_urls, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		post.ID, post.GroupID, post.AuthorID, post.Content, post.MediaURLs, post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create group post: %w", err)
	}
	return nil
}

// ListPosts retrieves a group's posts newest first with authors embedded
func (r *GroupRepository) ListPosts(ctx context.Context, groupID string) ([]*models.GroupPost, error) {
	query := `
		SELECT gp.id, gp.group_id, gp.author_id, gp.content, gp.media_urls, gp.created_at,
			a.id, a.user_id, a.name, a.bio, a.avatar_url, a.phone, a.created_at, a.updated_at
		FROM group_posts gp
		JOIN profiles a ON a.id = gp.author_id
		WHERE gp.group_id = $1
		ORDER BY gp.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.GroupPost
	for rows.Next() {
		var p models.GroupPost
		var author models.Profile
		err := rows.Scan(
			&p.ID, &p.GroupID, &p.AuthorID, &p.Content, &p.MediaURLs, &p.CreatedAt,
			&author.ID, &author.UserID, &author.Name, &author.Bio,
			&author.AvatarURL, &author.Phone, &author.CreatedAt, &author.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group post: %w", err)
		}
		p.Author = &author
		posts = append(posts, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group posts: %w", err)
	}
	return posts, nil
}
