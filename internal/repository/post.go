package repository

import (
	"context"
	"fmt"

	"couply-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostRepository handles database operations for posts, comments and likes
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

// Create creates a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, author_id, couple_id, content, post_type, media_urls,
			is_public, likes_count, comments_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		post.ID, post.AuthorID, post.CoupleID, post.Content, post.PostType,
		post.MediaURLs, post.IsPublic, post.LikesCount, post.CommentsCount,
		post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `
		SELECT id, author_id, couple_id, content, post_type, media_urls,
			is_public, likes_count, comments_count, created_at, updated_at
		FROM posts
		WHERE id = $1
	`
	var p models.Post
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.AuthorID, &p.CoupleID, &p.Content, &p.PostType, &p.MediaURLs,
		&p.IsPublic, &p.LikesCount, &p.CommentsCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("post not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &p, nil
}

// ListPublic retrieves the latest public posts with author and couple embedded
func (r *PostRepository) ListPublic(ctx context.Context, limit int) ([]*models.Post, error) {
	query := `
		SELECT p.id, p.author_id, p.couple_id, p.content, p.post_type, p.media_urls,
			p.is_public, p.likes_count, p.comments_count, p.created_at, p.updated_at,
			a.id, a.user_id, a.name, a.bio, a.avatar_url, a.phone, a.created_at, a.updated_at,
			c.id, c.partner1_id, c.partner2_id, c.status, c.anniversary_date,
			c.couple_name, c.couple_bio, c.couple_avatar_url, c.is_private_mode,
			c.created_at, c.updated_at
		FROM posts p
		JOIN profiles a ON a.id = p.author_id
		JOIN couples c ON c.id = p.couple_id
		WHERE p.is_public
		ORDER BY p.created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		var p models.Post
		var author models.Profile
		var couple models.CoupleDetail
		err := rows.Scan(
			&p.ID, &p.AuthorID, &p.CoupleID, &p.Content, &p.PostType, &p.MediaURLs,
			&p.IsPublic, &p.LikesCount, &p.CommentsCount, &p.CreatedAt, &p.UpdatedAt,
			&author.ID, &author.UserID, &author.Name, &author.Bio,
			&author.AvatarURL, &author.Phone, &author.CreatedAt, &author.UpdatedAt,
			&couple.ID, &couple.Partner1ID, &couple.Partner2ID, &couple.Status,
			&couple.AnniversaryDate, &couple.CoupleName, &couple.CoupleBio,
			&couple.CoupleAvatarURL, &couple.IsPrivateMode, &couple.CreatedAt, &couple.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		p.Author = &author
		p.Couple = &couple
		posts = append(posts, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return posts, nil
}

// AddComment inserts a comment and bumps the post's denormalized counter in
// one transaction
func (r *PostRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO comments (id, post_id, author_id, content, created_at) VALUES ($1, $2, $3, $4, $5)`,
		comment.ID, comment.PostID, comment.AuthorID, comment.Content, comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE posts SET comments_count = comments_count + 1 WHERE id = $1`,
		comment.PostID,
	)
	if err != nil {
		return fmt.Errorf("failed to bump comments count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// ListComments retrieves a post's comments oldest first with authors embedded
func (r *PostRepository) ListComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.author_id, c.content, c.created_at,
			a.id, a.user_id, a.name, a.bio, a.avatar_url, a.phone, a.created_at, a.updated_at
		FROM comments c
		JOIN profiles a ON a.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC
	`
	rows, err := r.db.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var c models.Comment
		var author models.Profile
		err := rows.Scan(
			&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt,
			&author.ID, &author.UserID, &author.Name, &author.Bio,
			&author.AvatarURL, &author.Phone, &author.CreatedAt, &author.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		c.Author = &author
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return comments, nil
}

// FindLike retrieves an existing like by post and profile
func (r *PostRepository) FindLike(ctx context.Context, postID, profileID string) (*models.Like, error) {
	query := `SELECT id, post_id, user_id, created_at FROM likes WHERE post_id = $1 AND user_id = $2`
	var like models.Like
	err := r.db.QueryRow(ctx, query, postID, profileID).Scan(
		&like.ID, &like.PostID, &like.UserID, &like.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("like not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find like: %w", err)
	}
	return &like, nil
}

// AddLike inserts a like and bumps the post's counter in one transaction
func (r *PostRepository) AddLike(ctx context.Context, like *models.Like) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO likes (id, post_id, user_id, created_at) VALUES ($1, $2, $3, $4)`,
		like.ID, like.PostID, like.UserID, like.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create like: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE posts SET likes_count = likes_count + 1 WHERE id = $1`,
		like.PostID,
	)
	if err != nil {
		return fmt.Errorf("failed to bump likes count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// RemoveLike deletes a like and decrements the post's counter in one
// transaction; the counter never goes below zero
func (r *PostRepository) RemoveLike(ctx context.Context, likeID, postID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `DELETE FROM likes WHERE id = $1`, likeID)
	if err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("like not found")
	}

	_, err = tx.Exec(ctx,
		`UPDATE posts SET likes_count = GREATEST(likes_count - 1, 0) WHERE id = $1`,
		postID,
	)
	if err != nil {
		return fmt.Errorf("failed to drop likes count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
