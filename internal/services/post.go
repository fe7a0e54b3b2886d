package services

import (
	"context"
	"fmt"
	"time"

	"couply-backend/internal/models"
	"couply-backend/internal/moderation"
	"couply-backend/internal/push"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const feedLimit = 20

type postStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	ListPublic(ctx context.Context, limit int) ([]*models.Post, error)
	AddComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, postID string) ([]*models.Comment, error)
	FindLike(ctx context.Context, postID, profileID string) (*models.Like, error)
	AddLike(ctx context.Context, like *models.Like) error
	RemoveLike(ctx context.Context, likeID, postID string) error
}

// PostService handles the community feed: posts, comments and likes
type PostService struct {
	posts    postStore
	profiles *ProfileService
	gate     contentGate
	push     notifier
}

// NewPostService creates a new post service
func NewPostService(posts postStore, profiles *ProfileService, gate contentGate, push notifier) *PostService {
	return &PostService{
		posts:    posts,
		profiles: profiles,
		gate:     gate,
		push:     push,
	}
}

// Feed returns the latest public posts
func (s *PostService) Feed(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.posts.ListPublic(ctx, feedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Get returns a single post
func (s *PostService) Get(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// Create publishes a post on behalf of the author's couple. Content passes
// the moderation gate first; a couple in private mode posts privately.
func (s *PostService) Create(ctx context.Context, author *models.Profile, couple *models.CoupleDetail, content, postType string, mediaURLs []string) (*models.Post, error) {
	if err := s.gate.Check(ctx, content, moderation.ClassPost, author.ID); err != nil {
		return nil, err
	}

	now := time.Now()
	post := &models.Post{
		ID:        uuid.New().String(),
		AuthorID:  author.ID,
		CoupleID:  couple.ID,
		Content:   &content,
		PostType:  postType,
		MediaURLs: mediaURLs,
		IsPublic:  !couple.IsPrivateMode,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	post.Author = author
	post.Couple = couple

	partner := couple.Partner1
	if partner != nil && partner.ID == author.ID {
		partner = couple.Partner2
	}
	if partner != nil {
		s.push.Notify(ctx, partner.UserID, push.EventNewPost, author.Name, map[string]interface{}{
			"post_id": post.ID,
		})
	}

	log.Info().Str("post_id", post.ID).Str("couple_id", couple.ID).Bool("public", post.IsPublic).Msg("Post created")
	return post, nil
}

// Comment adds a comment to a post and bumps its counter atomically. The
// post author is notified unless they commented themselves.
func (s *PostService) Comment(ctx context.Context, author *models.Profile, postID, content string) (*models.Comment, error) {
	if err := s.gate.Check(ctx, content, moderation.ClassComment, author.ID); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	comment := &models.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		AuthorID:  author.ID,
		Content:   content,
		CreatedAt: time.Now(),
	}

	if err := s.posts.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	comment.Author = author

	s.notifyAuthor(ctx, post, author, push.EventNewComment)
	return comment, nil
}

// Comments lists a post's comments, oldest first
func (s *PostService) Comments(ctx context.Context, postID string) ([]*models.Comment, error) {
	comments, err := s.posts.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// ToggleLike likes a post, or removes the caller's existing like. Returns
// whether the post is liked after the call. Reactions skip moderation.
func (s *PostService) ToggleLike(ctx context.Context, liker *models.Profile, postID string) (bool, error) {
	existing, err := s.posts.FindLike(ctx, postID, liker.ID)
	if err != nil && !isNoRows(err) {
		return false, fmt.Errorf("failed to find like: %w", err)
	}

	if existing != nil {
		if err := s.posts.RemoveLike(ctx, existing.ID, postID); err != nil {
			return false, fmt.Errorf("failed to remove like: %w", err)
		}
		return false, nil
	}

	like := &models.Like{
		ID:        uuid.New().String(),
		PostID:    postID,
		UserID:    liker.ID,
		CreatedAt: time.Now(),
	}
	if err := s.posts.AddLike(ctx, like); err != nil {
		if isUniqueViolation(err) {
			// concurrent double-tap, already liked
			return true, nil
		}
		return false, fmt.Errorf("failed to add like: %w", err)
	}

	if post, err := s.posts.GetByID(ctx, postID); err == nil {
		s.notifyAuthor(ctx, post, liker, push.EventNewLike)
	}
	return true, nil
}

func (s *PostService) notifyAuthor(ctx context.Context, post *models.Post, actor *models.Profile, event push.Event) {
	if post.AuthorID == actor.ID {
		return
	}

	author := post.Author
	if author == nil {
		var err error
		author, err = s.profiles.Get(ctx, post.AuthorID)
		if err != nil {
			log.Debug().Err(err).Str("post_id", post.ID).Msg("Failed to resolve post author for notification")
			return
		}
	}

	s.push.Notify(ctx, author.UserID, event, actor.Name, map[string]interface{}{
		"post_id": post.ID,
	})
}
