package services

import (
	"context"
	"fmt"
	"time"

	"couply-backend/internal/models"
	"couply-backend/internal/moderation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type groupStore interface {
	GetByID(ctx context.Context, id string) (*models.Group, error)
	ListPublic(ctx context.Context) ([]*models.Group, error)
	ListByCoupleID(ctx context.Context, coupleID string) ([]*models.GroupMember, error)
	AddMember(ctx context.Context, member *models.GroupMember) error
	RemoveMember(ctx context.Context, groupID, coupleID string) error
	IsMember(ctx context.Context, groupID, coupleID string) (bool, error)
	CreatePost(ctx context.Context, post *models.GroupPost) error
	ListPosts(ctx context.Context, groupID string) ([]*models.GroupPost, error)
}

// GroupService handles community groups: membership and group posts.
// Membership is per couple, not per profile.
type GroupService struct {
	groups groupStore
	gate   contentGate
}

// NewGroupService creates a new group service
func NewGroupService(groups groupStore, gate contentGate) *GroupService {
	return &GroupService{
		groups: groups,
		gate:   gate,
	}
}

// Discover lists public groups, largest first
func (s *GroupService) Discover(ctx context.Context) ([]*models.Group, error) {
	groups, err := s.groups.ListPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// Memberships lists the groups a couple belongs to
func (s *GroupService) Memberships(ctx context.Context, coupleID string) ([]*models.GroupMember, error) {
	members, err := s.groups.ListByCoupleID(ctx, coupleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return members, nil
}

// Join adds the couple to a group. Joining twice is a no-op.
func (s *GroupService) Join(ctx context.Context, groupID, coupleID string) (*models.GroupMember, error) {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	member := &models.GroupMember{
		ID:       uuid.New().String(),
		GroupID:  groupID,
		CoupleID: coupleID,
		Role:     "member",
		JoinedAt: time.Now(),
	}

	if err := s.groups.AddMember(ctx, member); err != nil {
		if isUniqueViolation(err) {
			return member, nil
		}
		return nil, fmt.Errorf("failed to join group: %w", err)
	}

	log.Info().Str("group_id", groupID).Str("couple_id", coupleID).Msg("Couple joined group")
	return member, nil
}

// Leave removes the couple from a group
func (s *GroupService) Leave(ctx context.Context, groupID, coupleID string) error {
	if err := s.groups.RemoveMember(ctx, groupID, coupleID); err != nil {
		return fmt.Errorf("failed to leave group: %w", err)
	}
	return nil
}

// Post publishes into a group. Only members post; content passes the
// moderation gate as a post.
func (s *GroupService) Post(ctx context.Context, author *models.Profile, coupleID, groupID, content string, mediaURLs []string) (*models.GroupPost, error) {
	member, err := s.groups.IsMember(ctx, groupID, coupleID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return nil, ErrNotMember
	}

	if err := s.gate.Check(ctx, content, moderation.ClassPost, author.ID); err != nil {
		return nil, err
	}

	post := &models.GroupPost{
		ID:        uuid.New().String(),
		GroupID:   groupID,
		AuthorID:  author.ID,
		Content:   content,
		MediaURLs: mediaURLs,
		CreatedAt: time.Now(),
	}

	if err := s.groups.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create group post: %w", err)
	}
	post.Author = author
	return post, nil
}

// Posts lists a group's posts for a member couple, newest first
func (s *GroupService) Posts(ctx context.Context, groupID, coupleID string) ([]*models.GroupPost, error) {
	member, err := s.groups.IsMember(ctx, groupID, coupleID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return nil, ErrNotMember
	}

	posts, err := s.groups.ListPosts(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group posts: %w", err)
	}
	return posts, nil
}
