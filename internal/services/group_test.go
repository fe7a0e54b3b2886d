package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"couply-backend/internal/models"
	"couply-backend/internal/moderation"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGroupStore struct {
	mu      sync.Mutex
	groups  map[string]*models.Group
	members map[string]*models.GroupMember
	posts   []*models.GroupPost
}

func newFakeGroupStore() *fakeGroupStore {
	return &fakeGroupStore{
		groups:  make(map[string]*models.Group),
		members: make(map[string]*models.GroupMember),
	}
}

func (f *fakeGroupStore) GetByID(ctx context.Context, id string) (*models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.groups[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGroupStore) ListPublic(ctx context.Context) ([]*models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Group
	for _, g := range f.groups {
		if !g.IsPrivate {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeGroupStore) ListByCoupleID(ctx context.Context, coupleID string) ([]*models.GroupMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.GroupMember
	for _, m := range f.members {
		if m.CoupleID == coupleID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeGroupStore) AddMember(ctx context.Context, member *models.GroupMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := member.GroupID + "/" + member.CoupleID
	if _, ok := f.members[key]; ok {
		return uniqueViolation()
	}
	cp := *member
	f.members[key] = &cp
	if g, ok := f.groups[member.GroupID]; ok {
		g.MemberCount++
	}
	return nil
}

func (f *fakeGroupStore) RemoveMember(ctx context.Context, groupID, coupleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := groupID + "/" + coupleID
	if _, ok := f.members[key]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.members, key)
	if g, ok := f.groups[groupID]; ok && g.MemberCount > 0 {
		g.MemberCount--
	}
	return nil
}

func (f *fakeGroupStore) IsMember(ctx context.Context, groupID, coupleID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.members[groupID+"/"+coupleID]
	return ok, nil
}

func (f *fakeGroupStore) CreatePost(ctx context.Context, post *models.GroupPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *post
	cp.Author = nil
	f.posts = append(f.posts, &cp)
	return nil
}

func (f *fakeGroupStore) ListPosts(ctx context.Context, groupID string) ([]*models.GroupPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.GroupPost
	for _, p := range f.posts {
		if p.GroupID == groupID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func seedGroup(store *fakeGroupStore, id, name string) {
	store.groups[id] = &models.Group{ID: id, Name: name, CreatedAt: time.Now()}
}

func TestJoinGroup(t *testing.T) {
	store := newFakeGroupStore()
	seedGroup(store, "g1", "Date Night Ideas")
	svc := NewGroupService(store, &fakeGate{})

	member, err := svc.Join(context.Background(), "g1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "member", member.Role)
	assert.Equal(t, 1, store.groups["g1"].MemberCount)

	// joining twice is a no-op, not an error
	_, err = svc.Join(context.Background(), "g1", "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.groups["g1"].MemberCount)
}

func TestJoinUnknownGroup(t *testing.T) {
	svc := NewGroupService(newFakeGroupStore(), &fakeGate{})

	_, err := svc.Join(context.Background(), "nope", "c1")
	assert.Error(t, err)
}

func TestLeaveGroup(t *testing.T) {
	store := newFakeGroupStore()
	seedGroup(store, "g1", "Date Night Ideas")
	svc := NewGroupService(store, &fakeGate{})

	_, err := svc.Join(context.Background(), "g1", "c1")
	require.NoError(t, err)
	require.NoError(t, svc.Leave(context.Background(), "g1", "c1"))
	assert.Zero(t, store.groups["g1"].MemberCount)
}

func TestGroupPostRequiresMembership(t *testing.T) {
	store := newFakeGroupStore()
	seedGroup(store, "g1", "Date Night Ideas")
	svc := NewGroupService(store, &fakeGate{})
	author := &models.Profile{ID: "p1", UserID: "u1", Name: "Dana"}

	_, err := svc.Post(context.Background(), author, "c1", "g1", "hello all", nil)
	assert.ErrorIs(t, err, ErrNotMember)

	_, err = svc.Join(context.Background(), "g1", "c1")
	require.NoError(t, err)

	post, err := svc.Post(context.Background(), author, "c1", "g1", "hello all", nil)
	require.NoError(t, err)
	assert.Equal(t, "g1", post.GroupID)
}

func TestGroupPostModerated(t *testing.T) {
	store := newFakeGroupStore()
	seedGroup(store, "g1", "Date Night Ideas")
	gate := &fakeGate{err: moderation.ErrBlocked}
	svc := NewGroupService(store, gate)
	author := &models.Profile{ID: "p1", UserID: "u1", Name: "Dana"}

	_, err := svc.Join(context.Background(), "g1", "c1")
	require.NoError(t, err)

	_, err = svc.Post(context.Background(), author, "c1", "g1", "abuse", nil)
	assert.ErrorIs(t, err, moderation.ErrBlocked)
	assert.Empty(t, store.posts)
}

func TestGroupPostsRequireMembership(t *testing.T) {
	store := newFakeGroupStore()
	seedGroup(store, "g1", "Date Night Ideas")
	svc := NewGroupService(store, &fakeGate{})

	_, err := svc.Posts(context.Background(), "g1", "c1")
	assert.ErrorIs(t, err, ErrNotMember)
}
