package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"couply-backend/internal/models"
	"couply-backend/internal/push"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505"}
}

type fakeUserStore struct {
	mu        sync.Mutex
	users     map[string]*models.User
	tokens    map[string]*models.VerificationToken
	devices   map[string][]string
	createErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:   make(map[string]*models.User),
		tokens:  make(map[string]*models.VerificationToken),
		devices: make(map[string][]string),
	}
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return uniqueViolation()
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) MarkVerified(ctx context.Context, userID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return pgx.ErrNoRows
	}
	u.EmailVerifiedAt = &at
	return nil
}

func (f *fakeUserStore) CreateVerificationToken(ctx context.Context, token *models.VerificationToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *token
	f.tokens[token.Token] = &cp
	return nil
}

func (f *fakeUserStore) GetVerificationToken(ctx context.Context, token string) (*models.VerificationToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vt, ok := f.tokens[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *vt
	return &cp, nil
}

func (f *fakeUserStore) MarkTokenUsed(ctx context.Context, token string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	vt, ok := f.tokens[token]
	if !ok {
		return pgx.ErrNoRows
	}
	vt.UsedAt = &at
	return nil
}

func (f *fakeUserStore) UpsertDeviceToken(ctx context.Context, dt *models.DeviceToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.devices[dt.UserID] {
		if existing == dt.Token {
			return nil
		}
	}
	f.devices[dt.UserID] = append(f.devices[dt.UserID], dt.Token)
	return nil
}

type fakeProfileStore struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile
	creates  int
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{profiles: make(map[string]*models.Profile)}
}

func (f *fakeProfileStore) Create(ctx context.Context, profile *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	for _, p := range f.profiles {
		if p.UserID == profile.UserID {
			return uniqueViolation()
		}
	}
	cp := *profile
	f.profiles[profile.ID] = &cp
	return nil
}

func (f *fakeProfileStore) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfileStore) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeProfileStore) Update(ctx context.Context, profile *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[profile.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *profile
	f.profiles[profile.ID] = &cp
	return nil
}

type fakeCoupleStore struct {
	mu        sync.Mutex
	couples   map[string]*models.Couple
	profiles  *fakeProfileStore
	activeErr error
}

func newFakeCoupleStore(profiles *fakeProfileStore) *fakeCoupleStore {
	return &fakeCoupleStore{
		couples:  make(map[string]*models.Couple),
		profiles: profiles,
	}
}

func (f *fakeCoupleStore) Create(ctx context.Context, couple *models.Couple) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.couples {
		if c.Status != models.CoupleStatusActive {
			continue
		}
		if c.HasMember(couple.Partner1ID) || c.HasMember(couple.Partner2ID) {
			return uniqueViolation()
		}
	}
	cp := *couple
	f.couples[couple.ID] = &cp
	return nil
}

func (f *fakeCoupleStore) GetByID(ctx context.Context, id string) (*models.Couple, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.couples[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCoupleStore) GetActiveByProfileID(ctx context.Context, profileID string) (*models.CoupleDetail, error) {
	f.mu.Lock()
	if f.activeErr != nil {
		f.mu.Unlock()
		return nil, f.activeErr
	}
	var found *models.Couple
	for _, c := range f.couples {
		if c.Status == models.CoupleStatusActive && c.HasMember(profileID) {
			cp := *c
			found = &cp
			break
		}
	}
	f.mu.Unlock()

	if found == nil {
		return nil, pgx.ErrNoRows
	}

	detail := &models.CoupleDetail{Couple: *found}
	if f.profiles != nil {
		detail.Partner1, _ = f.profiles.GetByID(ctx, found.Partner1ID)
		detail.Partner2, _ = f.profiles.GetByID(ctx, found.Partner2ID)
	}
	return detail, nil
}

func (f *fakeCoupleStore) ProfileHasCouple(ctx context.Context, profileID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.couples {
		if c.HasMember(profileID) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCoupleStore) Update(ctx context.Context, couple *models.Couple) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.couples[couple.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *couple
	f.couples[couple.ID] = &cp
	return nil
}

func (f *fakeCoupleStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.couples, id)
	return nil
}

type fakeInvitationStore struct {
	mu          sync.Mutex
	invitations map[string]*models.Invitation
	couples     *fakeCoupleStore
}

func newFakeInvitationStore(couples *fakeCoupleStore) *fakeInvitationStore {
	return &fakeInvitationStore{
		invitations: make(map[string]*models.Invitation),
		couples:     couples,
	}
}

func (f *fakeInvitationStore) Create(ctx context.Context, inv *models.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *inv
	f.invitations[inv.ID] = &cp
	return nil
}

func (f *fakeInvitationStore) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invitations {
		if inv.Token == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeInvitationStore) GetPendingByInviter(ctx context.Context, inviterID string) (*models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invitations {
		if inv.InviterID == inviterID && inv.Status == models.InvitationStatusPending {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeInvitationStore) Accept(ctx context.Context, invitationID, coupleID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[invitationID]
	if !ok || inv.Status != models.InvitationStatusPending {
		return pgx.ErrNoRows
	}
	inv.Status = models.InvitationStatusAccepted
	inv.AcceptedAt = &at

	f.couples.mu.Lock()
	defer f.couples.mu.Unlock()
	c, ok := f.couples.couples[coupleID]
	if !ok || c.Status != models.CoupleStatusPending {
		return pgx.ErrNoRows
	}
	c.Status = models.CoupleStatusActive
	return nil
}

func (f *fakeInvitationStore) MarkExpired(ctx context.Context, invitationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if inv, ok := f.invitations[invitationID]; ok {
		inv.Status = models.InvitationStatusExpired
	}
	return nil
}

type fakeMessageStore struct {
	mu       sync.Mutex
	messages []*models.Message
}

func (f *fakeMessageStore) Create(ctx context.Context, msg *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *msg
	f.messages = append(f.messages, &cp)
	return nil
}

func (f *fakeMessageStore) ListByCoupleID(ctx context.Context, coupleID string) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Message
	for _, m := range f.messages {
		if m.CoupleID == coupleID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeMessageStore) MarkRead(ctx context.Context, messageID, coupleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.ID == messageID && m.CoupleID == coupleID {
			m.IsRead = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakePostStore struct {
	mu       sync.Mutex
	posts    map[string]*models.Post
	comments []*models.Comment
	likes    map[string]*models.Like
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{
		posts: make(map[string]*models.Post),
		likes: make(map[string]*models.Like),
	}
}

func (f *fakePostStore) Create(ctx context.Context, post *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *post
	cp.Author = nil
	cp.Couple = nil
	f.posts[post.ID] = &cp
	return nil
}

func (f *fakePostStore) GetByID(ctx context.Context, id string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakePostStore) ListPublic(ctx context.Context, limit int) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Post
	for _, p := range f.posts {
		if p.IsPublic {
			cp := *p
			out = append(out, &cp)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakePostStore) AddComment(ctx context.Context, comment *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[comment.PostID]
	if !ok {
		return pgx.ErrNoRows
	}
	cp := *comment
	cp.Author = nil
	f.comments = append(f.comments, &cp)
	p.CommentsCount++
	return nil
}

func (f *fakePostStore) ListComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePostStore) FindLike(ctx context.Context, postID, profileID string) (*models.Like, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.likes[postID+"/"+profileID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *l
	return &cp, nil
}

func (f *fakePostStore) AddLike(ctx context.Context, like *models.Like) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := like.PostID + "/" + like.UserID
	if _, ok := f.likes[key]; ok {
		return uniqueViolation()
	}
	p, ok := f.posts[like.PostID]
	if !ok {
		return pgx.ErrNoRows
	}
	cp := *like
	f.likes[key] = &cp
	p.LikesCount++
	return nil
}

func (f *fakePostStore) RemoveLike(ctx context.Context, likeID, postID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, l := range f.likes {
		if l.ID == likeID {
			delete(f.likes, key)
			if p, ok := f.posts[postID]; ok && p.LikesCount > 0 {
				p.LikesCount--
			}
			return nil
		}
	}
	return pgx.ErrNoRows
}

type sentPush struct {
	userID     string
	event      push.Event
	senderName string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentPush
}

func (f *fakeNotifier) Notify(ctx context.Context, userID string, event push.Event, senderName string, data map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentPush{userID: userID, event: event, senderName: senderName})
}

type fakeGate struct {
	mu      sync.Mutex
	err     error
	checked []string
}

func (f *fakeGate) Check(ctx context.Context, content, contentType, profileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checked = append(f.checked, contentType+":"+content)
	return f.err
}
