package models

import "time"

// User represents an authenticated account issued by the auth service
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	PasswordHash    string     `json:"-"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Verified reports whether the account's email has been confirmed
func (u *User) Verified() bool {
	return u.EmailVerifiedAt != nil
}

// VerificationToken is a one-time token sent to confirm an email address
type VerificationToken struct {
	Token     string     `json:"token"`
	UserID    string     `json:"user_id"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// DeviceToken is an APNs token registered by a user's device
type DeviceToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the application-level user record owned by an account
type Profile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Bio       *string   `json:"bio,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Couple statuses
const (
	CoupleStatusPending = "pending"
	CoupleStatusActive  = "active"
)

// Couple is a pairing of exactly two profiles
type Couple struct {
	ID              string     `json:"id"`
	Partner1ID      string     `json:"partner1_id"`
	Partner2ID      string     `json:"partner2_id"`
	Status          string     `json:"status"`
	AnniversaryDate *time.Time `json:"anniversary_date,omitempty"`
	CoupleName      *string    `json:"couple_name,omitempty"`
	CoupleBio       *string    `json:"couple_bio,omitempty"`
	CoupleAvatarURL *string    `json:"couple_avatar_url,omitempty"`
	IsPrivateMode   bool       `json:"is_private_mode"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// PartnerID returns the other profile in the couple, or "" if profileID
// is not a member
func (c *Couple) PartnerID(profileID string) string {
	switch profileID {
	case c.Partner1ID:
		return c.Partner2ID
	case c.Partner2ID:
		return c.Partner1ID
	}
	return ""
}

// HasMember reports whether profileID is one of the two partners
func (c *Couple) HasMember(profileID string) bool {
	return c.Partner1ID == profileID || c.Partner2ID == profileID
}

// CoupleDetail is a couple with both partner profiles embedded
type CoupleDetail struct {
	Couple
	Partner1 *Profile `json:"partner1,omitempty"`
	Partner2 *Profile `json:"partner2,omitempty"`
}

// Invitation statuses
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusExpired  = "expired"
)

// Invitation is a pending request to link two profiles into a couple
type Invitation struct {
	ID           string     `json:"id"`
	Token        string     `json:"token"`
	CoupleID     string     `json:"couple_id"`
	InviterID    string     `json:"inviter_id"`
	InviteeEmail string     `json:"invitee_email"`
	Status       string     `json:"status"`
	ExpiresAt    time.Time  `json:"expires_at"`
	AcceptedAt   *time.Time `json:"accepted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Message types
const (
	MessageTypeText = "text"
	MessageTypeHug  = "hug"
	MessageTypeKiss = "kiss"
)

// Message belongs to exactly one couple, authored by one profile
type Message struct {
	ID          string    `json:"id"`
	CoupleID    string    `json:"couple_id"`
	SenderID    string    `json:"sender_id"`
	Content     *string   `json:"content,omitempty"`
	MessageType string    `json:"message_type"`
	MediaURL    *string   `json:"media_url,omitempty"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`

	Sender *Profile `json:"sender,omitempty"`
}

// Post is community content authored by a profile in a couple context
type Post struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"author_id"`
	CoupleID      string    `json:"couple_id"`
	Content       *string   `json:"content,omitempty"`
	PostType      string    `json:"post_type"`
	MediaURLs     []string  `json:"media_urls,omitempty"`
	IsPublic      bool      `json:"is_public"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Author *Profile      `json:"author,omitempty"`
	Couple *CoupleDetail `json:"couple,omitempty"`
}

// Comment references a post and an author profile
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	Author *Profile `json:"author,omitempty"`
}

// Like references a post and the liking profile
type Like struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Group has many couple members and many group posts
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	GroupType   *string   `json:"group_type,omitempty"`
	IsPrivate   bool      `json:"is_private"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// GroupMember links a couple to a group
type GroupMember struct {
	ID       string    `json:"id"`
	GroupID  string    `json:"group_id"`
	CoupleID string    `json:"couple_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`

	Group *Group `json:"group,omitempty"`
}

// GroupPost is content posted to a group by a profile
type GroupPost struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	MediaURLs []string  `json:"media_urls,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Author *Profile `json:"author,omitempty"`
}

// Challenge is a community challenge couples can submit entries to
type Challenge struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   *string    `json:"description,omitempty"`
	ChallengeType *string    `json:"challenge_type,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ChallengeSubmission is a couple's entry for a challenge
type ChallengeSubmission struct {
	ID          string    `json:"id"`
	ChallengeID string    `json:"challenge_id"`
	CoupleID    string    `json:"couple_id"`
	Content     *string   `json:"content,omitempty"`
	MediaURLs   []string  `json:"media_urls,omitempty"`
	VotesCount  int       `json:"votes_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// CalendarEvent belongs to a couple's shared calendar
type CalendarEvent struct {
	ID          string     `json:"id"`
	CoupleID    string     `json:"couple_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	EventType   *string    `json:"event_type,omitempty"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	IsRecurring bool       `json:"is_recurring"`
	CreatedAt   time.Time  `json:"created_at"`
}
