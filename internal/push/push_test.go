package push

import (
	"testing"

	"couply-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEvent(t *testing.T) {
	tests := []struct {
		event      Event
		senderName string
		wantTitle  string
		wantBody   string
	}{
		{EventNewMessage, "Dana", "New Message", "Dana sent you a message"},
		{EventNewMessage, "", "New Message", "Your partner sent you a message"},
		{EventNewPost, "Dana", "New Post", "Dana shared a new post"},
		{EventNewPost, "", "New Post", "Someone shared a new post"},
		{EventNewComment, "Dana", "New Comment", "Dana commented on a post"},
		{EventNewLike, "", "New Like", "Someone liked your post"},
		{EventPartnerLinked, "Dana", "Partner Linked!", "You are now connected with your partner on Couply"},
	}

	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			n, ok := ForEvent(tt.event, tt.senderName)
			require.True(t, ok)
			assert.Equal(t, tt.wantTitle, n.Title)
			assert.Equal(t, tt.wantBody, n.Body)
		})
	}
}

func TestForEventUnknown(t *testing.T) {
	_, ok := ForEvent(Event("no_such_event"), "Dana")
	assert.False(t, ok)
}

func TestServiceWithoutCredentialsIsNoop(t *testing.T) {
	svc, err := NewService(config.APNsConfig{}, nil)
	require.NoError(t, err)
	assert.False(t, svc.Configured())
}
