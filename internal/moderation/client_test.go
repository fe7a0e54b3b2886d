package moderation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientClassify(t *testing.T) {
	var gotReq Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"moderation": map[string]interface{}{
				"isAppropriate":   true,
				"confidence":      0.97,
				"suggestedAction": "approve",
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	verdict, err := client.Classify(context.Background(), Request{
		Content: "hello",
		Type:    ClassMessage,
		UserID:  "p1",
	})

	require.NoError(t, err)
	assert.Equal(t, "hello", gotReq.Content)
	assert.Equal(t, ClassMessage, gotReq.Type)
	assert.Equal(t, "p1", gotReq.UserID)
	assert.True(t, verdict.IsAppropriate)
	assert.Equal(t, ActionApprove, verdict.SuggestedAction)
	assert.InDelta(t, 0.97, verdict.Confidence, 0.001)
}

func TestClientClassifyReasons(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"moderation": map[string]interface{}{
				"isAppropriate":   false,
				"confidence":      0.88,
				"reasons":         []string{"harassment"},
				"suggestedAction": "reject",
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	verdict, err := client.Classify(context.Background(), Request{Content: "x", Type: ClassPost, UserID: "p1"})

	require.NoError(t, err)
	assert.False(t, verdict.IsAppropriate)
	assert.Equal(t, []string{"harassment"}, verdict.Reasons)
	assert.Equal(t, ActionReject, verdict.SuggestedAction)
}

func TestClientClassifyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.Classify(context.Background(), Request{Content: "x", Type: ClassPost, UserID: "p1"})
	assert.Error(t, err)
}
