package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeClassifier struct {
	verdict *Verdict
	err     error
	gotReq  Request
}

func (f *fakeClassifier) Classify(ctx context.Context, req Request) (*Verdict, error) {
	f.gotReq = req
	return f.verdict, f.err
}

func failClosed(string) bool { return false }
func failOpen(string) bool   { return true }

func TestGateAllowsApproved(t *testing.T) {
	classifier := &fakeClassifier{verdict: &Verdict{IsAppropriate: true, SuggestedAction: ActionApprove}}
	gate := NewGate(classifier, failClosed)

	err := gate.Check(context.Background(), "nice text", ClassPost, "p1")
	assert.NoError(t, err)
	assert.Equal(t, ClassPost, classifier.gotReq.Type)
	assert.Equal(t, "p1", classifier.gotReq.UserID)
}

func TestGateBlocksRejected(t *testing.T) {
	classifier := &fakeClassifier{verdict: &Verdict{IsAppropriate: false, SuggestedAction: ActionReject}}
	gate := NewGate(classifier, failClosed)

	err := gate.Check(context.Background(), "bad text", ClassComment, "p1")
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestGateBlocksInappropriateEvenWhenNotRejected(t *testing.T) {
	// both conditions must hold to allow: isAppropriate and action != reject
	classifier := &fakeClassifier{verdict: &Verdict{IsAppropriate: false, SuggestedAction: ActionFlag}}
	gate := NewGate(classifier, failClosed)

	err := gate.Check(context.Background(), "text", ClassMessage, "p1")
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestGateBlocksRejectEvenWhenAppropriate(t *testing.T) {
	classifier := &fakeClassifier{verdict: &Verdict{IsAppropriate: true, SuggestedAction: ActionReject}}
	gate := NewGate(classifier, failClosed)

	err := gate.Check(context.Background(), "text", ClassMessage, "p1")
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestGateAllowsFlagged(t *testing.T) {
	classifier := &fakeClassifier{verdict: &Verdict{IsAppropriate: true, SuggestedAction: ActionFlag, Reasons: []string{"borderline"}}}
	gate := NewGate(classifier, failClosed)

	err := gate.Check(context.Background(), "edgy text", ClassPost, "p1")
	assert.NoError(t, err)
}

func TestGateFailClosed(t *testing.T) {
	classifier := &fakeClassifier{err: errors.New("connection refused")}
	gate := NewGate(classifier, failClosed)

	err := gate.Check(context.Background(), "text", ClassPost, "p1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGateFailOpen(t *testing.T) {
	classifier := &fakeClassifier{err: errors.New("connection refused")}
	gate := NewGate(classifier, failOpen)

	err := gate.Check(context.Background(), "text", ClassMessage, "p1")
	assert.NoError(t, err)
}

func TestGatePolicyPerClass(t *testing.T) {
	classifier := &fakeClassifier{err: errors.New("connection refused")}
	gate := NewGate(classifier, func(contentType string) bool {
		return contentType == ClassMessage
	})

	assert.NoError(t, gate.Check(context.Background(), "text", ClassMessage, "p1"))
	assert.ErrorIs(t, gate.Check(context.Background(), "text", ClassPost, "p1"), ErrUnavailable)
}

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed(&Verdict{IsAppropriate: true, SuggestedAction: ActionApprove}))
	assert.True(t, Allowed(&Verdict{IsAppropriate: true, SuggestedAction: ActionFlag}))
	assert.False(t, Allowed(&Verdict{IsAppropriate: true, SuggestedAction: ActionReject}))
	assert.False(t, Allowed(&Verdict{IsAppropriate: false, SuggestedAction: ActionApprove}))
}
