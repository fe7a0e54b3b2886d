package moderation

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

// ErrBlocked means the classifier rejected the content. A business-rule
// outcome, not a failure: callers surface it as its own user-facing message.
var ErrBlocked = errors.New("content blocked by moderation")

// ErrUnavailable means the classifier could not be reached and the content
// class fails closed.
var ErrUnavailable = errors.New("content moderation unavailable")

// Classifier is the remote-call dependency of the gate
type Classifier interface {
	Classify(ctx context.Context, req Request) (*Verdict, error)
}

// PolicyFunc reports whether a content class fails open when the classifier
// itself is unreachable
type PolicyFunc func(contentType string) bool

// Gate decides whether user-submitted text may be persisted
type Gate struct {
	classifier Classifier
	failOpen   PolicyFunc
}

// NewGate creates a moderation gate with the given failure policy
func NewGate(classifier Classifier, failOpen PolicyFunc) *Gate {
	return &Gate{
		classifier: classifier,
		failOpen:   failOpen,
	}
}

// Allowed reports whether a verdict permits the content
func Allowed(v *Verdict) bool {
	return v.IsAppropriate && v.SuggestedAction != ActionReject
}

// Check submits content and returns nil if it may be persisted, ErrBlocked
// if the verdict forbids it, or ErrUnavailable if the classifier is down and
// the content class fails closed. Reaction content never goes through here.
func (g *Gate) Check(ctx context.Context, content, contentType, profileID string) error {
	verdict, err := g.classifier.Classify(ctx, Request{
		Content: content,
		Type:    contentType,
		UserID:  profileID,
	})
	if err != nil {
		if g.failOpen(contentType) {
			log.Warn().
				Err(err).
				Str("type", contentType).
				Str("profile_id", profileID).
				Msg("Moderation unavailable, allowing content through")
			return nil
		}
		log.Error().
			Err(err).
			Str("type", contentType).
			Str("profile_id", profileID).
			Msg("Moderation unavailable, blocking content")
		return ErrUnavailable
	}

	if !Allowed(verdict) {
		log.Info().
			Str("type", contentType).
			Str("profile_id", profileID).
			Str("action", verdict.SuggestedAction).
			Strs("reasons", verdict.Reasons).
			Msg("Content blocked")
		return ErrBlocked
	}

	// flagged content is allowed but kept auditable
	if verdict.SuggestedAction == ActionFlag {
		log.Warn().
			Str("type", contentType).
			Str("profile_id", profileID).
			Float64("confidence", verdict.Confidence).
			Strs("reasons", verdict.Reasons).
			Msg("Content flagged")
	}

	return nil
}
