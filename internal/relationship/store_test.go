package relationship

import (
	"testing"
	"time"

	"couply-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetUnknownUser(t *testing.T) {
	store := NewStore()

	snap := store.Get("nobody")
	assert.Equal(t, StateLoading, Derive(snap))
}

func TestStorePublishReplaces(t *testing.T) {
	store := NewStore()

	store.Publish("u1", Snapshot{
		SessionChecked: true,
		Identity:       verifiedIdentity(),
		ProfileChecked: true,
		Profile:        &models.Profile{ID: "p1"},
		CoupleChecked:  true,
		Couple:         &models.CoupleDetail{Couple: models.Couple{ID: "c1"}},
	})
	assert.Equal(t, StateLinked, Derive(store.Get("u1")))

	// a later publish without couple data fully replaces the earlier one
	store.Publish("u1", Snapshot{
		SessionChecked: true,
		Identity:       verifiedIdentity(),
		ProfileChecked: true,
		Profile:        &models.Profile{ID: "p1"},
		CoupleChecked:  true,
	})
	snap := store.Get("u1")
	assert.Nil(t, snap.Couple)
	assert.Equal(t, StateOnboarding, Derive(snap))
}

func TestStoreClearDropsEverything(t *testing.T) {
	store := NewStore()

	store.Publish("u1", Snapshot{
		SessionChecked: true,
		Identity:       verifiedIdentity(),
		ProfileChecked: true,
		Profile:        &models.Profile{ID: "p1"},
		CoupleChecked:  true,
		Couple:         &models.CoupleDetail{Couple: models.Couple{ID: "c1"}},
	})

	store.Clear("u1")

	snap := store.Get("u1")
	assert.Nil(t, snap.Identity)
	assert.Nil(t, snap.Profile)
	assert.Nil(t, snap.Couple)
	assert.Equal(t, StateUnauthenticated, Derive(snap))
}

func TestStoreSubscribe(t *testing.T) {
	store := NewStore()

	ch, cancel := store.Subscribe("u1")
	defer cancel()

	store.Publish("u1", Snapshot{SessionChecked: true})

	select {
	case snap := <-ch:
		assert.Equal(t, StateUnauthenticated, Derive(snap))
	case <-time.After(time.Second):
		t.Fatal("no snapshot received")
	}
}

func TestStoreSubscribeCancel(t *testing.T) {
	store := NewStore()

	ch, cancel := store.Subscribe("u1")
	cancel()

	store.Publish("u1", Snapshot{SessionChecked: true})

	select {
	case <-ch:
		t.Fatal("received snapshot after cancel")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStoreSlowSubscriberSkipped(t *testing.T) {
	store := NewStore()

	ch, cancel := store.Subscribe("u1")
	defer cancel()

	// channel buffer is 1; extra publishes must not block
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			store.Publish("u1", Snapshot{SessionChecked: true})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}

	require.NotEmpty(t, ch)
	// the store still serves the latest snapshot directly
	assert.True(t, store.Get("u1").SessionChecked)
}
