package relationship

import "sync"

// Store keeps the latest snapshot per user and fans out replacements to
// subscribers. Every publish is a full state replacement, never a diff:
// the last event wins.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
	subs      map[string]map[int]chan Snapshot
	nextSubID int
}

// NewStore creates an empty snapshot store
func NewStore() *Store {
	return &Store{
		snapshots: make(map[string]Snapshot),
		subs:      make(map[string]map[int]chan Snapshot),
	}
}

// Get returns the latest snapshot for a user; a user never published yields
// the zero snapshot, which derives to Loading
func (s *Store) Get(userID string) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshots[userID]
}

// Publish replaces the user's snapshot and notifies subscribers. Slow
// subscribers are skipped rather than blocked; they always see the latest
// snapshot on their next receive.
func (s *Store) Publish(userID string, snap Snapshot) {
	s.mu.Lock()
	s.snapshots[userID] = snap
	subs := make([]chan Snapshot, 0, len(s.subs[userID]))
	for _, ch := range s.subs[userID] {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Clear replaces the user's snapshot with a signed-out one. Profile and
// couple are dropped along with the identity so no stale data survives a
// sign-out.
func (s *Store) Clear(userID string) {
	s.Publish(userID, Snapshot{
		SessionChecked: true,
		ProfileChecked: true,
		CoupleChecked:  true,
	})
}

// Subscribe registers for snapshot replacements of one user. The returned
// cancel function must be called to release the subscription.
func (s *Store) Subscribe(userID string) (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[int]chan Snapshot)
	}
	s.subs[userID][id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if subs, ok := s.subs[userID]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(s.subs, userID)
			}
		}
		s.mu.Unlock()
	}
	return ch, cancel
}
