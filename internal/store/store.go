// Package store holds the client's single in-memory source of truth for
// email entities and pending UI state. Every derived view is a pure
// projection of Snapshot; mutations go through store methods and publish
// a coalesced change signal to subscribers.
package store

import (
	"sync"
	"time"

	"github.com/nhle/mailpilot/internal/model"
)

// Store is the authoritative local cache. It holds exactly one Email per
// id, the active and batch selections, saved agent drafts for the drafts
// folder, the operation error slot, and pending notifications.
//
// All methods are safe for concurrent use; Bubble Tea commands run on
// separate goroutines. Overlapping mutations are last-writer-wins.
type Store struct {
	mu sync.RWMutex

	emails map[string]*model.Email
	order  []string

	drafts []model.Draft

	activeID string
	selected map[string]bool

	lastErr string
	pending []model.Notification

	watchers []chan struct{}
}

// New creates an empty store.
func New() *Store {
	return &Store{
		emails:   make(map[string]*model.Email),
		selected: make(map[string]bool),
	}
}

// Subscribe returns a channel that receives a signal after every store
// mutation. The signal is coalesced: a slow consumer sees at least one
// signal for any burst of mutations.
func (s *Store) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan struct{}, 1)
	s.watchers = append(s.watchers, ch)
	return ch
}

// notifyLocked signals all subscribers. Callers must hold mu.
func (s *Store) notifyLocked() {
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// ReplaceAll swaps the entire email cache for the given batch, keeping
// batch order. Any locally-applied flags on previously cached entries
// are discarded; this is the folder-fetch replace policy.
func (s *Store) ReplaceAll(emails []model.Email) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.emails = make(map[string]*model.Email, len(emails))
	s.order = s.order[:0]
	for i := range emails {
		e := emails[i]
		if _, dup := s.emails[e.ID]; dup {
			continue
		}
		s.emails[e.ID] = &e
		s.order = append(s.order, e.ID)
	}

	if s.activeID != "" {
		if _, ok := s.emails[s.activeID]; !ok {
			s.activeID = ""
		}
	}

	s.notifyLocked()
}

// Get returns a copy of the cached email with the given id.
func (s *Store) Get(id string) (model.Email, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.emails[id]
	if !ok {
		return model.Email{}, false
	}
	return *e, true
}

// Snapshot returns the cached emails in insertion order. The returned
// slice is a copy and safe to read while the store keeps mutating.
func (s *Store) Snapshot() []model.Email {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Email, 0, len(s.order))
	for _, id := range s.order {
		if e, ok := s.emails[id]; ok {
			out = append(out, *e)
		}
	}
	return out
}

// Len returns the number of cached emails, tombstones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.emails)
}

// MergePatch applies a richer detail record onto the cached entry with
// the same id: every field carried by the detail response overwrites the
// cached copy (drafts become exactly the incoming list, not a union),
// while local-only flags survive the merge. Read is kept when either
// side has it, so an optimistic mark-read is not reverted by a detail
// response that still reports unread.
//
// Returns the merged entity and false when no entry with that id exists.
func (s *Store) MergePatch(incoming model.Email) (model.Email, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cached, ok := s.emails[incoming.ID]
	if !ok {
		return model.Email{}, false
	}

	merged := incoming
	merged.Read = cached.Read || incoming.Read
	merged.Archived = cached.Archived
	merged.Deleted = cached.Deleted
	merged.Snoozed = cached.Snoozed
	merged.SnoozeUntil = cached.SnoozeUntil

	*cached = merged
	s.notifyLocked()
	return merged, true
}

// MarkRead flags the email as read. Local-only; never sent upstream.
func (s *Store) MarkRead(id string) bool {
	return s.mutate(id, func(e *model.Email) {
		e.Read = true
	}, false)
}

// Archive flags the email as archived and clears the active selection
// when it pointed at this email.
func (s *Store) Archive(id string) bool {
	return s.mutate(id, func(e *model.Email) {
		e.Archived = true
	}, true)
}

// Delete tombstones the email. The entry stays in the cache; folder
// views exclude it everywhere.
func (s *Store) Delete(id string) bool {
	return s.mutate(id, func(e *model.Email) {
		e.Deleted = true
	}, true)
}

// Snooze hides the email from every folder but snoozed until the given
// time.
func (s *Store) Snooze(id string, until time.Time) bool {
	return s.mutate(id, func(e *model.Email) {
		e.Snoozed = true
		e.SnoozeUntil = &until
	}, true)
}

// mutate applies fn to the cached email with the given id, optionally
// clearing the active selection when it targets that id.
func (s *Store) mutate(id string, fn func(*model.Email), clearActive bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.emails[id]
	if !ok {
		return false
	}

	fn(e)
	if clearActive && s.activeID == id {
		s.activeID = ""
	}

	s.notifyLocked()
	return true
}

// SetActive marks the email as the active (open) selection.
func (s *Store) SetActive(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
	s.notifyLocked()
}

// ClearActive drops the active selection.
func (s *Store) ClearActive() {
	s.SetActive("")
}

// ActiveID returns the id of the active selection, or "".
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Active returns a copy of the active email, if any.
func (s *Store) Active() (model.Email, bool) {
	s.mu.RLock()
	id := s.activeID
	s.mu.RUnlock()
	if id == "" {
		return model.Email{}, false
	}
	return s.Get(id)
}

// ToggleSelected adds or removes an email id from the batch selection
// set. Membership is toggled by id equality; there is no upper bound.
func (s *Store) ToggleSelected(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected[id] {
		delete(s.selected, id)
	} else {
		s.selected[id] = true
	}
	s.notifyLocked()
}

// IsSelected reports batch selection membership.
func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[id]
}

// SelectedIDs returns the batch-selected ids in cache order; ids no
// longer present in the cache come last in toggle order.
func (s *Store) SelectedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	seen := make(map[string]bool, len(s.selected))
	for _, id := range s.order {
		if s.selected[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	for id := range s.selected {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// SelectedCount returns the size of the batch selection set.
func (s *Store) SelectedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selected)
}

// ClearSelected empties the batch selection set.
func (s *Store) ClearSelected() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = make(map[string]bool)
	s.notifyLocked()
}

// SetDrafts replaces the saved agent drafts backing the drafts folder.
func (s *Store) SetDrafts(drafts []model.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts = append([]model.Draft(nil), drafts...)
	s.notifyLocked()
}

// Drafts returns a copy of the saved agent drafts.
func (s *Store) Drafts() []model.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Draft(nil), s.drafts...)
}

// SetError records the most recent operation failure message and queues
// an error notification.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastErr = msg
	s.pending = append(s.pending, model.NewNotification(model.NotificationError, "", msg))
	s.notifyLocked()
}

// ClearError empties the error slot.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
	s.notifyLocked()
}

// Err returns the active error message, or "".
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Notify queues a transient notification for the UI.
func (s *Store) Notify(n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append(s.pending, n)
	s.notifyLocked()
}

// TakeNotifications drains and returns the queued notifications.
func (s *Store) TakeNotifications() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.pending
	s.pending = nil
	return out
}
