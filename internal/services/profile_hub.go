package services

import (
	"sync"

	"skillgrid/internal/models"
)

// ProfileHub fans out profile changes to live subscribers.
// A subscriber that is not keeping up misses updates; publishers never block.
type ProfileHub struct {
	mu   sync.RWMutex
	subs map[string]map[chan models.User]struct{}
}

func NewProfileHub() *ProfileHub {
	return &ProfileHub{subs: make(map[string]map[chan models.User]struct{})}
}

// Subscribe registers for updates of one profile. Call the returned func to stop.
func (h *ProfileHub) Subscribe(userID string) (<-chan models.User, func()) {
	ch := make(chan models.User, 4)

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan models.User]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], ch)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers usr to every subscriber of usr.ID.
func (h *ProfileHub) Publish(usr models.User) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[usr.ID] {
		select {
		case ch <- usr:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions for a profile.
func (h *ProfileHub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
