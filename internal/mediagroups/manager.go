package mediagroups

import (
	"strconv"
	"sync"
	"time"
)

// DefaultTTL is how long an album id is remembered after its first message.
const DefaultTTL = time.Minute

// Tracker lets only the first message of each album through. Telegram
// delivers an album as separate messages sharing a media group id; a post
// carries a single photo, so the rest of the album is dropped.
type Tracker struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

// NewTracker creates a Tracker. A non-positive ttl means DefaultTTL.
func NewTracker(ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tracker{seen: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

// First reports whether this is the first message of groupID from userID
// within the ttl. Messages outside an album always pass.
func (t *Tracker) First(userID int64, groupID string) bool {
	if groupID == "" {
		return true
	}
	key := strconv.FormatInt(userID, 10) + ":" + groupID

	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	for k, at := range t.seen {
		if now.Sub(at) > t.ttl {
			delete(t.seen, k)
		}
	}
	if _, ok := t.seen[key]; ok {
		return false
	}
	t.seen[key] = now
	return true
}

// Len returns the number of albums currently remembered.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}
