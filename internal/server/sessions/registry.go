// Package sessions maps chat actor ids to authenticated identities with a
// fixed time-to-live. The registry is deliberately process-local: it starts
// empty, is discarded on shutdown, and is never persisted.
package sessions

import (
	"sync"
	"time"

	"github.com/ddanshin/guildvault/internal/server/models"
)

// Registry is the shared session table. All methods are safe for concurrent
// use; a single mutex keeps login, lookup, and logout linearizable.
type Registry struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	byActor map[string]models.Session
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		ttl:     ttl,
		now:     time.Now,
		byActor: make(map[string]models.Session),
	}
}

// Login unconditionally creates or overwrites the session for actorID with
// expiry fixed at now + TTL. It does not verify credentials; that is the
// caller's job before it gets here.
func (r *Registry) Login(actorID, username string) models.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := models.Session{Username: username, ExpiresAt: r.now().Add(r.ttl)}
	r.byActor[actorID] = s
	return s
}

// Active returns the live session for actorID. An expired entry is evicted
// on first sight and reported as absent; there is no background sweep.
func (r *Registry) Active(actorID string) (models.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byActor[actorID]
	if !ok {
		return models.Session{}, false
	}
	if !s.ExpiresAt.After(r.now()) {
		delete(r.byActor, actorID)
		return models.Session{}, false
	}
	return s, true
}

// Logout removes any session for actorID; absent entries are a no-op.
func (r *Registry) Logout(actorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byActor, actorID)
}
