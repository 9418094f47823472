package sessions

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(ttl time.Duration) (*Registry, *time.Time) {
	r := NewRegistry(ttl)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	return r, &now
}

func TestRegistry_LoginThenActive(t *testing.T) {
	r, _ := newTestRegistry(2 * time.Hour)

	created := r.Login("actor-1", "alice")
	assert.Equal(t, "alice", created.Username)

	s, ok := r.Active("actor-1")
	require.True(t, ok)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, created.ExpiresAt, s.ExpiresAt)
}

func TestRegistry_ExpiryIsFixedAtLogin(t *testing.T) {
	r, now := newTestRegistry(2 * time.Hour)

	r.Login("actor-1", "alice")

	// activity does not slide the expiry
	*now = now.Add(time.Hour)
	s, ok := r.Active("actor-1")
	require.True(t, ok)
	assert.Equal(t, now.Add(time.Hour), s.ExpiresAt)

	// strictly past the TTL the session is gone
	*now = now.Add(time.Hour + time.Nanosecond)
	_, ok = r.Active("actor-1")
	assert.False(t, ok)
}

func TestRegistry_ActiveEvictsExpiredEntry(t *testing.T) {
	r, now := newTestRegistry(time.Minute)

	r.Login("actor-1", "alice")
	*now = now.Add(2 * time.Minute)

	_, ok := r.Active("actor-1")
	assert.False(t, ok)

	// idempotent on repeat calls after eviction
	_, ok = r.Active("actor-1")
	assert.False(t, ok)
	assert.Empty(t, r.byActor)
}

func TestRegistry_ReloginOverwrites(t *testing.T) {
	r, now := newTestRegistry(time.Hour)

	r.Login("actor-1", "alice")
	*now = now.Add(30 * time.Minute)
	r.Login("actor-1", "bob")

	s, ok := r.Active("actor-1")
	require.True(t, ok)
	assert.Equal(t, "bob", s.Username)
	assert.Equal(t, now.Add(time.Hour), s.ExpiresAt)
}

func TestRegistry_LogoutIsIdempotent(t *testing.T) {
	r, _ := newTestRegistry(time.Hour)

	r.Login("actor-1", "alice")
	r.Logout("actor-1")
	r.Logout("actor-1")

	_, ok := r.Active("actor-1")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentLoginsDoNotCorrupt(t *testing.T) {
	r := NewRegistry(time.Hour)

	const actors = 50
	var wg sync.WaitGroup
	for i := 0; i < actors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := fmt.Sprintf("actor-%d", i)
			user := fmt.Sprintf("user-%d", i)
			r.Login(actor, user)
			if _, ok := r.Active(actor); !ok {
				t.Errorf("session for %s lost", actor)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < actors; i++ {
		s, ok := r.Active(fmt.Sprintf("actor-%d", i))
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("user-%d", i), s.Username)
	}
}
