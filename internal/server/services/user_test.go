package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ddanshin/guildvault/internal/common"
	"github.com/ddanshin/guildvault/internal/secret"
	"github.com/ddanshin/guildvault/internal/server/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T, rm *fakeRepoManager) (*UserService, *sessions.Registry) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	registry := sessions.NewRegistry(2 * time.Hour)
	s := NewUserService(db, rm, secret.NewHasherWithCost(bcrypt.MinCost), registry)
	return s, registry
}

func mustHash(t *testing.T, plain string) []byte {
	t.Helper()
	h, err := secret.NewHasherWithCost(bcrypt.MinCost).Hash(plain)
	require.NoError(t, err)
	return h
}

func TestUserService_Register_Enqueues(t *testing.T) {
	rm := newFakeRepoManager()
	s, _ := newUserService(t, rm)

	err := s.Register(context.Background(), "actor-1", "alice", "pw")
	require.NoError(t, err)

	p, ok := rm.u.pending["alice"]
	require.True(t, ok)
	assert.Equal(t, "actor-1", p.RequestedBy)
	assert.NotEqual(t, []byte("pw"), p.Passhash)
}

func TestUserService_Register_DuplicateActive(t *testing.T) {
	rm := newFakeRepoManager()
	rm.u.users["alice"] = mustHash(t, "pw")
	s, _ := newUserService(t, rm)

	err := s.Register(context.Background(), "actor-1", "alice", "pw")
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.ErrorIs(t, err, common.ErrorDuplicate)
	assert.Empty(t, rm.u.pending)
}

func TestUserService_Register_DuplicatePending(t *testing.T) {
	rm := newFakeRepoManager()
	s, _ := newUserService(t, rm)

	require.NoError(t, s.Register(context.Background(), "actor-1", "alice", "pw"))

	err := s.Register(context.Background(), "actor-2", "alice", "other")
	assert.ErrorIs(t, err, ErrRegistrationPending)
	assert.ErrorIs(t, err, common.ErrorDuplicate)
}

func TestUserService_Register_StoreFailure(t *testing.T) {
	rm := newFakeRepoManager()
	rm.u.forcedErr = errors.New("connection lost")
	s, _ := newUserService(t, rm)

	err := s.Register(context.Background(), "actor-1", "alice", "pw")
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.ErrorContains(t, err, "connection lost")
}

func TestUserService_Login_Success(t *testing.T) {
	rm := newFakeRepoManager()
	rm.u.users["alice"] = mustHash(t, "pw")
	s, registry := newUserService(t, rm)

	session, err := s.Login(context.Background(), "actor-1", "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Username)

	got, ok := registry.Active("actor-1")
	require.True(t, ok)
	assert.Equal(t, "alice", got.Username)
}

func TestUserService_Login_UnknownIdentity(t *testing.T) {
	rm := newFakeRepoManager()
	s, registry := newUserService(t, rm)

	_, err := s.Login(context.Background(), "actor-1", "nobody", "pw")
	assert.ErrorIs(t, err, ErrUnknownIdentity)

	_, ok := registry.Active("actor-1")
	assert.False(t, ok)
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	rm := newFakeRepoManager()
	rm.u.users["alice"] = mustHash(t, "pw")
	s, registry := newUserService(t, rm)

	_, err := s.Login(context.Background(), "actor-1", "alice", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, ok := registry.Active("actor-1")
	assert.False(t, ok)
}

func TestUserService_Logout(t *testing.T) {
	rm := newFakeRepoManager()
	rm.u.users["alice"] = mustHash(t, "pw")
	s, registry := newUserService(t, rm)

	_, err := s.Login(context.Background(), "actor-1", "alice", "pw")
	require.NoError(t, err)

	s.Logout("actor-1")
	_, ok := registry.Active("actor-1")
	assert.False(t, ok)

	// idempotent
	s.Logout("actor-1")
}
