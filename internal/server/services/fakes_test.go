package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ddanshin/guildvault/internal/common"
	"github.com/ddanshin/guildvault/internal/dbx"
	"github.com/ddanshin/guildvault/internal/server/models"
	accessrepo "github.com/ddanshin/guildvault/internal/server/repositories/access"
	accountsrepo "github.com/ddanshin/guildvault/internal/server/repositories/accounts"
	usersrepo "github.com/ddanshin/guildvault/internal/server/repositories/users"
)

// --- helpers ---

func sampleTime() time.Time {
	return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// --- in-memory fakes ---

type pairKey struct {
	accountID int64
	username  string
}

type fakeUsersRepo struct {
	mu      sync.Mutex
	users   map[string][]byte // username -> passhash
	pending map[string]*models.PendingUser
	nextID  int64

	forcedErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		users:   make(map[string][]byte),
		pending: make(map[string]*models.PendingUser),
	}
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	hash, ok := f.users[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.User{Username: username, Passhash: hash}, nil
}

func (f *fakeUsersRepo) Exists(ctx context.Context, username string) (bool, error) {
	if f.forcedErr != nil {
		return false, f.forcedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[username]
	return ok, nil
}

func (f *fakeUsersRepo) CreatePending(ctx context.Context, p *models.PendingUser) (*models.PendingUser, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	f.pending[p.Username] = p
	return p, nil
}

func (f *fakeUsersRepo) PendingExists(ctx context.Context, username string) (bool, error) {
	if f.forcedErr != nil {
		return false, f.forcedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.pending[username]
	return ok, nil
}

func (f *fakeUsersRepo) ListPending(ctx context.Context) ([]models.PendingUser, error) {
	return nil, nil
}

func (f *fakeUsersRepo) PromotePending(ctx context.Context, ids []int64) error { return nil }
func (f *fakeUsersRepo) DeletePending(ctx context.Context, ids []int64) error  { return nil }

type fakeAccountsRepo struct {
	mu       sync.Mutex
	accounts map[int64]*models.Account
	pending  []*models.PendingAccount
	nextID   int64

	forcedErr error
}

func newFakeAccountsRepo() *fakeAccountsRepo {
	return &fakeAccountsRepo{accounts: make(map[int64]*models.Account)}
}

func (f *fakeAccountsRepo) addAccount(id int64, uploader, game string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[id] = &models.Account{ID: id, UploaderUsername: uploader, Game: game}
}

func (f *fakeAccountsRepo) GetOwned(ctx context.Context, id int64, uploader string) (*models.Account, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok || a.UploaderUsername != uploader {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (f *fakeAccountsRepo) ListSharedWith(ctx context.Context, username string) ([]models.Account, error) {
	return nil, f.forcedErr
}

func (f *fakeAccountsRepo) CreatePending(ctx context.Context, p *models.PendingAccount) (*models.PendingAccount, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = f.nextID
	f.pending = append(f.pending, p)
	return p, nil
}

func (f *fakeAccountsRepo) ListPending(ctx context.Context) ([]models.PendingAccount, error) {
	return nil, nil
}

func (f *fakeAccountsRepo) PromotePending(ctx context.Context, ids []int64) error { return nil }
func (f *fakeAccountsRepo) DeletePending(ctx context.Context, ids []int64) error  { return nil }

type fakeAccessRepo struct {
	mu       sync.Mutex
	requests map[pairKey]*models.AccessRequest
	grants   map[pairKey]*models.AccessGrant
	nextID   int64

	forcedErr error
}

func newFakeAccessRepo() *fakeAccessRepo {
	return &fakeAccessRepo{
		requests: make(map[pairKey]*models.AccessRequest),
		grants:   make(map[pairKey]*models.AccessGrant),
	}
}

func (f *fakeAccessRepo) CreateRequest(ctx context.Context, r *models.AccessRequest) (*models.AccessRequest, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r.ID = f.nextID
	f.requests[pairKey{r.AccountID, r.Username}] = r
	return r, nil
}

func (f *fakeAccessRepo) GetRequest(ctx context.Context, accountID int64, username string) (*models.AccessRequest, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[pairKey{accountID, username}]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r, nil
}

func (f *fakeAccessRepo) DeleteRequest(ctx context.Context, id int64) (int64, error) {
	if f.forcedErr != nil {
		return 0, f.forcedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, r := range f.requests {
		if r.ID == id {
			delete(f.requests, k)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeAccessRepo) CreateGrant(ctx context.Context, g *models.AccessGrant) (*models.AccessGrant, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pairKey{g.AccountID, g.Username}
	if _, ok := f.grants[key]; ok {
		return nil, fmt.Errorf("duplicate grant for %v", key)
	}
	f.nextID++
	g.ID = f.nextID
	f.grants[key] = g
	return g, nil
}

func (f *fakeAccessRepo) GrantExists(ctx context.Context, accountID int64, username string) (bool, error) {
	if f.forcedErr != nil {
		return false, f.forcedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.grants[pairKey{accountID, username}]
	return ok, nil
}

func (f *fakeAccessRepo) ListRequestedAccountIDs(ctx context.Context, username string) ([]int64, error) {
	if f.forcedErr != nil {
		return nil, f.forcedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for k := range f.requests {
		if k.username == username {
			ids = append(ids, k.accountID)
		}
	}
	return ids, nil
}

func (f *fakeAccessRepo) State(ctx context.Context, accountID int64, username string) (models.RelationState, error) {
	if f.forcedErr != nil {
		return models.NoRelation, f.forcedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pairKey{accountID, username}
	if _, ok := f.grants[key]; ok {
		return models.Granted, nil
	}
	if _, ok := f.requests[key]; ok {
		return models.Requested, nil
	}
	return models.NoRelation, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	a *fakeAccountsRepo
	x *fakeAccessRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: newFakeUsersRepo(),
		a: newFakeAccountsRepo(),
		x: newFakeAccessRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accountsrepo.Repository { return m.a }
func (m *fakeRepoManager) Access(db dbx.DBTX) accessrepo.Repository     { return m.x }

// fakeMessenger records direct sends and can fail on demand.
type fakeMessenger struct {
	mu    sync.Mutex
	sends []struct {
		Username string
		Message  string
	}
	err error
}

func (f *fakeMessenger) SendDirect(ctx context.Context, username, message string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, struct {
		Username string
		Message  string
	}{username, message})
	return nil
}
