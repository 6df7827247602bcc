package user

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvel/storefront/internal/domain/lifecycle"
)

type mockUserRepo struct {
	byID map[string]*User
}

func newMockRepo() *mockUserRepo {
	return &mockUserRepo{byID: make(map[string]*User)}
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range m.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(context.Background(), username)
	return err == nil, nil
}

func (m *mockUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) Update(_ context.Context, u *User) error {
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) SetLifecycle(_ context.Context, id string, state lifecycle.State) error {
	u, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.Lifecycle = state
	return nil
}

// fakeHasher reverses nothing; it prefixes so Compare can verify.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "h:" + password, nil }

func (fakeHasher) Compare(hash, password string) error {
	if hash != "h:"+password {
		return errors.New("mismatch")
	}
	return nil
}

func newTestService() (*Service, *mockUserRepo) {
	repo := newMockRepo()
	return NewService(repo, fakeHasher{}), repo
}

func register(t *testing.T, svc *Service, username string) *User {
	t.Helper()
	u, err := svc.Register(context.Background(), username, username+"@example.com", "s3cret", "")
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService()

	u, err := svc.Register(context.Background(), "jo", "JO@Example.com", "pw", "Jo Bloggs")
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", u.Email, "email is normalized")
	assert.Equal(t, "h:pw", u.PasswordHash)
	assert.Equal(t, lifecycle.Active, u.Lifecycle)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _ := newTestService()
	register(t, svc, "jo")

	_, err := svc.Register(context.Background(), "jo", "other@example.com", "pw", "")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	register(t, svc, "jo")

	_, err := svc.Register(context.Background(), "another", "jo@example.com", "pw", "")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), "", "a@b.c", "pw", "")
	require.ErrorIs(t, err, ErrMissingFields)
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	register(t, svc, "jo")

	u, err := svc.Authenticate(context.Background(), "jo", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "jo", u.Username)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc, _ := newTestService()
	register(t, svc, "jo")

	_, err := svc.Authenticate(context.Background(), "jo", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Authenticate(context.Background(), "ghost", "pw")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_DisabledAccount(t *testing.T) {
	svc, _ := newTestService()
	u := register(t, svc, "jo")

	require.NoError(t, svc.Disable(context.Background(), u.ID))

	_, err := svc.Authenticate(context.Background(), "jo", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLifecycle_DeletedIsTerminal(t *testing.T) {
	svc, _ := newTestService()
	u := register(t, svc, "jo")
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, u.ID))

	err := svc.Enable(ctx, u.ID)
	var trErr *lifecycle.TransitionError
	require.ErrorAs(t, err, &trErr)
}
