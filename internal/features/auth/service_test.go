package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"laboratorio3d.cl/rewards/internal/common"
	"laboratorio3d.cl/rewards/internal/config"
	"laboratorio3d.cl/rewards/internal/features/users"
	"laboratorio3d.cl/rewards/internal/web"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		SessionTTL:       24 * time.Hour,
		LoginMaxAttempts: 3,
		LoginLockWindow:  time.Hour,
	}
}

func newTestService(t *testing.T, cache SessionCache) (*Service, *MockStore, *MockUserFinder) {
	cont := gomock.NewController(t)
	store := NewMockStore(cont)
	finder := NewMockUserFinder(cont)

	svc := NewService(store, finder, cache, testConfig())
	svc.now = func() time.Time { return fixedNow }
	return svc, store, finder
}

func testUser(t *testing.T, password string) *users.User {
	hash, err := common.HashPassword(password)
	require.NoError(t, err)
	return &users.User{ID: 7, Email: "ana@lab3d.cl", PasswordHash: hash, Role: users.RoleCustomer, Active: true}
}

func TestLoginSuccess(t *testing.T) {
	svc, store, finder := newTestService(t, nil)
	u := testUser(t, "correcta123")

	store.EXPECT().CountRecentFailures(gomock.Any(), "ana@lab3d.cl", fixedNow.Add(-time.Hour)).Return(0, nil)
	finder.EXPECT().GetByEmail(gomock.Any(), "ana@lab3d.cl").Return(u, nil)
	store.EXPECT().LogAttempt(gomock.Any(), "ana@lab3d.cl", true).Return(nil)
	store.EXPECT().CreateSession(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s *Session) error {
		require.Equal(t, int64(7), s.UserID)
		require.Equal(t, fixedNow.Add(24*time.Hour), s.ExpiresAt)
		return nil
	})

	res, err := svc.Login(context.Background(), LoginInput{Email: " ANA@lab3d.cl", Password: "correcta123"})
	require.NoError(t, err)
	require.Len(t, res.Token, 43)
	require.Equal(t, fixedNow.Add(24*time.Hour), res.ExpiresAt)
	require.Equal(t, u, res.User)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, store, finder := newTestService(t, nil)

	store.EXPECT().CountRecentFailures(gomock.Any(), "ana@lab3d.cl", gomock.Any()).Return(1, nil)
	finder.EXPECT().GetByEmail(gomock.Any(), "ana@lab3d.cl").Return(testUser(t, "correcta123"), nil)
	store.EXPECT().LogAttempt(gomock.Any(), "ana@lab3d.cl", false).Return(nil)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ana@lab3d.cl", Password: "incorrecta"})
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, store, finder := newTestService(t, nil)

	store.EXPECT().CountRecentFailures(gomock.Any(), "nadie@lab3d.cl", gomock.Any()).Return(0, nil)
	finder.EXPECT().GetByEmail(gomock.Any(), "nadie@lab3d.cl").Return(nil, common.ErrUserNotFound)
	store.EXPECT().LogAttempt(gomock.Any(), "nadie@lab3d.cl", false).Return(nil)

	_, err := svc.Login(context.Background(), LoginInput{Email: "nadie@lab3d.cl", Password: "x"})
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestLoginLocked(t *testing.T) {
	svc, store, _ := newTestService(t, nil)

	store.EXPECT().CountRecentFailures(gomock.Any(), "ana@lab3d.cl", gomock.Any()).Return(3, nil)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ana@lab3d.cl", Password: "correcta123"})
	require.ErrorIs(t, err, common.ErrTooManyAttempts)
}

func TestLoginInactive(t *testing.T) {
	svc, store, finder := newTestService(t, nil)
	u := testUser(t, "correcta123")
	u.Active = false

	store.EXPECT().CountRecentFailures(gomock.Any(), gomock.Any(), gomock.Any()).Return(0, nil)
	finder.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(u, nil)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ana@lab3d.cl", Password: "correcta123"})
	require.ErrorIs(t, err, common.ErrUserInactive)
}

func TestAuthenticate(t *testing.T) {
	svc, store, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "")
	require.ErrorIs(t, err, common.ErrUnauthenticated)

	store.EXPECT().GetSession(gomock.Any(), "valid").Return(&SessionInfo{
		Session: Session{Token: "valid", UserID: 7, ExpiresAt: fixedNow.Add(time.Minute)},
		Email:   "ana@lab3d.cl",
		Role:    users.RoleAdmin,
		Active:  true,
	}, nil)
	p, err := svc.Authenticate(ctx, "valid")
	require.NoError(t, err)
	require.Equal(t, int64(7), p.UserID)
	require.True(t, p.IsAdmin())
	require.Equal(t, "valid", p.Token)

	store.EXPECT().GetSession(gomock.Any(), "unknown").Return(nil, common.ErrUnauthenticated)
	_, err = svc.Authenticate(ctx, "unknown")
	require.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestAuthenticateExpired(t *testing.T) {
	svc, store, _ := newTestService(t, nil)

	store.EXPECT().GetSession(gomock.Any(), "old").Return(&SessionInfo{
		Session: Session{Token: "old", UserID: 7, ExpiresAt: fixedNow},
		Active:  true,
	}, nil)
	store.EXPECT().DeleteSession(gomock.Any(), "old").Return(nil)

	_, err := svc.Authenticate(context.Background(), "old")
	require.ErrorIs(t, err, common.ErrSessionExpired)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	svc, store, _ := newTestService(t, nil)

	store.EXPECT().GetSession(gomock.Any(), "tok").Return(&SessionInfo{
		Session: Session{Token: "tok", UserID: 7, ExpiresAt: fixedNow.Add(time.Hour)},
		Active:  false,
	}, nil)

	_, err := svc.Authenticate(context.Background(), "tok")
	require.ErrorIs(t, err, common.ErrUserInactive)
}

func TestAuthenticateUsesCache(t *testing.T) {
	cont := gomock.NewController(t)
	cache := NewMockSessionCache(cont)
	svc, store, _ := newTestService(t, cache)
	ctx := context.Background()

	cached := &web.Principal{UserID: 9, Role: users.RoleCustomer, Token: "hit"}
	cache.EXPECT().Get(gomock.Any(), "hit").Return(cached, nil)

	p, err := svc.Authenticate(ctx, "hit")
	require.NoError(t, err)
	require.Equal(t, cached, p)

	// Промах кэша: читаем из БД и кладём в кэш
	expires := fixedNow.Add(time.Hour)
	cache.EXPECT().Get(gomock.Any(), "miss").Return(nil, errors.New("redis: nil"))
	store.EXPECT().GetSession(gomock.Any(), "miss").Return(&SessionInfo{
		Session: Session{Token: "miss", UserID: 3, ExpiresAt: expires},
		Role:    users.RoleCustomer,
		Active:  true,
	}, nil)
	cache.EXPECT().Set(gomock.Any(), "miss", gomock.Any(), expires).Return(nil)

	p, err = svc.Authenticate(ctx, "miss")
	require.NoError(t, err)
	require.Equal(t, int64(3), p.UserID)
}

func TestLogoutAndRevoke(t *testing.T) {
	cont := gomock.NewController(t)
	cache := NewMockSessionCache(cont)
	svc, store, _ := newTestService(t, cache)
	ctx := context.Background()

	store.EXPECT().DeleteSession(gomock.Any(), "tok").Return(nil)
	cache.EXPECT().Delete(gomock.Any(), "tok").Return(nil)
	require.NoError(t, svc.Logout(ctx, "tok"))

	store.EXPECT().DeleteUserSessions(gomock.Any(), int64(7)).Return([]string{"a", "b"}, nil)
	cache.EXPECT().Delete(gomock.Any(), "a", "b").Return(nil)
	require.NoError(t, svc.RevokeUser(ctx, 7))

	// Без сессий кэш не трогаем
	store.EXPECT().DeleteUserSessions(gomock.Any(), int64(8)).Return(nil, nil)
	require.NoError(t, svc.RevokeUser(ctx, 8))
}

func TestPurgeExpired(t *testing.T) {
	svc, store, _ := newTestService(t, nil)

	store.EXPECT().PurgeExpired(gomock.Any(), fixedNow).Return(int64(4), nil)
	store.EXPECT().PurgeAttempts(gomock.Any(), fixedNow.Add(-attemptsRetention)).Return(int64(10), nil)

	require.NoError(t, svc.PurgeExpired(context.Background()))
}
