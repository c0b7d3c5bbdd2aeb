package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"campus-complaints/internal/config"
	"campus-complaints/internal/database"
	"campus-complaints/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) (*gorm.DB, models.User) {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "session.db")})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	user := models.User{Username: "alice", PasswordHash: "x", Name: "Alice"}
	require.NoError(t, db.Create(&user).Error)
	return db, user
}

func TestGormStore_Lifecycle(t *testing.T) {
	db, user := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	sess, err := store.Create(ctx, user.ID, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.True(t, sess.Active(time.Now()))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)

	require.NoError(t, store.Revoke(ctx, sess.ID))
	got, err = store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, got.Active(time.Now()))

	_, err = store.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_FlashIsOneShot(t *testing.T) {
	db, user := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	sess, err := store.Create(ctx, user.ID, time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.SetFlash(ctx, sess.ID, "Complaint submitted successfully."))

	msg, err := store.PopFlash(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Complaint submitted successfully.", msg)

	msg, err = store.PopFlash(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, msg)

	_, err = store.PopFlash(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPurgeExpired(t *testing.T) {
	db, user := setupTestDB(t)
	store := NewGormStore(db)
	ctx := context.Background()

	_, err := store.Create(ctx, user.ID, -time.Minute)
	require.NoError(t, err)
	live, err := store.Create(ctx, user.ID, time.Hour)
	require.NoError(t, err)
	revoked, err := store.Create(ctx, user.ID, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Revoke(ctx, revoked.ID))

	n, err := PurgeExpired(ctx, db, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = store.Get(ctx, live.ID)
	assert.NoError(t, err)
}

func newTestContext(req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func TestManager_StartResolveEnd(t *testing.T) {
	db, user := setupTestDB(t)
	m := NewManager(NewGormStore(db), "test-secret", "", 0, false)
	assert.Equal(t, "cc_session", m.CookieName)
	assert.Equal(t, 24*time.Hour, m.TTL)

	c, w := newTestContext(httptest.NewRequest(http.MethodPost, "/login", nil))
	sess, err := m.Start(c, user.ID)
	require.NoError(t, err)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "cc_session", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 24*60*60, cookie.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	c, _ = newTestContext(req)
	got, err := m.Resolve(c)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)

	req = httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	c, w = newTestContext(req)
	require.NoError(t, m.End(c))
	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.True(t, cleared[0].MaxAge < 0)

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	c, _ = newTestContext(req)
	_, err = m.Resolve(c)
	assert.ErrorIs(t, err, ErrNotFound, "revoked session must not resolve")
}

func TestManager_ResolveRejectsForeignToken(t *testing.T) {
	db, user := setupTestDB(t)
	issuer := NewManager(NewGormStore(db), "secret-a", "", time.Hour, false)
	verifier := NewManager(NewGormStore(db), "secret-b", "", time.Hour, false)

	c, w := newTestContext(httptest.NewRequest(http.MethodPost, "/login", nil))
	_, err := issuer.Start(c, user.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(w.Result().Cookies()[0])
	c, _ = newTestContext(req)
	_, err = verifier.Resolve(c)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_EndWithoutCookie(t *testing.T) {
	db, _ := setupTestDB(t)
	m := NewManager(NewGormStore(db), "s", "", time.Hour, false)

	c, w := newTestContext(httptest.NewRequest(http.MethodGet, "/logout", nil))
	assert.NoError(t, m.End(c))
	assert.Len(t, w.Result().Cookies(), 1, "cookie is cleared unconditionally")
}
