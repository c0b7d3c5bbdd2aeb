package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"campus-complaints/internal/models"
	"campus-complaints/internal/util"

	"github.com/gin-gonic/gin"
)

// Manager ties the signed cookie to a Store record.
type Manager struct {
	Store      Store
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

func NewManager(store Store, secret, cookieName string, ttl time.Duration, secure bool) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if cookieName == "" {
		cookieName = "cc_session"
	}
	return &Manager{Store: store, Secret: secret, CookieName: cookieName, TTL: ttl, Secure: secure}
}

// Start creates a session for userID and sets the cookie.
func (m *Manager) Start(c *gin.Context, userID uint) (*models.Session, error) {
	sess, err := m.Store.Create(c.Request.Context(), userID, m.TTL)
	if err != nil {
		return nil, err
	}
	token, err := util.GenerateToken(m.Secret, sess.ID, m.TTL)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	m.setCookie(c, token, int(m.TTL.Seconds()))
	return sess, nil
}

// Resolve returns the active session named by the request cookie. A
// missing, invalid, expired or revoked session yields ErrNotFound.
func (m *Manager) Resolve(c *gin.Context) (*models.Session, error) {
	token, err := c.Cookie(m.CookieName)
	if err != nil || token == "" {
		return nil, ErrNotFound
	}
	claims, err := util.ParseToken(m.Secret, token)
	if err != nil {
		return nil, ErrNotFound
	}
	sess, err := m.Store.Get(c.Request.Context(), claims.SessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Active(time.Now()) {
		return nil, ErrNotFound
	}
	return sess, nil
}

// End revokes the current session if there is one and always clears the
// cookie.
func (m *Manager) End(c *gin.Context) error {
	var revokeErr error
	if token, err := c.Cookie(m.CookieName); err == nil && token != "" {
		if claims, err := util.ParseToken(m.Secret, token); err == nil {
			revokeErr = m.Store.Revoke(c.Request.Context(), claims.SessionID)
		}
	}
	m.Clear(c)
	return revokeErr
}

// Clear drops the cookie without touching the store.
func (m *Manager) Clear(c *gin.Context) {
	m.setCookie(c, "", -1)
}

func (m *Manager) Flash(ctx context.Context, sessionID, msg string) error {
	return m.Store.SetFlash(ctx, sessionID, msg)
}

// TakeFlash returns and clears the pending message; errors read as none.
func (m *Manager) TakeFlash(ctx context.Context, sessionID string) string {
	msg, err := m.Store.PopFlash(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return ""
	}
	return msg
}

func (m *Manager) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.CookieName, value, maxAge, "/", "", m.Secure, true)
}
