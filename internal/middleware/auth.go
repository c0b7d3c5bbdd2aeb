package middleware

import (
	"context"
	"errors"
	"net/http"

	"campus-complaints/internal/models"
	"campus-complaints/internal/session"
	"campus-complaints/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const identityKey = "identity"

// Identity is the authenticated principal of a request.
type Identity struct {
	User      *models.User
	SessionID string
}

// UserLookup resolves the owner of a session.
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// LoadIdentity resolves the session cookie once per request and stores the
// Identity in the context. Requests without a usable session continue
// anonymously; a stale cookie is cleared.
func LoadIdentity(sessions *session.Manager, users UserLookup, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := c.Cookie(sessions.CookieName); err != nil {
			c.Next()
			return
		}

		sess, err := sessions.Resolve(c)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) {
				log.Error().Err(err).Msg("resolve session")
			}
			sessions.Clear(c)
			c.Next()
			return
		}

		user, err := users.GetByID(c.Request.Context(), sess.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sessions.Clear(c)
			c.Next()
			return
		}
		if err != nil {
			// keep the cookie; the next request may succeed
			log.Error().Err(err).Uint("user_id", sess.UserID).Msg("load session user")
			c.Next()
			return
		}

		c.Set(identityKey, &Identity{User: user, SessionID: sess.ID})
		c.Next()
	}
}

// CurrentIdentity returns the identity loaded for this request, or nil.
func CurrentIdentity(c *gin.Context) *Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*Identity)
	return id
}

// CurrentUser is a shortcut for CurrentIdentity(c).User.
func CurrentUser(c *gin.Context) *models.User {
	if id := CurrentIdentity(c); id != nil {
		return id.User
	}
	return nil
}

// RequireLogin redirects anonymous requests to /login.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentIdentity(c) == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin answers 403 for identities that cannot administer. It
// redirects anonymous requests like RequireLogin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := CurrentIdentity(c)
		if id == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		if !id.User.IsAdmin() {
			util.Denied(c, "")
			return
		}
		c.Next()
	}
}
