package handler

import (
	"errors"
	"net/http"

	"campus-complaints/internal/middleware"
	"campus-complaints/internal/models"
	"campus-complaints/internal/service"
	"campus-complaints/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves the landing page and account/session forms.
type AuthHandler struct {
	*View
	Users *service.UserService
}

func NewAuthHandler(view *View, users *service.UserService) *AuthHandler {
	return &AuthHandler{View: view, Users: users}
}

// ---------- landing ----------

func (h *AuthHandler) Index(c *gin.Context) {
	if middleware.CurrentIdentity(c) != nil {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	h.Render(c, "index.html", "Welcome", nil)
}

// ---------- register ----------

type registerForm struct {
	Name     string `form:"name"`
	Username string `form:"username"`
	Password string `form:"password"`
	Email    string `form:"email"`
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	h.Render(c, "register.html", "Register", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderRegister(c, form, "Registration failed")
		return
	}

	user, err := h.Users.Register(c.Request.Context(), service.RegisterInput{
		Name:     form.Name,
		Username: form.Username,
		Password: form.Password,
		Email:    form.Email,
	})
	var ve *service.ValidationError
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		h.renderRegister(c, form, "Username already exists")
		return
	case errors.As(err, &ve):
		h.renderRegister(c, form, ve.Msg)
		return
	case err != nil:
		h.Fail(c, err, "register")
		return
	}

	if err := h.open(c, user); err != nil {
		h.Fail(c, err, "start session")
		return
	}
	h.Log.Info().Str("username", user.Username).Msg("user registered")
	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *AuthHandler) renderRegister(c *gin.Context, form registerForm, msg string) {
	form.Password = ""
	h.Render(c, "register.html", "Register", util.Page{
		"error": msg,
		"form":  form,
	})
}

// ---------- login ----------

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	h.Render(c, "login.html", "Login", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	_ = c.ShouldBind(&form)

	user, err := h.Users.Authenticate(c.Request.Context(), form.Username, form.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.Render(c, "login.html", "Login", util.Page{
			"error":    "Invalid username or password",
			"username": form.Username,
		})
		return
	}
	if err != nil {
		h.Fail(c, err, "login")
		return
	}

	if err := h.open(c, user); err != nil {
		h.Fail(c, err, "start session")
		return
	}
	if user.IsAdmin() {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// open replaces any session the browser already holds with a new one for
// user.
func (h *AuthHandler) open(c *gin.Context, user *models.User) error {
	if id := middleware.CurrentIdentity(c); id != nil {
		if err := h.Sessions.Store.Revoke(c.Request.Context(), id.SessionID); err != nil {
			h.Log.Warn().Err(err).Msg("revoke previous session")
		}
	}
	_, err := h.Sessions.Start(c, user.ID)
	return err
}

// ---------- logout ----------

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Sessions.End(c); err != nil {
		h.Log.Warn().Err(err).Msg("revoke session")
	}
	c.Redirect(http.StatusFound, "/")
}
