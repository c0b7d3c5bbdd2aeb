package handler

import (
	"net/http"

	"campus-complaints/internal/middleware"
	"campus-complaints/internal/models"
	"campus-complaints/internal/service"
	"campus-complaints/internal/session"
	"campus-complaints/internal/storage"
	"campus-complaints/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// View renders pages with the data every page shares: app name, the current
// user and the pending flash message.
type View struct {
	AppName     string
	Sessions    *session.Manager
	Attachments storage.Attachments
	Log         zerolog.Logger
}

func (v *View) Render(c *gin.Context, name, title string, page util.Page) {
	v.RenderStatus(c, http.StatusOK, name, title, page)
}

func (v *View) RenderStatus(c *gin.Context, status int, name, title string, page util.Page) {
	if page == nil {
		page = util.Page{}
	}
	page["title"] = title
	page["appName"] = v.AppName
	if id := middleware.CurrentIdentity(c); id != nil {
		page["user"] = id.User
		if msg := v.Sessions.TakeFlash(c.Request.Context(), id.SessionID); msg != "" {
			page["flash"] = msg
		}
	}
	c.HTML(status, name, page)
}

// Flash queues msg for the next page the current session renders.
func (v *View) Flash(c *gin.Context, msg string) {
	id := middleware.CurrentIdentity(c)
	if id == nil {
		return
	}
	if err := v.Sessions.Flash(c.Request.Context(), id.SessionID, msg); err != nil {
		v.Log.Warn().Err(err).Msg("set flash")
	}
}

// Fail logs an unexpected error and renders the 500 page.
func (v *View) Fail(c *gin.Context, err error, msg string) {
	v.Log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
	_ = c.Error(err)
	util.ServerError(c)
}

type complaintRow struct {
	models.Complaint
	Search   string
	Contact  string
	PhotoURL string
	Mine     bool
}

func (v *View) rows(list []models.Complaint, viewer *models.User) []complaintRow {
	rows := make([]complaintRow, 0, len(list))
	for i := range list {
		r := complaintRow{
			Complaint: list[i],
			Search:    service.SearchText(&list[i]),
		}
		if r.Email != nil {
			r.Contact = *r.Email
		}
		if r.Photo != nil && v.Attachments != nil {
			r.PhotoURL = v.Attachments.URL(*r.Photo)
		}
		if viewer != nil {
			r.Mine = r.OwnedBy(viewer.ID)
		}
		rows = append(rows, r)
	}
	return rows
}
