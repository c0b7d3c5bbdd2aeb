package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"campus-complaints/internal/middleware"
	"campus-complaints/internal/models"
	"campus-complaints/internal/service"
	"campus-complaints/internal/util"

	"github.com/gin-gonic/gin"
)

// ComplaintHandler serves submission, the dashboard and the admin panel.
type ComplaintHandler struct {
	*View
	Complaints *service.ComplaintService
	// MaxBody caps a submission request body; zero means no cap.
	MaxBody int64
}

func NewComplaintHandler(view *View, complaints *service.ComplaintService, maxBody int64) *ComplaintHandler {
	return &ComplaintHandler{View: view, Complaints: complaints, MaxBody: maxBody}
}

const tooLargeMsg = "Photo is too large"

type submitForm struct {
	Title       string `form:"title"`
	Category    string `form:"category"`
	Description string `form:"description"`
	Email       string `form:"email"`
	Anonymous   string `form:"anonymous"`
}

func (f submitForm) anonymous() bool {
	return f.Anonymous == "on" || f.Anonymous == "true" || f.Anonymous == "1"
}

func (h *ComplaintHandler) SubmitPage(c *gin.Context) {
	h.renderSubmit(c, http.StatusOK, submitForm{}, "")
}

func (h *ComplaintHandler) renderSubmit(c *gin.Context, status int, form submitForm, msg string) {
	page := util.Page{
		"categories": h.Complaints.Categories,
		"form":       form,
	}
	if msg != "" {
		page["error"] = msg
	}
	h.RenderStatus(c, status, "submit.html", "Submit a Complaint", page)
}

// Submit creates a complaint from the multipart form; the optional image
// comes in the "photo" field.
func (h *ComplaintHandler) Submit(c *gin.Context) {
	var form submitForm
	if h.MaxBody > 0 {
		if c.Request.ContentLength > h.MaxBody {
			h.renderSubmit(c, http.StatusRequestEntityTooLarge, form, tooLargeMsg)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBody)
	}
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.renderSubmit(c, http.StatusRequestEntityTooLarge, form, tooLargeMsg)
			return
		}
		h.renderSubmit(c, http.StatusOK, form, "Submission failed")
		return
	}

	var photo *multipart.FileHeader
	fh, err := c.FormFile("photo")
	switch {
	case err == nil && fh.Size > 0:
		photo = fh
	case err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		h.renderSubmit(c, http.StatusOK, form, "Photo could not be read")
		return
	}

	_, err = h.Complaints.Create(c.Request.Context(), middleware.CurrentUser(c), service.CreateInput{
		Title:       form.Title,
		Category:    form.Category,
		Description: form.Description,
		Email:       form.Email,
		Anonymous:   form.anonymous(),
	}, photo)
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		h.renderSubmit(c, http.StatusOK, form, ve.Msg)
		return
	case err != nil:
		h.Fail(c, err, "create complaint")
		return
	}

	h.Flash(c, "Complaint submitted successfully.")
	c.Redirect(http.StatusFound, "/dashboard")
}

// Dashboard lists the complaints visible to the caller with their counts.
func (h *ComplaintHandler) Dashboard(c *gin.Context) {
	h.list(c, "dashboard.html", "My Complaints")
}

// Admin is the triage view over every complaint.
func (h *ComplaintHandler) Admin(c *gin.Context) {
	h.list(c, "admin.html", "Admin Panel")
}

func (h *ComplaintHandler) list(c *gin.Context, tmpl, title string) {
	viewer := middleware.CurrentUser(c)
	all, err := h.Complaints.List(c.Request.Context(), viewer)
	if err != nil {
		h.Fail(c, err, "list complaints")
		return
	}

	term := c.Query("q")
	status := c.Query("status")
	if _, err := models.ParseStatus(status); err != nil {
		status = ""
	}

	h.Render(c, tmpl, title, util.Page{
		"complaints": h.rows(service.Filter(all, term, status), viewer),
		"stats":      service.ComputeStats(all),
		"statuses":   models.Statuses,
		"q":          term,
		"status":     status,
	})
}

type updateForm struct {
	Status string `form:"status"`
	Reply  string `form:"reply"`
}

// Update applies an admin's status and reply. Unknown numbers are ignored.
func (h *ComplaintHandler) Update(c *gin.Context) {
	number, ok := parseNumber(c)
	if !ok {
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	var form updateForm
	_ = c.ShouldBind(&form)

	found, err := h.Complaints.Update(c.Request.Context(), number, form.Status, form.Reply)
	if err != nil {
		h.Fail(c, err, "update complaint")
		return
	}
	if found {
		h.Flash(c, "Complaint #"+strconv.FormatUint(uint64(number), 10)+" updated.")
	}
	c.Redirect(http.StatusFound, "/admin")
}

// Delete removes a complaint for its owner or an admin.
func (h *ComplaintHandler) Delete(c *gin.Context) {
	number, ok := parseNumber(c)
	if !ok {
		util.NotFound(c, "Complaint not found.")
		return
	}

	err := h.Complaints.Delete(c.Request.Context(), middleware.CurrentUser(c), number)
	switch {
	case errors.Is(err, service.ErrNotFound):
		util.NotFound(c, "Complaint not found.")
		return
	case errors.Is(err, service.ErrForbidden):
		util.Denied(c, "You can only delete your own complaints.")
		return
	case err != nil:
		h.Fail(c, err, "delete complaint")
		return
	}

	h.Flash(c, "Complaint deleted.")
	c.Redirect(http.StatusFound, "/dashboard")
}

func parseNumber(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
