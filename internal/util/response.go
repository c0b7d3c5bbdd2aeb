package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Page is the template data map passed to c.HTML.
type Page map[string]interface{}

// ErrorTemplate renders every explicit failure page.
const ErrorTemplate = "error.html"

// Error renders the shared error page with the given status and stops the
// handler chain.
func Error(c *gin.Context, httpStatus int, title, msg string) {
	c.HTML(httpStatus, ErrorTemplate, Page{
		"title":   title,
		"heading": title,
		"message": msg,
		"status":  httpStatus,
	})
	c.Abort()
}

// Denied is the authorization failure response: 403, no redirect.
func Denied(c *gin.Context, msg string) {
	if msg == "" {
		msg = "You do not have permission to access this page."
	}
	Error(c, http.StatusForbidden, "Access Denied", msg)
}

func NotFound(c *gin.Context, msg string) {
	if msg == "" {
		msg = "The page you are looking for does not exist."
	}
	Error(c, http.StatusNotFound, "Not Found", msg)
}

func ServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Something went wrong", "Please try again in a moment.")
}
