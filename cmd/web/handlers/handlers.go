// Package handlers holds the gin handlers of the web frontend. Every page is
// rendered on the server; actions follow post-redirect-get and report their
// result through the visitor's alert slot.
package handlers

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"

	"district-growth/cmd/internal/logger"
	"district-growth/cmd/web/dto"
	"district-growth/cmd/web/session"
	"district-growth/cmd/web/trace"
	"district-growth/cmd/web/views"
)

const htmlContentType = "text/html; charset=utf-8"

// csrfField is the hidden token input, empty when CSRF protection is off.
func csrfField(c *gin.Context) template.HTML {
	return csrf.TemplateField(c.Request)
}

// renderPage writes a full page with the visitor's pending alert.
func renderPage(c *gin.Context, v *views.Renderer, status int, name, title string, content any) {
	data := views.PageData{
		Title:   title,
		CSRF:    csrfField(c),
		Admin:   name == views.PageAdminDashboard,
		Content: content,
	}
	if msg, ok := session.Current(c).Alert.Pop(); ok {
		data.Alert = &msg
	}

	var buf bytes.Buffer
	if err := v.Page(&buf, name, data); err != nil {
		fail(c, "render page", err, logger.Fields{"page": name})
		return
	}
	c.Data(status, htmlContentType, buf.Bytes())
}

// fail logs err and answers 500 with a plain body.
func fail(c *gin.Context, what string, err error, fields logger.Fields) {
	if fields == nil {
		fields = logger.Fields{}
	}
	fields["error"] = err.Error()
	fields["path"] = c.Request.URL.Path
	fields["request_id"] = trace.RequestIDFromContext(c.Request.Context())
	logger.ErrorWithFields(what+" failed", fields)
	_ = c.Error(err)
	c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
}

func redirect(c *gin.Context, to string) {
	c.Redirect(http.StatusSeeOther, to)
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

// options marks the option whose value equals selected.
func options(selected string, pairs ...string) []dto.Option {
	opts := make([]dto.Option, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		opts = append(opts, dto.Option{Value: pairs[i], Label: pairs[i+1], Selected: pairs[i] == selected})
	}
	return opts
}
