// Package respond writes the JSON envelopes shared by every handler:
// {"ok": true, ...} on success and {"ok": false, "error": "..."} on failure.
package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/makerhub/innovation-wizard/internal/logging"
	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
)

func OK(c *gin.Context, status int, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["ok"] = true
	c.JSON(status, body)
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}

// Status maps a domain error to its HTTP status. Unknown errors are 500.
func Status(err error) int {
	if _, ok := domain.AsValidation(err); ok {
		return http.StatusUnprocessableEntity
	}
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrMemberNotFound),
		errors.Is(err, domain.ErrMilestoneNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, domain.ErrStepLocked),
		errors.Is(err, domain.ErrRequestPending),
		errors.Is(err, domain.ErrSubmissionInFlight),
		errors.Is(err, domain.ErrNotOnLaunchStep),
		errors.Is(err, domain.ErrNothingToRetry),
		errors.Is(err, domain.ErrTeamFull),
		errors.Is(err, domain.ErrCannotRemoveCreator):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Error writes err with the status from Status. Validation errors carry the
// offending fields; internal errors are logged and never echoed.
func Error(c *gin.Context, err error) {
	ErrorStatus(c, Status(err), err)
}

// ErrorStatus writes err with an explicit status.
func ErrorStatus(c *gin.Context, status int, err error) {
	body := gin.H{"ok": false, "error": err.Error()}
	if ve, ok := domain.AsValidation(err); ok {
		body["step"] = ve.Step.String()
		body["fields"] = ve.Fields
	}
	if status >= http.StatusInternalServerError {
		logging.NewLogger(c.Request.Context()).LogErrorf(c.FullPath(), "%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		body["error"] = "internal error"
	}
	c.AbortWithStatusJSON(status, body)
}
