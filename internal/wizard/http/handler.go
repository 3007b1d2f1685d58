// Package http exposes wizard sessions over gin.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/makerhub/innovation-wizard/internal/api/http/respond"
	"github.com/makerhub/innovation-wizard/internal/auth"
	"github.com/makerhub/innovation-wizard/internal/notify"
	"github.com/makerhub/innovation-wizard/internal/wizard/service"
)

type Handler struct {
	svc    *service.Service
	events notify.Subscriber
}

// New creates a Handler. events may be nil, in which case the event stream is unavailable.
func New(svc *service.Service, events notify.Subscriber) *Handler {
	return &Handler{svc: svc, events: events}
}

func owner(c *gin.Context) service.Owner {
	id := auth.CurrentIdentity(c)
	return service.Owner{ID: id.UID, DisplayName: id.DisplayName, Email: id.Email}
}

// session resolves the :id session of the caller, writing the error response on failure.
func (h *Handler) session(c *gin.Context) (*service.Session, bool) {
	sess, err := h.svc.Session(c.Param("id"), owner(c).ID)
	if err != nil {
		respond.Error(c, err)
		return nil, false
	}
	return sess, true
}
