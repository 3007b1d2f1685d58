// Package http exposes the rough-idea flow over gin.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/makerhub/innovation-wizard/internal/api/http/respond"
	"github.com/makerhub/innovation-wizard/internal/auth"
	"github.com/makerhub/innovation-wizard/internal/catalyst"
	"github.com/makerhub/innovation-wizard/internal/wizard/async"
	"github.com/makerhub/innovation-wizard/internal/wizard/service"
)

type Handler struct {
	svc *catalyst.Service
}

func New(svc *catalyst.Service) *Handler {
	return &Handler{svc: svc}
}

// Register registers the catalyst routes under rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.mount)

	s := rg.Group("/sessions/:id")
	s.GET("", h.state)
	s.DELETE("", h.unmount)
	s.PATCH("/form", h.updateForm)
	s.POST("/analyze", h.analyze)
	s.POST("/proceed", h.proceed)
	s.POST("/reset", h.reset)
	s.POST("/promote", h.promote)
}

func owner(c *gin.Context) service.Owner {
	id := auth.CurrentIdentity(c)
	return service.Owner{ID: id.UID, DisplayName: id.DisplayName, Email: id.Email}
}

func writeError(c *gin.Context, err error) {
	if errors.Is(err, catalyst.ErrNothingToPromote) {
		respond.ErrorStatus(c, http.StatusConflict, err)
		return
	}
	respond.Error(c, err)
}

func (h *Handler) session(c *gin.Context) (*catalyst.Session, bool) {
	sess, err := h.svc.Session(c.Param("id"), owner(c).ID)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return sess, true
}

func (h *Handler) mount(c *gin.Context) {
	sess, err := h.svc.Mount(c.Request.Context(), owner(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, http.StatusCreated, gin.H{"session": sess.State()})
}

func (h *Handler) state(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"session": sess.State()})
}

func (h *Handler) unmount(c *gin.Context) {
	if err := h.svc.Unmount(c.Param("id"), owner(c).ID); err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, http.StatusOK, nil)
}

func (h *Handler) updateForm(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var patch catalyst.FormPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respond.BadRequest(c, "invalid body")
		return
	}
	st, err := sess.UpdateForm(c.Request.Context(), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"session": st})
}

func (h *Handler) analyze(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	tk, err := sess.Analyze(c.Request.Context())
	started(c, sess, tk, err)
}

func (h *Handler) proceed(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	tk, err := sess.ProceedWithNewIdea(c.Request.Context())
	started(c, sess, tk, err)
}

// started answers 202 right away, or 200 once the analysis resolved with ?wait=true.
func started(c *gin.Context, sess *catalyst.Session, tk async.Ticket, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusAccepted
	if c.Query("wait") == "true" {
		select {
		case <-tk.Done():
			status = http.StatusOK
		case <-c.Request.Context().Done():
			return
		}
	}
	respond.OK(c, status, gin.H{"session": sess.State(), "ticket": tk.Seq})
}

func (h *Handler) reset(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	st, err := sess.TryAnotherIdea(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"session": st})
}

func (h *Handler) promote(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	wiz, err := sess.Promote(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, http.StatusCreated, gin.H{"session": sess.State(), "wizard": wiz.State()})
}
