package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/makerhub/innovation-wizard/internal/api/http/respond"
	"github.com/makerhub/innovation-wizard/internal/wizard/async"
	"github.com/makerhub/innovation-wizard/internal/wizard/domain"
	"github.com/makerhub/innovation-wizard/internal/wizard/service"
)

func (h *Handler) mount(c *gin.Context) {
	sess, err := h.svc.Mount(c.Request.Context(), owner(c))
	if err != nil {
		respond.Error(c, err)
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
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, nil)
}

// reply writes the outcome of a synchronous session operation.
func reply(c *gin.Context, st service.State, err error) {
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusOK, gin.H{"session": st})
}

// started writes the outcome of an operation that kicked off an upstream call.
// With ?wait=true the response is held until the call resolved.
func started(c *gin.Context, sess *service.Session, tk async.Ticket, err error) {
	if err != nil {
		respond.Error(c, err)
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

func (h *Handler) updateDraft(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var patch domain.DraftPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respond.BadRequest(c, "invalid body")
		return
	}
	st, err := sess.Update(c.Request.Context(), patch)
	reply(c, st, err)
}

func (h *Handler) next(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	st, err := sess.Next(c.Request.Context())
	reply(c, st, err)
}

func (h *Handler) previous(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	st, err := sess.Previous(c.Request.Context())
	reply(c, st, err)
}

type goToReq struct {
	Step int `json:"step" binding:"required"`
}

func (h *Handler) goTo(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req goToReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "step is required")
		return
	}
	st, err := sess.GoTo(c.Request.Context(), req.Step)
	reply(c, st, err)
}

func (h *Handler) startOver(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	st, err := sess.StartOver(c.Request.Context())
	reply(c, st, err)
}

func (h *Handler) classify(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	tk, err := sess.Classify(c.Request.Context())
	started(c, sess, tk, err)
}

func (h *Handler) retry(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	tk, err := sess.Retry(c.Request.Context())
	started(c, sess, tk, err)
}

func (h *Handler) skipClassification(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	st, err := sess.ContinueWithoutAI(c.Request.Context())
	reply(c, st, err)
}

func (h *Handler) customize(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req service.CustomClassification
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid body")
		return
	}
	st, err := sess.CustomizeClassification(c.Request.Context(), req)
	reply(c, st, err)
}

func (h *Handler) suggestTeam(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	tk, err := sess.SuggestTeam(c.Request.Context())
	started(c, sess, tk, err)
}

type teamProjectReq struct {
	IsTeamProject *bool `json:"isTeamProject" binding:"required"`
}

func (h *Handler) setTeamProject(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req teamProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "isTeamProject is required")
		return
	}
	st, err := sess.SetTeamProject(c.Request.Context(), *req.IsTeamProject)
	reply(c, st, err)
}

func (h *Handler) addMember(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var m domain.TeamMember
	if err := c.ShouldBindJSON(&m); err != nil {
		respond.BadRequest(c, "invalid body")
		return
	}
	added, st, err := sess.AddTeamMember(c.Request.Context(), m)
	if err != nil {
		respond.Error(c, err)
		return
	}
	status := http.StatusCreated
	if !added {
		status = http.StatusOK
	}
	respond.OK(c, status, gin.H{"added": added, "session": st})
}

func (h *Handler) removeMember(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	st, err := sess.RemoveTeamMember(c.Request.Context(), c.Param("member_id"))
	reply(c, st, err)
}

func (h *Handler) confirmMember(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	st, err := sess.ConfirmTeamMember(c.Request.Context(), c.Param("member_id"))
	reply(c, st, err)
}

type tagReq struct {
	Tag string `json:"tag"`
}

func (h *Handler) addTag(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req tagReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid body")
		return
	}
	st, err := sess.AddTag(c.Request.Context(), req.Tag)
	reply(c, st, err)
}

func (h *Handler) removeTag(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	st, err := sess.RemoveTag(c.Request.Context(), c.Param("tag"))
	reply(c, st, err)
}

func (h *Handler) addMilestone(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var m domain.Milestone
	if err := c.ShouldBindJSON(&m); err != nil {
		respond.BadRequest(c, "invalid body")
		return
	}
	st, err := sess.AddMilestone(c.Request.Context(), m)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, http.StatusCreated, gin.H{"session": st})
}

func (h *Handler) toggleMilestone(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	st, err := sess.ToggleMilestone(c.Request.Context(), c.Param("milestone_id"))
	reply(c, st, err)
}

func (h *Handler) removeMilestone(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	st, err := sess.RemoveMilestone(c.Request.Context(), c.Param("milestone_id"))
	reply(c, st, err)
}

func (h *Handler) launch(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	tk, err := sess.Launch(c.Request.Context())
	started(c, sess, tk, err)
}
