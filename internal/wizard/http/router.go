package http

import "github.com/gin-gonic/gin"

// Register registers the wizard routes under rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.mount)

	s := rg.Group("/sessions/:id")
	s.GET("", h.state)
	s.DELETE("", h.unmount)
	s.PATCH("/draft", h.updateDraft)
	s.POST("/next", h.next)
	s.POST("/previous", h.previous)
	s.POST("/goto", h.goTo)
	s.POST("/reset", h.startOver)

	s.POST("/classification", h.classify)
	s.PUT("/classification", h.customize)
	s.POST("/classification/retry", h.retry)
	s.POST("/classification/skip", h.skipClassification)

	s.POST("/team/suggestions", h.suggestTeam)
	s.PUT("/team", h.setTeamProject)
	s.POST("/team/members", h.addMember)
	s.DELETE("/team/members/:member_id", h.removeMember)
	s.POST("/team/members/:member_id/confirm", h.confirmMember)

	s.POST("/tags", h.addTag)
	s.DELETE("/tags/:tag", h.removeTag)
	s.POST("/milestones", h.addMilestone)
	s.POST("/milestones/:milestone_id/toggle", h.toggleMilestone)
	s.DELETE("/milestones/:milestone_id", h.removeMilestone)

	s.POST("/launch", h.launch)
	s.GET("/events", h.streamEvents)
}
