package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the interview API on an authenticated group.
func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	interviews := g.Group("/interviews")
	{
		interviews.POST("", h.ScheduleInterview)
		interviews.POST("/validate-slot", h.ValidateSlot)
		interviews.POST("/availability", h.AvailableSlots)
		interviews.POST("/search", h.SearchInterviews)

		interviews.GET("/:id", h.GetInterview)
		interviews.POST("/:id/reschedule", h.RescheduleInterview)
		interviews.POST("/:id/cancel", h.CancelInterview)
		interviews.POST("/:id/complete", h.CompleteInterview)
		interviews.POST("/:id/no-show", h.MarkNoShow)
		interviews.PUT("/:id/outcome", h.SetOutcome)
		interviews.PATCH("/:id/notes", h.PatchNotes)
		interviews.PUT("/:id/evaluation", h.SubmitEvaluation)
		interviews.GET("/:id/evaluations/summary", h.EvaluationSummary)
	}

	g.GET("/applications/:id/outcome", h.ApplicationOutcome)

	if h.Events != nil {
		g.GET("/events/recent", h.RecentEvents)
	}
}
