package handler

import (
	"strconv"

	"github.com/abhishek622/interviewflow/internal/apperr"
	"github.com/abhishek622/interviewflow/pkg/response"
	"github.com/gin-gonic/gin"
)

const maxRecentEvents = 200

// RecentEvents lists the latest published interview events, newest first.
// Only privileged staff may read the feed.
func (h *Handler) RecentEvents(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if !actor.IsPrivilegedStaff() {
		h.fail(c, "recent_events", apperr.Forbidden("read events", "privileged staff only"))
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.BadRequest(c, "invalid limit")
			return
		}
		limit = min(n, maxRecentEvents)
	}

	events, err := h.Events.Recent(c.Request.Context(), int64(limit))
	if err != nil {
		h.fail(c, "recent_events", err)
		return
	}
	response.OK(c, events)
}
