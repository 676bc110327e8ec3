package handler

import (
	"errors"
	"io"

	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/abhishek622/interviewflow/pkg/response"
	"github.com/gin-gonic/gin"
)

// GetInterview returns the interview detail, redacted for the caller
func (h *Handler) GetInterview(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.Engine.Reporting.GetInterviewDetail(c.Request.Context(), actor, id)
	if err != nil {
		h.fail(c, "get_interview", err)
		return
	}
	response.OK(c, detail)
}

func (h *Handler) SearchInterviews(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req model.SearchInterviewsReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "invalid request body")
		return
	}

	page, err := h.Engine.Reporting.SearchInterviews(c.Request.Context(), actor, req)
	if err != nil {
		h.fail(c, "search_interviews", err)
		return
	}

	pageNo := 1
	if page.Limit > 0 {
		pageNo = page.Offset/page.Limit + 1
	}
	response.OKWithMeta(c, page.Items, &response.Meta{
		Page:     pageNo,
		PageSize: page.Limit,
		Total:    page.Total,
		HasNext:  page.HasNext,
	})
}

func (h *Handler) ApplicationOutcome(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	outcome, err := h.Engine.Reporting.ApplicationOutcome(c.Request.Context(), actor, id)
	if err != nil {
		h.fail(c, "application_outcome", err)
		return
	}
	response.OK(c, gin.H{"job_application_id": id, "outcome": outcome})
}
