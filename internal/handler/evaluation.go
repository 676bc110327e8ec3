package handler

import (
	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/abhishek622/interviewflow/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubmitEvaluation creates or replaces the caller's evaluation
func (h *Handler) SubmitEvaluation(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.SubmitEvaluationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	eval, err := h.Engine.Evaluations.SubmitEvaluation(c.Request.Context(), actor, id, req)
	if err != nil {
		h.fail(c, "submit_evaluation", err)
		return
	}

	h.Logger.Info("submit_evaluation: evaluation saved",
		zap.String("interview_id", id.String()),
		zap.String("evaluation_id", eval.EvaluationID.String()),
	)
	response.OK(c, eval)
}

func (h *Handler) SetOutcome(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.SetOutcomeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	interview, err := h.Engine.Evaluations.SetInterviewOutcome(c.Request.Context(), actor, id, req.Outcome)
	if err != nil {
		h.fail(c, "set_outcome", err)
		return
	}
	response.OK(c, interview)
}

func (h *Handler) EvaluationSummary(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.Engine.Reporting.EvaluationSummary(c.Request.Context(), actor, id)
	if err != nil {
		h.fail(c, "evaluation_summary", err)
		return
	}
	response.OK(c, summary)
}
