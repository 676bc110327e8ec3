package handler

import (
	"errors"
	"io"

	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/abhishek622/interviewflow/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScheduleInterview creates the next round for a job application
func (h *Handler) ScheduleInterview(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req model.ScheduleInterviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	interview, err := h.Engine.Lifecycle.Schedule(c.Request.Context(), actor, req)
	if err != nil {
		h.fail(c, "schedule_interview", err)
		return
	}

	h.Logger.Info("schedule_interview: interview scheduled",
		zap.String("interview_id", interview.InterviewID.String()),
		zap.String("job_application_id", interview.JobApplicationID.String()),
		zap.Int("round", interview.RoundNumber),
	)

	response.Created(c, interview)
}

func (h *Handler) RescheduleInterview(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.RescheduleInterviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	interview, err := h.Engine.Lifecycle.Reschedule(c.Request.Context(), actor, id, req)
	if err != nil {
		h.fail(c, "reschedule_interview", err)
		return
	}
	response.OK(c, interview)
}

// CancelInterview accepts an optional reason body
func (h *Handler) CancelInterview(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.CancelInterviewReq
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "invalid request body")
		return
	}

	interview, err := h.Engine.Lifecycle.Cancel(c.Request.Context(), actor, id, req)
	if err != nil {
		h.fail(c, "cancel_interview", err)
		return
	}
	response.OK(c, interview)
}

func (h *Handler) CompleteInterview(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	interview, err := h.Engine.Lifecycle.MarkCompleted(c.Request.Context(), actor, id)
	if err != nil {
		h.fail(c, "complete_interview", err)
		return
	}
	response.OK(c, interview)
}

func (h *Handler) MarkNoShow(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	interview, err := h.Engine.Lifecycle.MarkNoShow(c.Request.Context(), actor, id)
	if err != nil {
		h.fail(c, "mark_no_show", err)
		return
	}
	response.OK(c, interview)
}

// PatchNotes updates summary notes, meeting details or instructions
func (h *Handler) PatchNotes(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.PatchNotesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	interview, err := h.Engine.Lifecycle.UpdateNotes(c.Request.Context(), actor, id, req)
	if err != nil {
		h.fail(c, "patch_notes", err)
		return
	}
	response.OK(c, interview)
}

// ValidateSlot reports every business rule a proposed slot breaks. It never
// checks participant conflicts.
func (h *Handler) ValidateSlot(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}

	var req model.ValidateSlotReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	err := h.Engine.Availability.ValidateTimeSlot(req.ScheduledAt, req.DurationMinutes)
	if err == nil {
		response.OK(c, gin.H{"valid": true})
		return
	}
	h.fail(c, "validate_slot", err)
}

func (h *Handler) AvailableSlots(c *gin.Context) {
	if _, ok := h.actor(c); !ok {
		return
	}

	var req model.AvailabilityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	slots, err := h.Engine.Availability.GetAvailableSlots(c.Request.Context(),
		req.ParticipantIDs, req.RangeStart, req.RangeEnd, req.DurationMinutes, req.StepMinutes)
	if err != nil {
		h.fail(c, "available_slots", err)
		return
	}
	response.OK(c, gin.H{"slots": slots, "count": len(slots)})
}
