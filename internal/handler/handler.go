package handler

import (
	"context"
	"errors"

	"github.com/abhishek622/interviewflow/internal/apperr"
	"github.com/abhishek622/interviewflow/internal/scheduling"
	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/abhishek622/interviewflow/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActorKey is the gin context key the auth middleware stores the caller under.
const ActorKey = "actor"

// EventFeed exposes recently published interview events.
type EventFeed interface {
	Recent(ctx context.Context, limit int64) ([]model.InterviewEvent, error)
}

type Handler struct {
	Logger *zap.Logger
	Engine *scheduling.Engine
	Events EventFeed // optional
}

func New(logger *zap.Logger, engine *scheduling.Engine) *Handler {
	return &Handler{Logger: logger, Engine: engine}
}

// GetActorFromContext retrieves the authenticated caller from the gin context
func (h *Handler) GetActorFromContext(c *gin.Context) (model.ActorContext, bool) {
	v, exists := c.Get(ActorKey)
	if !exists {
		return model.ActorContext{}, false
	}
	actor, ok := v.(model.ActorContext)
	return actor, ok
}

// actor returns the caller or writes a 401 and reports false.
func (h *Handler) actor(c *gin.Context) (model.ActorContext, bool) {
	actor, ok := h.GetActorFromContext(c)
	if !ok {
		response.Unauthorized(c, "")
	}
	return actor, ok
}

// uuidParam parses the named path parameter or writes a 400.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// fail maps a core error onto the response envelope. Unknown errors are
// logged and reported as 500 without details.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	var (
		verr *apperr.ValidationError
		cerr *apperr.ConflictError
		serr *apperr.StateError
		ferr *apperr.ForbiddenError
		nerr *apperr.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		response.ValidationError(c, verr.Error(), verr.Violations)
	case errors.As(err, &cerr):
		response.Conflict(c, cerr.Error(), cerr)
	case errors.As(err, &serr):
		response.InvalidState(c, serr.Error(), serr)
	case errors.As(err, &ferr):
		response.Forbidden(c, ferr.Error())
	case errors.As(err, &nerr):
		response.NotFound(c, nerr.Error())
	default:
		h.Logger.Error(op+": failed", zap.Error(err))
		response.InternalError(c, "")
	}
}
