package scheduling

import "github.com/abhishek622/interviewflow/pkg/model"

type Operation string

const (
	OpSchedule   Operation = "schedule"
	OpReschedule Operation = "reschedule"
	OpCancel     Operation = "cancel"
	OpComplete   Operation = "complete"
	OpNoShow     Operation = "mark_no_show"
	OpSetOutcome Operation = "set_outcome"
)

// transitions is the whole state machine. A (status, operation) pair that is
// missing here is rejected with a StateError.
var transitions = map[model.Status]map[Operation]model.Status{
	model.StatusScheduled: {
		OpReschedule: model.StatusScheduled,
		OpCancel:     model.StatusCancelled,
		OpComplete:   model.StatusCompleted,
		OpNoShow:     model.StatusNoShow,
	},
	model.StatusCompleted: {
		OpSetOutcome: model.StatusCompleted,
	},
}

func nextStatus(from model.Status, op Operation) (model.Status, bool) {
	to, ok := transitions[from][op]
	return to, ok
}
