package rules

// State of a rule-evaluation job. Pending is the only non-terminal state.
type State string

const (
	StatePending State = "pending"
	StateDone    State = "done"
	StateError   State = "error"
)

type Status struct {
	State    State  `json:"state"`
	ResultID string `json:"resultId,omitempty"`
	Message  string `json:"message,omitempty"`
}

func Pending() Status {
	return Status{State: StatePending}
}

func Done(resultID string) Status {
	return Status{State: StateDone, ResultID: resultID}
}

func Failed(message string) Status {
	return Status{State: StateError, Message: message}
}

func (s Status) Terminal() bool {
	return s.State == StateDone || s.State == StateError
}
