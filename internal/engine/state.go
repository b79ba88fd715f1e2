package engine

// State is a step of the transfer pipeline.
type State string

const (
	StateReceived  State = "Received"
	StateDecoded   State = "Decoded"
	StateValidated State = "Validated"
	StateSubmitted State = "Submitted"
	StateNotifying State = "Notifying"

	// Terminal states
	StateCompleted          State = "Completed"
	StateRejectedValidation State = "RejectedValidation"
	StateRejectedSubmission State = "RejectedSubmission"
)

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateRejectedValidation, StateRejectedSubmission:
		return true
	}
	return false
}

// Status is the caller-facing outcome.
type Status string

const (
	StatusOK Status = "OK"
	StatusNG Status = "NG"
)

// Result is what a transfer request returns to its caller. Detail is set
// only for NG.
type Result struct {
	Status Status
	Detail string
	State  State
}

func ok(state State) Result {
	return Result{Status: StatusOK, State: state}
}

func ng(state State, detail string) Result {
	return Result{Status: StatusNG, Detail: detail, State: state}
}
