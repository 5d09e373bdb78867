package domain

import "errors"

// Status is the lifecycle state of a Video as driven by the Pipeline Engine.
// It is distinct from Sensitivity.Verdict, which is the classifier's output;
// terminal status is derived from the verdict, not the other way around.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusSafe       Status = "safe"
	StatusFlagged    Status = "flagged"
	StatusFailed     Status = "failed"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// validTransitions is the adjacency list of the pipeline FSM. Terminal
// states have no outgoing edges.
var validTransitions = map[Status][]Status{
	StatusUploaded:   {StatusProcessing},
	StatusProcessing: {StatusSafe, StatusFlagged, StatusFailed},
	StatusSafe:       {},
	StatusFlagged:    {},
	StatusFailed:     {},
}

// CanTransition reports whether moving from one status to another is a
// legal edge of the pipeline FSM.
func CanTransition(from, to Status) bool {
	for _, t := range validTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Terminal reports whether status is a sink state of the FSM.
func (s Status) Terminal() bool {
	return s == StatusSafe || s == StatusFlagged || s == StatusFailed
}
