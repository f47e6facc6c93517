package core

// transitions lists the permitted status changes. A job starts as
// scheduled; done, failed and cancelled are terminal and never leave.
// scheduled may fail or cancel without ever starting (a job whose work
// was cancelled before a worker claimed it never passes through
// in_progress).
var transitions = map[JobStatus]map[JobStatus]bool{
	StatusScheduled: {
		StatusInProgress: true,
		StatusFailed:     true,
		StatusCancelled:  true,
	},
	StatusInProgress: {
		StatusDone:      true,
		StatusFailed:    true,
		StatusCancelled: true,
	},
}

// Valid reports whether s is a known job status.
func (s JobStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusDone, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal status.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusDone, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a job may move from one status to another.
func CanTransition(from, to JobStatus) bool {
	return transitions[from][to]
}

// CheckTransition returns an *InvalidTransitionError if the requested
// status change is not permitted from the current status.
func CheckTransition(from, to JobStatus) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}
