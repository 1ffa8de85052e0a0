package printing

// Status is the orchestrator state.
type Status string

const (
	StatusIdle      Status = "IDLE"
	StatusPreparing Status = "PREPARING"
	StatusSpooling  Status = "SPOOLING"
	StatusPrinting  Status = "PRINTING"
	StatusDone      Status = "DONE"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// String returns the string representation of Status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether a job has finished in this status.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed || s == StatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusIdle:
		return target == StatusPreparing
	case StatusPreparing:
		return target == StatusSpooling || target == StatusPrinting || target == StatusFailed || target == StatusCancelled
	case StatusSpooling:
		return target == StatusDone || target == StatusFailed || target == StatusCancelled
	case StatusPrinting:
		return target == StatusPrinting || target == StatusDone || target == StatusFailed || target == StatusCancelled
	case StatusDone, StatusFailed, StatusCancelled:
		return target == StatusIdle || target == StatusPreparing
	}
	return false
}

// Snapshot is a read-only projection of the orchestrator state.
type Snapshot struct {
	Status    Status
	JobID     string
	Current   int
	Total     int
	LastError error
	InFlight  bool
}
