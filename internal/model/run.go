package model

// RunStatus is the shared run state machine:
// Pending → Skipped | Running → Succeeded | Failed.
// Skipped, Succeeded and Failed are terminal.
type RunStatus string

const (
	StatusPending   RunStatus = "pending"
	StatusSkipped   RunStatus = "skipped"
	StatusRunning   RunStatus = "running"
	StatusSucceeded RunStatus = "succeeded"
	StatusFailed    RunStatus = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s RunStatus) Terminal() bool {
	switch s {
	case StatusSkipped, StatusSucceeded, StatusFailed:
		return true
	}
	return false
}

// Environment names used for server mode selection.
type Environment string

const (
	EnvironmentDevelopment Environment = "development"
	EnvironmentProduction  Environment = "production"
)
