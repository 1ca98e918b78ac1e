package model

import "time"

// RunCondition guards a step against the state of the run so far.
type RunCondition string

const (
	// WhenOnSuccess runs the step only if no earlier step failed. Default.
	WhenOnSuccess RunCondition = "on-success"
	// WhenNotCancelled runs the step even after a failure, unless the run
	// itself was cancelled by the host.
	WhenNotCancelled RunCondition = "if-not-cancelled"
	// WhenAlways runs the step unconditionally.
	WhenAlways RunCondition = "always"
)

// Step is an ordered, named unit of work. Exactly one of Command or
// Action is set: Command is a shell command, Action names an external
// collaborator registered with the runner.
type Step struct {
	Name    string
	Command string
	Action  string
	With    map[string]string // Action inputs
	Env     map[string]string // Extra environment bindings
	When    RunCondition      // Zero value means WhenOnSuccess
}

// Condition resolves the effective run condition for the step.
func (s Step) Condition() RunCondition {
	if s.When == "" {
		return WhenOnSuccess
	}
	return s.When
}

// Service is a backing process provisioned for the duration of one run,
// reachable on a fixed port once ready.
type Service struct {
	Name  string
	Image string
	Port  int
	Env   map[string]string
}

// Trigger is a pipeline's identity: the predicate over events it accepts.
type Trigger struct {
	EventType string
	Branch    string // Empty matches any branch
}

// Matches reports whether the trigger accepts the event.
func (t Trigger) Matches(event Event) bool {
	if t.EventType != "" && t.EventType != event.EventType {
		return false
	}
	if t.Branch != "" && t.Branch != event.Branch {
		return false
	}
	return true
}

// Pipeline is an ordered sequence of steps plus backing services that
// must reach readiness before any step runs.
type Pipeline struct {
	Name     string
	Trigger  Trigger
	Services []Service
	Steps    []Step
}

// StepResult records the outcome of one executed step.
type StepResult struct {
	Name     string
	Status   RunStatus
	ExitCode int
	Output   string
	Err      string
}

// PipelineResult is the terminal status of one pipeline run.
type PipelineResult struct {
	RunID      string
	Pipeline   string
	Status     RunStatus
	FailedStep string
	ExitCode   int
	Steps      []StepResult
	StartedAt  time.Time
	FinishedAt time.Time
}
