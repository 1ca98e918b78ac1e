package pipeline

import (
	"context"

	"ci-relay/internal/model"
)

// ExecResult is the captured outcome of one shell command.
type ExecResult struct {
	Output   string
	ExitCode int
}

// Executor runs a step's shell command. A non-zero exit is reported via
// ExitCode with a nil error; the error return is reserved for failures
// to run the command at all.
type Executor interface {
	Execute(ctx context.Context, step model.Step) (ExecResult, error)
}

// Action is an external collaborator referenced by name from a step
// (result upload, coverage upload). It is a narrow run-or-fail contract;
// the runner never looks inside.
type Action interface {
	Run(ctx context.Context, event model.Event, step model.Step) error
}

// ServiceInstance is one provisioned backing service.
type ServiceInstance interface {
	// WaitReady blocks until the service answers on its port, polling on
	// a fixed cadence with a bounded number of attempts.
	WaitReady(ctx context.Context) error

	// Teardown releases the service. Best effort.
	Teardown(ctx context.Context) error
}

// Provisioner starts backing services for a run.
type Provisioner interface {
	Provision(ctx context.Context, svc model.Service) (ServiceInstance, error)
}
