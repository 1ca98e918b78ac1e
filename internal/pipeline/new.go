package pipeline

import (
	pkgLog "ci-relay/pkg/log"
)

// Runner executes pipelines. One Runner serves any number of concurrent
// runs; each run is fully independent and keeps no shared state.
type Runner struct {
	executor    Executor
	provisioner Provisioner
	actions     map[string]Action
	l           pkgLog.Logger
}

func New(executor Executor, provisioner Provisioner, actions map[string]Action, l pkgLog.Logger) *Runner {
	if actions == nil {
		actions = map[string]Action{}
	}
	return &Runner{
		executor:    executor,
		provisioner: provisioner,
		actions:     actions,
		l:           l,
	}
}
