package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ci-relay/internal/model"
)

// Run executes one pipeline for one event.
//
// Contract: predicate gate first (mismatch is a no-op, not an error),
// then service provisioning with a bounded readiness wait, then steps in
// declaration order. The first failing step fixes the terminal status;
// later on-success steps are skipped, while if-not-cancelled and always
// steps still run (result upload must survive earlier test failures).
func (r *Runner) Run(ctx context.Context, event model.Event, pipeline model.Pipeline) model.PipelineResult {
	result := model.PipelineResult{
		RunID:    uuid.NewString(),
		Pipeline: pipeline.Name,
	}

	if !pipeline.Trigger.Matches(event) {
		r.l.Infof(ctx, "Pipeline %s: trigger does not match %s@%s, skipping", pipeline.Name, event.EventType, event.Branch)
		result.Status = model.StatusSkipped
		return result
	}

	result.Status = model.StatusRunning
	result.StartedAt = time.Now()

	r.l.Infof(ctx, "Pipeline %s: run %s started for %s@%s", pipeline.Name, result.RunID, event.Repository, event.Commit)

	// Backing services: all must reach readiness before any step runs.
	for _, svc := range pipeline.Services {
		instance, err := r.provisioner.Provision(ctx, svc)
		if err != nil {
			r.l.Errorf(ctx, "Pipeline %s: provisioning %s failed: %v", pipeline.Name, svc.Name, err)
			return r.failService(result, svc, err)
		}
		defer func(svc model.Service, instance ServiceInstance) {
			if terr := instance.Teardown(context.WithoutCancel(ctx)); terr != nil {
				r.l.Warnf(ctx, "Pipeline %s: teardown of %s failed: %v", pipeline.Name, svc.Name, terr)
			}
		}(svc, instance)

		if err := instance.WaitReady(ctx); err != nil {
			r.l.Errorf(ctx, "Pipeline %s: service %s: %v", pipeline.Name, svc.Name, err)
			return r.failService(result, svc, fmt.Errorf("%w: %v", ErrServiceNeverReady, err))
		}
		r.l.Infof(ctx, "Pipeline %s: service %s ready", pipeline.Name, svc.Name)
	}

	failed := false
	for _, step := range pipeline.Steps {
		if !shouldRun(ctx, step, failed) {
			r.l.Infof(ctx, "Pipeline %s: step %s skipped", pipeline.Name, step.Name)
			result.Steps = append(result.Steps, model.StepResult{Name: step.Name, Status: model.StatusSkipped})
			continue
		}

		stepResult := r.runStep(ctx, event, step)
		result.Steps = append(result.Steps, stepResult)

		if stepResult.Status == model.StatusFailed && !failed {
			failed = true
			result.FailedStep = step.Name
			result.ExitCode = stepResult.ExitCode
		}
	}

	if failed {
		result.Status = model.StatusFailed
		r.l.Errorf(ctx, "Pipeline %s: run %s failed at step %s (exit %d)", pipeline.Name, result.RunID, result.FailedStep, result.ExitCode)
	} else {
		result.Status = model.StatusSucceeded
		r.l.Infof(ctx, "Pipeline %s: run %s succeeded", pipeline.Name, result.RunID)
	}
	result.FinishedAt = time.Now()

	return result
}

func (r *Runner) failService(result model.PipelineResult, svc model.Service, err error) model.PipelineResult {
	result.Status = model.StatusFailed
	result.FailedStep = "service:" + svc.Name
	result.ExitCode = -1
	result.Steps = append(result.Steps, model.StepResult{
		Name:     "service:" + svc.Name,
		Status:   model.StatusFailed,
		ExitCode: -1,
		Err:      err.Error(),
	})
	result.FinishedAt = time.Now()
	return result
}

// shouldRun evaluates the step's guard against the run state so far.
func shouldRun(ctx context.Context, step model.Step, failed bool) bool {
	switch step.Condition() {
	case model.WhenAlways:
		return true
	case model.WhenNotCancelled:
		return ctx.Err() == nil
	default: // on-success
		return !failed && ctx.Err() == nil
	}
}

func (r *Runner) runStep(ctx context.Context, event model.Event, step model.Step) model.StepResult {
	r.l.Infof(ctx, "Running step %s", step.Name)

	if step.Action != "" {
		action, ok := r.actions[step.Action]
		if !ok {
			return model.StepResult{
				Name:     step.Name,
				Status:   model.StatusFailed,
				ExitCode: -1,
				Err:      fmt.Sprintf("%v: %s", ErrUnknownAction, step.Action),
			}
		}
		if err := action.Run(ctx, event, step); err != nil {
			return model.StepResult{Name: step.Name, Status: model.StatusFailed, ExitCode: 1, Err: err.Error()}
		}
		return model.StepResult{Name: step.Name, Status: model.StatusSucceeded}
	}

	execResult, err := r.executor.Execute(ctx, step)
	if err != nil {
		return model.StepResult{
			Name:     step.Name,
			Status:   model.StatusFailed,
			ExitCode: -1,
			Output:   execResult.Output,
			Err:      err.Error(),
		}
	}
	if execResult.ExitCode != 0 {
		return model.StepResult{
			Name:     step.Name,
			Status:   model.StatusFailed,
			ExitCode: execResult.ExitCode,
			Output:   execResult.Output,
			Err:      fmt.Sprintf("exit status %d", execResult.ExitCode),
		}
	}

	return model.StepResult{Name: step.Name, Status: model.StatusSucceeded, Output: execResult.Output}
}
