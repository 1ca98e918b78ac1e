package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ci-relay/internal/model"
	"ci-relay/internal/pipeline"
)

type mockLogger struct{}

func (mockLogger) Info(ctx context.Context, args ...interface{})                  {}
func (mockLogger) Infof(ctx context.Context, format string, args ...interface{})  {}
func (mockLogger) Warn(ctx context.Context, args ...interface{})                  {}
func (mockLogger) Warnf(ctx context.Context, format string, args ...interface{})  {}
func (mockLogger) Error(ctx context.Context, args ...interface{})                 {}
func (mockLogger) Errorf(ctx context.Context, format string, args ...interface{}) {}

type mockExecutor struct {
	executed    []string
	executeFunc func(step model.Step) (pipeline.ExecResult, error)
}

func (m *mockExecutor) Execute(ctx context.Context, step model.Step) (pipeline.ExecResult, error) {
	m.executed = append(m.executed, step.Name)
	if m.executeFunc != nil {
		return m.executeFunc(step)
	}
	return pipeline.ExecResult{}, nil
}

type mockInstance struct {
	waitErr      error
	tornDown     bool
	readyCalled  bool
	teardownFunc func() error
}

func (m *mockInstance) WaitReady(ctx context.Context) error {
	m.readyCalled = true
	return m.waitErr
}

func (m *mockInstance) Teardown(ctx context.Context) error {
	m.tornDown = true
	if m.teardownFunc != nil {
		return m.teardownFunc()
	}
	return nil
}

type mockProvisioner struct {
	provisioned   []string
	instance      *mockInstance
	provisionErr  error
	provisionFunc func(svc model.Service) (*mockInstance, error)
}

func (m *mockProvisioner) Provision(ctx context.Context, svc model.Service) (pipeline.ServiceInstance, error) {
	m.provisioned = append(m.provisioned, svc.Name)
	if m.provisionFunc != nil {
		return m.provisionFunc(svc)
	}
	if m.provisionErr != nil {
		return nil, m.provisionErr
	}
	if m.instance == nil {
		m.instance = &mockInstance{}
	}
	return m.instance, nil
}

type mockAction struct {
	ran     []string
	runFunc func(step model.Step) error
}

func (m *mockAction) Run(ctx context.Context, event model.Event, step model.Step) error {
	m.ran = append(m.ran, step.Name)
	if m.runFunc != nil {
		return m.runFunc(step)
	}
	return nil
}

func pushEvent(branch string) model.Event {
	return model.Event{
		Source:     model.SourceGitHub,
		EventType:  model.EventTypePush,
		Branch:     branch,
		Repository: "acme/recordlinker",
		Commit:     "abc123",
	}
}

func stepNames(steps []model.StepResult, status model.RunStatus) []string {
	var names []string
	for _, s := range steps {
		if s.Status == status {
			names = append(names, s.Name)
		}
	}
	return names
}

func TestRunTriggerGate(t *testing.T) {
	t.Run("Branch Mismatch Skips Without Side Effects", func(t *testing.T) {
		executor := &mockExecutor{}
		provisioner := &mockProvisioner{}
		runner := pipeline.New(executor, provisioner, nil, mockLogger{})

		p := model.Pipeline{
			Name:     "unit-tests",
			Trigger:  model.Trigger{EventType: model.EventTypePush, Branch: "main"},
			Services: []model.Service{{Name: "db", Image: "postgres:16", Port: 5432}},
			Steps:    []model.Step{{Name: "run-unit-tests", Command: "pytest"}},
		}

		result := runner.Run(context.Background(), pushEvent("feature/x"), p)

		if result.Status != model.StatusSkipped {
			t.Fatalf("expected skipped, got %s", result.Status)
		}
		if len(provisioner.provisioned) != 0 {
			t.Errorf("expected no provisioning on skip")
		}
		if len(executor.executed) != 0 {
			t.Errorf("expected no steps executed on skip")
		}
	})

	t.Run("Event Type Mismatch Skips", func(t *testing.T) {
		runner := pipeline.New(&mockExecutor{}, &mockProvisioner{}, nil, mockLogger{})
		p := model.Pipeline{
			Name:    "unit-tests",
			Trigger: model.Trigger{EventType: model.EventTypePush, Branch: "main"},
		}
		event := model.Event{EventType: model.EventTypePullRequest, Branch: "main"}

		if result := runner.Run(context.Background(), event, p); result.Status != model.StatusSkipped {
			t.Errorf("expected skipped, got %s", result.Status)
		}
	})
}

func TestRunStepOrdering(t *testing.T) {
	t.Run("All Steps Succeed In Order", func(t *testing.T) {
		executor := &mockExecutor{}
		runner := pipeline.New(executor, &mockProvisioner{}, nil, mockLogger{})

		p := model.Pipeline{
			Name:    "unit-tests",
			Trigger: model.Trigger{EventType: model.EventTypePush, Branch: "main"},
			Steps: []model.Step{
				{Name: "first", Command: "true"},
				{Name: "second", Command: "true"},
				{Name: "third", Command: "true"},
			},
		}

		result := runner.Run(context.Background(), pushEvent("main"), p)

		if result.Status != model.StatusSucceeded {
			t.Fatalf("expected succeeded, got %s", result.Status)
		}
		want := []string{"first", "second", "third"}
		if fmt.Sprint(executor.executed) != fmt.Sprint(want) {
			t.Errorf("steps ran out of order: %v", executor.executed)
		}
		if result.RunID == "" {
			t.Errorf("expected a run ID")
		}
		if result.FinishedAt.Before(result.StartedAt) {
			t.Errorf("finished before started")
		}
	})

	t.Run("Failure Short Circuits Later On Success Steps", func(t *testing.T) {
		executor := &mockExecutor{
			executeFunc: func(step model.Step) (pipeline.ExecResult, error) {
				if step.Name == "run-unit-tests" {
					return pipeline.ExecResult{Output: "2 failed", ExitCode: 1}, nil
				}
				return pipeline.ExecResult{}, nil
			},
		}
		runner := pipeline.New(executor, &mockProvisioner{}, nil, mockLogger{})

		p := model.Pipeline{
			Name:    "unit-tests",
			Trigger: model.Trigger{EventType: model.EventTypePush, Branch: "main"},
			Steps: []model.Step{
				{Name: "install-dependencies", Command: "pip install"},
				{Name: "run-unit-tests", Command: "pytest"},
				{Name: "lint", Command: "ruff check"},
				{Name: "upload-test-results", Command: "upload", When: model.WhenNotCancelled},
				{Name: "upload-coverage", Command: "upload", When: model.WhenAlways},
			},
		}

		result := runner.Run(context.Background(), pushEvent("main"), p)

		if result.Status != model.StatusFailed {
			t.Fatalf("expected failed, got %s", result.Status)
		}
		if result.FailedStep != "run-unit-tests" {
			t.Errorf("expected failed step run-unit-tests, got %s", result.FailedStep)
		}
		if result.ExitCode != 1 {
			t.Errorf("expected exit code 1, got %d", result.ExitCode)
		}

		skipped := stepNames(result.Steps, model.StatusSkipped)
		if fmt.Sprint(skipped) != fmt.Sprint([]string{"lint"}) {
			t.Errorf("expected only lint skipped, got %v", skipped)
		}
		ran := executor.executed
		wantRan := []string{"install-dependencies", "run-unit-tests", "upload-test-results", "upload-coverage"}
		if fmt.Sprint(ran) != fmt.Sprint(wantRan) {
			t.Errorf("unexpected execution set: %v", ran)
		}
	})

	t.Run("First Failure Wins", func(t *testing.T) {
		executor := &mockExecutor{
			executeFunc: func(step model.Step) (pipeline.ExecResult, error) {
				return pipeline.ExecResult{ExitCode: 2}, nil
			},
		}
		runner := pipeline.New(executor, &mockProvisioner{}, nil, mockLogger{})

		p := model.Pipeline{
			Name:    "unit-tests",
			Trigger: model.Trigger{EventType: model.EventTypePush},
			Steps: []model.Step{
				{Name: "one", Command: "false"},
				{Name: "two", Command: "false", When: model.WhenAlways},
			},
		}

		result := runner.Run(context.Background(), pushEvent("main"), p)

		if result.FailedStep != "one" {
			t.Errorf("expected first failing step recorded, got %s", result.FailedStep)
		}
		if len(executor.executed) != 2 {
			t.Errorf("expected always step to still run, got %v", executor.executed)
		}
	})

	t.Run("Cancelled Context Skips If Not Cancelled But Runs Always", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		executor := &mockExecutor{}
		runner := pipeline.New(executor, &mockProvisioner{}, nil, mockLogger{})

		p := model.Pipeline{
			Name:    "unit-tests",
			Trigger: model.Trigger{EventType: model.EventTypePush},
			Steps: []model.Step{
				{Name: "run-unit-tests", Command: "pytest"},
				{Name: "upload-test-results", Command: "upload", When: model.WhenNotCancelled},
				{Name: "upload-coverage", Command: "upload", When: model.WhenAlways},
			},
		}

		result := runner.Run(ctx, pushEvent("main"), p)

		if fmt.Sprint(executor.executed) != fmt.Sprint([]string{"upload-coverage"}) {
			t.Errorf("expected only the always step to run, got %v", executor.executed)
		}
		skipped := stepNames(result.Steps, model.StatusSkipped)
		wantSkipped := []string{"run-unit-tests", "upload-test-results"}
		if fmt.Sprint(skipped) != fmt.Sprint(wantSkipped) {
			t.Errorf("unexpected skipped steps: %v", skipped)
		}
	})
}

func TestRunServices(t *testing.T) {
	t.Run("Readiness Failure Fails Run Before Steps", func(t *testing.T) {
		instance := &mockInstance{waitErr: errors.New("dial tcp 127.0.0.1:5432: connection refused")}
		provisioner := &mockProvisioner{instance: instance}
		executor := &mockExecutor{}
		runner := pipeline.New(executor, provisioner, nil, mockLogger{})

		p := model.Pipeline{
			Name:     "unit-tests",
			Trigger:  model.Trigger{EventType: model.EventTypePush},
			Services: []model.Service{{Name: "db", Image: "postgres:16", Port: 5432}},
			Steps:    []model.Step{{Name: "run-unit-tests", Command: "pytest"}},
		}

		result := runner.Run(context.Background(), pushEvent("main"), p)

		if result.Status != model.StatusFailed {
			t.Fatalf("expected failed, got %s", result.Status)
		}
		if result.FailedStep != "service:db" {
			t.Errorf("expected service failure recorded, got %s", result.FailedStep)
		}
		if result.ExitCode != -1 {
			t.Errorf("expected exit code -1, got %d", result.ExitCode)
		}
		if len(executor.executed) != 0 {
			t.Errorf("expected no steps after readiness failure")
		}
		if !instance.tornDown {
			t.Errorf("expected teardown after readiness failure")
		}
		if len(result.Steps) != 1 || result.Steps[0].Err == "" {
			t.Errorf("expected readiness error surfaced in step results")
		}
	})

	t.Run("Provision Failure Fails Run", func(t *testing.T) {
		provisioner := &mockProvisioner{provisionErr: errors.New("image pull failed")}
		runner := pipeline.New(&mockExecutor{}, provisioner, nil, mockLogger{})

		p := model.Pipeline{
			Name:     "unit-tests",
			Trigger:  model.Trigger{EventType: model.EventTypePush},
			Services: []model.Service{{Name: "db", Image: "postgres:16", Port: 5432}},
		}

		result := runner.Run(context.Background(), pushEvent("main"), p)

		if result.Status != model.StatusFailed {
			t.Fatalf("expected failed, got %s", result.Status)
		}
		if result.FailedStep != "service:db" {
			t.Errorf("expected service failure recorded, got %s", result.FailedStep)
		}
	})

	t.Run("Teardown Runs After Success", func(t *testing.T) {
		instance := &mockInstance{}
		provisioner := &mockProvisioner{instance: instance}
		runner := pipeline.New(&mockExecutor{}, provisioner, nil, mockLogger{})

		p := model.Pipeline{
			Name:     "unit-tests",
			Trigger:  model.Trigger{EventType: model.EventTypePush},
			Services: []model.Service{{Name: "db", Image: "postgres:16", Port: 5432}},
			Steps:    []model.Step{{Name: "run-unit-tests", Command: "pytest"}},
		}

		result := runner.Run(context.Background(), pushEvent("main"), p)

		if result.Status != model.StatusSucceeded {
			t.Fatalf("expected succeeded, got %s", result.Status)
		}
		if !instance.readyCalled {
			t.Errorf("expected readiness wait before steps")
		}
		if !instance.tornDown {
			t.Errorf("expected teardown after run")
		}
	})
}

func TestRunActions(t *testing.T) {
	t.Run("Named Action Dispatched", func(t *testing.T) {
		action := &mockAction{}
		executor := &mockExecutor{}
		runner := pipeline.New(executor, &mockProvisioner{}, map[string]pipeline.Action{
			"upload-coverage": action,
		}, mockLogger{})

		p := model.Pipeline{
			Name:    "unit-tests",
			Trigger: model.Trigger{EventType: model.EventTypePush},
			Steps: []model.Step{
				{Name: "upload-coverage", Action: "upload-coverage", With: map[string]string{"file": "coverage.xml"}},
			},
		}

		result := runner.Run(context.Background(), pushEvent("main"), p)

		if result.Status != model.StatusSucceeded {
			t.Fatalf("expected succeeded, got %s", result.Status)
		}
		if len(action.ran) != 1 {
			t.Errorf("expected action invoked once, got %d", len(action.ran))
		}
		if len(executor.executed) != 0 {
			t.Errorf("expected no shell execution for an action step")
		}
	})

	t.Run("Unknown Action Fails Step", func(t *testing.T) {
		runner := pipeline.New(&mockExecutor{}, &mockProvisioner{}, nil, mockLogger{})

		p := model.Pipeline{
			Name:    "unit-tests",
			Trigger: model.Trigger{EventType: model.EventTypePush},
			Steps:   []model.Step{{Name: "upload", Action: "no-such-action"}},
		}

		result := runner.Run(context.Background(), pushEvent("main"), p)

		if result.Status != model.StatusFailed {
			t.Fatalf("expected failed, got %s", result.Status)
		}
		if result.FailedStep != "upload" {
			t.Errorf("expected failed step upload, got %s", result.FailedStep)
		}
	})

	t.Run("Action Error Fails Step", func(t *testing.T) {
		action := &mockAction{runFunc: func(step model.Step) error {
			return errors.New("upload rejected")
		}}
		runner := pipeline.New(&mockExecutor{}, &mockProvisioner{}, map[string]pipeline.Action{
			"upload-coverage": action,
		}, mockLogger{})

		p := model.Pipeline{
			Name:    "unit-tests",
			Trigger: model.Trigger{EventType: model.EventTypePush},
			Steps:   []model.Step{{Name: "upload-coverage", Action: "upload-coverage"}},
		}

		result := runner.Run(context.Background(), pushEvent("main"), p)

		if result.Status != model.StatusFailed {
			t.Fatalf("expected failed, got %s", result.Status)
		}
		if result.Steps[0].Err != "upload rejected" {
			t.Errorf("expected action error surfaced, got %q", result.Steps[0].Err)
		}
	})
}

func TestRunExecutorError(t *testing.T) {
	executor := &mockExecutor{
		executeFunc: func(step model.Step) (pipeline.ExecResult, error) {
			return pipeline.ExecResult{}, errors.New("sh: not found")
		},
	}
	runner := pipeline.New(executor, &mockProvisioner{}, nil, mockLogger{})

	p := model.Pipeline{
		Name:    "unit-tests",
		Trigger: model.Trigger{EventType: model.EventTypePush},
		Steps:   []model.Step{{Name: "run-unit-tests", Command: "pytest"}},
	}

	result := runner.Run(context.Background(), pushEvent("main"), p)

	if result.Status != model.StatusFailed {
		t.Fatalf("expected failed, got %s", result.Status)
	}
	if result.ExitCode != -1 {
		t.Errorf("expected exit code -1 for failure to run, got %d", result.ExitCode)
	}
}
