package pipeline

import (
	"context"
	"fmt"
	"os"

	"ci-relay/internal/model"
	"ci-relay/pkg/coverage"
)

// Registered action names.
const (
	ActionUploadTestResults = "upload-test-results"
	ActionUploadCoverage    = "upload-coverage"
)

// Uploader is the slice of the coverage client the upload actions need.
type Uploader interface {
	UploadTestResults(ctx context.Context, in coverage.UploadInput, report []byte) error
	UploadCoverage(ctx context.Context, in coverage.UploadInput, report []byte) error
}

// UploadActions builds the default action registry backed by the
// reporting client.
func UploadActions(uploader Uploader) map[string]Action {
	return map[string]Action{
		ActionUploadTestResults: &uploadAction{uploader: uploader, kind: ActionUploadTestResults},
		ActionUploadCoverage:    &uploadAction{uploader: uploader, kind: ActionUploadCoverage},
	}
}

type uploadAction struct {
	uploader Uploader
	kind     string
}

func (a *uploadAction) Run(ctx context.Context, event model.Event, step model.Step) error {
	file := step.With["file"]
	if file == "" {
		return fmt.Errorf("action %s: missing 'file' input", a.kind)
	}

	report, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("action %s: reading artifact: %w", a.kind, err)
	}

	in := coverage.UploadInput{
		Repository: event.Repository,
		Commit:     event.Commit,
		Branch:     event.Branch,
	}

	if a.kind == ActionUploadTestResults {
		return a.uploader.UploadTestResults(ctx, in, report)
	}
	return a.uploader.UploadCoverage(ctx, in, report)
}
