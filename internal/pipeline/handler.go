package pipeline

import (
	"context"
	"fmt"

	"ci-relay/internal/dispatch"
	"ci-relay/internal/model"
)

// Handler adapts one pipeline to the dispatch router.
type Handler struct {
	runner   *Runner
	pipeline model.Pipeline
}

var _ dispatch.Handler = (*Handler)(nil)

func NewHandler(runner *Runner, pipeline model.Pipeline) *Handler {
	return &Handler{runner: runner, pipeline: pipeline}
}

func (h *Handler) Name() string        { return h.pipeline.Name }
func (h *Handler) Kind() dispatch.Kind { return dispatch.KindPipeline }

func (h *Handler) Handle(ctx context.Context, event model.Event) dispatch.Outcome {
	result := h.runner.Run(ctx, event, h.pipeline)

	out := dispatch.Outcome{
		Handler: h.pipeline.Name,
		Kind:    dispatch.KindPipeline,
		Status:  result.Status,
	}
	switch result.Status {
	case model.StatusSkipped:
		out.Detail = "trigger predicate did not match"
	case model.StatusFailed:
		out.Detail = fmt.Sprintf("step %s failed with exit code %d", result.FailedStep, result.ExitCode)
	}
	return out
}
