package dispatch

import (
	"context"

	"ci-relay/internal/model"
)

// Dispatch routes one event through every registered handler in
// registration order. Each event triggers at most one pipeline: the
// first pipeline handler that does not skip wins, and later pipeline
// handlers are not evaluated. Every notification rule is evaluated
// exactly once.
func (r *Router) Dispatch(ctx context.Context, event model.Event) []Outcome {
	outcomes := make([]Outcome, 0, len(r.handlers))

	pipelineFired := false
	for _, h := range r.handlers {
		if h.Kind() == KindPipeline && pipelineFired {
			outcomes = append(outcomes, Outcome{
				Handler: h.Name(),
				Kind:    h.Kind(),
				Status:  model.StatusSkipped,
				Detail:  "another pipeline already matched this event",
			})
			continue
		}

		out := h.Handle(ctx, event)
		if h.Kind() == KindPipeline && out.Status != model.StatusSkipped {
			pipelineFired = true
		}

		switch out.Status {
		case model.StatusSkipped:
			r.l.Infof(ctx, "Handler %s skipped event %s/%s", h.Name(), event.EventType, event.Action)
		case model.StatusFailed:
			r.l.Errorf(ctx, "Handler %s failed for event %s/%s: %s", h.Name(), event.EventType, event.Action, out.Detail)
		default:
			r.l.Infof(ctx, "Handler %s finished with status %s", h.Name(), out.Status)
		}

		outcomes = append(outcomes, out)
	}

	return outcomes
}

// Failed reports whether any outcome failed.
func Failed(outcomes []Outcome) bool {
	for _, out := range outcomes {
		if out.Failed() {
			return true
		}
	}
	return false
}
