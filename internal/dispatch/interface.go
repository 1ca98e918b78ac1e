package dispatch

import (
	"context"

	"ci-relay/internal/model"
)

// Handler is a trigger target: it evaluates its own predicate against
// the event and reports a skipped outcome on mismatch (a no-op, not an
// error).
type Handler interface {
	// Name identifies the handler in outcomes and logs.
	Name() string

	// Kind reports whether the handler is a pipeline or a notification rule.
	Kind() Kind

	// Handle evaluates the predicate and, on match, performs the work.
	Handle(ctx context.Context, event model.Event) Outcome
}
