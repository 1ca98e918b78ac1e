package dispatch

import "ci-relay/internal/model"

// Kind classifies a handler.
type Kind string

const (
	KindPipeline     Kind = "pipeline"
	KindNotification Kind = "notification"
)

// Outcome is the terminal result of one handler for one event.
type Outcome struct {
	Handler string
	Kind    Kind
	Status  model.RunStatus
	Detail  string // Failing step, delivery error, or skip reason
}

// Failed reports whether the outcome should surface as a failed run to
// the triggering host.
func (o Outcome) Failed() bool {
	return o.Status == model.StatusFailed
}
