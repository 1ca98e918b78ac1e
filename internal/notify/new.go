package notify

import (
	"context"

	"ci-relay/internal/dispatch"
	"ci-relay/internal/model"
	pkgLog "ci-relay/pkg/log"
)

// Notifier evaluates notification rules and delivers matched messages.
type Notifier struct {
	sender Sender
	rules  []Rule
	l      pkgLog.Logger
}

// New creates a Notifier with the default rule set.
func New(sender Sender, l pkgLog.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		rules:  []Rule{ReadyForReviewRule(), MergedRule()},
		l:      l,
	}
}

// NewWithRules creates a Notifier with a custom rule set.
func NewWithRules(sender Sender, rules []Rule, l pkgLog.Logger) *Notifier {
	return &Notifier{sender: sender, rules: rules, l: l}
}

// Handlers exposes each rule as an independent dispatch handler, so the
// router evaluates every rule once per event.
func (n *Notifier) Handlers() []dispatch.Handler {
	handlers := make([]dispatch.Handler, 0, len(n.rules))
	for _, rule := range n.rules {
		handlers = append(handlers, &ruleHandler{notifier: n, rule: rule})
	}
	return handlers
}

type ruleHandler struct {
	notifier *Notifier
	rule     Rule
}

var _ dispatch.Handler = (*ruleHandler)(nil)

func (h *ruleHandler) Name() string        { return h.rule.Name }
func (h *ruleHandler) Kind() dispatch.Kind { return dispatch.KindNotification }

func (h *ruleHandler) Handle(ctx context.Context, event model.Event) dispatch.Outcome {
	res := h.notifier.Deliver(ctx, h.rule, event)

	out := dispatch.Outcome{
		Handler: h.rule.Name,
		Kind:    dispatch.KindNotification,
	}
	switch res.Status {
	case StatusDelivered:
		out.Status = model.StatusSucceeded
	case StatusSkipped:
		out.Status = model.StatusSkipped
		out.Detail = "predicate did not match"
	case StatusFailed:
		out.Status = model.StatusFailed
		out.Detail = res.Err
	}
	return out
}
