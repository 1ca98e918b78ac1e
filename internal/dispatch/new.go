package dispatch

import (
	pkgLog "ci-relay/pkg/log"
)

// Router maps incoming events to handlers. Handlers are registered once
// at startup and evaluated per event; no cross-run state is kept.
type Router struct {
	handlers []Handler
	l        pkgLog.Logger
}

func New(l pkgLog.Logger) *Router {
	return &Router{l: l}
}

// Register appends a handler. Registration order is evaluation order.
func (r *Router) Register(h Handler) {
	r.handlers = append(r.handlers, h)
}
