package webhook

import (
	"context"

	"ci-relay/internal/dispatch"
	"ci-relay/internal/model"
	pkgLog "ci-relay/pkg/log"
)

// Dispatcher routes a parsed event to its handlers.
type Dispatcher interface {
	Dispatch(ctx context.Context, event model.Event) []dispatch.Outcome
}

type Handler struct {
	dispatcher   Dispatcher
	security     *SecurityValidator
	githubParser *GitHubParser
	l            pkgLog.Logger
}

func NewHandler(dispatcher Dispatcher, securityConfig SecurityConfig, l pkgLog.Logger) *Handler {
	return &Handler{
		dispatcher:   dispatcher,
		security:     NewSecurityValidator(securityConfig),
		githubParser: NewGitHubParser(),
		l:            l,
	}
}
