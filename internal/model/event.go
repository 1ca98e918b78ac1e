package model

import "time"

// EventSource represents the source platform
type EventSource string

const (
	SourceGitHub EventSource = "github"
	SourceManual EventSource = "manual"
)

// Event types recognized by the dispatcher.
const (
	EventTypePush        = "push"
	EventTypePullRequest = "pull_request"
)

// Pull request actions carried by the host event.
const (
	ActionOpened         = "opened"
	ActionReopened       = "reopened"
	ActionReadyForReview = "ready_for_review"
	ActionClosed         = "closed"
)

// Event is a parsed source-control event. It is supplied by the external
// host, normalized once at ingest, and never persisted.
type Event struct {
	Source     EventSource // Platform source
	EventType  string      // Event type (push, pull_request)
	Action     string      // PR action (opened, closed, ready_for_review, ...)
	Repository string      // Repository full name ("owner/repo")
	Branch     string      // Target branch name
	Commit     string      // Commit SHA
	Actor      string      // Login of the user that caused the event
	URL        string      // Resource URL (PR page, compare view)
	Draft      bool        // PR draft flag
	Merged     bool        // PR merged flag (only meaningful on "closed")
	PRNumber   int         // PR number (if applicable)
	ReceivedAt time.Time   // When the event was received
}
