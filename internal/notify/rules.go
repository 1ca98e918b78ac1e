package notify

import (
	"fmt"

	"ci-relay/internal/model"
)

// Rule pairs a predicate over events with a message template.
type Rule struct {
	Name    string
	Matches func(event model.Event) bool
	Render  func(event model.Event) string
}

// ReadyForReviewRule fires when a pull request leaves (or is created
// outside of) draft state: action is opened, reopened or
// ready_for_review, and the draft flag is false.
func ReadyForReviewRule() Rule {
	return Rule{
		Name: RuleReadyForReview,
		Matches: func(event model.Event) bool {
			if event.EventType != model.EventTypePullRequest || event.Draft {
				return false
			}
			switch event.Action {
			case model.ActionOpened, model.ActionReopened, model.ActionReadyForReview:
				return true
			}
			return false
		},
		Render: func(event model.Event) string {
			return fmt.Sprintf("%s has a PR ready for review! :speech_balloon: \n%s", event.Actor, event.URL)
		},
	}
}

// MergedRule fires when a pull request is closed with the merged flag
// set. Closed-without-merge means the PR was rejected and must not fire.
func MergedRule() Rule {
	return Rule{
		Name: RuleMerged,
		Matches: func(event model.Event) bool {
			return event.EventType == model.EventTypePullRequest &&
				event.Action == model.ActionClosed &&
				event.Merged
		},
		Render: func(event model.Event) string {
			return fmt.Sprintf("%s's PR has been merged! :tada: \n%s", event.Actor, event.URL)
		},
	}
}
