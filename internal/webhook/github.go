package webhook

import (
	"encoding/json"
	"fmt"
	"time"

	"ci-relay/internal/model"
)

// GitHubParser parses GitHub webhook payloads into normalized events.
type GitHubParser struct{}

func NewGitHubParser() *GitHubParser {
	return &GitHubParser{}
}

// ParsePushEvent parses a GitHub push event.
func (p *GitHubParser) ParsePushEvent(payload []byte) (*model.Event, error) {
	var event struct {
		Ref        string `json:"ref"`
		Compare    string `json:"compare"`
		Repository struct {
			FullName string `json:"full_name"`
		} `json:"repository"`
		HeadCommit struct {
			ID string `json:"id"`
		} `json:"head_commit"`
		Pusher struct {
			Name string `json:"name"`
		} `json:"pusher"`
	}

	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to parse push event: %w", err)
	}

	// Extract branch name from ref (refs/heads/main → main)
	branch := event.Ref
	if len(branch) > 11 && branch[:11] == "refs/heads/" {
		branch = branch[11:]
	}

	return &model.Event{
		Source:     model.SourceGitHub,
		EventType:  model.EventTypePush,
		Repository: event.Repository.FullName,
		Branch:     branch,
		Commit:     event.HeadCommit.ID,
		Actor:      event.Pusher.Name,
		URL:        event.Compare,
		ReceivedAt: time.Now(),
	}, nil
}

// ParsePullRequestEvent parses a GitHub pull request event.
func (p *GitHubParser) ParsePullRequestEvent(payload []byte) (*model.Event, error) {
	var event struct {
		Action      string `json:"action"`
		Number      int    `json:"number"`
		PullRequest struct {
			HTMLURL string `json:"html_url"`
			Draft   bool   `json:"draft"`
			Merged  bool   `json:"merged"`
			Base    struct {
				Ref string `json:"ref"` // Target branch
			} `json:"base"`
			Head struct {
				SHA string `json:"sha"`
			} `json:"head"`
			User struct {
				Login string `json:"login"`
			} `json:"user"`
		} `json:"pull_request"`
		Repository struct {
			FullName string `json:"full_name"`
		} `json:"repository"`
	}

	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to parse pull request event: %w", err)
	}

	return &model.Event{
		Source:     model.SourceGitHub,
		EventType:  model.EventTypePullRequest,
		Action:     event.Action,
		Repository: event.Repository.FullName,
		Branch:     event.PullRequest.Base.Ref,
		Commit:     event.PullRequest.Head.SHA,
		Actor:      event.PullRequest.User.Login,
		URL:        event.PullRequest.HTMLURL,
		Draft:      event.PullRequest.Draft,
		Merged:     event.PullRequest.Merged,
		PRNumber:   event.Number,
		ReceivedAt: time.Now(),
	}, nil
}
