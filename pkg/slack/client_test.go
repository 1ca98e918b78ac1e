package slack_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ci-relay/pkg/slack"
)

func TestPostMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("Posts Section Payload", func(t *testing.T) {
		var got slack.Message
		var contentType string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			contentType = r.Header.Get("Content-Type")
			raw, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Errorf("invalid payload: %v", err)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := slack.NewClient(server.URL, slack.WebhookTypeIncoming)
		msg := slack.SectionMessage("alice has a PR ready for review! :speech_balloon: \nhttps://x/pr/7")

		if err := client.PostMessage(ctx, msg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if contentType != "application/json" {
			t.Errorf("unexpected content type: %s", contentType)
		}
		if got.Text != msg.Text {
			t.Errorf("fallback text mismatch: %q", got.Text)
		}
		if len(got.Blocks) != 1 || got.Blocks[0].Type != "section" {
			t.Fatalf("expected one section block, got %+v", got.Blocks)
		}
		if got.Blocks[0].Text == nil || got.Blocks[0].Text.Type != "mrkdwn" || got.Blocks[0].Text.Text != msg.Text {
			t.Errorf("unexpected block text: %+v", got.Blocks[0].Text)
		}
	})

	t.Run("Non 2xx Is An Error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid_payload", http.StatusBadRequest)
		}))
		defer server.Close()

		client := slack.NewClient(server.URL, "")
		if err := client.PostMessage(ctx, slack.SectionMessage("hi")); err == nil {
			t.Errorf("expected error on 400")
		}
	})

	t.Run("Single Attempt Only", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			http.Error(w, "rate_limited", http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := slack.NewClient(server.URL, "")
		_ = client.PostMessage(ctx, slack.SectionMessage("hi"))
		if calls != 1 {
			t.Errorf("expected single delivery attempt, got %d", calls)
		}
	})

	t.Run("Missing URL", func(t *testing.T) {
		client := slack.NewClient("", "")
		if err := client.PostMessage(ctx, slack.SectionMessage("hi")); err == nil {
			t.Errorf("expected error when URL missing")
		}
	})

	t.Run("Unsupported Webhook Type", func(t *testing.T) {
		client := slack.NewClient("https://hooks.slack.com/services/x", "WORKFLOW")
		if err := client.PostMessage(ctx, slack.SectionMessage("hi")); err == nil {
			t.Errorf("expected error for unsupported webhook type")
		}
	})
}
