package coverage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Client uploads test-result and coverage artifacts to the reporting
// service, authenticated by token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a reporting client for the given service URL.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{},
	}
}

// SetBaseURL overrides the service URL for testing purposes.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// UploadTestResults uploads a JUnit test-result artifact.
func (c *Client) UploadTestResults(ctx context.Context, in UploadInput, report []byte) error {
	return c.upload(ctx, "/upload/test-results", in, report)
}

// UploadCoverage uploads a coverage artifact.
func (c *Client) UploadCoverage(ctx context.Context, in UploadInput, report []byte) error {
	return c.upload(ctx, "/upload/coverage", in, report)
}

func (c *Client) upload(ctx context.Context, path string, in UploadInput, artifact []byte) error {
	if c.token == "" {
		return fmt.Errorf("coverage token not configured")
	}

	q := url.Values{}
	q.Set("slug", in.Repository)
	q.Set("commit", in.Commit)
	q.Set("branch", in.Branch)

	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(artifact))
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "token "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload API error %d: %s", resp.StatusCode, string(raw))
	}

	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("failed to decode upload response: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("upload rejected: %s", apiResp.Message)
	}

	return nil
}
