// ABOUTME: Credential validation against the X API for the setup wizard.
// ABOUTME: Signs a GET /2/users/me request with the entered OAuth 1.0a credentials.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/2389-research/riddleking/internal/publisher"
)

// ValidateConnection checks the credentials by fetching the authenticated user.
// The context allows cancellation when the user quits during validation.
func ValidateConnection(ctx context.Context, apiURL string, creds publisher.Credentials) error {
	client := publisher.NewSignedClient(apiURL, creds, 10*time.Second)

	resp, err := client.R().
		SetContext(ctx).
		Get("/2/users/me")
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	if !resp.IsSuccess() {
		body := resp.Body()
		if len(body) > 1<<20 {
			body = body[:1<<20]
		}
		return fmt.Errorf("API returned %d: %s", resp.StatusCode(), string(body))
	}

	return nil
}
