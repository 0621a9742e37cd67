// ABOUTME: X API v2 publisher that creates posts with OAuth 1.0a user-context signing.
// ABOUTME: Non-2xx responses become PublishError values carrying the response body.
package publisher

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/go-resty/resty/v2"
)

// DefaultAPIURL is the X API host.
const DefaultAPIURL = "https://api.twitter.com"

const tweetsPath = "/2/tweets"

// Credentials are the four OAuth 1.0a values for a user-context app.
type Credentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// Complete reports whether every credential is set.
func (c Credentials) Complete() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// XClient posts to the X API.
type XClient struct {
	client *resty.Client
}

type createTweetRequest struct {
	Text string `json:"text"`
}

type createTweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// apiProblem covers both the v2 problem shape and the legacy errors array.
type apiProblem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// NewXClient creates a client signing requests with creds. An empty apiURL
// uses DefaultAPIURL.
func NewXClient(apiURL string, creds Credentials, timeout time.Duration) *XClient {
	return &XClient{client: NewSignedClient(apiURL, creds, timeout)}
}

// NewSignedClient returns a resty client whose transport signs every request
// with OAuth 1.0a.
func NewSignedClient(apiURL string, creds Credentials, timeout time.Duration) *resty.Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	httpClient := config.Client(oauth1.NoContext, token)

	return resty.NewWithClient(httpClient).
		SetBaseURL(strings.TrimRight(apiURL, "/")).
		SetTimeout(timeout)
}

// Publish creates one post.
func (x *XClient) Publish(ctx context.Context, text string) (*Result, error) {
	resp, err := x.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(createTweetRequest{Text: text}).
		Post(tweetsPath)
	if err != nil {
		return nil, &PublishError{Message: err.Error()}
	}

	body := resp.Body()
	if !resp.IsSuccess() {
		return nil, newPublishError(resp.StatusCode(), body)
	}

	var created createTweetResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, &PublishError{StatusCode: resp.StatusCode(), Message: "failed to decode response: " + err.Error(), Data: rawJSON(body)}
	}
	if created.Data.ID == "" {
		return nil, &PublishError{StatusCode: resp.StatusCode(), Message: "response carried no post id", Data: rawJSON(body)}
	}
	return &Result{ID: created.Data.ID, Text: created.Data.Text}, nil
}

func newPublishError(status int, body []byte) *PublishError {
	e := &PublishError{StatusCode: status, Data: rawJSON(body)}

	var problem apiProblem
	if json.Unmarshal(body, &problem) == nil {
		switch {
		case problem.Detail != "":
			e.Message = problem.Detail
		case problem.Title != "":
			e.Message = problem.Title
		case len(problem.Errors) > 0:
			e.Message = problem.Errors[0].Message
		}
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(body))
	}
	return e
}

// rawJSON keeps body as Data only when it is valid JSON, so the error can be
// logged or re-marshalled safely.
func rawJSON(body []byte) json.RawMessage {
	if len(body) == 0 || !json.Valid(body) {
		return nil
	}
	return json.RawMessage(append([]byte(nil), body...))
}
