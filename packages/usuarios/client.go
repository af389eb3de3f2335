package usuarios

import (
	"context"
	"fmt"
	nethttp "net/http"

	"github.com/abdul-hamid-achik/contractcheck/packages/fixtures"
	"github.com/abdul-hamid-achik/contractcheck/packages/http"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Resource is the collection path segment.
const Resource = "usuarios"

// UnexpectedStatusError is returned when the API answers with a status the
// operation does not accept.
type UnexpectedStatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.Status, e.Body)
}

// Client performs /usuarios requests against a base URL.
type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger
}

type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.http = c
	}
}

func WithLogger(l logrus.FieldLogger) ClientOption {
	return func(cl *Client) {
		cl.log = l
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    http.NewClient(),
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL returns the resource URL, or the URL of the user with the given id.
// The id is escaped as a single path segment.
func (c *Client) URL(id ...string) string {
	return http.JoinURL(c.baseURL, append([]string{Resource}, id...)...)
}

// Create registers u and returns the new id. Any status other than 201 is
// an *UnexpectedStatusError; the response is returned either way.
func (c *Client) Create(ctx context.Context, u fixtures.User) (string, *http.Response, error) {
	body, err := u.Body()
	if err != nil {
		return "", nil, err
	}

	url := c.URL()
	resp, err := c.http.Do(ctx, http.NewRequest(nethttp.MethodPost, url).SetJSONBody(body))
	if err != nil {
		return "", nil, fmt.Errorf("POST %s: %w", url, err)
	}

	entry := c.log.WithFields(logrus.Fields{
		"method": nethttp.MethodPost,
		"url":    url,
		"status": resp.StatusCode,
	})

	if resp.StatusCode != nethttp.StatusCreated {
		entry.Warnf("failed to create user %s (%s)", u.Nome, u.Email)
		return "", resp, &UnexpectedStatusError{Method: nethttp.MethodPost, URL: url, Status: resp.StatusCode, Body: resp.BodyString()}
	}

	id := gjson.GetBytes(resp.Body, "_id")
	if id.Type != gjson.String || id.Str == "" {
		return "", resp, fmt.Errorf("POST %s: response has no _id: %s", url, resp.BodyString())
	}

	entry.WithField("id", id.Str).Infof("created user %s (%s)", u.Nome, u.Email)
	return id.Str, resp, nil
}

// Get fetches a user by id. Non-2xx statuses are not errors.
func (c *Client) Get(ctx context.Context, id string) (*http.Response, error) {
	url := c.URL(id)
	resp, err := c.http.Get(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	return resp, nil
}

// Delete removes a user by id. The API answers 200 whether or not a user
// was removed, so the status is never treated as an error here.
func (c *Client) Delete(ctx context.Context, id string) (*http.Response, error) {
	url := c.URL(id)
	resp, err := c.http.Delete(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("DELETE %s: %w", url, err)
	}
	c.log.WithFields(logrus.Fields{
		"method": nethttp.MethodDelete,
		"url":    url,
		"status": resp.StatusCode,
		"id":     id,
	}).Debug("delete")
	return resp, nil
}

// Cleanup deletes every id and returns how many the API reported as
// removed. Failures are logged and skipped.
func (c *Client) Cleanup(ctx context.Context, ids []string) int {
	removed := 0
	for _, id := range ids {
		if id == "" {
			continue
		}
		resp, err := c.Delete(ctx, id)
		if err != nil {
			c.log.WithError(err).WithField("id", id).Warn("cleanup failed")
			continue
		}
		if resp.StatusCode == nethttp.StatusOK && gjson.GetBytes(resp.Body, "message").Str == MessageDeleted {
			c.log.WithField("id", id).Info("deleted user")
			removed++
		}
	}
	return removed
}
