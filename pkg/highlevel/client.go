// Package highlevel provides a REST client for the GoHighLevel contact store.
package highlevel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://rest.gohighlevel.com/v1"

// Client defines the contact-store operations used by the funnel.
type Client interface {
	// UpsertContact creates or updates a contact keyed by email.
	UpsertContact(ctx context.Context, req ContactUpsert) (*Contact, error)
	// UpdateContact updates an existing contact by id.
	UpdateContact(ctx context.Context, contactID string, req ContactUpsert) (*Contact, error)
	// LookupByEmail returns the contact matching email, or nil if none exists.
	LookupByEmail(ctx context.Context, email string) (*Contact, error)
	// AddTags appends tags to an existing contact.
	AddTags(ctx context.Context, contactID string, tags []string) error
}

// Contact is the remote contact record.
type Contact struct {
	ID          string            `json:"id"`
	FirstName   string            `json:"firstName"`
	LastName    string            `json:"lastName"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	Tags        []string          `json:"tags"`
	CustomField map[string]string `json:"customField"`
	DateAdded   time.Time         `json:"dateAdded"`
}

// ContactUpsert is the payload for contact create/update calls.
type ContactUpsert struct {
	FirstName   string            `json:"firstName,omitempty"`
	LastName    string            `json:"lastName,omitempty"`
	Email       string            `json:"email,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	CustomField map[string]string `json:"customField,omitempty"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets a per-second rate limit for API calls.
// A burst equal to the integer portion of rps is allowed.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a GoHighLevel API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// wait blocks until the rate limiter allows one event, or ctx is cancelled.
func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *httpClient) do(ctx context.Context, method, path string, body any, out any) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "highlevel: rate limit")
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return eris.Wrap(err, "highlevel: marshal request")
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return eris.Wrap(err, "highlevel: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return eris.Wrap(err, "highlevel: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "highlevel: read response")
	}

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return eris.Errorf("highlevel: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return eris.Wrap(err, "highlevel: unmarshal response")
		}
	}
	return nil
}

// errNotFound is internal; LookupByEmail translates it to a nil contact.
var errNotFound = eris.New("highlevel: not found")

type contactEnvelope struct {
	Contact *Contact `json:"contact"`
}

type lookupEnvelope struct {
	Contacts []Contact `json:"contacts"`
}

func (c *httpClient) UpsertContact(ctx context.Context, req ContactUpsert) (*Contact, error) {
	var env contactEnvelope
	if err := c.do(ctx, http.MethodPost, "/contacts/", req, &env); err != nil {
		return nil, eris.Wrap(err, "highlevel: upsert contact")
	}
	if env.Contact == nil {
		return nil, eris.New("highlevel: upsert returned no contact")
	}
	return env.Contact, nil
}

func (c *httpClient) UpdateContact(ctx context.Context, contactID string, req ContactUpsert) (*Contact, error) {
	var env contactEnvelope
	path := fmt.Sprintf("/contacts/%s", url.PathEscape(contactID))
	if err := c.do(ctx, http.MethodPut, path, req, &env); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("highlevel: update contact %s", contactID))
	}
	if env.Contact == nil {
		return nil, eris.New("highlevel: update returned no contact")
	}
	return env.Contact, nil
}

func (c *httpClient) LookupByEmail(ctx context.Context, email string) (*Contact, error) {
	var env lookupEnvelope
	path := "/contacts/lookup?email=" + url.QueryEscape(email)
	err := c.do(ctx, http.MethodGet, path, nil, &env)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "highlevel: lookup contact")
	}
	if len(env.Contacts) == 0 {
		return nil, nil
	}
	return &env.Contacts[0], nil
}

func (c *httpClient) AddTags(ctx context.Context, contactID string, tags []string) error {
	path := fmt.Sprintf("/contacts/%s/tags/", url.PathEscape(contactID))
	body := map[string][]string{"tags": tags}
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return eris.Wrap(err, fmt.Sprintf("highlevel: add tags %s", contactID))
	}
	return nil
}
