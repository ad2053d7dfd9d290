package adsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/adsabs/orcidclaims/internal/ierr"
)

const (
	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 30 * time.Second
	// MaxRetries is the number of retry attempts after the first try on a
	// 429 or 5xx response.
	MaxRetries = 4
	// RetryDelay is the base backoff unit; each attempt doubles it.
	RetryDelay = 500 * time.Millisecond
)

// Client is the HTTP-backed implementation of ProfileSource, UpdatesFeed,
// StatusCallback, AuthorInfoSource, MetadataLookup, and OutputSink. One
// Client typically backs all six, since in the real deployment they are all
// endpoints of the same ADS API behind one bearer token.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a Client with the default timeout and retry policy.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// WithHTTPClient returns a copy of c using httpClient instead of the
// default one, for tests that need a custom transport or timeout.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	return &Client{BaseURL: c.BaseURL, Token: c.Token, HTTPClient: httpClient}
}

// WithBaseURL returns a copy of c pointed at a different base URL, for
// tests against an httptest.Server.
func (c *Client) WithBaseURL(baseURL string) *Client {
	return &Client{BaseURL: baseURL, Token: c.Token, HTTPClient: c.HTTPClient}
}

// do sends req, retrying on a 429 or 5xx response with exponential
// backoff, and decodes a 2xx JSON body into out (a nil out skips
// decoding). Non-retryable failures and retry exhaustion are reported as
// ierr.TransientIO.
func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.Token)

	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		resp, err := c.HTTPClient.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			if !sleepBackoff(ctx, attempt) {
				return ierr.New(ierr.TransientIO, "adsapi.do", ctx.Err())
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
			if !sleepBackoff(ctx, attempt) {
				return ierr.New(ierr.TransientIO, "adsapi.do", ctx.Err())
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return ierr.New(ierr.TransientIO, "adsapi.do", fmt.Errorf("status %d: %s", resp.StatusCode, string(body)))
		}

		if out == nil || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return ierr.New(ierr.TransientIO, "adsapi.do", fmt.Errorf("decode response: %w", err))
		}
		return nil
	}

	return ierr.New(ierr.TransientIO, "adsapi.do", fmt.Errorf("max retries (%d) exceeded: %w", MaxRetries, lastErr))
}

func sleepBackoff(ctx context.Context, attempt int) bool {
	delay := RetryDelay * time.Duration(1<<attempt)
	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}

type orcidWorkWire struct {
	Identifiers []Identifier `json:"identifiers"`
	Updated     time.Time    `json:"updated"`
	Provenance  string       `json:"provenance"`
}

type orcidProfileWire struct {
	Works    []orcidWorkWire `json:"works"`
	Modified time.Time       `json:"modified"`
}

// FetchProfile implements ProfileSource against API_ORCID_EXPORT_PROFILE.
func (c *Client) FetchProfile(ctx context.Context, orcidID, token, profileURL string) (*OrcidProfile, error) {
	url := fmt.Sprintf("%s/export/%s", c.BaseURL, orcidID)
	if profileURL != "" {
		url = profileURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ierr.New(ierr.TransientIO, "FetchProfile", err)
	}

	var wire orcidProfileWire
	cl := c
	if token != "" {
		cl = &Client{BaseURL: c.BaseURL, Token: token, HTTPClient: c.HTTPClient}
	}
	if err := cl.do(ctx, req, &wire); err != nil {
		return nil, err
	}

	profile := &OrcidProfile{Modified: wire.Modified}
	for _, w := range wire.Works {
		profile.Works = append(profile.Works, OrcidWork{
			Identifiers: w.Identifiers,
			Updated:     w.Updated,
			Provenance:  w.Provenance,
		})
	}
	return profile, nil
}

type updateEntryWire struct {
	OrcidID string    `json:"orcid_id"`
	Updated time.Time `json:"updated"`
	Created time.Time `json:"created"`
}

// FetchUpdatesSince implements UpdatesFeed against
// API_ORCID_UPDATES_ENDPOINT. An empty response (empty body or empty
// array) decodes to an empty slice, meaning "nothing new".
func (c *Client) FetchUpdatesSince(ctx context.Context, since time.Time) ([]UpdateEntry, error) {
	url := fmt.Sprintf("%s/updates/%s?fields=orcid_id,updated,created", c.BaseURL, since.UTC().Format(time.RFC3339))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ierr.New(ierr.TransientIO, "FetchUpdatesSince", err)
	}

	var wire []updateEntryWire
	if err := c.do(ctx, req, &wire); err != nil {
		return nil, err
	}

	out := make([]UpdateEntry, len(wire))
	for i, w := range wire {
		out[i] = UpdateEntry{OrcidID: w.OrcidID, Updated: w.Updated, Created: w.Created}
	}
	return out, nil
}

// PostBibcodeStatus implements StatusCallback against
// API_ORCID_UPDATE_BIB_STATUS.
func (c *Client) PostBibcodeStatus(ctx context.Context, orcidID string, statuses []BibcodeStatus) (map[string]string, error) {
	bibcodes := make([]string, len(statuses))
	for i, s := range statuses {
		bibcodes[i] = s.Bibcode
	}
	status := ""
	if len(statuses) > 0 {
		status = statuses[0].Status
	}

	payload, err := json.Marshal(map[string]any{
		"bibcodes": bibcodes,
		"status":   status,
	})
	if err != nil {
		return nil, ierr.New(ierr.Processing, "PostBibcodeStatus", err)
	}

	url := fmt.Sprintf("%s/update-bib-status/%s", c.BaseURL, orcidID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, ierr.New(ierr.TransientIO, "PostBibcodeStatus", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result map[string]string
	if err := c.do(ctx, req, &result); err != nil {
		return nil, err
	}
	return result, nil
}

type authorInfoWire struct {
	Name  string              `json:"name"`
	Facts map[string][]string `json:"facts"`
}

// FetchAuthorInfo implements AuthorInfoSource against
// API_ORCID_PROFILE_ENDPOINT.
func (c *Client) FetchAuthorInfo(ctx context.Context, orcidID string) (*AuthorInfo, error) {
	url := fmt.Sprintf("%s/profile/%s", c.BaseURL, orcidID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ierr.New(ierr.TransientIO, "FetchAuthorInfo", err)
	}

	var wire authorInfoWire
	if err := c.do(ctx, req, &wire); err != nil {
		return nil, err
	}
	return &AuthorInfo{Name: wire.Name, Facts: wire.Facts}, nil
}

type recordMetadataWire struct {
	Bibcode     string       `json:"bibcode"`
	Authors     []string     `json:"authors"`
	Identifiers []Identifier `json:"identifiers"`
}

// LookupByIdentifier implements MetadataLookup's alternate-identifier
// resolution path.
func (c *Client) LookupByIdentifier(ctx context.Context, idType, idValue string) (*RecordMetadata, error) {
	url := fmt.Sprintf("%s/resolve?type=%s&value=%s", c.BaseURL, idType, idValue)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ierr.New(ierr.TransientIO, "LookupByIdentifier", err)
	}

	var wire recordMetadataWire
	if err := c.do(ctx, req, &wire); err != nil {
		return nil, err
	}
	if wire.Bibcode == "" {
		return nil, nil
	}
	return &RecordMetadata{Bibcode: wire.Bibcode, Authors: wire.Authors, Identifiers: wire.Identifiers}, nil
}

// LookupByBibcode implements MetadataLookup's direct bibcode path.
func (c *Client) LookupByBibcode(ctx context.Context, bibcode string) (*RecordMetadata, error) {
	url := fmt.Sprintf("%s/metadata/%s", c.BaseURL, bibcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ierr.New(ierr.TransientIO, "LookupByBibcode", err)
	}

	var wire recordMetadataWire
	if err := c.do(ctx, req, &wire); err != nil {
		return nil, err
	}
	if wire.Bibcode == "" {
		return nil, nil
	}
	return &RecordMetadata{Bibcode: wire.Bibcode, Authors: wire.Authors, Identifiers: wire.Identifiers}, nil
}

// Send implements OutputSink by POSTing the message to the downstream
// exchange endpoint.
func (c *Client) Send(ctx context.Context, msg OutputMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return ierr.New(ierr.Processing, "Send", err)
	}
	url := fmt.Sprintf("%s/output", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return ierr.New(ierr.TransientIO, "Send", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(ctx, req, nil)
}

var (
	_ ProfileSource    = (*Client)(nil)
	_ UpdatesFeed      = (*Client)(nil)
	_ StatusCallback   = (*Client)(nil)
	_ AuthorInfoSource = (*Client)(nil)
	_ MetadataLookup   = (*Client)(nil)
	_ OutputSink       = (*Client)(nil)
)
