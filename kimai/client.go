package kimai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const apiTimeLayout = "2006-01-02T15:04:05"

// Client defines the timesheet API operations used by the export flow.
type Client interface {
	Timesheets(ctx context.Context, query TimesheetQuery) ([]Entry, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	EndpointURL string
	Token       string
	UserAgent   string
	HTTPClient  httpDoer
}

type HTTPClient struct {
	endpointURL string
	token       string
	userAgent   string
	httpClient  httpDoer
}

// TimesheetQuery filters the fetch to one user and one time window. The
// service treats begin and end as inclusive bounds.
type TimesheetQuery struct {
	UserID int
	Begin  time.Time
	End    time.Time
}

var (
	// ErrUnreachable wraps transport-level failures, including timeouts.
	ErrUnreachable = errors.New("timesheet service unreachable")
	// ErrInvalidResponse wraps bodies that are not a JSON array of entries.
	ErrInvalidResponse = errors.New("invalid timesheet response")
)

// StatusError reports a non-2xx response from the timesheet service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("timesheet request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("timesheet request failed with status %d: %s", e.StatusCode, e.Body)
}

func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	endpointURL := strings.TrimSpace(cfg.EndpointURL)
	if endpointURL == "" {
		return nil, errors.New("endpoint URL is required")
	}
	endpointURL = strings.TrimRight(endpointURL, "/")

	parsed, err := url.Parse(endpointURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid endpoint URL %q", cfg.EndpointURL)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("API token is required")
	}

	doer := cfg.HTTPClient
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}

	return &HTTPClient{
		endpointURL: endpointURL,
		token:       token,
		userAgent:   strings.TrimSpace(cfg.UserAgent),
		httpClient:  doer,
	}, nil
}

// Timesheets issues one GET against the configured endpoint with the user
// and date-range filters. The result is the full entry set the service
// returns for the window; there is no pagination follow-up, so a server-side
// truncation is passed through as-is.
func (c *HTTPClient) Timesheets(ctx context.Context, query TimesheetQuery) ([]Entry, error) {
	if query.UserID <= 0 {
		return nil, fmt.Errorf("user id must be positive, got %d", query.UserID)
	}

	params := url.Values{}
	params.Set("user", strconv.Itoa(query.UserID))
	params.Set("begin", FormatAPITime(query.Begin))
	params.Set("end", FormatAPITime(query.End))
	params.Set("full", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpointURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create timesheet request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return entries, nil
}

// FormatAPITime renders a timestamp the way the service's begin/end filters
// expect it: local wall-clock time without a zone offset.
func FormatAPITime(value time.Time) string {
	return value.Format(apiTimeLayout)
}

func ParseAPITime(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(apiTimeLayout, strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return parsed, nil
}
