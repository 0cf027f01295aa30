package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the Google Calendar v3 REST root.
const DefaultBaseURL = "https://www.googleapis.com/calendar/v3"

// Event is a Google Calendar event. Only the fields shiftsync reads or
// writes are mapped.
type Event struct {
	ID          string     `json:"id,omitempty"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Start       EventTime  `json:"start"`
	End         EventTime  `json:"end"`
	ColorID     string     `json:"colorId,omitempty"`
	Reminders   *Reminders `json:"reminders,omitempty"`
}

type EventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type Reminders struct {
	UseDefault bool               `json:"useDefault"`
	Overrides  []ReminderOverride `json:"overrides,omitempty"`
}

type ReminderOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

// Query selects events by time window and free text.
type Query struct {
	TimeMin time.Time
	TimeMax time.Time
	Text    string
}

// EventAPI is the subset of the calendar API used for reconciliation.
type EventAPI interface {
	ListEvents(ctx context.Context, q Query) ([]Event, error)
	CreateEvent(ctx context.Context, ev Event) (Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// APIError is a non-2xx response from the calendar API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("calendar API error %d: %s", e.Status, strings.TrimSpace(e.Body))
}

// Client talks to one Google calendar over REST.
type Client struct {
	httpClient *http.Client
	baseURL    string
	calendarID string
}

// NewClient returns a client for the user's primary calendar. An empty
// baseURL selects DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		calendarID: "primary",
	}
}

func (c *Client) eventsURL() string {
	return c.baseURL + "/calendars/" + url.PathEscape(c.calendarID) + "/events"
}

type eventsPage struct {
	Items         []Event `json:"items"`
	NextPageToken string  `json:"nextPageToken"`
}

// ListEvents returns matching events in API order, following pagination.
func (c *Client) ListEvents(ctx context.Context, q Query) ([]Event, error) {
	params := url.Values{}
	if !q.TimeMin.IsZero() {
		params.Set("timeMin", q.TimeMin.UTC().Format(time.RFC3339))
	}
	if !q.TimeMax.IsZero() {
		params.Set("timeMax", q.TimeMax.UTC().Format(time.RFC3339))
	}
	if q.Text != "" {
		params.Set("q", q.Text)
	}

	var all []Event
	for {
		endpoint := c.eventsURL()
		if len(params) > 0 {
			endpoint += "?" + params.Encode()
		}
		var page eventsPage
		if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, fmt.Errorf("listing events: %w", err)
		}
		all = append(all, page.Items...)
		if page.NextPageToken == "" {
			return all, nil
		}
		params.Set("pageToken", page.NextPageToken)
	}
}

// CreateEvent inserts ev and returns the stored event.
func (c *Client) CreateEvent(ctx context.Context, ev Event) (Event, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return Event{}, fmt.Errorf("marshalling event: %w", err)
	}
	var created Event
	if err := c.do(ctx, http.MethodPost, c.eventsURL(), body, &created); err != nil {
		return Event{}, fmt.Errorf("creating event: %w", err)
	}
	return created, nil
}

// DeleteEvent removes the event. An event that is already gone counts as
// deleted.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, c.eventsURL()+"/"+url.PathEscape(id), nil, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusNotFound || apiErr.Status == http.StatusGone) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("deleting event %s: %w", id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rd)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
