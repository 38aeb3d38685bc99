package integrations

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ogulcanaydogan/focusboard/pkg/model"
)

// DefaultCalendarBaseURL is the Google Calendar v3 REST root.
const DefaultCalendarBaseURL = "https://www.googleapis.com/calendar/v3"

// CalendarConfig configures a CalendarClient.
type CalendarConfig struct {
	BaseURL    string
	Token      string
	CalendarID string
}

// CalendarEvent is the subset of an event focusboard writes.
type CalendarEvent struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// CalendarClient creates events through the Google Calendar REST API.
type CalendarClient struct {
	cfg    CalendarConfig
	client *http.Client
}

// NewCalendarClient creates a calendar client. A nil httpClient uses a
// default client with a 10s timeout.
func NewCalendarClient(cfg CalendarConfig, httpClient *http.Client) *CalendarClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultCalendarBaseURL
	}
	if cfg.CalendarID == "" {
		cfg.CalendarID = "primary"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &CalendarClient{cfg: cfg, client: newHTTPClient(httpClient)}
}

func (c *CalendarClient) Name() string { return "google-calendar" }

func (c *CalendarClient) APIType() model.APIType { return model.APICalendar }

type eventTime struct {
	DateTime string `json:"dateTime"`
}

type eventRequest struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
}

type eventResponse struct {
	ID string `json:"id"`
}

// CreateEvent inserts an event and returns its id.
func (c *CalendarClient) CreateEvent(ctx context.Context, ev CalendarEvent) (string, error) {
	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.cfg.BaseURL, url.PathEscape(c.cfg.CalendarID))
	body := eventRequest{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       eventTime{DateTime: ev.Start.Format(time.RFC3339)},
		End:         eventTime{DateTime: ev.End.Format(time.RFC3339)},
	}

	var out eventResponse
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.Token}
	if err := doJSON(ctx, c.client, http.MethodPost, endpoint, headers, body, &out); err != nil {
		return "", fmt.Errorf("calendar create event: %w", err)
	}
	if out.ID == "" {
		return "", model.Errorf(model.ErrUpstream, "calendar create event: empty event id")
	}
	return out.ID, nil
}
