package toplogger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Directory lists gyms and their reservation areas.
type Directory interface {
	FetchGyms(ctx context.Context) ([]Gym, error)
	FetchAreas(ctx context.Context, gymID int64) ([]ReservationArea, error)
}

// SlotLister lists the slot windows of one area on one date.
type SlotLister interface {
	FetchSlots(ctx context.Context, query SlotQuery) ([]Slot, error)
}

var (
	_ Directory  = (*Client)(nil)
	_ SlotLister = (*Client)(nil)
)

// Client talks to the TopLogger public HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// StatusError reports an HTTP status >= 400 returned by the API.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.StatusCode)
}

// Gone reports whether the resource no longer exists upstream.
func (e *StatusError) Gone() bool {
	return e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone
}

const (
	DefaultBaseURL   = "https://api.toplogger.nu/v1"
	defaultUserAgent = "spotwatch/0.1"
	requestTimeout   = 15 * time.Second
)

// NewClient builds a Client for baseURL. Requests from all callers share one
// limiter allowing requestsPerSecond; zero or less disables pacing.
func NewClient(baseURL string, requestsPerSecond float64) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: defaultUserAgent,
	}, nil
}

// FetchGyms retrieves the full gym directory.
func (c *Client) FetchGyms(ctx context.Context) ([]Gym, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []Gym
	if err := c.do(ctx, &url.URL{Path: "gyms"}, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchAreas retrieves the reservation areas of one gym.
func (c *Client) FetchAreas(ctx context.Context, gymID int64) ([]ReservationArea, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	rel := &url.URL{Path: "gyms/" + strconv.FormatInt(gymID, 10) + "/reservation_areas"}
	var payload []ReservationArea
	if err := c.do(ctx, rel, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchSlots retrieves the slot windows for an area on a date, in upstream order.
func (c *Client) FetchSlots(ctx context.Context, query SlotQuery) ([]Slot, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(query.Date) == "" {
		return nil, fmt.Errorf("date required")
	}
	values := url.Values{}
	values.Set("date", query.Date)
	values.Set("reservation_area_id", strconv.FormatInt(query.AreaID, 10))
	values.Set("slim", "true")
	rel := &url.URL{
		Path:     "gyms/" + strconv.FormatInt(query.GymID, 10) + "/slots",
		RawQuery: values.Encode(),
	}
	var payload []Slot
	if err := c.do(ctx, rel, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, rel *url.URL, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for request slot: %w", err)
	}

	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &StatusError{Path: "/" + rel.Path, StatusCode: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
