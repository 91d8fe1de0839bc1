package bookings

import (
	"context"
	"fmt"
	"net/url"
	"time"

	rhttp "github.com/hashicorp/go-retryablehttp"
	"github.com/simplybook-mcp/sbmcp/pkg/guard"
	"github.com/simplybook-mcp/sbmcp/pkg/httpclient"
	"github.com/simplybook-mcp/sbmcp/pkg/util"
	"go.uber.org/zap"
)

// Client calls the booking resources of the SimplyBook admin API. Auth
// headers are fetched fresh from the guard on every call; callers must run
// EnsureAuthenticated first.
type Client struct {
	api     *httpclient.Client
	guard   *guard.Guard
	company string
}

func New(baseURL, company string, g *guard.Guard, logger *zap.SugaredLogger) *Client {
	rc := rhttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 1 * time.Second
	rc.RetryWaitMax = 10 * time.Second
	rc.Logger = &util.ZapWrapper{Log: logger}
	rc.HTTPClient.Timeout = httpclient.RequestTimeout

	return &Client{
		api:     httpclient.NewWithDoer(baseURL+"/admin", nil, rc.StandardClient(), logger),
		guard:   g,
		company: company,
	}
}

// authed binds the current auth headers to the shared transport.
func (c *Client) authed() (*httpclient.Client, error) {
	headers, err := c.guard.AuthHeaders(c.company)
	if err != nil {
		return nil, err
	}
	return c.api.WithHeaders(headers), nil
}

// List returns all bookings.
func (c *Client) List(ctx context.Context) ([]map[string]interface{}, error) {
	api, err := c.authed()
	if err != nil {
		return nil, err
	}

	resp, err := api.Get(ctx, "/bookings", nil)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("unable to list bookings, status: %d", resp.StatusCode)
	}

	var bookings []map[string]interface{}
	if err := resp.Decode(&bookings); err != nil {
		return nil, fmt.Errorf("unable to decode bookings: %w", err)
	}
	return bookings, nil
}

// Details returns one booking by id. The admin API has no per-booking read,
// so the list is fetched and filtered.
func (c *Client) Details(ctx context.Context, bookingID string) (map[string]interface{}, error) {
	bookings, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		if fmt.Sprint(b["id"]) == bookingID {
			return b, nil
		}
	}
	return nil, fmt.Errorf("booking with id %s not found", bookingID)
}

// Create registers a new booking.
func (c *Client) Create(ctx context.Context, booking map[string]interface{}) (map[string]interface{}, error) {
	return c.post(ctx, "/bookings", booking)
}

// Edit updates an existing booking.
func (c *Client) Edit(ctx context.Context, bookingID string, booking map[string]interface{}) (map[string]interface{}, error) {
	api, err := c.authed()
	if err != nil {
		return nil, err
	}

	resp, err := api.Put(ctx, "/bookings/"+bookingID, booking)
	if err != nil {
		return nil, err
	}
	return decodeObject(resp, "edit booking")
}

// Cancel removes a booking.
func (c *Client) Cancel(ctx context.Context, bookingID string) (map[string]interface{}, error) {
	api, err := c.authed()
	if err != nil {
		return nil, err
	}

	resp, err := api.Delete(ctx, "/bookings/"+bookingID)
	if err != nil {
		return nil, err
	}
	return decodeObject(resp, "cancel booking")
}

// Approve confirms a pending booking.
func (c *Client) Approve(ctx context.Context, bookingID string) (map[string]interface{}, error) {
	return c.post(ctx, "/bookings/"+bookingID+"/approve", nil)
}

// AvailableSlots returns the free time slots for a service on a date.
func (c *Client) AvailableSlots(ctx context.Context, serviceID, date string) (map[string]interface{}, error) {
	api, err := c.authed()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("event_id", serviceID)
	params.Set("date", date)

	resp, err := api.Get(ctx, "/time-slots", params)
	if err != nil {
		return nil, err
	}
	return decodeObject(resp, "available slots")
}

// Calendar returns the bookings within a date range.
func (c *Client) Calendar(ctx context.Context, startDate, endDate string) ([]map[string]interface{}, error) {
	api, err := c.authed()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("date_from", startDate)
	params.Set("date_to", endDate)

	resp, err := api.Get(ctx, "/bookings", params)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("unable to fetch calendar data, status: %d", resp.StatusCode)
	}

	var bookings []map[string]interface{}
	if err := resp.Decode(&bookings); err != nil {
		return nil, fmt.Errorf("unable to decode calendar data: %w", err)
	}
	return bookings, nil
}

func (c *Client) post(ctx context.Context, path string, body map[string]interface{}) (map[string]interface{}, error) {
	api, err := c.authed()
	if err != nil {
		return nil, err
	}

	var payload interface{}
	if body != nil {
		payload = body
	}

	resp, err := api.Post(ctx, path, payload)
	if err != nil {
		return nil, err
	}
	return decodeObject(resp, "booking request")
}

func decodeObject(resp *httpclient.Response, op string) (map[string]interface{}, error) {
	if resp.IsError() {
		return nil, fmt.Errorf("%s failed, status: %d", op, resp.StatusCode)
	}

	var result map[string]interface{}
	if len(resp.Body) > 0 {
		if err := resp.Decode(&result); err != nil {
			return nil, fmt.Errorf("unable to decode %s response: %w", op, err)
		}
	}
	return result, nil
}
