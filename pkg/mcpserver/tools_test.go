package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/simplybook-mcp/sbmcp/pkg/config"
	"github.com/simplybook-mcp/sbmcp/pkg/credstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestServer wires a server against the given API endpoint. With
// seedToken the credential cache is primed, so handlers skip the login round
// trip entirely.
func newTestServer(t *testing.T, url string, seedToken bool) *Server {
	t.Helper()

	cfg := &config.Config{
		Company:  "acme",
		Login:    "u",
		Password: "p",
		BaseURL:  url,
		TokenDir: t.TempDir(),
	}

	logger := zap.NewNop().Sugar()
	if seedToken {
		store := credstore.NewFileStore(cfg.TokenDir, logger)
		require.NoError(t, store.Save("acme", "T1"))
	}
	return New(cfg, logger)
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return text.Text
}

func TestGetBookingsList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/bookings", r.URL.Path)
		assert.Equal(t, "T1", r.Header.Get("X-Token"))
		fmt.Fprint(w, `[{"id":1},{"id":2}]`)
	}))
	defer srv.Close()

	s := newTestServer(t, srv.URL, true)

	result, err := s.handleGetBookingsList(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, `"count": 2`)
	assert.Contains(t, text, `"success": true`)
}

func TestGetBookingDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":1,"client":"Ann"},{"id":2,"client":"Bob"}]`)
	}))
	defer srv.Close()

	s := newTestServer(t, srv.URL, true)

	result, err := s.handleGetBookingDetails(context.Background(), callRequest(map[string]interface{}{
		"booking_id": "2",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Bob")
}

func TestGetBookingDetailsRequiresID(t *testing.T) {
	s := newTestServer(t, "http://unused", true)

	result, err := s.handleGetBookingDetails(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "booking_id argument is required")
}

func TestCreateBooking(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/bookings", r.URL.Path)
		fmt.Fprint(w, `{"id":7}`)
	}))
	defer srv.Close()

	s := newTestServer(t, srv.URL, true)

	result, err := s.handleCreateBooking(context.Background(), callRequest(map[string]interface{}{
		"booking": map[string]interface{}{"client": "Ann", "event_id": 3},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"id": 7`)
}

func TestCreateBookingRejectsNonObject(t *testing.T) {
	s := newTestServer(t, "http://unused", true)

	result, err := s.handleCreateBooking(context.Background(), callRequest(map[string]interface{}{
		"booking": "not an object",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "booking must be a JSON object")
}

func TestApproveBooking(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/bookings/7/approve", r.URL.Path)
		fmt.Fprint(w, `{"id":7,"status":"confirmed"}`)
	}))
	defer srv.Close()

	s := newTestServer(t, srv.URL, true)

	result, err := s.handleApproveBooking(context.Background(), callRequest(map[string]interface{}{
		"booking_id": "7",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "confirmed")
}

func TestGetCalendarData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026-09-01", r.URL.Query().Get("date_from"))
		assert.Equal(t, "2026-09-07", r.URL.Query().Get("date_to"))
		fmt.Fprint(w, `[{"id":1}]`)
	}))
	defer srv.Close()

	s := newTestServer(t, srv.URL, true)

	result, err := s.handleGetCalendarData(context.Background(), callRequest(map[string]interface{}{
		"start_date": "2026-09-01",
		"end_date":   "2026-09-07",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"count": 1`)
}

func TestToolFailsWhenAuthenticationFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/admin/auth", r.URL.Path)
		fmt.Fprint(w, `{"error":"invalid credentials"}`)
	}))
	defer srv.Close()

	s := newTestServer(t, srv.URL, false)

	result, err := s.handleGetBookingsList(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	// Credential details never leak into tool output.
	assert.Equal(t, "could not authenticate", resultText(t, result))
}

func TestValidateToken(t *testing.T) {
	s := newTestServer(t, "http://unused", true)

	result, err := s.handleValidateToken(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"valid": true`)
}

func TestValidateTokenWithoutCredential(t *testing.T) {
	s := newTestServer(t, "http://unused", false)

	result, err := s.handleValidateToken(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, `"valid": false`)
	assert.Contains(t, text, "token not found or expired")
}
