package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("get_bookings_list",
		mcp.WithDescription("List all bookings for the configured company"),
	), s.handleGetBookingsList)

	s.mcp.AddTool(mcp.NewTool("get_booking_details",
		mcp.WithDescription("Get the details of a single booking"),
		mcp.WithString("booking_id",
			mcp.Required(),
			mcp.Description("ID of the booking"),
		),
	), s.handleGetBookingDetails)

	s.mcp.AddTool(mcp.NewTool("create_booking",
		mcp.WithDescription("Create a new booking"),
		mcp.WithObject("booking",
			mcp.Required(),
			mcp.Description("Booking fields as a JSON object"),
		),
	), s.handleCreateBooking)

	s.mcp.AddTool(mcp.NewTool("edit_booking",
		mcp.WithDescription("Edit an existing booking"),
		mcp.WithString("booking_id",
			mcp.Required(),
			mcp.Description("ID of the booking to edit"),
		),
		mcp.WithObject("booking",
			mcp.Required(),
			mcp.Description("Booking fields to change as a JSON object"),
		),
	), s.handleEditBooking)

	s.mcp.AddTool(mcp.NewTool("cancel_booking",
		mcp.WithDescription("Cancel a booking"),
		mcp.WithString("booking_id",
			mcp.Required(),
			mcp.Description("ID of the booking to cancel"),
		),
	), s.handleCancelBooking)

	s.mcp.AddTool(mcp.NewTool("approve_booking",
		mcp.WithDescription("Approve a pending booking"),
		mcp.WithString("booking_id",
			mcp.Required(),
			mcp.Description("ID of the booking to approve"),
		),
	), s.handleApproveBooking)

	s.mcp.AddTool(mcp.NewTool("get_available_slots",
		mcp.WithDescription("Get the available time slots for a service on a date"),
		mcp.WithString("service_id",
			mcp.Required(),
			mcp.Description("ID of the service"),
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Date in YYYY-MM-DD format"),
		),
	), s.handleGetAvailableSlots)

	s.mcp.AddTool(mcp.NewTool("get_calendar_data",
		mcp.WithDescription("Get the bookings within a date range"),
		mcp.WithString("start_date",
			mcp.Required(),
			mcp.Description("Start date in YYYY-MM-DD format"),
		),
		mcp.WithString("end_date",
			mcp.Required(),
			mcp.Description("End date in YYYY-MM-DD format"),
		),
	), s.handleGetCalendarData)

	s.mcp.AddTool(mcp.NewTool("validate_token",
		mcp.WithDescription("Check whether a valid cached token exists for the configured company"),
	), s.handleValidateToken)
}

// ensure runs the auth guard. A nil return means the caller may proceed.
// Failures become tool error results with a generic message, except an
// exhausted 403 loop whose throttling hint is preserved for the operator.
func (s *Server) ensure(ctx context.Context) *mcp.CallToolResult {
	res := s.guard.Ensure(ctx, s.cfg.Company, s.cfg.Login, s.cfg.Password)
	if res.Success {
		return nil
	}
	if strings.Contains(res.Message, "403") {
		return mcp.NewToolResultError(fmt.Sprintf("could not authenticate: %s: %s", res.Message, res.Err))
	}
	return mcp.NewToolResultError("could not authenticate")
}

func toolResultJSON(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleGetBookingsList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := s.ensure(ctx); res != nil {
		return res, nil
	}

	list, err := s.bookings.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list bookings: %v", err)), nil
	}

	return toolResultJSON(map[string]interface{}{
		"success":  true,
		"bookings": list,
		"count":    len(list),
	})
}

func (s *Server) handleGetBookingDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bookingID, err := request.RequireString("booking_id")
	if err != nil {
		return mcp.NewToolResultError("booking_id argument is required"), nil
	}

	if res := s.ensure(ctx); res != nil {
		return res, nil
	}

	booking, err := s.bookings.Details(ctx, bookingID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get booking details: %v", err)), nil
	}

	return toolResultJSON(map[string]interface{}{
		"success": true,
		"booking": booking,
	})
}

func (s *Server) handleCreateBooking(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	booking, ok := request.GetArguments()["booking"].(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("booking must be a JSON object"), nil
	}

	if res := s.ensure(ctx); res != nil {
		return res, nil
	}

	result, err := s.bookings.Create(ctx, booking)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create booking: %v", err)), nil
	}

	return toolResultJSON(map[string]interface{}{
		"success": true,
		"result":  result,
	})
}

func (s *Server) handleEditBooking(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bookingID, err := request.RequireString("booking_id")
	if err != nil {
		return mcp.NewToolResultError("booking_id argument is required"), nil
	}
	booking, ok := request.GetArguments()["booking"].(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("booking must be a JSON object"), nil
	}

	if res := s.ensure(ctx); res != nil {
		return res, nil
	}

	result, err := s.bookings.Edit(ctx, bookingID, booking)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to edit booking: %v", err)), nil
	}

	return toolResultJSON(map[string]interface{}{
		"success": true,
		"result":  result,
	})
}

func (s *Server) handleCancelBooking(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bookingID, err := request.RequireString("booking_id")
	if err != nil {
		return mcp.NewToolResultError("booking_id argument is required"), nil
	}

	if res := s.ensure(ctx); res != nil {
		return res, nil
	}

	result, err := s.bookings.Cancel(ctx, bookingID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to cancel booking: %v", err)), nil
	}

	return toolResultJSON(map[string]interface{}{
		"success": true,
		"result":  result,
	})
}

func (s *Server) handleApproveBooking(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bookingID, err := request.RequireString("booking_id")
	if err != nil {
		return mcp.NewToolResultError("booking_id argument is required"), nil
	}

	if res := s.ensure(ctx); res != nil {
		return res, nil
	}

	result, err := s.bookings.Approve(ctx, bookingID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to approve booking: %v", err)), nil
	}

	return toolResultJSON(map[string]interface{}{
		"success": true,
		"result":  result,
	})
}

func (s *Server) handleGetAvailableSlots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	serviceID, err := request.RequireString("service_id")
	if err != nil {
		return mcp.NewToolResultError("service_id argument is required"), nil
	}
	date, err := request.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("date argument is required"), nil
	}

	if res := s.ensure(ctx); res != nil {
		return res, nil
	}

	slots, err := s.bookings.AvailableSlots(ctx, serviceID, date)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get available slots: %v", err)), nil
	}

	return toolResultJSON(map[string]interface{}{
		"success": true,
		"slots":   slots,
	})
}

func (s *Server) handleGetCalendarData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	startDate, err := request.RequireString("start_date")
	if err != nil {
		return mcp.NewToolResultError("start_date argument is required"), nil
	}
	endDate, err := request.RequireString("end_date")
	if err != nil {
		return mcp.NewToolResultError("end_date argument is required"), nil
	}

	if res := s.ensure(ctx); res != nil {
		return res, nil
	}

	bookings, err := s.bookings.Calendar(ctx, startDate, endDate)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get calendar data: %v", err)), nil
	}

	return toolResultJSON(map[string]interface{}{
		"success":  true,
		"bookings": bookings,
		"count":    len(bookings),
	})
}

func (s *Server) handleValidateToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.guard.AuthHeaders(s.cfg.Company); err != nil {
		return toolResultJSON(map[string]interface{}{
			"valid":   false,
			"message": "token not found or expired",
		})
	}

	return toolResultJSON(map[string]interface{}{
		"valid":   true,
		"message": "token is valid",
	})
}
