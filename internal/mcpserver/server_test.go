package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/apptcal/internal/appointments"
	"github.com/starford/apptcal/internal/testutil"
)

func testServer(t *testing.T) (*Server, *appointments.Service) {
	t.Helper()
	svc, db, _ := testutil.TestService(t)
	return New(svc, db, "test"), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no in-process call helper, so dispatch to the handlers.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_appointments":
		result, err = srv.listAppointments(ctx, req)
	case "add_appointment":
		result, err = srv.addAppointment(ctx, req)
	case "remove_appointment":
		result, err = srv.removeAppointment(ctx, req)
	case "search_appointments":
		result, err = srv.searchAppointments(ctx, req)
	case "get_file_format":
		result, err = srv.getFileFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func addArgs(title, date, start, end string) map[string]interface{} {
	return map[string]interface{}{"title": title, "date": date, "start": start, "end": end}
}

func TestAddAndListAppointments(t *testing.T) {
	srv, svc := testServer(t)

	r := callTool(t, srv, "add_appointment", addArgs("Dentist", "2024-05-01", "09:00", "09:30"))
	if r.IsError {
		t.Fatalf("add failed: %s", resultText(r))
	}
	if text := resultText(r); text != "added 0: Dentist 2024-05-01 09:00 - 09:30" {
		t.Errorf("add result = %q", text)
	}
	if svc.Len() != 1 {
		t.Fatalf("len = %d, want 1", svc.Len())
	}

	r = callTool(t, srv, "list_appointments", map[string]interface{}{})
	if text := resultText(r); text != "0: Dentist 2024-05-01 09:00 - 09:30" {
		t.Errorf("list result = %q", text)
	}
}

func TestAddAppointment_ValidationError(t *testing.T) {
	srv, svc := testServer(t)

	r := callTool(t, srv, "add_appointment", addArgs("X", "2024-05-01", "10:00", "09:00"))
	if !r.IsError {
		t.Fatal("expected error for reversed times")
	}
	if !strings.HasPrefix(resultText(r), "ordering_violation") {
		t.Errorf("error text = %q", resultText(r))
	}
	if svc.Len() != 0 {
		t.Errorf("len = %d, want 0", svc.Len())
	}

	r = callTool(t, srv, "add_appointment", addArgs("X", "2024-05-01", "9:00", "10:00"))
	if !strings.HasPrefix(resultText(r), "invalid_time_format") {
		t.Errorf("error text = %q", resultText(r))
	}
}

func TestListAppointments_ByDate(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "add_appointment", addArgs("A", "2024-05-01", "09:00", "10:00"))
	callTool(t, srv, "add_appointment", addArgs("B", "2024-05-02", "09:00", "10:00"))

	r := callTool(t, srv, "list_appointments", map[string]interface{}{"date": "2024-05-02"})
	if text := resultText(r); text != "1: B 2024-05-02 09:00 - 10:00" {
		t.Errorf("list result = %q", text)
	}

	r = callTool(t, srv, "list_appointments", map[string]interface{}{"date": "May 2"})
	if !r.IsError {
		t.Error("expected error for bad date")
	}
}

func TestRemoveAppointment(t *testing.T) {
	srv, svc := testServer(t)
	callTool(t, srv, "add_appointment", addArgs("A", "2024-05-01", "09:00", "10:00"))

	r := callTool(t, srv, "remove_appointment", map[string]interface{}{"index": float64(3)})
	if !r.IsError {
		t.Error("expected error for out of range index")
	}
	if svc.Len() != 1 {
		t.Fatalf("len = %d, want 1", svc.Len())
	}

	r = callTool(t, srv, "remove_appointment", map[string]interface{}{"index": float64(0)})
	if r.IsError {
		t.Fatalf("remove failed: %s", resultText(r))
	}
	if text := resultText(r); text != "removed 0: A 2024-05-01 09:00 - 10:00" {
		t.Errorf("remove result = %q", text)
	}
	if svc.Len() != 0 {
		t.Errorf("len = %d, want 0", svc.Len())
	}
	if text := resultText(callTool(t, srv, "list_appointments", nil)); text != "no appointments" {
		t.Errorf("list result = %q", text)
	}
}

func TestSearchAppointments(t *testing.T) {
	srv, _ := testServer(t)
	callTool(t, srv, "add_appointment", addArgs("Dentist", "2024-05-01", "09:00", "09:30"))
	callTool(t, srv, "add_appointment", addArgs("Gym", "2024-05-01", "18:00", "19:00"))

	r := callTool(t, srv, "search_appointments", map[string]interface{}{"query": "Dentist"})
	if text := resultText(r); text != "0: Dentist 2024-05-01 09:00 - 09:30" {
		t.Errorf("search result = %q", text)
	}

	r = callTool(t, srv, "search_appointments", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing query")
	}
}

func TestGetFileFormat(t *testing.T) {
	srv, _ := testServer(t)
	text := resultText(callTool(t, srv, "get_file_format", nil))
	if !strings.Contains(text, "<title>,<YYYY-MM-DD>,<HH:mm>,<HH:mm>") {
		t.Errorf("format contract missing line layout: %q", text)
	}
}
