// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the appointment book to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/apptcal/internal/appointments"
	"github.com/starford/apptcal/internal/apperr"
	"github.com/starford/apptcal/internal/index"
	"github.com/starford/apptcal/internal/models"
)

const fileFormatURI = "apptcal://file-format"

// Server wraps the MCP server with appointment tools.
type Server struct {
	mcp *server.MCPServer
	svc *appointments.Service
	idx index.AppointmentIndex
}

// New creates a new MCP server with all appointment tools registered.
func New(svc *appointments.Service, idx index.AppointmentIndex, version string) *Server {
	s := &Server{svc: svc, idx: idx}

	s.mcp = server.NewMCPServer(
		"apptcal",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_appointments",
		mcp.WithDescription("List appointments in display order, one per line as '<index>: <title> <date> <start> - <end>'."),
		mcp.WithString("date", mcp.Description("Optional date filter (YYYY-MM-DD)")),
	), s.listAppointments)

	s.mcp.AddTool(mcp.NewTool("add_appointment",
		mcp.WithDescription("Append an appointment. Times are 24-hour HH:mm and start must be before end. "+
			"Read the format via get_file_format or the "+fileFormatURI+" resource if unsure."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Non-empty title without commas")),
		mcp.WithString("date", mcp.Required(), mcp.Description("Date as YYYY-MM-DD")),
		mcp.WithString("start", mcp.Required(), mcp.Description("Start time as HH:mm")),
		mcp.WithString("end", mcp.Required(), mcp.Description("End time as HH:mm")),
	), s.addAppointment)

	s.mcp.AddTool(mcp.NewTool("remove_appointment",
		mcp.WithDescription("Remove the appointment at a zero-based index as shown by list_appointments."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based list position")),
	), s.removeAppointment)

	s.mcp.AddTool(mcp.NewTool("search_appointments",
		mcp.WithDescription("Search appointment titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 20)")),
	), s.searchAppointments)

	s.mcp.AddTool(mcp.NewTool("get_file_format",
		mcp.WithDescription("Returns the appointment file format and validation rules."),
	), s.getFileFormat)

	// Resource: file format contract.
	s.mcp.AddResource(
		mcp.NewResource(fileFormatURI, "Appointment File Format",
			mcp.WithResourceDescription("Line format of the persisted appointment file."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFileFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func formatEntries(entries []appointments.Entry) string {
	if len(entries) == 0 {
		return "no appointments"
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("%d: %s", e.Index, e.Appointment)
	}
	return strings.Join(lines, "\n")
}

func (s *Server) listAppointments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := req.GetString("date", "")
	if raw == "" {
		return mcp.NewToolResultText(formatEntries(s.svc.Entries())), nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatEntries(s.svc.OnDate(d))), nil
}

func (s *Server) addAppointment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := appointments.Input{
		Title: req.GetString("title", ""),
		Date:  req.GetString("date", ""),
		Start: req.GetString("start", ""),
		End:   req.GetString("end", ""),
	}
	e, err := s.svc.Append(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", apperr.Kind(err), err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added %d: %s", e.Index, e.Appointment)), nil
}

func (s *Server) removeAppointment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	i, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, ok := s.svc.Take(ctx, i)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no appointment at index %d", i)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed %d: %s", i, a)), nil
}

func (s *Server) searchAppointments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.idx.Search(query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	lines := make([]string, len(hits))
	for i, h := range hits {
		lines[i] = fmt.Sprintf("%d: %s", h.Position, h.Appointment)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getFileFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FileFormatContract), nil
}

func (s *Server) readFileFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      fileFormatURI,
			MIMEType: "text/markdown",
			Text:     FileFormatContract,
		},
	}, nil
}
