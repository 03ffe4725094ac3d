// Package mcpserver exposes the rephrasing operation as an MCP tool, so
// other agents can request emoji enhancement over the MCP protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Rephraser is the capability served over MCP.
type Rephraser interface {
	Rephrase(ctx context.Context, text string) (string, error)
}

const rephraseSchema = `{
	"type": "object",
	"properties": {
		"text": {
			"type": "string",
			"description": "The text to enhance with emojis"
		}
	},
	"required": ["text"]
}`

// Server serves the rephrase tool over the MCP protocol using the official
// MCP Go SDK.
type Server struct {
	server *mcp.Server
}

// New creates a Server with the given name and version, serving r.
func New(name, version string, r Rephraser) *Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	server.AddTool(&mcp.Tool{
		Name:        "rephrase",
		Description: "Enhance text with emojis while preserving all original words",
		InputSchema: json.RawMessage(rephraseSchema),
	}, rephraseHandler(r))

	return &Server{server: server}
}

// Serve starts serving MCP requests. It reads requests from in and writes
// responses to out. It blocks until ctx is cancelled or the transport closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	transport := &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: nopWriteCloser{out},
	}

	return s.run(ctx, transport)
}

// run starts the server with the given transport. Exported via Serve for
// production use; called directly by tests with InMemoryTransport.
func (s *Server) run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

type rephraseInput struct {
	Text string `json:"text"`
}

// rephraseHandler wraps the Rephraser as an SDK ToolHandler. Errors become
// IsError tool results rather than protocol failures.
func rephraseHandler(r Rephraser) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.Params.Arguments
		if args == nil {
			args = json.RawMessage("{}")
		}

		var input rephraseInput
		if err := json.Unmarshal(args, &input); err != nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("invalid arguments: %v", err)}},
				IsError: true,
			}, nil
		}

		result, err := r.Rephrase(ctx, input.Text)
		if err != nil {
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
				IsError: true,
			}, nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: result}},
		}, nil
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
