package mcpserver

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rephraserFunc adapts a function to the Rephraser interface.
type rephraserFunc func(ctx context.Context, text string) (string, error)

func (f rephraserFunc) Rephrase(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

func decorate(_ context.Context, text string) (string, error) {
	return text + " ✨", nil
}

// setupTestClient creates a Server, connects an SDK client via in-memory
// transports, and returns the client session. The server runs in a background
// goroutine tied to t.Cleanup.
func setupTestClient(t *testing.T, r Rephraser) *mcp.ClientSession {
	t.Helper()

	s := New("test-server", "1.0.0", r)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- s.run(ctx, serverTransport)
	}()
	t.Cleanup(func() {
		cancel()
		<-serverDone
	})

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

func TestNew(t *testing.T) {
	s := New("srv", "1.0.0", rephraserFunc(decorate))
	assert.NotNil(t, s.server)
}

func TestListTools(t *testing.T) {
	session := setupTestClient(t, rephraserFunc(decorate))

	result, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, result.Tools, 1)

	tool := result.Tools[0]
	assert.Equal(t, "rephrase", tool.Name)
	assert.Contains(t, tool.Description, "emojis")
}

func TestCallRephrase(t *testing.T) {
	session := setupTestClient(t, rephraserFunc(decorate))

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "rephrase",
		Arguments: map[string]any{"text": "hello world"},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)

	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "hello world ✨", tc.Text)
}

func TestCallRephrase_EmptyText(t *testing.T) {
	session := setupTestClient(t, rephraserFunc(func(_ context.Context, text string) (string, error) {
		return text, nil
	}))

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "rephrase",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)

	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "", tc.Text)
}

func TestCallRephrase_Error(t *testing.T) {
	session := setupTestClient(t, rephraserFunc(func(_ context.Context, _ string) (string, error) {
		return "", errors.New("agent unavailable")
	}))

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "rephrase",
		Arguments: map[string]any{"text": "hi"},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	require.Len(t, result.Content, 1)

	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "agent unavailable", tc.Text)
}

func TestCallUnknownTool(t *testing.T) {
	session := setupTestClient(t, rephraserFunc(decorate))

	_, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "missing",
		Arguments: map[string]any{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestContextCancellation(t *testing.T) {
	s := New("srv", "1.0.0", rephraserFunc(decorate))
	serverTransport, _ := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.run(ctx, serverTransport)
	assert.ErrorIs(t, err, context.Canceled)
}
