package anthropic_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/chat"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/message"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/role"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/providers/anthropic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *anthropic.Adapter {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return anthropic.New(srv.URL, "test-key", "claude-test")
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func readBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	var req map[string]any
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}

	return req
}

func TestComplete_SimpleText(t *testing.T) {
	adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		req := readBody(t, r)

		assert.Equal(t, "claude-test", req["model"])
		assert.Equal(t, "You are helpful.", req["system"])

		msgs, ok := req["messages"].([]any)
		assert.True(t, ok)
		assert.Len(t, msgs, 1)

		writeJSON(t, w, map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "Hello there!"},
			},
			"stop_reason": "end_turn",
			"usage": map[string]any{
				"input_tokens":  10,
				"output_tokens": 4,
			},
		})
	})

	c := chat.New(
		message.NewText("", role.System, "You are helpful."),
		message.NewText("", role.User, "Hi"),
	)

	msg, err := adapter.Complete(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, role.Assistant, msg.Role)
	assert.Equal(t, "Hello there!", msg.TextContent())

	total := adapter.Usage.Total()
	assert.Equal(t, 10, total.InputTokens)
	assert.Equal(t, 4, total.OutputTokens)
}

func TestComplete_Temperature(t *testing.T) {
	adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		req := readBody(t, r)
		assert.Equal(t, 0.7, req["temperature"])

		writeJSON(t, w, map[string]any{
			"content": []map[string]any{{"type": "text", "text": "ok"}},
		})
	})
	adapter.Temperature = 0.7

	c := chat.New(message.NewText("", role.User, "Hi"))

	_, err := adapter.Complete(context.Background(), c)
	require.NoError(t, err)
}

func TestComplete_ZeroTemperatureOmitted(t *testing.T) {
	adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		req := readBody(t, r)
		_, present := req["temperature"]
		assert.False(t, present)

		writeJSON(t, w, map[string]any{
			"content": []map[string]any{{"type": "text", "text": "ok"}},
		})
	})

	c := chat.New(message.NewText("", role.User, "Hi"))

	_, err := adapter.Complete(context.Background(), c)
	require.NoError(t, err)
}

func TestComplete_MergesSameRoleMessages(t *testing.T) {
	adapter := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		req := readBody(t, r)

		msgs, ok := req["messages"].([]any)
		require.True(t, ok)
		require.Len(t, msgs, 1)

		first, ok := msgs[0].(map[string]any)
		require.True(t, ok)
		blocks, ok := first["content"].([]any)
		require.True(t, ok)
		assert.Len(t, blocks, 2)

		writeJSON(t, w, map[string]any{
			"content": []map[string]any{{"type": "text", "text": "ok"}},
		})
	})

	c := chat.New(
		message.NewText("", role.User, "first"),
		message.NewText("", role.User, "second"),
	)

	_, err := adapter.Complete(context.Background(), c)
	require.NoError(t, err)
}

func TestComplete_HTTPError(t *testing.T) {
	adapter := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	})

	c := chat.New(message.NewText("", role.User, "Hi"))

	_, err := adapter.Complete(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic:")
}
