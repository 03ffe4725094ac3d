// Package anthropic provides a Completer implementation for the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"

	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/chat"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/content"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/message"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/role"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/modeladapter"
)

const messagesPath = "/v1/messages"

var _ modeladapter.Completer = (*Adapter)(nil)

// Adapter implements modeladapter.Completer for the Anthropic Messages API.
type Adapter struct {
	modeladapter.ModelAdapter
}

// New creates an Adapter configured for the Anthropic API.
// The baseURL should be "https://api.anthropic.com" (no trailing slash).
func New(baseURL, apiKey, model string) *Adapter {
	a := &Adapter{}
	a.BaseURL = baseURL
	a.Auth = modeladapter.Auth{
		Key:    apiKey,
		Header: "x-api-key",
	}
	a.Name = model
	a.MaxTokens = 4096
	a.Headers = map[string]string{
		"anthropic-version": "2023-06-01",
	}

	return a
}

// Complete sends a conversation to the Anthropic Messages API and returns the
// assistant's reply.
func (a *Adapter) Complete(ctx context.Context, c *chat.Chat) (message.Message, error) {
	req := a.buildRequest(c)

	var resp apiResponse
	if err := a.PostJSON(ctx, messagesPath, req, &resp); err != nil {
		return message.Message{}, fmt.Errorf("anthropic: %w", err)
	}

	a.Usage.Add(modeladapter.TokenCount{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	})

	return parseResponse(resp), nil
}

// --- request types ---

type apiRequest struct {
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	System      string       `json:"system,omitempty"`
	Messages    []apiMessage `json:"messages"`
	Temperature *float64     `json:"temperature,omitempty"`
}

type apiMessage struct {
	Role    string       `json:"role"`
	Content []apiContent `json:"content"`
}

type apiContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// --- response types ---

type apiResponse struct {
	Content    []apiContent `json:"content"`
	StopReason string       `json:"stop_reason"`
	Usage      apiUsage     `json:"usage"`
}

type apiUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// --- conversion helpers ---

func (a *Adapter) buildRequest(c *chat.Chat) apiRequest {
	req := apiRequest{
		Model:     a.Name,
		MaxTokens: a.MaxTokens,
		System:    c.SystemPrompt(),
	}

	if a.Temperature != 0 {
		t := a.Temperature
		req.Temperature = &t
	}

	for _, m := range c.Messages() {
		if m.Role == role.System {
			continue
		}
		appendMessage(&req.Messages, m)
	}

	return req
}

func appendMessage(msgs *[]apiMessage, m message.Message) {
	for _, p := range m.Parts {
		t, ok := p.(content.Text)
		if !ok {
			continue
		}

		block := apiContent{Type: "text", Text: t.Text}
		msgRole := mapRole(m.Role)

		// Merge into the last message if it has the same role.
		if len(*msgs) > 0 && (*msgs)[len(*msgs)-1].Role == msgRole {
			(*msgs)[len(*msgs)-1].Content = append((*msgs)[len(*msgs)-1].Content, block)
			continue
		}

		*msgs = append(*msgs, apiMessage{
			Role:    msgRole,
			Content: []apiContent{block},
		})
	}
}

func mapRole(r role.Role) string {
	if r == role.Assistant {
		return "assistant"
	}
	return "user"
}

func parseResponse(resp apiResponse) message.Message {
	var parts []content.Part

	for _, block := range resp.Content {
		if block.Type == "text" {
			parts = append(parts, content.Text{Text: block.Text})
		}
	}

	return message.New("", role.Assistant, parts...)
}
