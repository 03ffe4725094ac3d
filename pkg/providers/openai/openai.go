// Package openai provides a Completer implementation for the OpenAI Chat Completions API.
package openai

import (
	"context"
	"fmt"

	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/chat"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/message"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/role"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/modeladapter"
)

const completionsPath = "/v1/chat/completions"

var _ modeladapter.Completer = (*Adapter)(nil)

// Adapter implements modeladapter.Completer for the OpenAI Chat Completions API.
type Adapter struct {
	modeladapter.ModelAdapter
}

// New creates an Adapter configured for the OpenAI API.
// The baseURL should be "https://api.openai.com" (no trailing slash).
func New(baseURL, apiKey, model string) *Adapter {
	a := &Adapter{}
	a.BaseURL = baseURL
	a.Auth = modeladapter.Auth{Key: apiKey}
	a.Name = model
	a.MaxTokens = 4096

	return a
}

// Complete sends a conversation to the OpenAI Chat Completions API and returns
// the assistant's reply.
func (a *Adapter) Complete(ctx context.Context, c *chat.Chat) (message.Message, error) {
	req := a.buildRequest(c)

	var resp apiResponse
	if err := a.PostJSON(ctx, completionsPath, req, &resp); err != nil {
		return message.Message{}, fmt.Errorf("openai: %w", err)
	}

	a.Usage.Add(modeladapter.TokenCount{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	})

	if len(resp.Choices) == 0 {
		return message.Message{}, fmt.Errorf("openai: empty choices in response")
	}

	return parseChoice(resp.Choices[0]), nil
}

// --- request types ---

type apiRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Temperature *float64     `json:"temperature,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// --- response types ---

type apiResponse struct {
	Choices []apiChoice `json:"choices"`
	Usage   apiUsage    `json:"usage"`
}

type apiChoice struct {
	Message      apiRespMessage `json:"message"`
	FinishReason string         `json:"finish_reason"`
}

type apiRespMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

type apiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// --- conversion helpers ---

func (a *Adapter) buildRequest(c *chat.Chat) apiRequest {
	req := apiRequest{
		Model:     a.Name,
		MaxTokens: a.MaxTokens,
	}

	if a.Temperature != 0 {
		t := a.Temperature
		req.Temperature = &t
	}

	for _, m := range c.Messages() {
		req.Messages = append(req.Messages, apiMessage{
			Role:    m.Role.String(),
			Content: m.TextContent(),
		})
	}

	return req
}

func parseChoice(choice apiChoice) message.Message {
	text := ""
	if choice.Message.Content != nil {
		text = *choice.Message.Content
	}

	return message.NewText("", role.Assistant, text)
}
