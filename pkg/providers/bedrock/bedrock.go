// Package bedrock provides a Completer implementation for the AWS Bedrock
// runtime InvokeModel API, speaking the Anthropic Messages dialect that
// Claude models on Bedrock accept. Authentication uses a Bedrock API key
// (bearer token); SigV4 request signing is not supported.
package bedrock

import (
	"context"
	"fmt"
	"net/url"

	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/chat"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/content"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/message"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/role"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/modeladapter"
)

// Defaults match the hosted agent this tool was originally built against.
const (
	DefaultModel  = "anthropic.claude-3-5-sonnet-20241022-v2:0"
	DefaultRegion = "us-west-2"

	anthropicVersion = "bedrock-2023-05-31"
)

var _ modeladapter.Completer = (*Adapter)(nil)

// Adapter implements modeladapter.Completer for the Bedrock runtime API.
type Adapter struct {
	modeladapter.ModelAdapter
	Region string
}

// New creates an Adapter for the given region, API key, and model identifier.
// Empty region and model fall back to DefaultRegion and DefaultModel.
func New(region, apiKey, model string) *Adapter {
	if region == "" {
		region = DefaultRegion
	}
	if model == "" {
		model = DefaultModel
	}

	a := &Adapter{Region: region}
	a.BaseURL = "https://bedrock-runtime." + region + ".amazonaws.com"
	a.Auth = modeladapter.Auth{Key: apiKey}
	a.Name = model
	a.MaxTokens = 4096

	return a
}

// Complete sends a conversation to the Bedrock runtime and returns the
// assistant's reply.
func (a *Adapter) Complete(ctx context.Context, c *chat.Chat) (message.Message, error) {
	req := a.buildRequest(c)
	path := "/model/" + url.PathEscape(a.Name) + "/invoke"

	var resp apiResponse
	if err := a.PostJSON(ctx, path, req, &resp); err != nil {
		return message.Message{}, fmt.Errorf("bedrock: %w", err)
	}

	a.Usage.Add(modeladapter.TokenCount{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	})

	return parseResponse(resp), nil
}

// --- request types ---

type apiRequest struct {
	AnthropicVersion string       `json:"anthropic_version"`
	MaxTokens        int          `json:"max_tokens"`
	System           string       `json:"system,omitempty"`
	Messages         []apiMessage `json:"messages"`
	Temperature      *float64     `json:"temperature,omitempty"`
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
		AnthropicVersion: anthropicVersion,
		MaxTokens:        a.MaxTokens,
		System:           c.SystemPrompt(),
	}

	if a.Temperature != 0 {
		t := a.Temperature
		req.Temperature = &t
	}

	for _, m := range c.Messages() {
		if m.Role == role.System {
			continue
		}

		text := m.TextContent()
		if text == "" {
			continue
		}

		req.Messages = append(req.Messages, apiMessage{
			Role:    mapRole(m.Role),
			Content: []apiContent{{Type: "text", Text: text}},
		})
	}

	return req
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
