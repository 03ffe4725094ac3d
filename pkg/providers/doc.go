// Package providers groups the concrete LLM provider adapters.
//
// Each sub-package implements modeladapter.Completer for one hosted API:
//   - [github.com/YuchengMaUTK/emoji-rephraser/pkg/providers/bedrock] — AWS Bedrock runtime (InvokeModel, Anthropic dialect)
//   - [github.com/YuchengMaUTK/emoji-rephraser/pkg/providers/anthropic] — Anthropic Messages API
//   - [github.com/YuchengMaUTK/emoji-rephraser/pkg/providers/openai] — OpenAI Chat Completions API
//
// This package contains no provider-specific code itself.
package providers
