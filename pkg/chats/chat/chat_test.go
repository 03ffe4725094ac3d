package chat_test

import (
	"testing"

	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/chat"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/message"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/role"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	m1 := message.NewText("u", role.User, "hello")
	m2 := message.NewText("a", role.Assistant, "hi")

	c := chat.New(m1, m2)
	assert.Equal(t, 2, c.Len())
}

func TestChat_ZeroValue(t *testing.T) {
	var c chat.Chat

	assert.Equal(t, 0, c.Len())

	c.Append(message.NewText("u", role.User, "hello"))
	assert.Equal(t, 1, c.Len())
}

func TestChat_Append(t *testing.T) {
	c := chat.New()
	c.Append(
		message.NewText("u", role.User, "one"),
		message.NewText("a", role.Assistant, "two"),
	)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "one", c.At(0).TextContent())
}

func TestChat_At_Panics(t *testing.T) {
	c := chat.New()
	assert.Panics(t, func() { c.At(0) })
}

func TestChat_Last(t *testing.T) {
	c := chat.New(
		message.NewText("u", role.User, "first"),
		message.NewText("a", role.Assistant, "second"),
	)

	last, ok := c.Last()
	assert.True(t, ok)
	assert.Equal(t, "second", last.TextContent())
}

func TestChat_Last_Empty(t *testing.T) {
	c := chat.New()

	_, ok := c.Last()
	assert.False(t, ok)
}

func TestChat_Messages_ReturnsCopy(t *testing.T) {
	c := chat.New(message.NewText("u", role.User, "hello"))

	msgs := c.Messages()
	msgs[0] = message.NewText("x", role.User, "mutated")

	assert.Equal(t, "hello", c.At(0).TextContent())
}

func TestChat_SystemPrompt(t *testing.T) {
	c := chat.New(
		message.NewText("", role.System, "be nice"),
		message.NewText("u", role.User, "hello"),
	)

	assert.Equal(t, "be nice", c.SystemPrompt())
}

func TestChat_SystemPrompt_None(t *testing.T) {
	c := chat.New(message.NewText("u", role.User, "hello"))
	assert.Equal(t, "", c.SystemPrompt())
}
