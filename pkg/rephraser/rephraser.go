// Package rephraser implements the emoji rephrasing core: a Connector that
// owns the connection to a hosted LLM agent with bounded retry, and a
// Validator that sanity-checks model output before it reaches the user.
package rephraser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/chat"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/message"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/chats/role"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/modeladapter"
)

// DefaultSystemPrompt instructs the model to decorate text without altering it.
const DefaultSystemPrompt = "You are an emoji rephraser. Your job is to enhance user input with relevant emojis " +
	"while preserving all the original words. Add emojis before or after relevant words " +
	"or at the beginning/end of sentences to make the text more expressive and fun. " +
	"Do not remove or change any words from the original text. " +
	"For example, 'I love pizza' should be rephrased as 'I ❤️ love pizza 🍕' or 'I love pizza 🍕❤️'. " +
	"Be creative but relevant with emoji choices."

// promptPrefix wraps each user input before it is sent to the model.
const promptPrefix = "Enhance this text with emojis while preserving all original words: "

const (
	defaultMaxRetries   = 3
	defaultInitialDelay = time.Second
)

// Config holds the agent settings supplied at Connector construction.
// Zero-value fields are filled from DefaultConfig; the merged result is
// immutable for the lifetime of the Connector.
type Config struct {
	SystemPrompt string  `yaml:"system_prompt"`
	Temperature  float64 `yaml:"temperature"` // Sampling temperature in [0,1].
}

// DefaultConfig returns the rephraser's default agent settings.
func DefaultConfig() Config {
	return Config{
		SystemPrompt: DefaultSystemPrompt,
		Temperature:  0.7, // Higher temperature for more creative outputs.
	}
}

// merge fills zero-value fields of c from defaults, key-wise.
func (c Config) merge(defaults Config) Config {
	if c.SystemPrompt == "" {
		c.SystemPrompt = defaults.SystemPrompt
	}
	if c.Temperature == 0 {
		c.Temperature = defaults.Temperature
	}
	return c
}

// ConnectionError is returned by EnsureConnected once the retry budget is
// exhausted. It carries the number of attempts made and the last failure.
type ConnectionError struct {
	Attempts int
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to model agent after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// DialFunc constructs a live completer (the agent handle) from the agent
// configuration. It is called by EnsureConnected, possibly several times.
type DialFunc func(ctx context.Context, cfg Config) (modeladapter.Completer, error)

// ConnectorOpts configures a Connector. Zero values select defaults.
type ConnectorOpts struct {
	MaxRetries   int           // Dial attempts before giving up (default 3).
	InitialDelay time.Duration // Delay before the second attempt; doubles each retry (default 1s).
	Logger       *slog.Logger  // Destination for connection and validation logs (default: discard).
	Validator    *Validator    // Response validator used by Rephrase (default: NewValidator with defaults).
}

// Connector owns the lifecycle of the agent handle and the outbound
// generate call. All methods are safe for concurrent use; at most one
// handle construction is in flight at a time.
type Connector struct {
	dial         DialFunc
	cfg          Config
	log          *slog.Logger
	valid        *Validator
	maxRetries   int
	initialDelay time.Duration

	// sleepFunc is used for testing; defaults to a context-aware sleep.
	sleepFunc func(ctx context.Context, d time.Duration) error

	mu     sync.Mutex
	handle modeladapter.Completer
}

// New creates a Connector. The supplied Config is merged over DefaultConfig
// key-wise, so callers only set the fields they want to override.
func New(dial DialFunc, cfg Config, opts ConnectorOpts) *Connector {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = defaultInitialDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Validator == nil {
		opts.Validator = NewValidator(ValidatorOpts{Logger: opts.Logger})
	}

	return &Connector{
		dial:         dial,
		cfg:          cfg.merge(DefaultConfig()),
		log:          opts.Logger,
		valid:        opts.Validator,
		maxRetries:   opts.MaxRetries,
		initialDelay: opts.InitialDelay,
		sleepFunc:    contextSleep,
	}
}

// SetSleepFunc overrides the backoff sleep function (for testing).
func (c *Connector) SetSleepFunc(fn func(ctx context.Context, d time.Duration) error) {
	c.sleepFunc = fn
}

// Config returns the merged agent configuration.
func (c *Connector) Config() Config { return c.cfg }

// Connected reports whether a live agent handle is held.
func (c *Connector) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.handle != nil
}

// Completer returns the current agent handle, or nil when disconnected.
// The CLI uses it to read token usage off the adapter on exit.
func (c *Connector) Completer() modeladapter.Completer {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.handle
}

// EnsureConnected makes sure a live agent handle exists, dialing with
// exponential backoff when it does not. On success the handle is stored for
// reuse; after the retry budget is exhausted it returns a *ConnectionError
// carrying the last cause and the handle remains absent.
func (c *Connector) EnsureConnected(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ensureConnectedLocked(ctx)
}

func (c *Connector) ensureConnectedLocked(ctx context.Context) error {
	if c.handle != nil {
		return nil
	}

	delay := c.initialDelay

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		c.log.Info("initializing model agent", "attempt", attempt, "max_attempts", c.maxRetries)

		h, err := c.dial(ctx, c.cfg)
		if err == nil {
			c.handle = h
			c.log.Info("model agent initialized")
			return nil
		}

		lastErr = err

		if attempt == c.maxRetries {
			break
		}

		c.log.Warn("agent initialization failed", "error", err, "retry_in", delay)

		if serr := c.sleepFunc(ctx, delay); serr != nil {
			// Interrupted mid-backoff; report how far we got.
			lastErr = serr
			return &ConnectionError{Attempts: attempt, Err: lastErr}
		}

		delay *= 2
	}

	connErr := &ConnectionError{Attempts: c.maxRetries, Err: lastErr}
	c.log.Error("giving up on agent initialization", "error", connErr)

	return connErr
}

// Send wraps text in the rephrasing prompt and invokes the remote model,
// returning the raw response text. Empty input is returned unchanged with no
// network call. A missing handle triggers EnsureConnected first; its failure
// is surfaced wrapped, as are send-time failures. Send-time failures are not
// retried and do not invalidate the handle.
func (c *Connector) Send(ctx context.Context, text string) (string, error) {
	if text == "" {
		return text, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle == nil {
		if err := c.ensureConnectedLocked(ctx); err != nil {
			return "", fmt.Errorf("agent unavailable: %w", err)
		}
	}

	conv := chat.New(
		message.NewText("", role.System, c.cfg.SystemPrompt),
		message.NewText("", role.User, promptPrefix+text),
	)

	c.log.Debug("sending rephrasing request", "text", text)

	reply, err := c.handle.Complete(ctx, conv)
	if err != nil {
		return "", fmt.Errorf("rephrasing failed: %w", err)
	}

	raw := reply.TextContent()
	c.log.Debug("rephrasing response received", "response", raw)

	return raw, nil
}

// Rephrase is the caller-facing façade: it sends text through the model and
// validates the response. Empty input short-circuits to empty output.
func (c *Connector) Rephrase(ctx context.Context, text string) (string, error) {
	if text == "" {
		return text, nil
	}

	raw, err := c.Send(ctx, text)
	if err != nil {
		return "", err
	}

	return c.valid.Validate(text, raw), nil
}

// Shutdown releases the agent handle. It is idempotent and safe to call even
// if the Connector never connected.
func (c *Connector) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != nil {
		c.log.Info("shutting down model agent")
	}
	c.handle = nil
}

// contextSleep sleeps for d or until ctx is cancelled.
func contextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
