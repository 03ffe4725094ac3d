package rephraser

import (
	"context"
	"fmt"
	"sync"

	"github.com/YuchengMaUTK/emoji-rephraser/pkg/modeladapter"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/providers/anthropic"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/providers/bedrock"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/providers/openai"
)

// ProviderFactory creates a Completer from provider and agent configuration.
type ProviderFactory func(cfg ProviderConfig, agent Config) (modeladapter.Completer, error)

var (
	factoryMu   sync.RWMutex
	factories   = map[string]ProviderFactory{}
	defaultsReg sync.Once
)

func ensureDefaults() {
	defaultsReg.Do(func() {
		factories["bedrock"] = newBedrock
		factories["anthropic"] = newAnthropic
		factories["openai"] = newOpenAI
	})
}

// RegisterProvider registers a custom provider factory under the given kind.
// It can be called before Dialer to extend the CLI with additional providers.
func RegisterProvider(kind string, factory ProviderFactory) {
	ensureDefaults()

	factoryMu.Lock()
	defer factoryMu.Unlock()

	factories[kind] = factory
}

// getFactory returns the factory for the given kind.
func getFactory(kind string) (ProviderFactory, bool) {
	ensureDefaults()

	factoryMu.RLock()
	defer factoryMu.RUnlock()

	f, ok := factories[kind]
	return f, ok
}

func newBedrock(cfg ProviderConfig, agent Config) (modeladapter.Completer, error) {
	a := bedrock.New(cfg.Region, cfg.APIKey, cfg.Model)
	if cfg.BaseURL != "" {
		a.BaseURL = cfg.BaseURL
	}
	a.Temperature = agent.Temperature

	return a, nil
}

func newAnthropic(cfg ProviderConfig, agent Config) (modeladapter.Completer, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}

	a := anthropic.New(baseURL, cfg.APIKey, cfg.Model)
	a.Temperature = agent.Temperature

	return a, nil
}

func newOpenAI(cfg ProviderConfig, agent Config) (modeladapter.Completer, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	a := openai.New(baseURL, cfg.APIKey, cfg.Model)
	a.Temperature = agent.Temperature

	return a, nil
}

// Dialer returns a DialFunc that builds a Completer for the configured
// provider kind. An empty kind selects "bedrock", matching the hosted agent
// this tool was originally built against.
func (cfg ProviderConfig) Dialer() DialFunc {
	return func(_ context.Context, agent Config) (modeladapter.Completer, error) {
		kind := cfg.Kind
		if kind == "" {
			kind = "bedrock"
		}

		factory, ok := getFactory(kind)
		if !ok {
			return nil, fmt.Errorf("rephraser: unknown provider kind %q", kind)
		}

		return factory(cfg, agent)
	}
}
