package rephraser

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk configuration for the rephraser CLI.
type FileConfig struct {
	Provider  ProviderConfig  `yaml:"provider"`
	Agent     Config          `yaml:"agent"`
	Retry     RetryConfig     `yaml:"retry"`
	Validator ValidatorConfig `yaml:"validator"`
}

// ProviderConfig describes the LLM provider instance to dial.
type ProviderConfig struct {
	Kind    string `yaml:"kind"`     // "bedrock" (default), "anthropic", or "openai".
	BaseURL string `yaml:"base_url"` // Override the provider's default endpoint.
	APIKey  string `yaml:"api_key"`  //nolint:gosec // configuration field, not a hardcoded secret
	Model   string `yaml:"model"`
	Region  string `yaml:"region"` // Bedrock only.
}

// RetryConfig controls connection retry behaviour.
type RetryConfig struct {
	MaxRetries   int    `yaml:"max_retries"`   // Dial attempts before giving up (default 3).
	InitialDelay string `yaml:"initial_delay"` // Backoff start as a duration string (e.g. "1s", "500ms").
}

// ValidatorConfig overrides the validator's data tables. Empty fields keep
// the defaults, so the emoji ranges and deny-list can be updated without
// touching control logic.
type ValidatorConfig struct {
	Fallback    string            `yaml:"fallback"`
	DenyList    []string          `yaml:"deny_list"`
	EmojiRanges []EmojiRangeConfig `yaml:"emoji_ranges"`
}

// EmojiRangeConfig is an inclusive code-point range written as hex strings,
// with or without a "U+" prefix (e.g. "1F000" or "U+2600").
type EmojiRangeConfig struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// LoadConfig reads a YAML file and returns a FileConfig.
// Environment variables referenced as ${VAR} or $VAR in the YAML are expanded
// before parsing. This allows API keys to be kept in environment variables
// (e.g. loaded from a .env file) rather than committed in the config.
func LoadConfig(path string) (FileConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return FileConfig{}, fmt.Errorf("rephraser: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg FileConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("rephraser: parse config: %w", err)
	}

	return cfg, nil
}

// ConnectorOpts converts the file configuration into Connector options.
func (fc FileConfig) ConnectorOpts(log *slog.Logger) (ConnectorOpts, error) {
	opts := ConnectorOpts{
		MaxRetries: fc.Retry.MaxRetries,
		Logger:     log,
	}

	if fc.Retry.InitialDelay != "" {
		d, err := time.ParseDuration(fc.Retry.InitialDelay)
		if err != nil {
			return ConnectorOpts{}, fmt.Errorf("rephraser: parse retry.initial_delay: %w", err)
		}
		opts.InitialDelay = d
	}

	vopts, err := fc.Validator.Opts(log)
	if err != nil {
		return ConnectorOpts{}, err
	}
	opts.Validator = NewValidator(vopts)

	return opts, nil
}

// Opts converts the validator file section into ValidatorOpts.
func (vc ValidatorConfig) Opts(log *slog.Logger) (ValidatorOpts, error) {
	opts := ValidatorOpts{
		Fallback: vc.Fallback,
		DenyList: vc.DenyList,
		Logger:   log,
	}

	if len(vc.EmojiRanges) > 0 {
		ranges := make([]RuneRange, 0, len(vc.EmojiRanges))
		for _, rc := range vc.EmojiRanges {
			rr, err := rc.parse()
			if err != nil {
				return ValidatorOpts{}, err
			}
			ranges = append(ranges, rr)
		}
		opts.EmojiRanges = ranges
	}

	return opts, nil
}

func (rc EmojiRangeConfig) parse() (RuneRange, error) {
	lo, err := parseCodePoint(rc.From)
	if err != nil {
		return RuneRange{}, fmt.Errorf("rephraser: parse emoji range %q: %w", rc.From, err)
	}

	hi, err := parseCodePoint(rc.To)
	if err != nil {
		return RuneRange{}, fmt.Errorf("rephraser: parse emoji range %q: %w", rc.To, err)
	}

	if hi < lo {
		return RuneRange{}, fmt.Errorf("rephraser: emoji range %s-%s is inverted", rc.From, rc.To)
	}

	return RuneRange{Lo: lo, Hi: hi}, nil
}

func parseCodePoint(s string) (rune, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "U+")

	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, err
	}

	return rune(n), nil
}

// Marshal renders the configuration back to YAML, used by the init wizard.
func (fc FileConfig) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("rephraser: marshal config: %w", err)
	}
	return data, nil
}
