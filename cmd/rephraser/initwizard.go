package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/YuchengMaUTK/emoji-rephraser/pkg/providers/bedrock"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/rephraser"
)

type providerDefault struct {
	APIKey string //nolint:gosec // env var reference template, not a secret
	Model  string
}

//nolint:gosec // env var reference templates, not hardcoded secrets
var providerDefaults = map[string]providerDefault{
	"bedrock":   {APIKey: "${AWS_BEDROCK_API_KEY}", Model: bedrock.DefaultModel},
	"anthropic": {APIKey: "${ANTHROPIC_API_KEY}", Model: "claude-sonnet-4-20250514"},
	"openai":    {APIKey: "${OPENAI_API_KEY}", Model: "gpt-4o-mini"},
}

// runInit walks the user through creating a configuration file.
func runInit(path string) error {
	if _, err := os.Stat(path); err == nil {
		var overwrite bool
		if err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().Title(fmt.Sprintf("%s already exists. Overwrite?", path)).Value(&overwrite),
		)).Run(); err != nil {
			return err
		}
		if !overwrite {
			return nil
		}
	}

	cfg, err := runWizard()
	if err != nil {
		return err
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // config file, not a secret
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Wrote %s\n", path)

	return nil
}

func runWizard() (rephraser.FileConfig, error) {
	var cfg rephraser.FileConfig

	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Provider kind").
			Options(
				huh.NewOption("AWS Bedrock", "bedrock"),
				huh.NewOption("Anthropic", "anthropic"),
				huh.NewOption("OpenAI", "openai"),
			).
			Value(&cfg.Provider.Kind),
	)).Run(); err != nil {
		return cfg, err
	}

	defaults := providerDefaults[cfg.Provider.Kind]
	cfg.Provider.APIKey = defaults.APIKey
	cfg.Provider.Model = defaults.Model

	fields := []huh.Field{
		huh.NewInput().Title("API key env var reference").Value(&cfg.Provider.APIKey),
		huh.NewInput().Title("Model").Value(&cfg.Provider.Model),
	}

	if cfg.Provider.Kind == "bedrock" {
		cfg.Provider.Region = bedrock.DefaultRegion
		fields = append(fields, huh.NewInput().Title("AWS region").Value(&cfg.Provider.Region))
	}

	temperature := "0.7"
	fields = append(fields,
		huh.NewInput().Title("Temperature (0-1)").Value(&temperature).Validate(validateTemperature),
	)

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return cfg, err
	}

	cfg.Agent.Temperature, _ = strconv.ParseFloat(temperature, 64)

	return cfg, nil
}

func validateTemperature(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if f < 0 || f > 1 {
		return fmt.Errorf("must be between 0 and 1")
	}
	return nil
}
