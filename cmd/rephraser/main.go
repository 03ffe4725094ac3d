// Rephraser is an interactive terminal chat that enhances text with emojis.
// It forwards each line of user input to a hosted LLM agent, validates the
// response, and prints the emoji-decorated result. Besides the chat loop it
// offers an init wizard for the YAML configuration and an MCP server mode
// that exposes the rephrase operation to other agents.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/YuchengMaUTK/emoji-rephraser/pkg/mcpserver"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/rephraser"
)

const (
	appName    = "emoji-rephraser"
	appVersion = "0.1.0"

	defaultConfigPath = "rephraser.yaml"
)

func main() {
	// Handle subcommands before flag parsing.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "init":
			initCmd := flag.NewFlagSet("init", flag.ExitOnError)
			initCmd.Usage = func() {
				fmt.Fprintf(os.Stderr, "Usage: rephraser init [flags]\n\nCreate a configuration file interactively.\n\nFlags:\n")
				initCmd.PrintDefaults()
			}
			out := initCmd.String("config", defaultConfigPath, "path of the configuration file to write")
			_ = initCmd.Parse(os.Args[2:])

			if err := runInit(*out); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			return
		case "serve":
			serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
			serveCmd.Usage = func() {
				fmt.Fprintf(os.Stderr, "Usage: rephraser serve [flags]\n\nServe the rephrase tool over MCP on stdin/stdout.\n\nFlags:\n")
				serveCmd.PrintDefaults()
			}
			cfgPath := serveCmd.String("config", defaultConfigPath, "path to configuration file (ignored if missing)")
			envFile := serveCmd.String("env", ".env", "path to .env file (ignored if missing)")
			_ = serveCmd.Parse(os.Args[2:])

			if err := loadDotEnv(*envFile); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			if err := runServe(*cfgPath); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}

			return
		}
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rephraser [flags]\n       rephraser <command> [flags]\n\nFlags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands:\n  init   Create a configuration file interactively\n  serve  Serve the rephrase tool over MCP on stdin/stdout\n")
	}

	configPath := flag.String("config", defaultConfigPath, "path to configuration file (ignored if missing)")
	envFile := flag.String("env", ".env", "path to .env file (ignored if missing)")
	verbose := flag.Bool("verbose", false, "log agent traffic and show a diff of each rephrasing")
	flag.Parse()

	if err := loadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(*configPath, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadDotEnv loads environment variables from path. If the file does not exist
// it is silently ignored so that .env files remain optional.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// newLogger builds the CLI logger. Verbose mode lowers the level to Debug so
// the raw agent traffic becomes visible; otherwise only warnings surface.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildConnector loads the configuration (a missing file falls back to
// defaults) and assembles the Connector for it.
func buildConnector(configPath string, log *slog.Logger) (*rephraser.Connector, error) {
	cfg, err := rephraser.LoadConfig(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = rephraser.FileConfig{}
	}

	// Zero-config runs pick the API key up from the environment directly.
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = os.Getenv("AWS_BEDROCK_API_KEY")
	}

	opts, err := cfg.ConnectorOpts(log)
	if err != nil {
		return nil, err
	}

	return rephraser.New(cfg.Provider.Dialer(), cfg.Agent, opts), nil
}

// run is the interactive chat mode: connect the agent, then loop on user
// input until the user quits.
func run(configPath string, verbose bool) error {
	log := newLogger(verbose)

	conn, err := buildConnector(configPath, log)
	if err != nil {
		return err
	}
	defer conn.Shutdown()

	t := newTerminal(os.Stdin, os.Stdout, verbose)
	t.displayWelcome()
	defer t.displayGoodbye(conn)

	t.displayMessage("Initializing emoji rephraser agent...")
	if err := conn.EnsureConnected(context.Background()); err != nil {
		return err
	}

	return conversationLoop(t, conn)
}

// runServe exposes the rephrase operation over MCP on stdin/stdout. The
// connection to the model agent is established lazily on the first call.
func runServe(configPath string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// MCP owns stdout, so logs must stay on stderr and out of the way.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	conn, err := buildConnector(configPath, log)
	if err != nil {
		return err
	}
	defer conn.Shutdown()

	srv := mcpserver.New(appName, appVersion, conn)

	return srv.Serve(ctx, os.Stdin, os.Stdout)
}
