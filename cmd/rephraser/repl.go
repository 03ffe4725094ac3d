package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/term"

	"github.com/YuchengMaUTK/emoji-rephraser/pkg/modeladapter"
	"github.com/YuchengMaUTK/emoji-rephraser/pkg/rephraser"
)

// command classifies a line of user input.
type command int

const (
	cmdText command = iota
	cmdEmpty
	cmdExit
	cmdHelp
	cmdClear
)

// classifyCommand maps special inputs to commands; everything else is text
// to rephrase.
func classifyCommand(input string) command {
	switch strings.ToLower(input) {
	case "":
		return cmdEmpty
	case "exit", "quit", "bye", "q":
		return cmdExit
	case "help", "?", "h":
		return cmdHelp
	case "clear", "cls":
		return cmdClear
	}
	return cmdText
}

const helpMarkdown = `# Help

- Type any text to get it enhanced with emojis
- The rephraser will add emojis while preserving your original words

## Commands

| Command | Effect |
|---|---|
| ` + "`exit`, `quit`, `bye`, `q`" + ` | Exit the application |
| ` + "`help`, `?`, `h`" + ` | Display this help |
| ` + "`clear`, `cls`" + ` | Clear the screen |

Happy rephrasing!
`

// terminal manages user interaction on stdin/stdout.
type terminal struct {
	in       *bufio.Scanner
	out      io.Writer
	emojiOK  bool
	isTTY    bool
	verbose  bool
	width    int
	markdown *glamour.TermRenderer
	spin     *spinner
}

func newTerminal(in *os.File, out *os.File, verbose bool) *terminal {
	isTTY := term.IsTerminal(int(out.Fd()))

	width := 80
	if isTTY {
		if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	t := &terminal{
		in:      bufio.NewScanner(in),
		out:     out,
		emojiOK: emojiSupport(),
		isTTY:   isTTY,
		verbose: verbose,
		width:   width,
		spin:    newSpinner(out, isTTY),
	}

	if r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(width, 100)),
	); err == nil {
		t.markdown = r
	}

	return t
}

// emojiSupport probes whether the terminal is likely to render emoji. Most
// Unix terminals do; on Windows only the modern hosts are trusted.
func emojiSupport() bool {
	if runtime.GOOS == "windows" {
		return os.Getenv("WT_SESSION") != "" || os.Getenv("CMDER_ROOT") != ""
	}
	return true
}

// glyph returns g when the terminal renders emoji, fallback otherwise.
func (t *terminal) glyph(g, fallback string) string {
	if t.emojiOK {
		return g
	}
	return fallback
}

func (t *terminal) clearScreen() {
	if !t.isTTY {
		return
	}
	fmt.Fprint(t.out, "\033[2J\033[H")
}

func (t *terminal) displayWelcome() {
	t.clearScreen()

	star := t.glyph("✨", "*")
	rocket := t.glyph("🚀", ">")

	banner := fmt.Sprintf("%s Welcome to Emoji Rephraser! %s", star, star)
	body := fmt.Sprintf(
		"Type your message and get it enhanced with emojis.\nType %s to exit, %s for instructions.\n\nLet's start rephrasing! %s",
		dimStyle.Render("exit"), dimStyle.Render("help"), rocket,
	)

	fmt.Fprintln(t.out, bannerStyle.Render(banner))
	fmt.Fprintln(t.out, welcomeBodyStyle.Render(body))
}

func (t *terminal) displayHelp() {
	if t.markdown != nil {
		if rendered, err := t.markdown.Render(helpMarkdown); err == nil {
			fmt.Fprint(t.out, rendered)
			return
		}
	}
	fmt.Fprintf(t.out, "%s\n", helpMarkdown)
}

func (t *terminal) displayMessage(msg string) {
	fmt.Fprintf(t.out, "\n%s\n", msg)
}

func (t *terminal) displayError(msg string) {
	prefix := t.glyph("❌ ", "[ERROR] ")
	fmt.Fprintf(t.out, "\n%s\n", errorStyle.Render(prefix+"Error: "+msg))
}

// displayRephrased shows the validated result; in verbose mode a unified
// diff of input against output follows it.
func (t *terminal) displayRephrased(original, rephrased string) {
	if rephrased == "" {
		t.displayError("No rephrasing available")
		return
	}

	prefix := t.glyph("🔄 ", "=> ")
	fmt.Fprintf(t.out, "\n%sRephrased:\n", resultPrefixStyle.Render(prefix))
	fmt.Fprintln(t.out, resultBoxStyle.Render(wrapToWidth(rephrased, t.width-4)))

	if t.verbose && original != rephrased {
		diff, err := renderDiff(original, rephrased)
		if err == nil && diff != "" {
			fmt.Fprint(t.out, dimStyle.Render(diff))
		}
	}
}

// displayGoodbye prints the farewell line and, when the agent was used, a
// token usage summary.
func (t *terminal) displayGoodbye(conn *rephraser.Connector) {
	wave := t.glyph("👋", "!")
	fmt.Fprintf(t.out, "\nThank you for using Emoji Rephraser! Goodbye%s\n", wave)

	if ur, ok := conn.Completer().(modeladapter.UsageReporter); ok {
		if tracker := ur.UsageTracker(); tracker.Count() > 0 {
			total := tracker.Total()
			fmt.Fprintln(t.out, dimStyle.Render(fmt.Sprintf(
				"%d requests, %d tokens in, %d tokens out",
				tracker.Count(), total.InputTokens, total.OutputTokens,
			)))
		}
	}
}

// readInput prompts for and reads one line of user input.
func (t *terminal) readInput() (string, error) {
	prompt := t.glyph("\n🗣️  ", "\n> ")
	fmt.Fprintf(t.out, "%sEnter text to rephrase: ", promptStyle.Render(prompt))

	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}

	return strings.TrimSpace(t.in.Text()), nil
}

// confirmExit asks the user to confirm quitting. EOF counts as confirmation.
func (t *terminal) confirmExit() bool {
	fmt.Fprint(t.out, "\nAre you sure you want to exit? (y/n): ")

	if !t.in.Scan() {
		return true
	}

	answer := strings.ToLower(strings.TrimSpace(t.in.Text()))
	return answer == "y" || answer == "yes"
}

// conversationLoop reads user input line by line and dispatches it to the
// agent until the user quits. A SIGINT during a turn cancels only that turn;
// the loop continues with the next prompt.
func conversationLoop(t *terminal, conn *rephraser.Connector) error {
	for {
		input, err := t.readInput()
		if err != nil {
			fmt.Fprintln(t.out)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch classifyCommand(input) {
		case cmdEmpty:
			continue
		case cmdExit:
			if t.confirmExit() {
				return nil
			}
			continue
		case cmdHelp:
			t.displayHelp()
			continue
		case cmdClear:
			t.clearScreen()
			continue
		case cmdText:
		}

		if err := rephraseTurn(t, conn, input); err != nil {
			if errors.Is(err, context.Canceled) {
				t.displayMessage("Rephrasing cancelled")
				continue
			}
			t.displayError(fmt.Sprintf("Rephrasing error: %v", err))
		}
	}
}

// rephraseTurn runs a single request with a spinner. SIGINT cancels the
// turn's context without affecting the surrounding loop.
func rephraseTurn(t *terminal, conn *rephraser.Connector, input string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	t.spin.Start()
	result, err := conn.Rephrase(ctx, input)
	t.spin.Stop()

	if err != nil {
		return err
	}

	t.displayRephrased(input, result)

	return nil
}

// renderDiff produces a unified diff between the input and the rephrased
// output.
func renderDiff(original, rephrased string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(rephrased),
		FromFile: "input",
		ToFile:   "rephrased",
		Context:  1,
	})
}
