package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"
)

// workingMessages are displayed while a rephrasing request is in flight.
var workingMessages = []string{
	"Rephrasing...",
	"Sprinkling emojis...",
	"Consulting the glyph oracle...",
	"Decorating your words...",
	"Picking the perfect pictographs...",
	"Adding a dash of sparkle...",
}

// spinnerFrames are braille characters for smooth animation.
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// spinner renders an animated status line while the agent is working. On a
// non-TTY it degrades to a single static line.
type spinner struct {
	out   io.Writer
	isTTY bool

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

func newSpinner(out io.Writer, isTTY bool) *spinner {
	return &spinner{out: out, isTTY: isTTY}
}

// Start begins the spinner animation in a background goroutine.
func (s *spinner) Start() {
	if !s.isTTY {
		fmt.Fprintln(s.out, "Rephrasing...")
		return
	}

	s.mu.Lock()
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.run()
}

func (s *spinner) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	frame := 0
	msgIdx := rand.IntN(len(workingMessages)) //nolint:gosec // cosmetic randomness for spinner messages
	changeTick := 0

	for {
		select {
		case <-s.stopCh:
			s.clearLine()
			return
		case <-ticker.C:
			f := spinnerFrames[frame%len(spinnerFrames)]
			msg := workingMessages[msgIdx]
			fmt.Fprintf(s.out, "\r  %s\033[K", spinnerStyle.Render(f+" "+msg))

			frame++
			changeTick++
			if changeTick >= 30 { // change message every ~3 seconds
				msgIdx = (msgIdx + 1) % len(workingMessages)
				changeTick = 0
			}
		}
	}
}

// Stop halts the animation and clears the status line.
func (s *spinner) Stop() {
	if !s.isTTY {
		return
	}

	s.mu.Lock()
	stopCh, doneCh := s.stopCh, s.doneCh
	s.stopCh, s.doneCh = nil, nil
	s.mu.Unlock()

	if stopCh == nil {
		return
	}

	close(stopCh)
	<-doneCh
}

func (s *spinner) clearLine() {
	fmt.Fprint(s.out, "\r\033[K")
}
