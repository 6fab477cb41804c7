package commands

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorText    = lipgloss.Color("#c0caf5")
	colorTextDim = lipgloss.Color("#565f89")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorErr     = lipgloss.Color("#f7768e")
	colorPrimary = lipgloss.Color("#7aa2f7")
)

// spinner handles the animated loading indicator
type spinner struct {
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner
func newSpinner(message string) *spinner {
	return &spinner{
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(os.Stderr, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(os.Stderr, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	spin := lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Render(chars[s.frame%len(chars)])
	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)
	fmt.Fprintf(os.Stderr, "\r\033[K%s %s", spin, msg)
}

// halt closes the stop channel once and waits for the animation
// goroutine to exit. The wait happens outside the lock; the tick branch
// needs the mutex to finish its frame before it can observe the close.
func (s *spinner) halt() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		close(s.stop)
	}
	s.mu.Unlock()
	<-s.done
}

// stopWithSuccess ends the animation with a success mark
func (s *spinner) stopWithSuccess(message string) {
	s.halt()
	mark := lipgloss.NewStyle().Foreground(colorSuccess).Render("✓")
	fmt.Fprintf(os.Stderr, "%s %s\n", mark, message)
}

// stopWithError ends the animation with an error mark
func (s *spinner) stopWithError() {
	s.halt()
	mark := lipgloss.NewStyle().Foreground(colorErr).Render("✗")
	fmt.Fprintf(os.Stderr, "%s\n", mark)
}

// stopQuiet ends the animation without a status line
func (s *spinner) stopQuiet() {
	s.halt()
}
