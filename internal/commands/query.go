package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/diogo/deploychat/internal/config"
	"github.com/diogo/deploychat/internal/dispatch"
	"github.com/diogo/deploychat/internal/models"
	"github.com/diogo/deploychat/internal/render"
)

var (
	citationHeaderStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	citationSourceStyle = lipgloss.NewStyle().
				Foreground(colorTextDim)

	metricsStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorErr)
)

// runQuery sends one prompt and prints the rendered response.
func runQuery(prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	appCfg, _ := config.LoadConfig()
	if verboseFlag {
		appCfg.Verbose = true
	}

	ctx, err := newSessionContext()
	if err != nil {
		return err
	}
	defer ctx.client.Close()

	id, err := ctx.sess.AppendUserPrompt(prompt)
	if err != nil {
		return err
	}

	protocol := ctx.disp.SelectProtocol()
	if appCfg.Verbose {
		fmt.Fprintf(os.Stderr, "protocol: %s\n", protocol)
	}

	streaming := protocol == dispatch.ProtocolStreamingChat

	var spin *spinner
	if !streaming {
		spin = newSpinner("Waiting for LLM response...")
		spin.start()
	}

	// Streaming output goes straight to stdout as fragments arrive; the
	// markdown-rendered version is only produced for non-streaming runs.
	onDelta := func(delta string) {
		fmt.Print(delta)
	}
	if err := ctx.disp.Dispatch(id, onDelta); err != nil {
		if spin != nil {
			spin.stopWithError()
		}
		return err
	}
	if streaming {
		fmt.Println()
	}

	meta := ctx.sess.Meta(id)
	if meta.Status == models.StatusError {
		if spin != nil {
			spin.stopWithError()
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render(meta.ErrorMessage))
		return fmt.Errorf("request failed")
	}
	if spin != nil {
		spin.stopQuiet()
	}

	answer := ctx.sess.GetByRole(models.RoleAssistant, id)
	content := answer.Text()

	if outputFlag != "" {
		if err := os.WriteFile(outputFlag, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to save response: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Response saved to %s\n", outputFlag)
	}

	if !streaming {
		rendered, err := render.Markdown(render.EscapeResultText(content), renderOptions(appCfg))
		if err != nil {
			// Fall back to plain text when the renderer chokes
			rendered = content
		}
		fmt.Print(rendered)
	}

	if appCfg.ShowCitations {
		printCitations(meta.Citations)
	}
	if appCfg.Verbose {
		printMetrics(meta)
	}

	if appCfg.CopyToClipboard {
		if err := clipboard.WriteAll(content); err == nil {
			fmt.Fprintln(os.Stderr, "Copied to clipboard")
		}
	}

	return nil
}

// renderOptions derives markdown options from config and terminal width.
func renderOptions(cfg config.Config) render.Options {
	opts := render.DefaultOptions().WithStyle(cfg.Markdown.Style)
	opts.EnableEmoji = cfg.Markdown.EnableEmoji
	opts.PreserveNewLines = cfg.Markdown.PreserveNewLines

	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		if w > 120 {
			w = 120
		}
		opts = opts.WithWidth(w)
	}
	return opts
}

func printCitations(cites []models.Citation) {
	if len(cites) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(citationHeaderStyle.Render("Citations"))
	for i, c := range cites {
		fmt.Printf("  [%d] %s\n", i+1, citationSourceStyle.Render(c.SourcePage()))
		if c.Text != "" {
			fmt.Printf("      %s\n", truncate(c.Text, 160))
		}
	}
}

func printMetrics(meta *models.MessageMeta) {
	var parts []string
	if meta.Latency > 0 {
		parts = append(parts, fmt.Sprintf("Latency: %.2fs", meta.Latency))
	}
	if meta.TokenCount > 0 {
		parts = append(parts, fmt.Sprintf("Tokens: %d", meta.TokenCount))
	}
	if meta.ConfidenceScore > 0 {
		parts = append(parts, fmt.Sprintf("Confidence: %.0f%%", meta.ConfidenceScore))
	}
	if len(parts) == 0 {
		return
	}
	fmt.Println(metricsStyle.Render(strings.Join(parts, "  ")))
}

// truncate shortens s to max runes, appending an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
