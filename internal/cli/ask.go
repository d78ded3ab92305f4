// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single query command handler for rigchat CLI.
//
// Handles the "rigchat ask" command which sends one prompt to the model
// gateway and prints the response.
//
// Command: ask [prompt]
//
// Examples:
//   rigchat ask "What is the capital of France?"
//   rigchat ask --json "Summarize the SSE spec"
//   rigchat ask --model mistral "Explain this error"
//   cat notes.txt | rigchat ask
//
// Flags:
//   -m, --model NAME      Use specific model (overrides config)
//   --gateway-url URL     Use specific gateway endpoint
//   --json                Output response as JSON
//   -q, --quiet           Suppress the stats footer

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/rigchat/internal/gateway"
	"github.com/jeranaias/rigchat/internal/typewriter"
	"github.com/jeranaias/rigchat/internal/util"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer is the shared glamour renderer for terminal output.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fall back to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display. When the
// renderer is unavailable or fails, the raw text is wrapped to the same
// width glamour would have used.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return util.WrapWidth(content, 80)
	}

	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return util.WrapWidth(content, 80)
	}
	return rendered
}

// looksLikeMarkdown reports whether a response uses markdown constructs
// worth rendering. Plain prose goes through the typing animation instead.
func looksLikeMarkdown(s string) bool {
	if strings.Contains(s, "```") {
		return true
	}
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "# "),
			strings.HasPrefix(trimmed, "## "),
			strings.HasPrefix(trimmed, "### "),
			strings.HasPrefix(trimmed, "- "),
			strings.HasPrefix(trimmed, "* "),
			strings.HasPrefix(trimmed, "> "),
			strings.HasPrefix(trimmed, "|"):
			return true
		}
	}
	return false
}

// =============================================================================
// TERMINAL TYPING ANIMATION
// =============================================================================

// typeToTerminal plays the typing animation on stdout: each frame prints
// the newly revealed runes with the cursor marker trailing the text, the
// final frame erases the marker and ends the line. The marker is erased
// before each write, so it follows the text across line breaks.
func typeToTerminal(ctx context.Context, w *typewriter.Writer, text string) error {
	markerWidth := util.StringWidth(w.Marker())
	eraseMarker := strings.Repeat("\b", markerWidth) +
		strings.Repeat(" ", markerWidth) +
		strings.Repeat("\b", markerWidth)

	printed := 0
	markerShown := false

	return w.Play(ctx, text, func(frame typewriter.Frame) error {
		body := frame.Text
		if !frame.Final {
			body = strings.TrimSuffix(body, w.Marker())
		}

		if markerShown {
			fmt.Print(eraseMarker)
			markerShown = false
		}

		runes := []rune(body)
		for ; printed < len(runes); printed++ {
			fmt.Print(string(runes[printed]))
		}

		if frame.Final {
			fmt.Println()
			return nil
		}

		fmt.Print(w.Marker())
		markerShown = true
		return nil
	})
}

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAskCommand handles the "ask" command: one prompt in, one response
// out. On a TTY the response is animated (or glamour-rendered when it is
// markdown); piped output stays plain so rigchat composes with shell
// pipelines.
func HandleAskCommand(args Args) error {
	cfg, err := loadConfig(args)
	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("ask", err).Print()
		}
		return err
	}

	prompt := args.Query

	// No positional prompt: accept piped stdin, the way `cat notes | rigchat ask` works.
	if prompt == "" {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			reader := bufio.NewReader(os.Stdin)
			stdinData, err := io.ReadAll(reader)
			if err == nil && len(stdinData) > 0 {
				prompt = strings.TrimSpace(string(stdinData))
				if !args.Quiet {
					fmt.Fprintf(os.Stderr, "%s Read prompt from stdin (%d bytes)\n",
						RenderConditional(InfoStyle, "[+]"), len(stdinData))
				}
			}
		}
	}

	if prompt == "" {
		err := ErrMissingArgument("prompt", `rigchat ask "your question"`)
		if args.JSON {
			NewJSONErrorResponse("ask", err).Print()
		}
		return err
	}

	client := newGatewayClient(cfg)
	ctx := context.Background()

	if err := client.CheckRunning(ctx); err != nil {
		if args.JSON {
			NewJSONErrorResponse("ask", err).Print()
			return err
		}
		return WrapError(err, "gateway check failed")
	}

	startTime := time.Now()
	result, err := client.Generate(ctx, prompt)
	duration := time.Since(startTime)

	if err != nil {
		if args.JSON {
			NewJSONErrorResponse("ask", err).Print()
			return err
		}
		fmt.Fprintf(os.Stderr, "%s %s\n",
			ErrorStyle.Render("[ERROR]"), gateway.UserMessage(err))
		return err
	}

	if args.JSON {
		data := AskData{
			Response:        result.Text,
			Model:           result.Model,
			EvalCount:       result.EvalCount,
			TokensPerSecond: result.TokensPerSecond(),
			DurationMs:      duration.Milliseconds(),
		}
		return NewJSONResponse("ask", data).Print()
	}

	if !args.Quiet {
		fmt.Println()
	}

	// TTY output: markdown responses render once, prose responses type out.
	// Piped output stays plain either way.
	switch {
	case !IsStdoutTTY():
		fmt.Print(result.Text)
		if !strings.HasSuffix(result.Text, "\n") {
			fmt.Println()
		}
	case looksLikeMarkdown(result.Text):
		fmt.Print(renderMarkdown(result.Text))
	default:
		w := typewriter.New(cfg.StreamInterval(), cfg.Stream.Cursor)
		if err := typeToTerminal(ctx, w, result.Text); err != nil {
			return err
		}
	}

	if !args.Quiet {
		displayAskSummary(result.Model, result.EvalCount, result.TokensPerSecond(), duration)
	}

	return nil
}

// displayAskSummary prints the stats footer after a response.
func displayAskSummary(model string, evalCount int, tokensPerSec float64, duration time.Duration) {
	separator := strings.Repeat("─", 45)
	fmt.Fprintln(os.Stderr, SeparatorStyle.Render(separator))

	line := fmt.Sprintf("%s %s | %s %s",
		DimStyle.Render("Model:"),
		ValueStyle.Render(model),
		DimStyle.Render("Time:"),
		ValueStyle.Render(duration.Round(time.Millisecond).String()))

	if evalCount > 0 {
		line += fmt.Sprintf(" | %s %s",
			DimStyle.Render("Tokens:"),
			ValueStyle.Render(formatNumber(evalCount)))
	}
	if tokensPerSec > 0 {
		line += fmt.Sprintf(" | %s %.1f tok/s",
			DimStyle.Render("Speed:"),
			tokensPerSec)
	}

	fmt.Fprintln(os.Stderr, line)
}

// formatNumber formats an integer with commas for thousands.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	s := fmt.Sprintf("%d", n)
	result := make([]byte, 0, len(s)+len(s)/3)

	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}

	return string(result)
}
