// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for rigchat CLI.
//
// Handles the "rigchat chat" command: a terminal REPL with the same
// conversation semantics as the web page. Each prompt is sent to the
// gateway on its own (the gateway takes a single prompt string, so
// earlier turns are never included), responses type out with the
// cursor marker, and the session log can be exported to HTML.
//
// Command: chat
//
// Examples:
//   rigchat chat                      Start interactive chat (default model)
//   rigchat chat --model mistral      Use specific model
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /clear, /c          Clear conversation history
//   /history            Show conversation history
//   /export <path>      Export conversation to an HTML file
//   /quit, /q           Exit chat
//   Ctrl+C              Cancel current generation
//   Ctrl+D              Exit chat

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/rigchat/internal/chat"
	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/export"
	"github.com/jeranaias/rigchat/internal/gateway"
	"github.com/jeranaias/rigchat/internal/typewriter"
	"github.com/jeranaias/rigchat/internal/util"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// Supports arrow keys for history navigation.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		// Fallback to temp directory if config dir unavailable
		configDir = os.TempDir()
	}
	historyFile := filepath.Join(configDir, "chat_history")

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}

	cli.LoadHistory()

	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}

	return input, nil
}

// SaveHistory persists command history to file with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ChatSession holds the state for an interactive chat session.
type ChatSession struct {
	// Conversation log, same append-only structure the web sessions use
	Log *chat.Log

	Config *config.Config
	Model  string
	Quiet  bool

	StartTime time.Time

	Client *gateway.Client
	Writer *typewriter.Writer

	// Cancel function for the in-flight generation
	CancelFunc context.CancelFunc

	InputCLI *ChatCLI
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChatCommand handles the "chat" command.
func HandleChatCommand(args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}

	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	client := newGatewayClient(cfg)

	ctx := context.Background()
	if err := client.CheckRunning(ctx); err != nil {
		return errors.New(gateway.UserMessage(err))
	}

	session := &ChatSession{
		Log:       chat.NewLog(),
		Config:    cfg,
		Model:     client.Model(),
		Quiet:     args.Quiet,
		StartTime: time.Now(),
		Client:    client,
		Writer:    typewriter.New(cfg.StreamInterval(), cfg.Stream.Cursor),
		InputCLI:  NewChatCLI(),
	}

	if !session.Quiet {
		printWelcome(session)
	}

	defer session.InputCLI.Close()

	// Ctrl+C during generation cancels the in-flight request; at the
	// prompt, liner turns it into ErrPromptAborted instead.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		for range sigChan {
			if session.CancelFunc != nil {
				session.CancelFunc()
				session.CancelFunc = nil
				fmt.Fprintln(os.Stderr, "\n"+WarningStyle.Render("[Cancelled]"))
			}
		}
	}()

	for {
		// NO_COLOR users get a plain prompt; liner echoes the prompt
		// verbatim, so the style has to be resolved up front.
		input, err := session.InputCLI.ReadInput(GetStyleForTTY(PromptStyle).Render("rigchat> "))
		if err != nil {
			// ErrPromptAborted (Ctrl+C) or EOF (Ctrl+D): exit gracefully
			fmt.Println()
			printExitSummary(session)
			return nil
		}

		input = strings.TrimSpace(input)

		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldContinue, err := handleSlashCommand(input, session)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			}
			if !shouldContinue {
				printExitSummary(session)
				return nil
			}
			continue
		}

		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			printExitSummary(session)
			return nil
		}

		if err := processMessage(session, input); err != nil {
			fmt.Fprintf(os.Stderr, "%s %s\n",
				ErrorStyle.Render("[Error]"), gateway.UserMessage(err))
		}
	}
}

// =============================================================================
// MESSAGE PROCESSING
// =============================================================================

// processMessage sends one prompt to the gateway and displays the response.
// The user turn is committed before the gateway call, so a failed
// generation keeps the question in the log; the assistant turn is
// committed only after the full response has been displayed.
func processMessage(session *ChatSession, input string) error {
	ctx, cancel := context.WithCancel(context.Background())
	session.CancelFunc = cancel
	defer func() {
		session.CancelFunc = nil
		cancel()
	}()

	session.Log.Append(chat.NewUserTurn(input))

	startTime := time.Now()
	result, err := session.Client.Generate(ctx, input)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Signal handler already reported the cancellation
			return nil
		}
		return err
	}

	fmt.Println()

	switch {
	case !IsStdoutTTY():
		fmt.Print(result.Text)
		if !strings.HasSuffix(result.Text, "\n") {
			fmt.Println()
		}
	case looksLikeMarkdown(result.Text):
		fmt.Print(renderMarkdown(result.Text))
	default:
		if err := typeToTerminal(ctx, session.Writer, result.Text); err != nil {
			// Cancelled mid-animation: the response is not committed
			return nil
		}
	}

	session.Log.Append(chat.NewAssistantTurn(result.Text))

	fmt.Println()

	if !session.Quiet {
		showBriefStats(result, time.Since(startTime))
	}

	return nil
}

// showBriefStats shows brief stats after a response.
func showBriefStats(result *gateway.GenerateResult, duration time.Duration) {
	line := fmt.Sprintf("%s %s | %s",
		InfoStyle.Render("[Stats]"),
		result.Model,
		duration.Round(time.Millisecond))

	if result.EvalCount > 0 {
		line += fmt.Sprintf(" | %s tokens", formatNumber(result.EvalCount))
	}

	fmt.Fprintln(os.Stderr, line)
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands.
// Returns (shouldContinue, error) where shouldContinue=false means exit.
func handleSlashCommand(cmd string, session *ChatSession) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true, nil
	}

	command := strings.ToLower(parts[0])
	cmdArgs := parts[1:]

	switch command {
	case "/help", "/h", "/?":
		printChatHelp()
		return true, nil

	case "/clear", "/c":
		session.Log.Clear()
		fmt.Println(SuccessStyle.Render("[Conversation cleared]"))
		return true, nil

	case "/history":
		printChatHistory(session)
		return true, nil

	case "/export", "/e":
		return true, handleExportCommand(session, cmdArgs)

	case "/quit", "/q", "/exit":
		return false, nil

	case "/":
		printChatHelp()
		return true, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// handleExportCommand writes the conversation log to an HTML file.
func handleExportCommand(session *ChatSession, args []string) error {
	if len(args) == 0 {
		return ErrMissingArgument("path", "/export conversation.html")
	}

	turns := session.Log.All()
	if len(turns) == 0 {
		fmt.Println(DimStyle.Render("[No messages to export]"))
		return nil
	}

	path := args[0]
	opts := export.DefaultOptions()
	opts.Title = session.Config.UI.Title + " conversation"
	opts.Model = session.Model
	opts.Theme = session.Config.UI.Theme

	f, err := os.Create(path)
	if err != nil {
		return WrapError(err, "cannot create export file")
	}
	defer f.Close()

	if err := export.WriteHTML(f, turns, opts); err != nil {
		return WrapError(err, "export failed")
	}

	fmt.Printf("%s Exported %d turns to %s\n",
		SuccessStyle.Render("[OK]"), len(turns), path)
	return nil
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

// printWelcome prints the welcome banner.
func printWelcome(session *ChatSession) {
	fmt.Println()
	fmt.Println(TitleStyle.Render(session.Config.UI.Title + " interactive chat"))
	fmt.Println(DimStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n",
		DimStyle.Render("Model:"),
		ValueStyle.Render(session.Model))
	fmt.Printf("%s %s\n",
		DimStyle.Render("Gateway:"),
		ValueStyle.Render(session.Client.BaseURL()))
	fmt.Println()
	fmt.Println(DimStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println(DimStyle.Render("Each prompt is answered on its own; earlier turns are not sent along."))
	fmt.Println()
}

// printChatHelp prints available commands.
func printChatHelp() {
	fmt.Println()
	fmt.Println(SectionStyle.Render("Available Commands"))
	fmt.Println(DimStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/clear, /c", "Clear conversation history"},
		{"/history", "Show conversation history"},
		{"/export <path>", "Export conversation to an HTML file"},
		{"/quit, /q", "Exit chat"},
	}

	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			SuccessStyle.Render(fmt.Sprintf("%-15s", c.cmd)),
			DimStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(DimStyle.Render("Tip: Ctrl+C cancels current generation, Ctrl+D exits"))
	fmt.Println()
}

// printChatHistory prints the conversation log.
func printChatHistory(session *ChatSession) {
	turns := session.Log.All()
	if len(turns) == 0 {
		fmt.Println(DimStyle.Render("[No messages yet]"))
		return
	}

	fmt.Println()
	fmt.Println(SectionStyle.Render("Conversation History"))
	fmt.Println(DimStyle.Render(strings.Repeat("─", 25)))
	fmt.Println()

	for i, turn := range turns {
		role := turn.Role.DisplayName()
		switch turn.Role {
		case chat.RoleUser:
			role = PromptStyle.Render(role)
		case chat.RoleAssistant:
			role = InfoStyle.Render(role)
		}

		content := strings.ReplaceAll(turn.Content, "\n", " ")
		content = util.TruncateRunes(content, 100)

		fmt.Printf("  %d. %s: %s\n", i+1, role, content)
	}

	fmt.Println()
}

// printExitSummary prints the session summary on exit.
func printExitSummary(session *ChatSession) {
	turnCount := session.Log.Len()

	if turnCount == 0 {
		fmt.Println(DimStyle.Render("Goodbye!"))
		return
	}

	elapsed := time.Since(session.StartTime).Round(time.Second)

	fmt.Println()
	fmt.Println(SectionStyle.Render("Session Summary"))
	fmt.Println(DimStyle.Render(strings.Repeat("─", 15)))

	fmt.Printf("  %s %d\n", DimStyle.Render("Turns:"), turnCount)
	fmt.Printf("  %s %s\n", DimStyle.Render("Duration:"), elapsed.String())

	fmt.Println()
	fmt.Println(DimStyle.Render("Goodbye!"))
}
