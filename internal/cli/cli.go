// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for rigchat.
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/gateway"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdServe Command = iota
	CmdAsk
	CmdChat
	CmdDoctor
	CmdUploads
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet      bool
	Verbose    bool
	JSON       bool // Output in JSON format
	Model      string
	GatewayURL string
	ConfigPath string

	// Command-specific
	Query      string
	Subcommand string
	Host       string
	Port       int

	// Raw args (remaining after flag parsing)
	Raw []string
}

const usageText = `rigchat - minimal chat front-end for a local Ollama runtime

Rigchat serves a small chat page backed by a locally running Ollama
instance. Responses stream into the page with a typing animation; the
same conversation semantics are available from the terminal.

Usage:
  rigchat                      Start the HTTP server (default)
  rigchat serve                Start the HTTP server
  rigchat ask "question"       Ask a single question from the terminal
  rigchat chat                 Interactive terminal chat
  rigchat doctor               Config and gateway health checks
  rigchat uploads [list|sweep] Inspect or clean stored uploads
  rigchat version              Show version information

Serve Flags:
  --host ADDR       Listen address (default: 127.0.0.1)
  --port N          Listen port (default: 8090)

Uploads Commands:
  rigchat uploads list         List stored uploads and their expiry
  rigchat uploads sweep        Remove expired uploads

Uploads Flags:
  --limit N         Show at most N entries (list)
  --dry-run         Report what a sweep would remove, delete nothing

Chat Commands (during chat):
  /clear                       Clear the conversation
  /export <path>               Write the transcript as HTML
  /help                        Show available commands
  /quit                        Exit chat

Global Flags:
  --config PATH     Use an alternate config file
  --model NAME      Override the configured model
  --gateway-url URL Override the Ollama base URL
  -q, --quiet       Minimal output
  -v, --verbose     Debug output
  --json            Output in JSON format

Examples:
  rigchat                              Serve on 127.0.0.1:8090
  rigchat serve --port 9000            Serve on a different port
  rigchat ask "What is Go?"            One-shot question
  rigchat ask --json "Summarize this"  JSON result for scripting
  rigchat chat --model llama3.2        Chat with a specific model
  rigchat doctor                       Check gateway health
  rigchat uploads list                 Show the upload registry

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(args Args) {
	if args.JSON {
		resp := NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
		})
		resp.Print()
		return
	}
	fmt.Printf("rigchat version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	args := os.Args[1:]

	// Parse global flags first
	remaining, parsedArgs := parseGlobalFlags(args)

	// If no remaining args, default to serving
	if len(remaining) == 0 {
		return CmdServe, parsedArgs
	}

	// Check first argument for command
	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "serve", "server":
		parseServeArgs(&parsedArgs, remaining)
		return CmdServe, parsedArgs

	case "ask":
		parseAskArgs(&parsedArgs, remaining)
		return CmdAsk, parsedArgs

	case "chat":
		return CmdChat, parsedArgs

	case "doctor", "diag":
		return CmdDoctor, parsedArgs

	case "uploads", "upload":
		if len(remaining) > 0 {
			parsedArgs.Subcommand = remaining[0]
		}
		return CmdUploads, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command - treat the whole line as a one-shot question
		parseAskArgs(&parsedArgs, append([]string{cmd}, remaining...))
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--model", "-m":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		case "--gateway-url":
			if i+1 < len(args) {
				i++
				parsedArgs.GatewayURL = args[i]
			}
		case "--config":
			if i+1 < len(args) {
				i++
				parsedArgs.ConfigPath = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--model="):
				parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
			case strings.HasPrefix(arg, "--gateway-url="):
				parsedArgs.GatewayURL = strings.TrimPrefix(arg, "--gateway-url=")
			case strings.HasPrefix(arg, "--config="):
				parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
			default:
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}

// parseServeArgs parses serve command specific arguments.
func parseServeArgs(args *Args, remaining []string) {
	i := 0
	for i < len(remaining) {
		arg := remaining[i]

		switch arg {
		case "--host":
			if i+1 < len(remaining) {
				i++
				args.Host = remaining[i]
			}
		case "--port", "-p":
			if i+1 < len(remaining) {
				i++
				if n, err := strconv.Atoi(remaining[i]); err == nil {
					args.Port = n
				}
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--host="):
				args.Host = strings.TrimPrefix(arg, "--host=")
			case strings.HasPrefix(arg, "--port="):
				if n, err := strconv.Atoi(strings.TrimPrefix(arg, "--port=")); err == nil {
					args.Port = n
				}
			}
		}
		i++
	}
}

// parseAskArgs collects the question from positional arguments. Flags were
// already stripped by parseGlobalFlags.
func parseAskArgs(args *Args, remaining []string) {
	var query []string
	for _, arg := range remaining {
		if !strings.HasPrefix(arg, "-") {
			query = append(query, arg)
		}
	}
	args.Query = strings.Join(query, " ")
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleServe handles the "serve" command.
// This delegates to the full implementation in serve.go.
func HandleServe(args Args) {
	if err := HandleServeCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleAsk handles the "ask" command.
// This delegates to the full implementation in ask.go.
func HandleAsk(args Args) {
	if err := HandleAskCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleChat handles the "chat" command.
// This delegates to the full implementation in chat.go.
func HandleChat(args Args) {
	if err := HandleChatCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// HandleUploads handles the "uploads" command.
// This delegates to the full implementation in uploads.go.
func HandleUploads(args Args) {
	if err := HandleUploadsCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

// NOTE: HandleDoctor is implemented in doctor.go

// HandleVersion handles the "version" command.
func HandleVersion(args Args) {
	PrintVersion(args)
}

// HandleHelp handles the "help" command.
func HandleHelp(args Args) {
	PrintUsage()
}

// =============================================================================
// SHARED COMMAND PLUMBING
// =============================================================================

// loadConfig loads configuration for a command, honoring --config and
// applying the flag overrides shared by every command.
func loadConfig(args Args) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if args.Model != "" {
		cfg.Gateway.Model = args.Model
	}
	if args.GatewayURL != "" {
		cfg.Gateway.URL = args.GatewayURL
	}
	if args.Host != "" {
		cfg.Server.Host = args.Host
	}
	if args.Port != 0 {
		cfg.Server.Port = args.Port
	}

	// Overrides bypass the load-time validation, so validate again.
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newGatewayClient builds a gateway client from resolved configuration.
func newGatewayClient(cfg *config.Config) *gateway.Client {
	return gateway.NewClientWithConfig(&gateway.ClientConfig{
		BaseURL:        cfg.Gateway.URL,
		Model:          cfg.Gateway.Model,
		Timeout:        cfg.GatewayTimeout(),
		ConnectTimeout: cfg.ConnectTimeout(),
	})
}
