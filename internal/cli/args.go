// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Flag and positional parsing for subcommand handlers.

package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser splits a subcommand's raw arguments into flags and positionals.
// Accepted shapes: --flag value, --flag=value, -f value, and bare --flag
// booleans (--flag=true/false to set one explicitly). The first positional
// argument is the subcommand.
type ArgParser struct {
	subcommand string
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// NewArgParser parses raw arguments as received after the command name.
//
//	p := NewArgParser([]string{"list", "--limit", "50", "--json"})
//	p.Subcommand()     // "list"
//	p.Flag("limit")    // "50"
//	p.BoolFlag("json") // true
func NewArgParser(raw []string) *ArgParser {
	p := &ArgParser{
		flags:      make(map[string]string),
		boolFlags:  make(map[string]bool),
		positional: make([]string, 0),
	}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") {
			p.positional = append(p.positional, arg)
			continue
		}

		// --flag=value binds in place; true/false values set booleans.
		if name, value, found := strings.Cut(arg, "="); found {
			name = trimDashes(name)
			switch value {
			case "true", "false":
				p.boolFlags[name] = value == "true"
			default:
				p.flags[name] = value
			}
			continue
		}

		// A following non-flag token is this flag's value; without one
		// the flag is a bare boolean.
		name := trimDashes(arg)
		if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
			p.flags[name] = raw[i+1]
			i++
		} else {
			p.boolFlags[name] = true
		}
	}

	if len(p.positional) > 0 {
		p.subcommand = p.positional[0]
	}
	return p
}

func trimDashes(name string) string {
	return strings.TrimLeft(name, "-")
}

// Subcommand returns the first positional argument, or "" when there is none.
func (p *ArgParser) Subcommand() string {
	return p.subcommand
}

// Flag returns the value of a string flag, or "" if not set. The name may
// carry leading dashes or not.
func (p *ArgParser) Flag(name string) string {
	if val, ok := p.flags[name]; ok {
		return val
	}
	return p.flags[trimDashes(name)]
}

// FlagOrDefault returns the flag value, or defaultValue if the flag is unset.
func (p *ArgParser) FlagOrDefault(name, defaultValue string) string {
	if val := p.Flag(name); val != "" {
		return val
	}
	return defaultValue
}

// FlagInt returns the flag value parsed as an integer.
func (p *ArgParser) FlagInt(name string) (int, error) {
	val := p.Flag(name)
	if val == "" {
		return 0, fmt.Errorf("flag %s not found", name)
	}
	return strconv.Atoi(val)
}

// FlagIntOrDefault returns the flag value as an integer, falling back to
// defaultValue when the flag is missing or not a valid integer.
func (p *ArgParser) FlagIntOrDefault(name string, defaultValue int) int {
	val, err := p.FlagInt(name)
	if err != nil {
		return defaultValue
	}
	return val
}

// BoolFlag reports whether a boolean flag is set (false when absent or
// explicitly --flag=false).
func (p *ArgParser) BoolFlag(name string) bool {
	if val, ok := p.boolFlags[name]; ok {
		return val
	}
	return p.boolFlags[trimDashes(name)]
}

// HasFlag reports whether the flag appeared at all, with or without a value.
func (p *ArgParser) HasFlag(name string) bool {
	name = trimDashes(name)
	if _, ok := p.flags[name]; ok {
		return true
	}
	_, ok := p.boolFlags[name]
	return ok
}

// Positional returns the positional argument at index, "" when out of range.
// Index 0 is the subcommand.
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// PositionalFrom returns the positional arguments from index on, for
// handlers that join trailing words into a query or path.
func (p *ArgParser) PositionalFrom(index int) []string {
	if index < 0 || index >= len(p.positional) {
		return []string{}
	}
	return p.positional[index:]
}

// PositionalCount returns the number of positional arguments.
func (p *ArgParser) PositionalCount() int {
	return len(p.positional)
}
