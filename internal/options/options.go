// Package options parses the gtee command line into a Config.
package options

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultChunkSize is the copy chunk size used when -b is not given.
const DefaultChunkSize = 4096

// Config is the validated result of parsing the command line.
type Config struct {
	Help         bool
	Append       bool
	ChunkSize    int
	Destinations []string // in argument order, duplicates and "-" kept
}

// ParseError reports the first invalid token on the command line.
// For -b/--buffer-size with a bad value, Value holds that value.
type ParseError struct {
	Option string
	Value  string
	// HasValue distinguishes "-b" missing its value from "-b ''".
	HasValue bool
}

// Token returns the offending option, joined with its value when present.
func (e *ParseError) Token() string {
	if e.HasValue {
		return e.Option + " " + e.Value
	}
	return e.Option
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid option: %s", e.Token())
}

// Parse reads args strictly left to right and stops at the first error.
// On error the returned Config must be ignored.
func Parse(args []string) (Config, error) {
	cfg := Config{
		ChunkSize:    DefaultChunkSize,
		Destinations: make([]string, 0, len(args)),
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-?", "-h", "--help":
			cfg.Help = true
		case "-a", "--append":
			cfg.Append = true
		case "-b", "--buffer-size":
			if i == len(args)-1 {
				return cfg, &ParseError{Option: arg}
			}
			i++
			size, err := parseChunkSize(args[i])
			if err != nil {
				return cfg, &ParseError{Option: arg, Value: args[i], HasValue: true}
			}
			cfg.ChunkSize = size
		case "--":
			cfg.Destinations = append(cfg.Destinations, args[i+1:]...)
			return cfg, nil
		default:
			if len(arg) > 1 && strings.HasPrefix(arg, "-") {
				return cfg, &ParseError{Option: arg}
			}
			cfg.Destinations = append(cfg.Destinations, arg)
		}
	}

	return cfg, nil
}

// parseChunkSize accepts a positive decimal that fits a 32-bit int.
// Surrounding whitespace is ignored.
func parseChunkSize(s string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("chunk size must be positive, got %d", n)
	}
	return int(n), nil
}
