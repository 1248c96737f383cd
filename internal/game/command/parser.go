package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/checkers/internal/game/checkers"
)

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
	// RawArgs is the raw text after the command.
	RawArgs string
}

// Parse splits a text line into a command and arguments.
//
// Postcondition: Returns a ParseResult. If line is blank, Command is empty.
func Parse(line string) ParseResult {
	line = strings.TrimSpace(line)
	if line == "" {
		return ParseResult{}
	}

	spaceIdx := strings.IndexAny(line, " \t")
	if spaceIdx < 0 {
		return ParseResult{
			Command: strings.ToLower(line),
		}
	}

	cmd := strings.ToLower(line[:spaceIdx])
	rest := strings.TrimSpace(line[spaceIdx+1:])

	var args []string
	if rest != "" {
		args = strings.Fields(rest)
	}

	return ParseResult{
		Command: cmd,
		Args:    args,
		RawArgs: rest,
	}
}

// ParseMove reads the "<x> <y> <dir>" arguments of a move command.
//
// Postcondition: returns an error naming the first bad argument.
func ParseMove(args []string) (checkers.Move, error) {
	if len(args) != 3 {
		return checkers.Move{}, fmt.Errorf("want <x> <y> <dir>, got %d arguments", len(args))
	}
	x, err := strconv.Atoi(args[0])
	if err != nil {
		return checkers.Move{}, fmt.Errorf("x %q is not a number", args[0])
	}
	y, err := strconv.Atoi(args[1])
	if err != nil {
		return checkers.Move{}, fmt.Errorf("y %q is not a number", args[1])
	}
	dir, err := checkers.ParseDirection(args[2])
	if err != nil {
		return checkers.Move{}, err
	}
	return checkers.Move{From: checkers.Square{X: x, Y: y}, Dir: dir}, nil
}
