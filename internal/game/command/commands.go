// Package command provides the command registry, parser, and built-in command
// definitions for the interactive checkers loop.
package command

// Categories for organizing commands.
const (
	CategoryGame   = "game"
	CategorySystem = "system"
)

// Handler identifiers mapping commands to match actions.
const (
	HandlerMove  = "move"
	HandlerBoard = "board"
	HandlerHint  = "hint"
	HandlerHelp  = "help"
	HandlerQuit  = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument form, e.g. "move <x> <y> <dir>".
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command (game, system).
	Category string
	// Handler maps to the match action.
	Handler string
}

// BuiltinCommands returns all built-in commands for the game.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "move", Aliases: []string{"m"}, Usage: "move <x> <y> <dir>", Help: "Move the piece at x y; dir is fl, fr, bl, br or a capture cfl, cfr, cbl, cbr", Category: CategoryGame, Handler: HandlerMove},
		{Name: "board", Aliases: []string{"b"}, Usage: "board", Help: "Show the board", Category: CategoryGame, Handler: HandlerBoard},
		{Name: "hint", Aliases: nil, Usage: "hint", Help: "Ask the planner to suggest a move", Category: CategoryGame, Handler: HandlerHint},
		{Name: "help", Aliases: []string{"?"}, Usage: "help", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"q", "exit"}, Usage: "quit", Help: "Leave the game", Category: CategorySystem, Handler: HandlerQuit},
	}
}
