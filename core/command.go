package core

import (
	"errors"

	"posturemon/protocol"
)

var (
	// ErrUnknownCommand is returned when no handler matches the verb
	ErrUnknownCommand = errors.New("Unknown command. Type 'help'")

	// ErrUsage marks argument-count and argument-format errors
	ErrUsage = errors.New("usage")
)

// usageError reports the expected syntax of a command
type usageError string

func (u usageError) Error() string { return "Usage: " + string(u) }

func (u usageError) Is(target error) bool { return target == ErrUsage }

// UsageError creates an error matching ErrUsage with the given syntax hint
func UsageError(syntax string) error {
	return usageError(syntax)
}

// CommandHandler handles one dispatched line. args[0] is the verb.
// Handlers write their response through r and must not panic; a returned
// error is reported as an ERROR response.
type CommandHandler func(args []string, r *Reply) error

// Command represents a console verb
type Command struct {
	Name    string
	Args    string // Argument synopsis for help (e.g., "<r> <g> <b>")
	Help    string
	Handler CommandHandler
}

// CommandRegistry holds the console verbs in registration order
type CommandRegistry struct {
	commands map[string]*Command
	order    []*Command
	help     string // Rendered help text
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]*Command),
	}
}

// Register adds a command to the registry. Registering an existing name
// keeps the first handler.
func (r *CommandRegistry) Register(name, args, help string, handler CommandHandler) *Command {
	if cmd, exists := r.commands[name]; exists {
		return cmd
	}

	cmd := &Command{
		Name:    name,
		Args:    args,
		Help:    help,
		Handler: handler,
	}
	r.commands[name] = cmd
	r.order = append(r.order, cmd)

	r.rebuildHelp()

	return cmd
}

// GetCommand retrieves a command by exact name
func (r *CommandRegistry) GetCommand(name string) (*Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Count returns the number of registered commands
func (r *CommandRegistry) Count() int {
	return len(r.order)
}

// Commands returns the commands in registration order
func (r *CommandRegistry) Commands() []*Command {
	return r.order
}

// Dispatch calls the handler selected by args[0]
func (r *CommandRegistry) Dispatch(args []string, reply *Reply) error {
	if len(args) == 0 {
		return nil
	}
	cmd, ok := r.GetCommand(args[0])
	if !ok || cmd.Handler == nil {
		return ErrUnknownCommand
	}
	return cmd.Handler(args, reply)
}

// Help returns the rendered help text, one CRLF-terminated line per command
func (r *CommandRegistry) Help() string {
	return r.help
}

// rebuildHelp renders the help text with the synopsis column aligned
func (r *CommandRegistry) rebuildHelp() {
	width := 0
	for _, cmd := range r.order {
		if n := len(synopsis(cmd)); n > width {
			width = n
		}
	}

	help := ""
	for _, cmd := range r.order {
		s := synopsis(cmd)
		for len(s) < width {
			s += " "
		}
		help += "  " + s + " - " + cmd.Help + protocol.CRLF
	}
	r.help = help
}

func synopsis(cmd *Command) string {
	if cmd.Args == "" {
		return cmd.Name
	}
	return cmd.Name + " " + cmd.Args
}
