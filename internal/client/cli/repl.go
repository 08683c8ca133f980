package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// errUsage is returned by a command whose arguments are missing or wrong;
// the REPL answers with the command's usage line.
var errUsage = errors.New("usage")

// command is one REPL verb.
type command struct {
	usage    string
	signedIn bool
	// profileReady commands also need a loaded, completed profile.
	profileReady bool
	run          func(ctx context.Context, args []string) error
}

// execIface is the minimal surface the REPL needs. The real App satisfies
// it; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	// profileReady reports whether the profile is loaded and complete,
	// telling the user what is missing when it is not.
	profileReady() bool
	lookup(name string) (command, bool)
	help()
	say(id string, data map[string]any)
	report(err error)
}

// runREPL reads commands from in until EOF, "exit" or "quit", or until ctx
// is cancelled. The first token of a line selects the command and the rest
// are its arguments. Command errors are reported and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "studysync %s> ", statusFn())

		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		name := parts[0]

		switch name {
		case "help":
			a.help()
			continue
		case "exit", "quit":
			a.say("Bye", nil)
			return
		}

		c, ok := a.lookup(name)
		if !ok {
			a.say("UnknownCommand", map[string]any{"Cmd": name})
			continue
		}
		if c.signedIn && !a.isLoggedIn() {
			a.say("NotSignedIn", nil)
			continue
		}
		if c.profileReady && !a.profileReady() {
			continue
		}
		if err := c.run(ctx, parts[1:]); err != nil {
			if errors.Is(err, errUsage) {
				a.say("Usage", map[string]any{"Usage": c.usage})
				continue
			}
			a.report(err)
		}
	}
}
