package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
)

// errQuit ends a shell loop.
var errQuit = errors.New("quit")

// shell is one desk's line-command interpreter.
type shell interface {
	commands() []string
	exec(ctx context.Context, out io.Writer, args []string) error
}

func runShell(ctx context.Context, prompt, name string, sh shell, out io.Writer) error {
	items := make([]readline.PrefixCompleterInterface, 0, len(sh.commands()))
	for _, c := range sh.commands() {
		items = append(items, readline.PcItem(c))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile(name),
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          out,
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(out, "Type 'help' for commands.")
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if err != nil {
			return nil
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if err := sh.exec(ctx, out, args); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintln(out, "error:", err)
		}
	}
}

func historyFile(name string) string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "mocktrade")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ""
	}
	return filepath.Join(dir, name+"_history")
}

// restOf joins everything after the first n args, so values may contain
// spaces ("set instrument GOVT10Y FUT SEP25").
func restOf(args []string, n int) string {
	if len(args) <= n {
		return ""
	}
	return strings.Join(args[n:], " ")
}

func printMessage(out io.Writer, msg string) {
	if msg != "" {
		fmt.Fprintln(out, msg)
	}
}
