package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vitatrack/client-core/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	App    *bootstrap.App
}

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2)
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2)
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	app, err := bootstrap.New(ctx, bootstrap.Options{
		Config:    cfg,
		Logger:    logger,
		Navigator: &terminalNavigator{},
		Notifier:  &terminalNotifier{},
	})
	if err != nil {
		logger.ErrorContext(ctx, "wire client core", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close client core", "error", cerr)
		}
	}()

	cmdCtx := &commandContext{Ctx: ctx, Logger: logger, App: app}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1)
	}
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Sign in with email and password and store the session",
			run:         runLogin,
		},
		"register": {
			name:        "register",
			description: "Create an account and sign in",
			run:         runRegister,
		},
		"logout": {
			name:        "logout",
			description: "Clear the stored session",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Validate the stored session and print the current user",
			run:         runWhoami,
		},
		"access": {
			name:        "access",
			description: "Evaluate subscription-gated access for a route",
			run:         runAccess,
		},
		"submit": {
			name:        "submit",
			description: "Submit a write; queues it durably if the network is unreachable",
			run:         runSubmit,
		},
		"queue-list": {
			name:        "queue-list",
			description: "List deferred writes waiting for replay",
			run:         runQueueList,
		},
		"replay": {
			name:        "replay",
			description: "Run one replay pass over the offline queue",
			run:         runReplay,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: vitatrack <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	for _, c := range commands() {
		if err := writef(os.Stdout, "  %-12s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

// terminalNavigator renders redirects as instructions; a terminal has no
// login screen to navigate to.
type terminalNavigator struct{}

func (terminalNavigator) RedirectToLogin(fromPath string) {
	if fromPath != "" {
		fmt.Fprintf(os.Stderr, "sign in required: run `vitatrack login` and retry %s\n", fromPath)
		return
	}
	fmt.Fprintln(os.Stderr, "sign in required: run `vitatrack login`")
}

// terminalNotifier prints user-visible notices to stderr.
type terminalNotifier struct{}

func (terminalNotifier) Notify(message string) {
	fmt.Fprintln(os.Stderr, message)
}
