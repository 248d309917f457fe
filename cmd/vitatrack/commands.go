package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/vitatrack/client-core/internal/domain/access"
	"github.com/vitatrack/client-core/internal/ports"
	"github.com/vitatrack/client-core/internal/util"
)

func runLogin(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("both -email and -password are required")
	}

	result := ctx.App.Sessions.Login(ctx.Ctx, *email, *password)
	if !result.Success {
		return fmt.Errorf("login failed: %s", result.Error)
	}
	user, _ := ctx.App.Sessions.CurrentUser()
	return writef(os.Stdout, "signed in as %s (%s)\n", user.Email, user.Role)
}

func runRegister(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "display name")
	isDoctor := fs.Bool("doctor", false, "register as a doctor account")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("both -email and -password are required")
	}

	result := ctx.App.Sessions.Register(ctx.Ctx, ports.RegisterInput{
		Email:    *email,
		Password: *password,
		Name:     *name,
		IsDoctor: *isDoctor,
	})
	if !result.Success {
		return fmt.Errorf("registration failed: %s", result.Error)
	}
	user, _ := ctx.App.Sessions.CurrentUser()
	return writef(os.Stdout, "registered and signed in as %s\n", user.Email)
}

func runLogout(ctx *commandContext, _ []string) error {
	if err := ctx.App.Sessions.Logout(ctx.Ctx); err != nil {
		return err
	}
	return writef(os.Stdout, "signed out\n")
}

func runWhoami(ctx *commandContext, _ []string) error {
	snap := ctx.App.Sessions.Resume(ctx.Ctx)
	if !snap.Authenticated() {
		return errors.New("not signed in")
	}
	u := snap.User
	return writef(os.Stdout, "%s\trole=%s\tdoctor=%v\tcredits=%.2f\n",
		u.Email, u.Role, u.IsDoctor, u.CreditBalance)
}

func runAccess(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("access", flag.ContinueOnError)
	path := fs.String("path", "/", "route path to evaluate")
	public := fs.Bool("public", false, "route does not require a subscription")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx.App.Sessions.Resume(ctx.Ctx)
	decision, err := ctx.App.Gate.Evaluate(ctx.Ctx, access.Route{
		Path:                 *path,
		RequiresSubscription: !*public,
	})
	if err != nil {
		return err
	}

	if err := writef(os.Stdout, "allowed=%v reason=%s outcome=%s\n",
		decision.Allowed, decision.Reason, decision.Outcome()); err != nil {
		return err
	}
	if decision.Trial.InTrial && decision.Trial.RemainingHours != nil {
		return writef(os.Stdout, "trial: %.1f hours remaining\n", *decision.Trial.RemainingHours)
	}
	return nil
}

func runSubmit(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	url := fs.String("url", "", "target path or absolute URL")
	method := fs.String("method", "POST", "HTTP method")
	data := fs.String("data", "{}", "JSON payload")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *url == "" {
		return errors.New("-url is required")
	}
	if !json.Valid([]byte(*data)) {
		return errors.New("-data must be valid JSON")
	}

	result, err := ctx.App.Submitter.Submit(ctx.Ctx, *url, *method, json.RawMessage(*data), nil)
	if err != nil {
		return err
	}
	if result.Offline {
		return writef(os.Stdout, "network unreachable; write queued as %s\n", result.EntryID)
	}
	return writef(os.Stdout, "status=%d ok=%v\n%s\n", result.StatusCode, result.OK, result.Body)
}

func runQueueList(ctx *commandContext, _ []string) error {
	entries, err := ctx.App.Queue.List(ctx.Ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return writef(os.Stdout, "queue is empty\n")
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].EnqueuedAt.Before(entries[j].EnqueuedAt)
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "ID\tMETHOD\tURL\tENQUEUED\tAGE\n"); err != nil {
		return err
	}
	now := time.Now().UTC()
	for _, e := range entries {
		if err := writef(w, "%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Method, e.URL,
			e.EnqueuedAt.Format("2006-01-02 15:04:05"),
			util.FormatQueueAge(now.Sub(e.EnqueuedAt))); err != nil {
			return err
		}
	}
	return w.Flush()
}

func runReplay(ctx *commandContext, _ []string) error {
	stats, err := ctx.App.Replayer.ReplayAll(ctx.Ctx)
	if err != nil {
		return err
	}
	return writef(os.Stdout, "attempted=%d delivered=%d remaining=%d\n",
		stats.Attempted, stats.Delivered, stats.Remaining)
}
