package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/modelarena/feedbackd/internal/adapter/postgres"
	"github.com/modelarena/feedbackd/internal/config"
	"github.com/modelarena/feedbackd/internal/service"
)

// runAdmin dispatches admin subcommands.
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "set-token":
		return runAdminSetToken(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: feedbackd admin <command> [options]

Commands:
  set-token   Set the admin API token
  help        Show this help message

Examples:
  feedbackd admin set-token
  feedbackd admin set-token --token some-long-token
`)
}

func runAdminSetToken(args []string) error {
	fs := flag.NewFlagSet("set-token", flag.ContinueOnError)
	token := fs.String("token", "", "new API token (prompted if not provided)") //nolint:gosec // CLI flag
	if err := fs.Parse(args); err != nil {
		return err
	}

	newToken := *token
	if newToken == "" {
		var err error
		newToken, err = promptSecret("New token: ")
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		confirm, err := promptSecret("Confirm token: ")
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		if newToken != confirm {
			return fmt.Errorf("tokens do not match")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	authSvc := service.NewAuthService(postgres.NewStore(pool))
	if err := authSvc.SetToken(ctx, newToken); err != nil {
		return fmt.Errorf("set token: %w", err)
	}

	fmt.Fprintln(os.Stderr, "Admin token updated")
	return nil
}

func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin)) //nolint:unconvert // int conversion needed on some platforms
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
