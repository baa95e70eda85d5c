package main

// Operator CLI for the admin gateway: mints, lists and revokes admin API
// tokens against the key directory.

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/contentops/admin-gateway/config"
	"github.com/contentops/admin-gateway/internal/bootstrap"
	"github.com/contentops/admin-gateway/internal/data"
	"github.com/contentops/admin-gateway/internal/service"
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
	Config config.AppConfig
}

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
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
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"mint-key": {
			name:        "mint-key",
			description: "Mint a project-scoped admin API token",
			run:         runMintKey,
		},
		"list-keys": {
			name:        "list-keys",
			description: "List the API key records of an org",
			run:         runListKeys,
		},
		"revoke-key": {
			name:        "revoke-key",
			description: "Revoke an API key by id",
			run:         runRevokeKey,
		},
	}
}

func runMintKey(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("mint-key", flag.ContinueOnError)
	org := fs.String("org", "", "organization the key is scoped to (required)")
	site := fs.String("site", "", "site the key is scoped to (required)")
	email := fs.String("email", "", "owner contact recorded with the key")
	ttlDays := fs.Int("ttl-days", 0, "key lifetime in days, 0 for non-expiring")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *org == "" || *site == "" {
		return errors.New("mint-key requires -org and -site")
	}

	svc, cleanup, err := keyService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	minted, err := svc.Mint(ctx.Ctx, service.MintRequest{
		Org:   *org,
		Site:  *site,
		Email: *email,
		TTL:   time.Duration(*ttlDays) * 24 * time.Hour,
	})
	if err != nil {
		return err
	}

	if err := writef(os.Stdout, "id:    %s\n", minted.Key.ID); err != nil {
		return err
	}
	if minted.Key.ExpiresAt != nil {
		if err := writef(os.Stdout, "expires: %s\n", minted.Key.ExpiresAt.Format(time.RFC3339)); err != nil {
			return err
		}
	}
	// The token is shown once and not stored.
	return writef(os.Stdout, "token: %s\n", minted.Token)
}

func runListKeys(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-keys", flag.ContinueOnError)
	org := fs.String("org", "", "organization to list (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *org == "" {
		return errors.New("list-keys requires -org")
	}

	svc, cleanup, err := keyService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	keys, err := svc.List(ctx.Ctx, *org)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tSUBJECT\tEMAIL\tCREATED\tEXPIRES\tREVOKED"); err != nil {
		return err
	}
	for _, key := range keys {
		expires, revoked := "-", "-"
		if key.ExpiresAt != nil {
			expires = key.ExpiresAt.Format(time.RFC3339)
		}
		if key.RevokedAt != nil {
			revoked = key.RevokedAt.Format(time.RFC3339)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			key.ID, key.Subject(), key.Email,
			key.CreatedAt.Format(time.RFC3339), expires, revoked); err != nil {
			return err
		}
	}
	return w.Flush()
}

func runRevokeKey(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("revoke-key", flag.ContinueOnError)
	id := fs.String("id", "", "key id to revoke (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("revoke-key requires -id")
	}

	svc, cleanup, err := keyService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := svc.Revoke(ctx.Ctx, *id); err != nil {
		return err
	}
	return writef(os.Stdout, "revoked %s\n", *id)
}

// keyService connects the database and assembles the API key service. The
// returned cleanup closes the connection.
func keyService(ctx *commandContext) (*service.APIKeyService, func(), error) {
	db, err := connectDB(ctx)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if cerr := db.Close(); cerr != nil {
			ctx.Logger.ErrorContext(ctx.Ctx, "close database failed", "error", cerr)
		}
	}

	registry, err := bootstrap.BuildRegistry(&ctx.Config)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	svc := service.NewAPIKeyService(service.APIKeyServiceOptions{
		Registry: registry,
		Keys:     data.NewAPIKeyRepo(db),
		Logger:   ctx.Logger,
	})
	return svc, cleanup, nil
}

func connectDB(ctx *commandContext) (*sql.DB, error) {
	return bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DBConfig: ctx.Config.Postgres,
		Logger:   ctx.Logger,
	})
}

func printUsage() error {
	if err := writef(os.Stderr, "usage: gateway-admin <command> [flags]\n\ncommands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(os.Stderr, "  %-12s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
