// Package main is the inkwell provisioning CLI. It creates admin users
// (optionally with a TOTP second factor), applies migrations and loads
// demo content.
//
// Usage:
//
//	inkwell-admin create-user -email admin@example.com -password secret [-totp] [-qr totp.png]
//	inkwell-admin seed-demo
//	inkwell-admin migrate
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"inkwell/internal/auth"
	"inkwell/internal/blog"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/store"
)

const usage = `usage: inkwell-admin <command> [flags]

commands:
  create-user   create an admin user (-email, -password, -totp, -qr)
  seed-demo     create demo categories and posts, skipping existing ones
  migrate       apply pending database migrations
`

// errUsage is returned for a missing or unknown command.
var errUsage = errors.New("invalid usage")

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// run dispatches a subcommand. Output meant for the operator goes to out.
func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "create-user":
		opts, err := parseCreateUser(args[1:])
		if err != nil {
			return err
		}
		return withDB(ctx, func(dbm *database.Manager, cfg *config.Config) error {
			return createUser(ctx, store.NewUserStore(dbm), cfg.SiteName, opts, out)
		})
	case "seed-demo":
		return withDB(ctx, func(dbm *database.Manager, _ *config.Config) error {
			svc := blog.NewService(store.NewCategoryStore(dbm), store.NewPostStore(dbm))
			return seedDemo(ctx, svc, out)
		})
	case "migrate":
		return withDB(ctx, func(*database.Manager, *config.Config) error {
			fmt.Fprintln(out, "migrations applied")
			return nil
		})
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

// withDB loads configuration, opens the database, applies migrations and
// calls fn.
func withDB(ctx context.Context, fn func(*database.Manager, *config.Config) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dbm := database.NewManager(cfg.DatabaseURL)
	defer dbm.Close()

	db, err := dbm.DB(ctx)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	return fn(dbm, cfg)
}

type createUserOpts struct {
	email    string
	password string
	totp     bool
	qrPath   string
}

func parseCreateUser(args []string) (createUserOpts, error) {
	var o createUserOpts
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.email, "email", "", "login email")
	fs.StringVar(&o.password, "password", "", "login password")
	fs.BoolVar(&o.totp, "totp", false, "require a TOTP code at login")
	fs.StringVar(&o.qrPath, "qr", "", "write the TOTP enrollment QR code to this PNG file")
	if err := fs.Parse(args); err != nil {
		return o, fmt.Errorf("%w: %v", errUsage, err)
	}

	o.email = auth.NormalizeEmail(o.email)
	switch {
	case o.email == "" || o.password == "":
		return o, fmt.Errorf("%w: -email and -password are required", errUsage)
	case len(o.password) < 8:
		return o, errors.New("password must be at least 8 characters")
	case o.qrPath != "" && !o.totp:
		return o, fmt.Errorf("%w: -qr requires -totp", errUsage)
	}
	return o, nil
}

func createUser(ctx context.Context, users *store.UserStore, issuer string, o createUserOpts, out io.Writer) error {
	existing, err := users.FindByEmail(ctx, o.email)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("a user with email %s already exists", o.email)
	}

	var secret *string
	if o.totp {
		key, err := totp.Generate(totp.GenerateOpts{Issuer: issuer, AccountName: o.email})
		if err != nil {
			return fmt.Errorf("generate totp secret: %w", err)
		}
		s := key.Secret()
		secret = &s

		if o.qrPath != "" {
			if err := qrcode.WriteFile(key.URL(), qrcode.Medium, 256, o.qrPath); err != nil {
				return fmt.Errorf("write qr code: %w", err)
			}
		}
		fmt.Fprintf(out, "TOTP secret: %s\nTOTP URL:    %s\n", s, key.URL())
	}

	u, err := users.Create(ctx, o.email, o.password, secret)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created user %s (%s)\n", u.Email, u.ID)
	return nil
}
