package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"codeberg.org/pixelpress/server/internal/auth"
	"codeberg.org/pixelpress/server/pixelpress/accounts"
)

type tokenOptions struct {
	email  string
	admin  bool
	ttl    time.Duration
	lookup bool
}

// signs a bearer token for an account, optionally reading email and admin
// flag from the database
func newTokenCommand() *cobra.Command {
	opts := tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token <account-id>",
		Short: "Issue a JWT for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.email, "email", "dev@pixelpress.local", "Email claim")
	cmd.Flags().BoolVar(&opts.admin, "admin", false, "Grant the admin role")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 24*time.Hour, "Token lifetime")
	cmd.Flags().BoolVar(&opts.lookup, "lookup", false, "Load email and admin flag from DATABASE_URL")

	return cmd
}

func runToken(cmd *cobra.Command, accountID string, opts tokenOptions) error {
	verifier, err := auth.NewVerifier(os.Getenv("JWT_SECRET"))
	if err != nil {
		return err
	}

	if opts.lookup {
		account, err := lookupAccount(cmd.Context(), accountID)
		if err != nil {
			return err
		}

		opts.email = account.Email
		opts.admin = account.IsAdmin

		fmt.Fprintf(cmd.ErrOrStderr(), "using account %s (%d credits)\n", account.Email, account.Credits)
	}

	token, err := verifier.Generate(accountID, opts.email, opts.admin, opts.ttl)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func lookupAccount(ctx context.Context, accountID string) (*accounts.Account, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, errors.New("DATABASE_URL not set")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	return accounts.NewRepository(pool).FindByID(ctx, accountID)
}
