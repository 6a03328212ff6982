package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"slotswap-backend/config"
	"slotswap-backend/internal/auth"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var (
		name  string
		email string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint a signed user token for local development",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration from %s: %w", opts.configPath, err)
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}

			tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, ttl)
			raw, err := tokens.Issue(auth.Identity{UserID: args[0], Name: name, Email: email})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), raw)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name carried in the token")
	cmd.Flags().StringVar(&email, "email", "", "email carried in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to auth.token_ttl_hours)")
	return cmd
}
