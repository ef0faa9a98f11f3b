package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/macrotrack-backend/internal/auth"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for local development",
		Long: `Sign an access token with auth.jwt_secret for the given user id.
A random user id is generated when --user is omitted.

Examples:
  macrotrack token
  macrotrack token --user 6f1c2c1e-6f43-4e0b-9d0e-2b1f1f6f1a10 --ttl 24h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := opts.load(cmd)
			if err != nil {
				return err
			}

			id := uuid.New()
			if userID != "" {
				if id, err = uuid.Parse(userID); err != nil {
					return fmt.Errorf("--user: %w", err)
				}
			}

			token, expires, err := auth.NewJWTManager(cfg.Auth).IssueAccessToken(id, ttl)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user:    %s\n", id)
			fmt.Fprintf(out, "expires: %s\n", expires.UTC().Format(time.RFC3339))
			fmt.Fprintf(out, "token:   %s\n", token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to put in the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default: auth.access_token_ttl)")
	return cmd
}
