package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/johnnywrightiv/workout-tracker-sub000/internal/config"
	sessionauth "github.com/johnnywrightiv/workout-tracker-sub000/pkg/auth"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue or inspect session tokens",
	}
	cmd.AddCommand(tokenIssueCmd(), tokenVerifyCmd())
	return cmd
}

func tokenIssueCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a session token for a user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			tokens, err := tokenService()
			if err != nil {
				return err
			}
			token, identity, err := tokens.Issue(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", identity.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id the token asserts")
	return cmd
}

func tokenVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Check a session token and print its subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := tokenService()
			if err != nil {
				return err
			}
			identity, err := tokens.Verify(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s, expires %s\n", identity.UserID, identity.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
}

// tokenService builds the signer from the environment. Only the JWT settings are needed, so
// unrelated missing configuration is ignored.
func tokenService() (*sessionauth.TokenService, error) {
	cfg, _ := config.Load()
	return sessionauth.NewTokenService(sessionauth.Config{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.SessionTTL,
	})
}
