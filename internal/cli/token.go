package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/focusboard/internal/config"
	"github.com/ogulcanaydogan/focusboard/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a session token for a user",
	RunE:  runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringP("user", "u", "", "User id (token subject)")
	tokenCmd.Flags().String("email", "", "Email claim")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default from auth.token_ttl)")
	_ = tokenCmd.MarkFlagRequired("user")
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	user, _ := cmd.Flags().GetString("user")
	email, _ := cmd.Flags().GetString("email")
	ttl, _ := cmd.Flags().GetDuration("ttl")
	if ttl == 0 {
		ttl = config.Duration(cfg.Auth.TokenTTL)
	}

	tokens, err := server.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, ttl)
	if err != nil {
		return err
	}
	token, expiresAt, err := tokens.Issue(user, email)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
	return nil
}
