package main

import (
	"time"

	"github.com/spf13/cobra"

	auth "github.com/goliatone/go-userauth"
)

type inspection struct {
	Result    string          `json:"result"`
	Valid     bool            `json:"valid"`
	Subject   string          `json:"sub,omitempty"`
	ID        string          `json:"id,omitempty"`
	Type      auth.TokenType  `json:"typ,omitempty"`
	TokenID   string          `json:"jti,omitempty"`
	Roles     []auth.RoleName `json:"roles,omitempty"`
	IssuedAt  *time.Time      `json:"iat,omitempty"`
	ExpiresAt *time.Time      `json:"exp,omitempty"`
}

func newInspectCmd(a *app) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "inspect <token>",
		Short: "Check a token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}

			now := time.Now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return err
				}
				now = parsed
			}

			validator := auth.NewTokenValidator(auth.NewCodec([]byte(cfg.Secret)), a.logger)
			result := validator.Check(args[0], now)

			out := inspection{
				Result: result.String(),
				Valid:  result == auth.ValidationValid,
			}

			// claims are only shown when the signature verifies
			if claims, err := validator.Claims(args[0]); err == nil {
				out.Subject = claims.Subject
				out.ID = claims.ID
				out.Type = claims.Type
				out.TokenID = claims.TokenID
				out.Roles = claims.Roles
				out.IssuedAt = timePtr(claims.IssuedAt)
				out.ExpiresAt = timePtr(claims.ExpiresAt)
			}

			return writeJSON(cmd, out)
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Evaluate expiry at this RFC3339 instant instead of now")

	return cmd
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}
