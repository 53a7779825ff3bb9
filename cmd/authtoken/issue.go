package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	auth "github.com/goliatone/go-userauth"
)

func newIssueCmd(a *app) *cobra.Command {
	var (
		email string
		id    string
		roles []string
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue an access and refresh token pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}

			userID := uuid.New()
			if id != "" {
				parsed, err := uuid.Parse(id)
				if err != nil {
					return err
				}
				userID = parsed
			}

			identity := &auth.Identity{ID: userID, Email: email}
			for _, raw := range roles {
				name, err := auth.ParseRoleName(raw)
				if err != nil {
					return err
				}
				identity.Roles = append(identity.Roles, auth.Role{Name: name})
			}

			issuer := auth.NewTokenIssuer(cfg, auth.NewCodec([]byte(cfg.Secret)))
			pair, err := issuer.IssuePair(identity, time.Now())
			if err != nil {
				return err
			}

			a.logger.Debug("token pair issued", "user_id", userID.String())

			return writeJSON(cmd, pair)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Subject email")
	cmd.Flags().StringVar(&id, "id", "", "User id, a random one is used when empty")
	cmd.Flags().StringSliceVar(&roles, "role", []string{string(auth.RoleUser)}, "Role names to embed")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
