package main

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/goliatone/go-userauth"
	"github.com/goliatone/go-userauth/repository"
)

const defaultDSN = "file:auth.db"

func newUserCmd(a *app) *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users in a local sqlite database",
	}
	cmd.PersistentFlags().StringVar(&dsn, "db", defaultDSN, "sqlite DSN")

	withManager := func(ctx context.Context, f func(*repository.Manager) error) error {
		db, err := openDB(dsn)
		if err != nil {
			return err
		}
		defer db.Close()

		mngr := repository.NewManager(db)
		if err := mngr.Migrate(ctx); err != nil {
			return err
		}
		return f(mngr)
	}

	var email, name, password string
	register := &cobra.Command{
		Use:   "register",
		Short: "Register a user holding ROLE_USER",
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := auth.RegisterUserMessage{Email: email, Name: name, Password: password}
			return withManager(cmd.Context(), func(m *repository.Manager) error {
				handler := auth.NewRegisterUserHandler(m.Users()).WithLogger(a.logger)
				sub := dispatcher.SubscribeCommand(handler,
					runner.WithTimeout(auth.DefaultRegisterTimeout),
					// Dispatch returns the error, the default handler would print it again
					runner.WithErrorHandler(func(error) {}),
				)
				defer sub.Unsubscribe()

				if err := dispatcher.Dispatch(cmd.Context(), msg); err != nil {
					return err
				}

				identity, err := m.Users().FindByEmail(cmd.Context(), email)
				if err != nil {
					return err
				}
				return writeJSON(cmd, map[string]any{
					"id":    identity.ID,
					"email": identity.Email,
					"roles": auth.RoleNames(identity.Roles),
				})
			})
		},
	}
	register.Flags().StringVar(&email, "email", "", "User email")
	register.Flags().StringVar(&name, "name", "", "Display name")
	register.Flags().StringVar(&password, "password", "", "Plain password, stored as a bcrypt hash")
	_ = register.MarkFlagRequired("email")
	_ = register.MarkFlagRequired("password")

	var userID, role string
	grant := &cobra.Command{
		Use:   "grant",
		Short: "Grant a role to a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(userID)
			if err != nil {
				return err
			}
			name, err := auth.ParseRoleName(role)
			if err != nil {
				return err
			}
			return withManager(cmd.Context(), func(m *repository.Manager) error {
				if err := m.Roles().Grant(cmd.Context(), id, name); err != nil {
					return err
				}
				identity, err := m.Users().FindByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				return writeJSON(cmd, map[string]any{
					"id":    identity.ID,
					"roles": auth.RoleNames(identity.Roles),
				})
			})
		},
	}
	grant.Flags().StringVar(&userID, "id", "", "User id")
	grant.Flags().StringVar(&role, "role", "", "Role name")
	_ = grant.MarkFlagRequired("id")
	_ = grant.MarkFlagRequired("role")

	login := &cobra.Command{
		Use:   "login",
		Short: "Check credentials and print a token pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			return withManager(cmd.Context(), func(m *repository.Manager) error {
				svc, err := auth.NewService(cfg, m.Stores())
				if err != nil {
					return err
				}
				svc.WithLogger(a.logger)

				pair, err := svc.Login(cmd.Context(), email, password)
				if err != nil {
					return err
				}
				return writeJSON(cmd, pair)
			})
		},
	}
	login.Flags().StringVar(&email, "email", "", "User email")
	login.Flags().StringVar(&password, "password", "", "Plain password")
	_ = login.MarkFlagRequired("email")
	_ = login.MarkFlagRequired("password")

	cmd.AddCommand(register, grant, login)

	return cmd
}

func openDB(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}
	sqldb.SetMaxOpenConns(1)
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}
