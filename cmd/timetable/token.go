package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
)

func newTokenCmd(app *cli) *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token signed with JWT_SECRET for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			userRole := models.UserRole(strings.ToUpper(strings.TrimSpace(role)))
			switch userRole {
			case models.RoleSuperAdmin, models.RoleAdmin, models.RoleFaculty, models.RoleStudent:
			default:
				return fmt.Errorf("unknown role %q", role)
			}
			tokens := service.NewTokenService(service.TokenConfig{Secret: app.cfg.JWT.Secret, Issuer: app.cfg.JWT.Issuer})
			token, expiresAt, err := tokens.IssueToken(userID, userRole, ttl)
			if err != nil {
				return err
			}
			app.logger.Sugar().Infow("token issued", "user_id", userID, "role", userRole, "expires_at", expiresAt)
			_, err = fmt.Fprintln(app.out, token)
			return err
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "subject user id")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "SUPERADMIN, ADMIN, FACULTY or STUDENT")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}
