package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/ledger-api/internal/application/service"
	"github.com/sangkips/ledger-api/internal/domain/entity"
	"github.com/sangkips/ledger-api/pkg/utils"
	"github.com/spf13/cobra"
)

func newTenantCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}
	cmd.AddCommand(newTenantCreateCmd(a))
	return cmd
}

func newTenantCreateCmd(a *app) *cobra.Command {
	var slug, dateFormat, currency string

	cmd := &cobra.Command{
		Use:     "create NAME",
		Short:   "Create a tenant",
		Example: `  ledgerctl tenant create "Acme Trading LLC" --date-format MM/DD/YYYY --currency USD`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			tenant, err := a.tenants.CreateTenant(cmd.Context(), &service.CreateTenantInput{
				Name:     args[0],
				Slug:     slug,
				Settings: &entity.TenantSettings{DateFormat: dateFormat, Currency: currency},
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tenant)
		},
	}
	cmd.Flags().StringVar(&slug, "slug", "", "URL-safe identifier (default: derived from NAME)")
	cmd.Flags().StringVar(&dateFormat, "date-format", "", "DD/MM/YYYY or MM/DD/YYYY")
	cmd.Flags().StringVar(&currency, "currency", "", "ISO currency code")
	return cmd
}

func newTokenCmd(a *app) *cobra.Command {
	var tenantRef, userRef, email string
	var roles []string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant, err := a.findTenant(cmd.Context(), tenantRef)
			if err != nil {
				return fmt.Errorf("tenant %q: %w", tenantRef, err)
			}

			userID := uuid.New()
			if userRef != "" {
				if userID, err = utils.ParseUUID(userRef); err != nil {
					return fmt.Errorf("invalid --user %q", userRef)
				}
			}

			jwtManager := utils.NewJWTManager(a.cfg.JWT.Secret, a.cfg.App.Name, a.cfg.JWT.ExpiryHours)
			token, err := jwtManager.GenerateAccessToken(userID, tenant.ID, email, roles)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&tenantRef, "tenant", "", "Tenant ID or slug (required)")
	cmd.Flags().StringVar(&userRef, "user", "", "User ID (default: a new random ID)")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	cmd.Flags().StringSliceVar(&roles, "role", []string{"accountant"}, "Roles to grant")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}
