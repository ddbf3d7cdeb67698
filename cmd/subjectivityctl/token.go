package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nlgkit/subjectivity/pkg/auth"
)

func newTokenCmd() *cobra.Command {
	var (
		secret     string
		keyPath    string
		issuer     string
		subject    string
		tenant     string
		roles      []string
		expiration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for calling the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := auth.JWTConfig{
				Secret:     secret,
				Issuer:     issuer,
				Expiration: expiration,
			}
			if cfg.Secret == "" {
				cfg.Secret = os.Getenv("JWT_SECRET")
			}
			if keyPath != "" {
				pem, err := auth.LoadKeyFromFile(keyPath)
				if err != nil {
					return err
				}
				cfg.PrivateKeyPEM = pem
			}
			if cfg.Secret == "" && cfg.PrivateKeyPEM == "" {
				return errors.New("a --secret, JWT_SECRET or --private-key is required")
			}

			tenantID := uuid.Nil
			if tenant != "" {
				id, err := uuid.Parse(tenant)
				if err != nil {
					return fmt.Errorf("invalid --tenant: %w", err)
				}
				tenantID = id
			}

			svc, err := auth.NewJWTService(cfg)
			if err != nil {
				return err
			}
			token, err := svc.GenerateToken(subject, tenantID, roles)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "HMAC signing secret (defaults to JWT_SECRET)")
	cmd.Flags().StringVar(&keyPath, "private-key", "", "RSA private key PEM file")
	cmd.Flags().StringVar(&issuer, "issuer", "subjectivity", "token issuer")
	cmd.Flags().StringVar(&subject, "subject", "subjectivityctl", "token subject")
	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant UUID carried in the token")
	cmd.Flags().StringSliceVar(&roles, "role", []string{auth.RoleScorer}, "granted roles")
	cmd.Flags().DurationVar(&expiration, "ttl", time.Hour, "token lifetime")
	return cmd
}
