package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nlgkit/subjectivity/pkg/tlsutil"
)

func newCertsCmd() *cobra.Command {
	var (
		dir      string
		hosts    []string
		validFor time.Duration
	)

	cmd := &cobra.Command{
		Use:   "certs",
		Short: "Write a development CA and server certificate for TLS_CERT_FILE/TLS_KEY_FILE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			certs, err := tlsutil.NewDevCertificates(hosts, validFor)
			if err != nil {
				return err
			}
			if err := certs.WriteDir(dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote ca.pem, ca-key.pem, server.pem, server-key.pem to %s\n", dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "out", "certs", "output directory")
	cmd.Flags().StringSliceVar(&hosts, "host", []string{"localhost", "127.0.0.1"}, "DNS names or IPs of the server")
	cmd.Flags().DurationVar(&validFor, "valid-for", 365*24*time.Hour, "certificate lifetime")
	return cmd
}
