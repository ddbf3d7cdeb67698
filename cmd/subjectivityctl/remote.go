package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	grpcapi "github.com/nlgkit/subjectivity/internal/presentation/grpc"
	"github.com/nlgkit/subjectivity/pkg/tlsutil"
)

type remoteOptions struct {
	addr       string
	caFile     string
	serverName string
	token      string
	tenant     string
	timeout    time.Duration
	useTLS     bool
}

func (o *remoteOptions) dial() (*grpcapi.Client, error) {
	opts := grpcapi.ClientOptions{Token: o.token}
	if opts.Token == "" {
		opts.Token = os.Getenv("SUBJECTIVITY_TOKEN")
	}
	if o.useTLS || o.caFile != "" {
		creds, err := tlsutil.ClientTLSConfig(o.caFile, o.serverName)
		if err != nil {
			return nil, err
		}
		opts.Credentials = creds
	}
	return grpcapi.NewClient(o.addr, opts)
}

// run dials the service, executes fn under the call timeout and prints its
// result as indented JSON.
func (o *remoteOptions) run(cmd *cobra.Command, fn func(ctx context.Context, c *grpcapi.Client) (any, error)) error {
	client, err := o.dial()
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()

	resp, err := fn(ctx, client)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func newRemoteCmd() *cobra.Command {
	opts := &remoteOptions{}

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Call a running subjectivity service over gRPC",
	}
	cmd.PersistentFlags().StringVar(&opts.addr, "addr", "localhost:8095", "gRPC address of the service")
	cmd.PersistentFlags().BoolVar(&opts.useTLS, "tls", false, "use TLS with the system roots")
	cmd.PersistentFlags().StringVar(&opts.caFile, "ca-file", "", "CA certificate to verify the server (implies --tls)")
	cmd.PersistentFlags().StringVar(&opts.serverName, "server-name", "", "override the TLS server name")
	cmd.PersistentFlags().StringVar(&opts.token, "token", "", "bearer token (defaults to SUBJECTIVITY_TOKEN)")
	cmd.PersistentFlags().StringVar(&opts.tenant, "tenant", "", "tenant UUID, used when the service runs without authentication")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-call timeout")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "score [text...]",
			Short: "Score one text without storing it",
			RunE: func(cmd *cobra.Command, args []string) error {
				text, err := textFromArgs(cmd, args)
				if err != nil {
					return err
				}
				return opts.run(cmd, func(ctx context.Context, c *grpcapi.Client) (any, error) {
					return c.Score(ctx, &grpcapi.ScoreRequest{Text: text})
				})
			},
		},
		newRemoteAssessCmd(opts),
		&cobra.Command{
			Use:   "get <assessment-id>",
			Short: "Fetch a stored assessment",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.run(cmd, func(ctx context.Context, c *grpcapi.Client) (any, error) {
					return c.GetAssessment(ctx, &grpcapi.GetAssessmentRequest{TenantID: opts.tenant, ID: args[0]})
				})
			},
		},
		newRemoteListCmd(opts),
	)
	return cmd
}

func newRemoteAssessCmd(opts *remoteOptions) *cobra.Command {
	var reference string
	cmd := &cobra.Command{
		Use:   "assess [text...]",
		Short: "Score and store one text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := textFromArgs(cmd, args)
			if err != nil {
				return err
			}
			return opts.run(cmd, func(ctx context.Context, c *grpcapi.Client) (any, error) {
				return c.AssessText(ctx, &grpcapi.AssessTextRequest{TenantID: opts.tenant, Reference: reference, Text: text})
			})
		},
	}
	cmd.Flags().StringVar(&reference, "reference", "", "caller reference stored with the assessment")
	return cmd
}

func newRemoteListCmd(opts *remoteOptions) *cobra.Command {
	var limit, offset int32
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored assessments, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, func(ctx context.Context, c *grpcapi.Client) (any, error) {
				return c.ListAssessments(ctx, &grpcapi.ListAssessmentsRequest{TenantID: opts.tenant, Limit: limit, Offset: offset})
			})
		},
	}
	cmd.Flags().Int32Var(&limit, "limit", 20, "page size")
	cmd.Flags().Int32Var(&offset, "offset", 0, "number of assessments to skip")
	return cmd
}

// textFromArgs joins args, or reads stdin when there are none.
func textFromArgs(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	if len(data) == 0 {
		return "", errors.New("no text given on the command line or stdin")
	}
	return string(data), nil
}
