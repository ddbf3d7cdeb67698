package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nlgkit/subjectivity/internal/application/usecase"
	"github.com/nlgkit/subjectivity/internal/domain/service"
	"github.com/nlgkit/subjectivity/internal/infrastructure/ml"
	"github.com/nlgkit/subjectivity/pkg/observability"
)

type rootOptions struct {
	modelPath string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "subjectivityctl",
		Short:         "Score the subjectivity of text with a trained classifier",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.modelPath, "model", service.DefaultModelPath, "path to the serialized classifier")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newScoreCmd(opts),
		newBatchCmd(opts),
		newInspectCmd(opts),
		newTokenCmd(),
		newCertsCmd(),
		newRemoteCmd(),
	)
	return cmd
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return observability.InitLogger(observability.LogConfig{
		Level:  o.logLevel,
		Format: "text",
		Output: cmd.ErrOrStderr(),
	})
}

// scorer loads the model eagerly so a bad path fails before any input is read.
func (o *rootOptions) scorer(ctx context.Context, cmd *cobra.Command) (*usecase.ScoreText, error) {
	assessor := service.NewAssessor(service.AssessorConfig{ModelPath: o.modelPath}, ml.NewLoader(o.logger(cmd)))
	if err := assessor.Load(ctx); err != nil {
		return nil, err
	}
	return usecase.NewScoreText(assessor, nil), nil
}
