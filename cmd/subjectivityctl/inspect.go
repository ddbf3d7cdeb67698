package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nlgkit/subjectivity/internal/infrastructure/ml"
)

func newInspectCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe the model file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := ml.LoadFile(opts.modelPath)
			if err != nil {
				return err
			}
			info := p.Info()

			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(info)
			}
			fmt.Fprintf(out, "name:       %s\n", info.Name)
			fmt.Fprintf(out, "format:     %s\n", info.Format)
			fmt.Fprintf(out, "estimator:  %s\n", info.Estimator)
			fmt.Fprintf(out, "classes:    %s\n", strings.Join(info.Classes, ", "))
			fmt.Fprintf(out, "vocabulary: %d\n", info.VocabularySize)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the description as JSON")
	return cmd
}
