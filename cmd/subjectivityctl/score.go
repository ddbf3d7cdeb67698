package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nlgkit/subjectivity/internal/application/dto"
)

func newScoreCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "score [text...]",
		Short: "Score one text given as arguments or on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := textFromArgs(cmd, args)
			if err != nil {
				return err
			}

			scorer, err := opts.scorer(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			resp, err := scorer.Execute(cmd.Context(), dto.ScoreRequest{Text: text})
			if err != nil {
				return err
			}
			return printScore(cmd.OutOrStdout(), resp, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newBatchCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Score every non-empty line read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scorer, err := opts.scorer(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			in := bufio.NewScanner(cmd.InOrStdin())
			in.Buffer(make([]byte, 0, 64*1024), 1<<20)
			line := 0
			for in.Scan() {
				line++
				text := in.Text()
				if strings.TrimSpace(text) == "" {
					continue
				}
				resp, err := scorer.Execute(cmd.Context(), dto.ScoreRequest{Text: text})
				if err != nil {
					return fmt.Errorf("line %d: %w", line, err)
				}
				if err := printScore(cmd.OutOrStdout(), resp, asJSON); err != nil {
					return err
				}
			}
			return in.Err()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per line")
	return cmd
}

func printScore(w io.Writer, resp dto.ScoreResponse, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(resp)
	}
	_, err := fmt.Fprintf(w, "subjectivity=%.2f objectivity=%.2f level=%s\n",
		resp.Subjectivity, resp.Objectivity, resp.Level)
	return err
}
