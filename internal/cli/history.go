package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mdxpad/internal/database"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var limit int
	var clear bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent generations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, db, err := root.openServices(cmd)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if clear {
				return svc.History.Clear()
			}
			records, err := svc.History.List(limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				dim(cmd.ErrOrStderr(), "  no generations yet\n")
				return nil
			}
			for _, r := range records {
				target := r.Target
				if r.Range != "" {
					target += " " + r.Range
				}
				fmt.Fprintf(out, "%s  %-10s %-10s %-24s %s  %d chars\n",
					r.CreatedAt.Format("2006-01-02 15:04"), r.State, r.Provider, r.Model, target, r.OutputLength)
				dim(out, "    %s\n", firstLine(r.Prompt))
				if r.Error != "" {
					dim(out, "    error: %s\n", r.Error)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records to show")
	cmd.Flags().BoolVar(&clear, "clear", false, "delete all history")
	return cmd
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	if len(line) > 80 {
		line = line[:77] + "..."
	}
	return line
}
