package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"mdxpad/internal/database"
)

func newModelsCmd(root *rootOptions) *cobra.Command {
	var enable, disable string
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the model catalog and toggle models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, db, err := root.openServices(cmd)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if enable != "" {
				if _, err := svc.ModelConfigs.SetModelEnabled(enable, true); err != nil {
					return err
				}
			}
			if disable != "" {
				if _, err := svc.ModelConfigs.SetModelEnabled(disable, false); err != nil {
					return err
				}
			}

			groups, err := svc.ModelConfigs.ListModelGroups()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, g := range groups {
				heading(out, "%s\n", g.ProviderName)
				for _, m := range g.Models {
					mark := " "
					if m.Default {
						mark = "*"
					}
					state := ""
					if !m.Enabled {
						state = " (disabled)"
					}
					fmt.Fprintf(out, "  %s %-28s %s%s\n", mark, m.APIName, m.DisplayName, state)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&enable, "enable", "", "enable a model by key (provider|apiName)")
	cmd.Flags().StringVar(&disable, "disable", "", "disable a model by key (provider|apiName)")
	return cmd
}
