package cli

import (
	"io"

	"github.com/spf13/cobra"

	"mdxpad/internal/services"
)

func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <file|->",
		Short: "Render the Markdown layer of an MDX file to HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readDocument(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			html, err := services.NewPreviewService().Render(content)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), html)
			return err
		},
	}
}
