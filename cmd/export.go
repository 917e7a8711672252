package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"wiki-api/pkg/services"
)

func newExportCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every article to dir as Markdown with front matter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case services.FormatYAML, services.FormatTOML, services.FormatJSON:
			default:
				return fmt.Errorf("unsupported format %q (want yaml, toml or json)", format)
			}

			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			n, err := services.ExportDir(cmd.Context(), s, args[0], format)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d articles to %s\n", n, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", services.FormatYAML, "front matter format: yaml, toml or json")
	return cmd
}
