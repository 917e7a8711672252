package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wiki-api/pkg/services"
)

func newImportCmd(a *app) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Insert one article per Markdown file under dir",
		Long: `Walks dir for .md and .markdown files. The article title is read from
YAML (---), TOML (+++) or JSON front matter and falls back to the file name;
the content is the file body.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if concurrency <= 0 {
				concurrency = a.cfg.ImportConcurrency
			}

			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			result, err := services.NewImporter(s, a.logger, concurrency).ImportDir(cmd.Context(), args[0])
			a.logger.Info("Import finished",
				zap.Int("imported", result.Imported),
				zap.Int("skipped", result.Skipped),
			)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d articles (%d skipped)\n", result.Imported, result.Skipped)
			return nil
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "parallel inserts (default IMPORT_CONCURRENCY or 20)")
	return cmd
}
