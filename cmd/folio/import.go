package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-folio/internal/markdown"
)

func (a *app) importCommand() *cobra.Command {
	var opts markdown.ImportOptions
	var pattern string
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Import markdown files as blog posts",
		Long: `Import markdown files as blog posts.

Files sharing a slug become translations of one post. The locale comes
from a suffix (launch.ar.md) or a leading directory (ar/launch.md) and
falls back to the default locale.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, cfg, err := a.open()
			if err != nil {
				return err
			}
			defer module.Close()

			ctx := cmd.Context()
			if err := module.Bootstrap(ctx); err != nil {
				return err
			}
			active, err := module.Locales().Active(ctx)
			if err != nil {
				return err
			}
			codes := make([]string, 0, len(active))
			for _, locale := range active {
				codes = append(codes, locale.Code)
			}

			loader := markdown.NewLoader(os.DirFS(args[0]), markdown.LoaderConfig{
				DefaultLocale: cfg.DefaultLocale,
				Locales:       codes,
				Pattern:       pattern,
			})
			docs, err := loader.LoadDirectory(ctx)
			if err != nil {
				return err
			}
			importer, err := markdown.NewImporter(module.Blog(), markdown.WithLogger(module.Logger()))
			if err != nil {
				return err
			}
			result, err := importer.Import(ctx, docs, opts)
			if result != nil {
				prefix := ""
				if opts.DryRun {
					prefix = "dry run: "
				}
				a.printf("%screated %d, updated %d, skipped %d, failed %d\n",
					prefix, len(result.Created), len(result.Updated), len(result.Skipped), len(result.Errors))
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "report changes without writing")
	cmd.Flags().StringVar(&pattern, "pattern", "*.md", "file name glob")
	return cmd
}
