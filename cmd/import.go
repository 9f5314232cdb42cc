package main

import (
	"fmt"

	"github.com/okian/bookpop/internal/adapters/source"
	"github.com/okian/bookpop/pkg/logger"
	"github.com/spf13/cobra"
)

func newImportCmd(c *cli) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy the CSV inputs into a SQLite database",
		Long: "import reads ratings_path, books_path and users_path and replaces the\n" +
			"contents of the SQLite database at sqlite_path (or --out) with them.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if out == "" {
				out = c.cfg.SQLitePath
			}

			csvSrc := source.NewCSV(c.cfg.RatingsPath, c.cfg.BooksPath, c.cfg.UsersPath,
				source.WithDelimiter(c.cfg.Delimiter()),
			)
			ds, err := source.Load(ctx, csvSrc)
			if err != nil {
				return err
			}

			db, err := source.CreateSQLite(out)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := db.WriteDataset(ctx, ds); err != nil {
				return err
			}

			logger.Get().Info(ctx, "dataset imported",
				logger.String("path", db.Path()),
				logger.Int("ratings", len(ds.Ratings)),
				logger.Int("books", len(ds.Books)),
				logger.Int("users", len(ds.Users)),
			)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d ratings, %d books, %d users into %s\n",
				len(ds.Ratings), len(ds.Books), len(ds.Users), db.Path())
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "SQLite database path (default from sqlite_path)")
	return cmd
}
