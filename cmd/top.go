package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/okian/bookpop/internal/domain/types"
	"github.com/spf13/cobra"
)

func newTopCmd(c *cli) *cobra.Command {
	var (
		limit int
		user  string
	)
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Print the most popular books",
		Example: "  bookpop top --limit 10\n" +
			"  bookpop top --user 276725 --limit 5",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if limit == 0 {
				limit = c.cfg.DefaultDisplayLimit
			}

			src, closeSource, err := openSource(c.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeSource() }()

			svc, err := newService(c.cfg, src)
			if err != nil {
				return err
			}
			if err := svc.Start(ctx); err != nil {
				return err
			}

			entries, known, err := svc.RecommendForUser(ctx, user, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if strings.TrimSpace(user) != "" && !known {
				_, _ = fmt.Fprintf(out, "user %s is unknown; showing the global ranking\n\n", user)
			}
			return printEntries(out, entries)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of books (default from default_display_limit)")
	cmd.Flags().StringVarP(&user, "user", "u", "", "User id to recommend for")
	return cmd
}

func printEntries(w io.Writer, entries []types.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tTitle\tAuthor\t#Ratings\tAvg Rating\tBayes Score")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.2f\t%.3f\n",
			e.Rank, e.Title, e.Author, e.NumRatings, e.AvgRating, e.Score)
	}
	return tw.Flush()
}
