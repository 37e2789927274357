package main

import (
	"fmt"

	"blogicum/internal/fixtures"

	"github.com/spf13/cobra"
)

func newPostCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "post", Short: "Inspect posts"}

	var category string
	var limit int
	search := &cobra.Command{
		Use:   "search <title>",
		Short: "Find posts by title, whatever their visibility",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := a.posts.Search(cmd.Context(), args[0], category, limit)
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tCATEGORY\tPUB DATE\tPUBLISHED\tCOMMENTS")
			for _, p := range posts {
				slug := "-"
				if p.Category != nil {
					slug = p.Category.Slug
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\n",
					p.ID, p.Title, p.Author.Username, slug,
					p.PubDate.Format("2006-01-02 15:04"), yesNo(p.IsPublished), p.CommentCount)
			}
			return w.Flush()
		},
	}
	search.Flags().StringVar(&category, "category", "", "only posts in the category with this slug")
	search.Flags().IntVar(&limit, "limit", 50, "maximum number of results")

	cmd.AddCommand(search)
	return cmd
}

func newFixturesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "fixtures", Short: "Load catalog fixtures"}

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.yml>",
		Short: "Upsert categories and locations from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := fixtures.ImportFile(cmd.Context(), a.catalog, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d categories upserted, %d locations created, %d already present\n",
				report.Categories, report.LocationsCreated, report.LocationsExisting)
			return nil
		},
	})
	return cmd
}
