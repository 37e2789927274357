package main

import (
	"fmt"
	"strconv"

	"blogicum/internal/service"

	"github.com/spf13/cobra"
)

func newCategoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "category", Short: "Manage categories"}

	var in service.CategoryInput
	var hidden bool
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = args[0]
			in.IsPublished = !hidden
			category, err := a.catalog.CreateCategory(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created category %q (slug %s)\n", category.Title, category.Slug)
			return nil
		},
	}
	add.Flags().StringVar(&in.Slug, "slug", "", "URL slug (defaults to the slugified title)")
	add.Flags().StringVar(&in.Description, "description", "", "category description")
	add.Flags().BoolVar(&hidden, "hidden", false, "create the category unpublished")
	_ = add.MarkFlagRequired("description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			categories, err := a.catalog.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "SLUG\tTITLE\tPUBLISHED")
			for _, c := range categories {
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.Slug, c.Title, yesNo(c.IsPublished))
			}
			return w.Flush()
		},
	}

	setPublished := func(use, short string, published bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <slug>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.catalog.SetCategoryPublished(cmd.Context(), args[0], published); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "category %s published=%t\n", args[0], published)
				return nil
			},
		}
	}

	del := &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a category; its posts become uncategorized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.catalog.DeleteCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted category %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(add, list,
		setPublished("publish", "Publish a category and show its posts", true),
		setPublished("hide", "Hide a category and all of its posts", false),
		del)
	return cmd
}

func locationID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid location id %q", raw)
	}
	return uint(id), nil
}

func newLocationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "location", Short: "Manage locations"}

	var hidden bool
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location, err := a.catalog.CreateLocation(cmd.Context(), service.LocationInput{
				Name:        args[0],
				IsPublished: !hidden,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created location %q (id %d)\n", location.Name, location.ID)
			return nil
		},
	}
	add.Flags().BoolVar(&hidden, "hidden", false, "create the location unpublished")

	list := &cobra.Command{
		Use:   "list",
		Short: "List locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			locations, err := a.catalog.ListLocations(cmd.Context())
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tNAME\tPUBLISHED")
			for _, l := range locations {
				fmt.Fprintf(w, "%d\t%s\t%s\n", l.ID, l.Name, yesNo(l.IsPublished))
			}
			return w.Flush()
		},
	}

	setPublished := func(use, short string, published bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := locationID(args[0])
				if err != nil {
					return err
				}
				if err := a.catalog.SetLocationPublished(cmd.Context(), id, published); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "location %d published=%t\n", id, published)
				return nil
			},
		}
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a location; its posts keep existing without one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := locationID(args[0])
			if err != nil {
				return err
			}
			if err := a.catalog.DeleteLocation(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted location %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(add, list,
		setPublished("publish", "Publish a location", true),
		setPublished("hide", "Hide a location", false),
		del)
	return cmd
}
