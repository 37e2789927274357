package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage accounts"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List users with their post counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := a.users.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tADMIN\tPOSTS\tJOINED")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
					u.ID, u.Username, u.Email, yesNo(u.IsAdmin), u.PostCount, u.DateJoined.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}

	setAdmin := func(use, short string, admin bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <username>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				user, err := a.users.SetAdmin(cmd.Context(), args[0], admin)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user %s (ID: %d) admin=%t\n", user.Username, user.ID, user.IsAdmin)
				return nil
			},
		}
	}

	del := &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete an account with all of its posts and comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.users.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted user %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list,
		setAdmin("promote", "Grant admin rights", true),
		setAdmin("demote", "Revoke admin rights", false),
		del)
	return cmd
}
