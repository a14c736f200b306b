package main

import (
	"github.com/spf13/cobra"

	"github.com/fastmailctl/fastmailctl/internal/model"
)

func (a *app) contactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Browse the CardDAV address book",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var refresh bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := a.contactManager()
			if err != nil {
				return err
			}
			list, err := manager.List(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			return emit(model.SuccessOutput(list))
		},
	}
	listCmd.Flags().BoolVar(&refresh, "refresh", false, "Refetch from the server even if the cache is fresh")
	cmd.AddCommand(listCmd)

	var searchRefresh bool
	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search contacts by name, organization, or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := a.contactManager()
			if err != nil {
				return err
			}
			matches, err := manager.Search(cmd.Context(), args[0], searchRefresh)
			if err != nil {
				return err
			}
			return emit(model.SuccessOutput(matches))
		},
	}
	searchCmd.Flags().BoolVar(&searchRefresh, "refresh", false, "Refetch from the server even if the cache is fresh")
	cmd.AddCommand(searchCmd)

	return cmd
}
