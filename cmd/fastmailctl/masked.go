package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastmailctl/fastmailctl/internal/model"
)

func (a *app) maskedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "masked",
		Short: "Manage masked email addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all masked email addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			masked, err := client.MaskedEmails(cmd.Context())
			if err != nil {
				return err
			}
			return emit(model.SuccessOutput(masked))
		},
	})

	var domain, description, prefix string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new masked email address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			masked, err := client.CreateMaskedEmail(cmd.Context(), domain, description, prefix)
			if err != nil {
				return err
			}
			return emit(model.SuccessOutput(masked))
		},
	}
	createCmd.Flags().StringVar(&domain, "domain", "", "Site or domain the address is for")
	createCmd.Flags().StringVar(&description, "description", "", "Description")
	createCmd.Flags().StringVar(&prefix, "prefix", "", "Address prefix")
	cmd.AddCommand(createCmd)

	cmd.AddCommand(a.maskedStateCmd("enable", "Enable a masked email address", model.MaskedStateEnabled))
	cmd.AddCommand(a.maskedStateCmd("disable", "Disable a masked email address", model.MaskedStateDisabled))

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete <masked-id>",
		Short: "Delete a masked email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("delete masked email %s? Use -y to confirm", args[0])
			}
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.SetMaskedEmailState(cmd.Context(), args[0], model.MaskedStateDeleted); err != nil {
				return err
			}
			return emit(model.SuccessMessage("Deleted masked email %s", args[0]))
		},
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	cmd.AddCommand(deleteCmd)

	return cmd
}

func (a *app) maskedStateCmd(verb, short, state string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <masked-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.SetMaskedEmailState(cmd.Context(), args[0], state); err != nil {
				return err
			}
			return emit(model.SuccessMessage("Masked email %s is now %s", args[0], state))
		},
	}
}
