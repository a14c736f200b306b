package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastmailctl/fastmailctl/internal/credential"
	"github.com/fastmailctl/fastmailctl/internal/jmap"
	"github.com/fastmailctl/fastmailctl/internal/model"
)

func (a *app) authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth <token>",
		Short: "Authenticate with a Fastmail API token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := args[0]

			// Validate before storing so a typo never clobbers a
			// working token.
			client := jmap.NewClient(a.cfg.JMAP.SessionURL, token, a.cfg.Timeout(), a.log)
			session, err := client.Authenticate(cmd.Context())
			if err != nil {
				return err
			}

			if err := credential.Set(credential.KeyAPIToken, token); err != nil {
				return err
			}
			return emit(model.SuccessMessage("Authenticated as %s", session.Username))
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "carddav <username> <app-password>",
		Short: "Store CardDAV credentials for the contacts commands",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := credential.Set(credential.KeyUsername, args[0]); err != nil {
				return err
			}
			if err := credential.Set(credential.KeyAppPassword, args[1]); err != nil {
				return err
			}
			return emit(model.SuccessMessage("Stored CardDAV credentials for %s", args[0]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove all stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var firstErr error
			for _, key := range []string{credential.KeyAPIToken, credential.KeyUsername, credential.KeyAppPassword} {
				if err := credential.Delete(key); err != nil && firstErr == nil {
					firstErr = fmt.Errorf("clearing %s: %w", key, err)
				}
			}
			if firstErr != nil {
				return firstErr
			}
			return emit(model.SuccessMessage("Credentials cleared"))
		},
	})

	return cmd
}
