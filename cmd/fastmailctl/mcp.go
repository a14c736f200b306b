package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fastmailctl/fastmailctl/internal/tools"
)

func (a *app) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run as an MCP server over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			// Contacts are optional for the tool server; search_contacts
			// reports the missing CardDAV setup itself.
			manager, err := a.contactManager()
			if err != nil {
				a.log.Debug("carddav unavailable", "error", err)
				manager = nil
			}

			service := tools.NewService(client, manager, a.resolver(client),
				a.cfg.Attachment.ImageMaxBytes, a.cfg.Attachment.TextMaxBytes)
			server := tools.NewServer(service.Registry(), a.log)
			return server.Run(cmd.Context(), os.Stdin, os.Stdout)
		},
	}
}
