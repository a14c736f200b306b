package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastmailctl/fastmailctl/internal/jmap"
	"github.com/fastmailctl/fastmailctl/internal/model"
)

func (a *app) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "mailboxes",
		Short: "List mailboxes (folders)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			mailboxes, err := client.Mailboxes(cmd.Context())
			if err != nil {
				return err
			}
			return emit(model.SuccessOutput(mailboxes))
		},
	})

	var mailbox string
	var limit uint32
	emailsCmd := &cobra.Command{
		Use:   "emails",
		Short: "List emails in a mailbox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			box, err := client.FindMailbox(cmd.Context(), mailbox)
			if err != nil {
				return err
			}
			emails, err := client.ListEmails(cmd.Context(), box.ID, limit)
			if err != nil {
				return err
			}
			return emit(model.SuccessOutput(struct {
				Mailbox model.Mailbox `json:"mailbox"`
				Emails  []model.Email `json:"emails"`
			}{Mailbox: *box, Emails: emails}))
		},
	}
	emailsCmd.Flags().StringVarP(&mailbox, "mailbox", "m", "INBOX", "Mailbox name")
	emailsCmd.Flags().Uint32VarP(&limit, "limit", "l", 50, "Maximum results")
	cmd.AddCommand(emailsCmd)

	return cmd
}

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <email-id>",
		Short: "Get a specific email by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			email, err := client.GetEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emit(model.SuccessOutput(email))
		},
	}
}

func (a *app) threadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "thread <email-id>",
		Short: "Get all emails in a thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			emails, err := client.GetThread(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return emit(model.SuccessOutput(emails))
		},
	}
}

func (a *app) searchCmd() *cobra.Command {
	var opts jmap.SearchOptions
	var pinned bool
	var limit uint32
	var mailbox string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search emails with JMAP filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			if mailbox != "" {
				box, err := client.FindMailbox(cmd.Context(), mailbox)
				if err != nil {
					return err
				}
				opts.MailboxID = box.ID
			}
			if pinned {
				inbox, err := client.FindMailbox(cmd.Context(), "inbox")
				if err != nil {
					return err
				}
				opts.Pinned = true
				opts.InboxID = inbox.ID
			}

			emails, err := client.Search(cmd.Context(), opts, limit)
			if err != nil {
				return err
			}
			return emit(model.SuccessOutput(emails))
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Text, "text", "t", "", "Full-text search (from, to, cc, bcc, subject, body)")
	flags.StringVar(&opts.From, "from", "", "Filter by From header")
	flags.StringVar(&opts.To, "to", "", "Filter by To header")
	flags.StringVar(&opts.CC, "cc", "", "Filter by Cc header")
	flags.StringVar(&opts.BCC, "bcc", "", "Filter by Bcc header")
	flags.StringVar(&opts.Subject, "subject", "", "Filter by Subject")
	flags.StringVar(&opts.Body, "body", "", "Filter by body content")
	flags.StringVarP(&mailbox, "mailbox", "m", "", "Filter by mailbox name")
	flags.BoolVar(&opts.HasAttachment, "has-attachment", false, "Only emails with attachments")
	flags.Uint32Var(&opts.MinSize, "min-size", 0, "Minimum email size in bytes (inclusive)")
	flags.Uint32Var(&opts.MaxSize, "max-size", 0, "Maximum email size in bytes (exclusive)")
	flags.StringVar(&opts.Before, "before", "", "Emails received before date (RFC 3339 or YYYY-MM-DD)")
	flags.StringVar(&opts.After, "after", "", "Emails received on or after date (RFC 3339 or YYYY-MM-DD)")
	flags.BoolVar(&opts.Unread, "unread", false, "Only unread emails")
	flags.BoolVar(&opts.Flagged, "flagged", false, "Only flagged/starred emails")
	flags.BoolVar(&pinned, "pinned", false, "Only pinned emails (flagged, in the inbox)")
	flags.Uint32VarP(&limit, "limit", "l", 50, "Maximum results")

	return cmd
}

func (a *app) sendCmd() *cobra.Command {
	var to, cc, bcc, subject, body, replyTo string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send an email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			draft, err := jmap.ComposeNew(
				model.ParseAddressList(to),
				model.ParseAddressList(cc),
				model.ParseAddressList(bcc),
				subject, body)
			if err != nil {
				return err
			}
			if replyTo != "" {
				draft.InReplyTo = []string{replyTo}
				draft.References = []string{replyTo}
			}

			emailID, err := client.Submit(cmd.Context(), draft)
			if err != nil {
				return submitError(err)
			}
			return emit(model.SuccessMessage("Sent. Message id: %s", emailID))
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Recipient(s), comma-separated")
	cmd.Flags().StringVar(&cc, "cc", "", "CC recipient(s), comma-separated")
	cmd.Flags().StringVar(&bcc, "bcc", "", "BCC recipient(s), comma-separated")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject line")
	cmd.Flags().StringVar(&body, "body", "", "Email body (plain text)")
	cmd.Flags().StringVar(&replyTo, "reply-to", "", "In-Reply-To message ID (for threading)")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("subject")
	cmd.MarkFlagRequired("body")

	return cmd
}

func (a *app) replyCmd() *cobra.Command {
	var body, cc, bcc string
	var all bool

	cmd := &cobra.Command{
		Use:   "reply <email-id>",
		Short: "Reply to an email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			source, err := client.GetEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			identity, err := client.PrimaryIdentity(cmd.Context())
			if err != nil {
				return err
			}
			draft, err := jmap.ComposeReply(source, identity.Email, body, all,
				model.ParseAddressList(cc), model.ParseAddressList(bcc))
			if err != nil {
				return err
			}

			emailID, err := client.Submit(cmd.Context(), draft)
			if err != nil {
				return submitError(err)
			}
			return emit(model.SuccessMessage("Reply sent. Message id: %s", emailID))
		},
	}

	cmd.Flags().StringVar(&body, "body", "", "Reply body (plain text)")
	cmd.Flags().BoolVar(&all, "all", false, "Reply to all recipients")
	cmd.Flags().StringVar(&cc, "cc", "", "Additional CC recipient(s), comma-separated")
	cmd.Flags().StringVar(&bcc, "bcc", "", "BCC recipient(s), comma-separated")
	cmd.MarkFlagRequired("body")

	return cmd
}

func (a *app) forwardCmd() *cobra.Command {
	var to, body, cc, bcc string

	cmd := &cobra.Command{
		Use:   "forward <email-id>",
		Short: "Forward an email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			source, err := client.GetEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			draft, err := jmap.ComposeForward(source,
				model.ParseAddressList(to),
				model.ParseAddressList(cc),
				model.ParseAddressList(bcc),
				body)
			if err != nil {
				return err
			}

			emailID, err := client.Submit(cmd.Context(), draft)
			if err != nil {
				return submitError(err)
			}
			return emit(model.SuccessMessage("Forwarded. Message id: %s", emailID))
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Recipient(s), comma-separated")
	cmd.Flags().StringVar(&body, "body", "", "Message to include before forwarded content")
	cmd.Flags().StringVar(&cc, "cc", "", "CC recipient(s), comma-separated")
	cmd.Flags().StringVar(&bcc, "bcc", "", "BCC recipient(s), comma-separated")
	cmd.MarkFlagRequired("to")

	return cmd
}

func (a *app) moveCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "move <email-id>",
		Short: "Move email to a mailbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			box, err := client.FindMailbox(cmd.Context(), to)
			if err != nil {
				return err
			}
			if err := client.MoveEmail(cmd.Context(), args[0], box.ID); err != nil {
				return err
			}
			return emit(model.SuccessMessage("Moved email %s to %s", args[0], box.Name))
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Destination mailbox name")
	cmd.MarkFlagRequired("to")

	return cmd
}

func (a *app) spamCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "spam <email-id>",
		Short: "Mark email as spam",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("mark email %s as spam? Use -y to confirm", args[0])
			}
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.MarkSpam(cmd.Context(), args[0]); err != nil {
				return err
			}
			return emit(model.SuccessMessage("Marked email %s as spam", args[0]))
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}

func (a *app) markReadCmd() *cobra.Command {
	var unread bool

	cmd := &cobra.Command{
		Use:   "mark-read <email-id>",
		Short: "Mark email as read or unread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			if err := client.MarkRead(cmd.Context(), args[0], !unread); err != nil {
				return err
			}
			state := "read"
			if unread {
				state = "unread"
			}
			return emit(model.SuccessMessage("Marked email %s as %s", args[0], state))
		},
	}

	cmd.Flags().BoolVar(&unread, "unread", false, "Mark as unread instead of read")

	return cmd
}

// submitError adds the created draft id to the message when the
// create half of a submission succeeded, so the operator can finish
// or clean up by hand.
func submitError(err error) error {
	var incomplete *jmap.SubmissionIncomplete
	if errors.As(err, &incomplete) {
		return fmt.Errorf("message %s was created but not submitted; complete or delete it manually: %w", incomplete.EmailID, err)
	}
	return err
}
