package tools

import (
	"fmt"
	"strings"

	"github.com/fastmailctl/fastmailctl/internal/carddav"
	"github.com/fastmailctl/fastmailctl/internal/model"
)

func formatMailbox(m model.Mailbox) string {
	role := ""
	if m.Role != "" {
		role = fmt.Sprintf(" [%s]", m.Role)
	}
	unread := ""
	if m.UnreadEmails > 0 {
		unread = fmt.Sprintf(" (%d unread)", m.UnreadEmails)
	}
	return fmt.Sprintf("%s%s%s - %d emails (id: %s)", m.Name, role, unread, m.TotalEmails, m.ID)
}

func formatEmailSummary(e model.Email) string {
	var flags strings.Builder
	if e.IsUnread() {
		flags.WriteString(" [UNREAD]")
	}
	if e.HasAttachment {
		flags.WriteString(" [attachment]")
	}
	date := e.ReceivedAt
	if date == "" {
		date = "unknown"
	}
	subject := e.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	return fmt.Sprintf("%s\nID: %s\nFrom: %s\nSubject: %s\nDate: %s\nPreview: %s",
		strings.TrimSpace(flags.String()),
		e.ID,
		model.FormatAddressList(e.From),
		subject,
		date,
		e.Preview,
	)
}

func formatEmailFull(e *model.Email) string {
	date := e.ReceivedAt
	if date == "" {
		date = "unknown"
	}
	subject := e.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	threadID := e.ThreadID
	if threadID == "" {
		threadID = "(none)"
	}
	return fmt.Sprintf(
		"ID: %s\nThread ID: %s\nFrom: %s\nTo: %s\nCC: %s\nSubject: %s\nDate: %s\nHas Attachment: %t\n\n--- Body ---\n%s",
		e.ID,
		threadID,
		model.FormatAddressList(e.From),
		model.FormatAddressList(e.To),
		model.FormatAddressList(e.CC),
		subject,
		date,
		e.HasAttachment,
		e.TextContent(),
	)
}

func formatMaskedEmail(m model.MaskedEmail) string {
	indicator := "[?]"
	switch m.State {
	case model.MaskedStateEnabled:
		indicator = "[ENABLED]"
	case model.MaskedStateDisabled:
		indicator = "[DISABLED]"
	case model.MaskedStatePending:
		indicator = "[PENDING]"
	case model.MaskedStateDeleted:
		indicator = "[DELETED]"
	}

	lines := []string{
		fmt.Sprintf("%s %s", indicator, m.Email),
		fmt.Sprintf("ID: %s", m.ID),
	}
	if m.ForDomain != "" {
		lines = append(lines, "For: "+m.ForDomain)
	}
	if m.Description != "" {
		lines = append(lines, "Description: "+m.Description)
	}
	if m.LastMessageAt != "" {
		lines = append(lines, "Last message: "+m.LastMessageAt)
	}
	if m.CreatedAt != "" {
		lines = append(lines, "Created: "+m.CreatedAt)
	}
	return strings.Join(lines, "\n")
}

func formatContact(c carddav.Contact) string {
	lines := []string{fmt.Sprintf("**%s**", c.Name)}

	if len(c.Emails) > 0 {
		entries := make([]string, 0, len(c.Emails))
		for _, e := range c.Emails {
			label := ""
			if e.Label != "" {
				label = fmt.Sprintf(" (%s)", e.Label)
			}
			entries = append(entries, "  "+e.Email+label)
		}
		lines = append(lines, "Emails:\n"+strings.Join(entries, "\n"))
	}
	if len(c.Phones) > 0 {
		entries := make([]string, 0, len(c.Phones))
		for _, p := range c.Phones {
			label := ""
			if p.Label != "" {
				label = fmt.Sprintf(" (%s)", p.Label)
			}
			entries = append(entries, "  "+p.Number+label)
		}
		lines = append(lines, "Phones:\n"+strings.Join(entries, "\n"))
	}
	if c.Organization != "" {
		lines = append(lines, "Organization: "+c.Organization)
	}
	if c.Title != "" {
		lines = append(lines, "Title: "+c.Title)
	}
	return strings.Join(lines, "\n")
}
