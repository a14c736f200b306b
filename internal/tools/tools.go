package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fastmailctl/fastmailctl/internal/attachment"
	"github.com/fastmailctl/fastmailctl/internal/contacts"
	"github.com/fastmailctl/fastmailctl/internal/jmap"
	"github.com/fastmailctl/fastmailctl/internal/model"
)

const (
	actionPreview = "preview"
	actionConfirm = "confirm"

	defaultListLimit = 20
)

// Service wires the mail client, contact manager, and attachment
// resolver into the tool registry.
type Service struct {
	client        *jmap.Client
	contacts      *contacts.Manager
	resolver      *attachment.Resolver
	imageMaxBytes int
	textMaxBytes  int
}

// NewService builds the tool service. contacts may be nil when no
// CardDAV credentials are configured; the contact tool then reports
// that setup is needed.
func NewService(client *jmap.Client, contactManager *contacts.Manager, resolver *attachment.Resolver, imageMaxBytes, textMaxBytes int) *Service {
	return &Service{
		client:        client,
		contacts:      contactManager,
		resolver:      resolver,
		imageMaxBytes: imageMaxBytes,
		textMaxBytes:  textMaxBytes,
	}
}

// Registry returns the full tool set.
func (s *Service) Registry() *Registry {
	r := NewRegistry()

	r.Register(&Tool{
		Name:        "list_mailboxes",
		Description: "List all mailboxes/folders with message counts and IDs.",
		InputSchema: objectSchema(nil, nil),
		Handler:     s.listMailboxes,
	})
	r.Register(&Tool{
		Name:        "list_emails",
		Description: "List emails in a mailbox. Returns summaries with ID, from, subject, date, and preview. Use the email ID with get_email for full content.",
		InputSchema: objectSchema(map[string]string{
			"mailbox": "Mailbox name or role, e.g. inbox, sent, archive",
			"limit":   "Maximum number of emails to return (default 20)",
		}, []string{"mailbox"}),
		Handler: s.listEmails,
	})
	r.Register(&Tool{
		Name:        "get_email",
		Description: "Get the full content of one email by ID, including the body text.",
		InputSchema: objectSchema(map[string]string{
			"email_id": "The email ID",
		}, []string{"email_id"}),
		Handler: s.getEmail,
	})
	r.Register(&Tool{
		Name:        "get_thread",
		Description: "Get every message in the conversation thread containing the given email, oldest first.",
		InputSchema: objectSchema(map[string]string{
			"email_id": "Any email ID in the thread",
		}, []string{"email_id"}),
		Handler: s.getThread,
	})
	r.Register(&Tool{
		Name:        "search_emails",
		Description: "Search for emails with flexible filters. Use 'query' for general search, or specific fields for precise filtering. Supports date ranges, attachment filtering, unread/flagged status.",
		InputSchema: objectSchema(map[string]string{
			"query":          "Free-text search over the whole message",
			"from":           "Sender address or name",
			"to":             "Recipient address or name",
			"subject":        "Subject text",
			"body":           "Body text",
			"mailbox":        "Restrict to one mailbox name or role",
			"before":         "Received before this date (RFC 3339 or YYYY-MM-DD)",
			"after":          "Received on or after this date (RFC 3339 or YYYY-MM-DD)",
			"has_attachment": "Only emails with attachments (true/false)",
			"unread":         "Only unread emails (true/false)",
			"flagged":        "Only flagged emails (true/false)",
			"limit":          "Maximum number of results (default 20)",
		}, nil),
		Handler: s.searchEmails,
	})
	r.Register(&Tool{
		Name:        "move_email",
		Description: "Move an email to another mailbox.",
		InputSchema: objectSchema(map[string]string{
			"email_id": "The email ID to move",
			"mailbox":  "Destination mailbox name or role",
		}, []string{"email_id", "mailbox"}),
		Handler: s.moveEmail,
	})
	r.Register(&Tool{
		Name:        "mark_as_read",
		Description: "Mark an email as read or unread.",
		InputSchema: objectSchema(map[string]string{
			"email_id": "The email ID",
			"read":     "true to mark read, false to mark unread (default true)",
		}, []string{"email_id"}),
		Handler: s.markAsRead,
	})
	r.Register(&Tool{
		Name:        "mark_as_spam",
		Description: "Mark an email as spam. This moves it to Junk and trains the spam filter. MUST use action='preview' first, then 'confirm' after user approval.",
		InputSchema: objectSchema(map[string]string{
			"email_id": "The email ID",
			"action":   "'preview' to see what will happen, 'confirm' to proceed",
		}, []string{"email_id", "action"}),
		Handler: s.markAsSpam,
	})
	r.Register(&Tool{
		Name:        "send_email",
		Description: "Compose and send a new email. You MUST call with action='preview' first, show the user the draft, get explicit approval, then call again with action='confirm'. Never skip the preview step.",
		InputSchema: objectSchema(map[string]string{
			"to":      "Comma-separated recipients, each 'addr' or 'Name <addr>'",
			"cc":      "Comma-separated cc recipients",
			"bcc":     "Comma-separated bcc recipients",
			"subject": "Subject line",
			"body":    "Plain-text body",
			"action":  "'preview' to see the draft, 'confirm' to send",
		}, []string{"to", "subject", "body", "action"}),
		Handler: s.sendEmail,
	})
	r.Register(&Tool{
		Name:        "reply_to_email",
		Description: "Reply to an existing email thread. You MUST call with action='preview' first, show the user the draft, get explicit approval, then call again with action='confirm'. For reply-all, set all=true.",
		InputSchema: objectSchema(map[string]string{
			"email_id": "The email ID to reply to",
			"body":     "Plain-text reply body",
			"all":      "Reply to all original recipients (true/false, default false)",
			"cc":       "Additional comma-separated cc recipients",
			"action":   "'preview' to see the draft, 'confirm' to send",
		}, []string{"email_id", "body", "action"}),
		Handler: s.replyToEmail,
	})
	r.Register(&Tool{
		Name:        "forward_email",
		Description: "Forward an email to new recipients. You MUST call with action='preview' first, show the user the draft, get explicit approval, then call again with action='confirm'.",
		InputSchema: objectSchema(map[string]string{
			"email_id": "The email ID to forward",
			"to":       "Comma-separated recipients",
			"body":     "Text to add above the forwarded message",
			"action":   "'preview' to see the draft, 'confirm' to send",
		}, []string{"email_id", "to", "action"}),
		Handler: s.forwardEmail,
	})
	r.Register(&Tool{
		Name:        "list_attachments",
		Description: "List all attachments on an email. Returns attachment names, types, sizes, and blob IDs for downloading.",
		InputSchema: objectSchema(map[string]string{
			"email_id": "The email ID to get attachments from",
		}, []string{"email_id"}),
		Handler: s.listAttachments,
	})
	r.Register(&Tool{
		Name:        "get_attachment",
		Description: "Download an attachment. Text files and documents (PDF, DOC, DOCX) have text extracted and returned. Images are resized if needed and returned as base64.",
		InputSchema: objectSchema(map[string]string{
			"email_id": "The email ID the attachment belongs to",
			"blob_id":  "The blob ID of the attachment (from list_attachments)",
		}, []string{"email_id", "blob_id"}),
		Handler: s.getAttachment,
	})
	r.Register(&Tool{
		Name:        "list_masked_emails",
		Description: "List all masked email addresses in the account.",
		InputSchema: objectSchema(nil, nil),
		Handler:     s.listMaskedEmails,
	})
	r.Register(&Tool{
		Name:        "create_masked_email",
		Description: "Create a new masked email address for a website or service.",
		InputSchema: objectSchema(map[string]string{
			"for_domain":  "The website the address is for, e.g. https://example.com",
			"description": "What the address is used for",
			"prefix":      "Optional address prefix",
		}, nil),
		Handler: s.createMaskedEmail,
	})
	r.Register(&Tool{
		Name:        "enable_masked_email",
		Description: "Enable a masked email address so it receives mail again.",
		InputSchema: objectSchema(map[string]string{
			"id": "The masked email ID",
		}, []string{"id"}),
		Handler: s.setMaskedState(model.MaskedStateEnabled, "enabled"),
	})
	r.Register(&Tool{
		Name:        "disable_masked_email",
		Description: "Disable a masked email address. Mail to it goes to trash.",
		InputSchema: objectSchema(map[string]string{
			"id": "The masked email ID",
		}, []string{"id"}),
		Handler: s.setMaskedState(model.MaskedStateDisabled, "disabled"),
	})
	r.Register(&Tool{
		Name:        "delete_masked_email",
		Description: "Delete a masked email address. MUST use action='preview' first, then 'confirm' after user approval.",
		InputSchema: objectSchema(map[string]string{
			"id":     "The masked email ID",
			"action": "'preview' to see what will happen, 'confirm' to delete",
		}, []string{"id", "action"}),
		Handler: s.deleteMaskedEmail,
	})
	r.Register(&Tool{
		Name:        "search_contacts",
		Description: "Search contacts by name, email, or organization.",
		InputSchema: objectSchema(map[string]string{
			"query":   "Substring to match",
			"refresh": "Force a refresh from the server (true/false)",
		}, []string{"query"}),
		Handler: s.searchContacts,
	})

	return r
}

// objectSchema builds a flat JSON Schema object with string-typed
// properties. Booleans and numbers arrive as JSON strings or natives;
// handlers accept both.
func objectSchema(props map[string]string, required []string) json.RawMessage {
	properties := make(map[string]any, len(props))
	for name, description := range props {
		properties[name] = map[string]any{"type": "string", "description": description}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	data, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	return data
}

func (s *Service) listMailboxes(ctx context.Context, _ json.RawMessage) (string, error) {
	mailboxes, err := s.client.Mailboxes(ctx)
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(mailboxes))
	for _, m := range mailboxes {
		lines = append(lines, formatMailbox(m))
	}
	return fmt.Sprintf("Mailboxes (%d):\n%s", len(mailboxes), strings.Join(lines, "\n")), nil
}

func (s *Service) listEmails(ctx context.Context, args json.RawMessage) (string, error) {
	var req struct {
		Mailbox string  `json:"mailbox"`
		Limit   flexInt `json:"limit"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}

	mailbox, err := s.client.FindMailbox(ctx, req.Mailbox)
	if err != nil {
		return "", err
	}
	emails, err := s.client.ListEmails(ctx, mailbox.ID, numberOr(req.Limit, defaultListLimit))
	if err != nil {
		return "", err
	}
	if len(emails) == 0 {
		return fmt.Sprintf("No emails in %s.", mailbox.Name), nil
	}

	summaries := make([]string, 0, len(emails))
	for _, e := range emails {
		summaries = append(summaries, formatEmailSummary(e))
	}
	return fmt.Sprintf("Emails in %s (%d):\n\n%s", mailbox.Name, len(emails), strings.Join(summaries, "\n\n")), nil
}

func (s *Service) getEmail(ctx context.Context, args json.RawMessage) (string, error) {
	var req struct {
		EmailID string `json:"email_id"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}
	email, err := s.client.GetEmail(ctx, req.EmailID)
	if err != nil {
		return "", err
	}
	return formatEmailFull(email), nil
}

func (s *Service) getThread(ctx context.Context, args json.RawMessage) (string, error) {
	var req struct {
		EmailID string `json:"email_id"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}
	emails, err := s.client.GetThread(ctx, req.EmailID)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(emails))
	for i := range emails {
		parts = append(parts, formatEmailFull(&emails[i]))
	}
	return fmt.Sprintf("Thread (%d messages):\n\n%s", len(emails), strings.Join(parts, "\n\n======\n\n")), nil
}

func (s *Service) searchEmails(ctx context.Context, args json.RawMessage) (string, error) {
	var req struct {
		Query         string  `json:"query"`
		From          string  `json:"from"`
		To            string  `json:"to"`
		Subject       string  `json:"subject"`
		Body          string  `json:"body"`
		Mailbox       string  `json:"mailbox"`
		Before        string  `json:"before"`
		After         string  `json:"after"`
		HasAttachment bool    `json:"has_attachment"`
		Unread        bool    `json:"unread"`
		Flagged       bool    `json:"flagged"`
		Limit         flexInt `json:"limit"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}

	opts := jmap.SearchOptions{
		Text:          req.Query,
		From:          req.From,
		To:            req.To,
		Subject:       req.Subject,
		Body:          req.Body,
		Before:        req.Before,
		After:         req.After,
		HasAttachment: req.HasAttachment,
		Unread:        req.Unread,
		Flagged:       req.Flagged,
	}
	if req.Mailbox != "" {
		mailbox, err := s.client.FindMailbox(ctx, req.Mailbox)
		if err != nil {
			return "", err
		}
		opts.MailboxID = mailbox.ID
	}

	emails, err := s.client.Search(ctx, opts, numberOr(req.Limit, defaultListLimit))
	if err != nil {
		return "", err
	}
	if len(emails) == 0 {
		return "No matching emails.", nil
	}
	summaries := make([]string, 0, len(emails))
	for _, e := range emails {
		summaries = append(summaries, formatEmailSummary(e))
	}
	return fmt.Sprintf("Found %d emails:\n\n%s", len(emails), strings.Join(summaries, "\n\n")), nil
}

func (s *Service) moveEmail(ctx context.Context, args json.RawMessage) (string, error) {
	var req struct {
		EmailID string `json:"email_id"`
		Mailbox string `json:"mailbox"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}
	mailbox, err := s.client.FindMailbox(ctx, req.Mailbox)
	if err != nil {
		return "", err
	}
	if err := s.client.MoveEmail(ctx, req.EmailID, mailbox.ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Moved email %s to %s.", req.EmailID, mailbox.Name), nil
}

func (s *Service) markAsRead(ctx context.Context, args json.RawMessage) (string, error) {
	var req struct {
		EmailID string `json:"email_id"`
		Read    *bool  `json:"read"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}
	read := req.Read == nil || *req.Read
	if err := s.client.MarkRead(ctx, req.EmailID, read); err != nil {
		return "", err
	}
	if read {
		return fmt.Sprintf("Marked email %s as read.", req.EmailID), nil
	}
	return fmt.Sprintf("Marked email %s as unread.", req.EmailID), nil
}

func (s *Service) markAsSpam(ctx context.Context, args json.RawMessage) (string, error) {
	var req struct {
		EmailID string `json:"email_id"`
		Action  string `json:"action"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}

	if req.Action != actionConfirm {
		email, err := s.client.GetEmail(ctx, req.EmailID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(
			"Will mark as spam:\nFrom: %s\nSubject: %s\n\nThis moves the message to Junk and trains the spam filter, affecting future filtering.\nTo proceed, call this tool again with action: %q",
			model.FormatAddressList(email.From), email.Subject, actionConfirm), nil
	}

	if err := s.client.MarkSpam(ctx, req.EmailID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Marked email %s as spam and moved it to Junk.", req.EmailID), nil
}

func (s *Service) sendEmail(ctx context.Context, args json.RawMessage) (string, error) {
	var req struct {
		To      string `json:"to"`
		CC      string `json:"cc"`
		BCC     string `json:"bcc"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
		Action  string `json:"action"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}

	draft, err := jmap.ComposeNew(
		model.ParseAddressList(req.To),
		model.ParseAddressList(req.CC),
		model.ParseAddressList(req.BCC),
		req.Subject, req.Body)
	if err != nil {
		return "", err
	}
	return s.previewOrSubmit(ctx, draft, req.Action, "email")
}

func (s *Service) replyToEmail(ctx context.Context, args json.RawMessage) (string, error) {
	var req struct {
		EmailID string `json:"email_id"`
		Body    string `json:"body"`
		All     bool   `json:"all"`
		CC      string `json:"cc"`
		Action  string `json:"action"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}

	source, err := s.client.GetEmail(ctx, req.EmailID)
	if err != nil {
		return "", err
	}
	identity, err := s.client.PrimaryIdentity(ctx)
	if err != nil {
		return "", err
	}
	draft, err := jmap.ComposeReply(source, identity.Email, req.Body, req.All, model.ParseAddressList(req.CC), nil)
	if err != nil {
		return "", err
	}
	return s.previewOrSubmit(ctx, draft, req.Action, "reply")
}

func (s *Service) forwardEmail(ctx context.Context, args json.RawMessage) (string, error) {
	var req struct {
		EmailID string `json:"email_id"`
		To      string `json:"to"`
		Body    string `json:"body"`
		Action  string `json:"action"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}

	source, err := s.client.GetEmail(ctx, req.EmailID)
	if err != nil {
		return "", err
	}
	draft, err := jmap.ComposeForward(source, model.ParseAddressList(req.To), nil, nil, req.Body)
	if err != nil {
		return "", err
	}
	return s.previewOrSubmit(ctx, draft, req.Action, "forward")
}

// previewOrSubmit renders the draft when the action is not an
// explicit confirm, otherwise submits it.
func (s *Service) previewOrSubmit(ctx context.Context, draft jmap.Draft, action, kind string) (string, error) {
	if action != actionConfirm {
		return fmt.Sprintf(
			"Draft %s:\nTo: %s\nCC: %s\nBCC: %s\nSubject: %s\n\n%s\n\nTo send, call this tool again with action: %q and the same parameters.",
			kind,
			model.FormatAddressList(draft.To),
			model.FormatAddressList(draft.CC),
			model.FormatAddressList(draft.BCC),
			draft.Subject,
			draft.Body,
			actionConfirm), nil
	}

	emailID, err := s.client.Submit(ctx, draft)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Sent. Message id: %s", emailID), nil
}

func (s *Service) listAttachments(ctx context.Context, args json.RawMessage) (string, error) {
	var req struct {
		EmailID string `json:"email_id"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}
	email, err := s.client.GetEmail(ctx, req.EmailID)
	if err != nil {
		return "", err
	}
	if len(email.Attachments) == 0 {
		return "No attachments on this email.", nil
	}

	lines := make([]string, 0, len(email.Attachments))
	for _, a := range email.Attachments {
		name := a.Name
		if name == "" {
			name = "(unnamed)"
		}
		contentType := a.Type
		if contentType == "" {
			contentType = "unknown"
		}
		lines = append(lines, fmt.Sprintf("%s - %s, %d bytes (blob: %s)", name, contentType, a.Size, a.BlobID))
	}
	return fmt.Sprintf("Attachments (%d):\n%s", len(lines), strings.Join(lines, "\n")), nil
}

func (s *Service) getAttachment(ctx context.Context, args json.RawMessage) (string, error) {
	var req struct {
		EmailID string `json:"email_id"`
		BlobID  string `json:"blob_id"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}

	email, err := s.client.GetEmail(ctx, req.EmailID)
	if err != nil {
		return "", err
	}
	part := email.Attachment(req.BlobID)
	if part == nil {
		return "", fmt.Errorf("attachment not found: %s", req.BlobID)
	}

	content, err := s.resolver.Resolve(ctx, req.BlobID, part.Type, part.Name, s.boundFor(part.Type))
	if err != nil {
		return "", err
	}

	name := part.Name
	if name == "" {
		name = "attachment"
	}
	switch {
	case content.Text != "":
		return fmt.Sprintf("Extracted text from %s:\n\n%s", name, content.Text), nil
	case strings.HasPrefix(content.MIMEType, "image/"):
		return fmt.Sprintf("Image %s (%s, %d bytes, base64):\n%s",
			name, content.MIMEType, len(content.Data),
			base64.StdEncoding.EncodeToString(content.Data)), nil
	default:
		return fmt.Sprintf(
			"Binary attachment: %s\nType: %s\nSize: %d bytes\n\nThis file type cannot be displayed directly.",
			name, content.MIMEType, len(content.Data)), nil
	}
}

// boundFor picks the payload ceiling by content class: images get the
// image budget, everything else the text budget.
func (s *Service) boundFor(declaredType string) int {
	if strings.HasPrefix(declaredType, "image/") {
		return s.imageMaxBytes
	}
	return s.textMaxBytes
}

func (s *Service) listMaskedEmails(ctx context.Context, _ json.RawMessage) (string, error) {
	masked, err := s.client.MaskedEmails(ctx)
	if err != nil {
		return "", err
	}
	if len(masked) == 0 {
		return "No masked emails.", nil
	}
	parts := make([]string, 0, len(masked))
	for _, m := range masked {
		parts = append(parts, formatMaskedEmail(m))
	}
	return fmt.Sprintf("Masked Emails (%d):\n\n%s", len(masked), strings.Join(parts, "\n\n")), nil
}

func (s *Service) createMaskedEmail(ctx context.Context, args json.RawMessage) (string, error) {
	var req struct {
		ForDomain   string `json:"for_domain"`
		Description string `json:"description"`
		Prefix      string `json:"prefix"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}
	masked, err := s.client.CreateMaskedEmail(ctx, req.ForDomain, req.Description, req.Prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Created masked email:\n%s", formatMaskedEmail(*masked)), nil
}

func (s *Service) setMaskedState(state, verb string) func(ctx context.Context, args json.RawMessage) (string, error) {
	return func(ctx context.Context, args json.RawMessage) (string, error) {
		var req struct {
			ID string `json:"id"`
		}
		if err := decodeArgs(args, &req); err != nil {
			return "", err
		}
		if err := s.client.SetMaskedEmailState(ctx, req.ID, state); err != nil {
			return "", err
		}
		return fmt.Sprintf("Masked email %s %s.", req.ID, verb), nil
	}
}

func (s *Service) deleteMaskedEmail(ctx context.Context, args json.RawMessage) (string, error) {
	var req struct {
		ID     string `json:"id"`
		Action string `json:"action"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}
	if req.Action != actionConfirm {
		return fmt.Sprintf(
			"Will delete masked email %s. Mail sent to it will bounce.\nTo proceed, call this tool again with action: %q",
			req.ID, actionConfirm), nil
	}
	if err := s.client.SetMaskedEmailState(ctx, req.ID, model.MaskedStateDeleted); err != nil {
		return "", err
	}
	return fmt.Sprintf("Masked email %s deleted.", req.ID), nil
}

func (s *Service) searchContacts(ctx context.Context, args json.RawMessage) (string, error) {
	if s.contacts == nil {
		return "", fmt.Errorf("contacts are not configured; run `fastmailctl auth carddav <username> <app-password>` first")
	}
	var req struct {
		Query   string `json:"query"`
		Refresh bool   `json:"refresh"`
	}
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}
	found, err := s.contacts.Search(ctx, req.Query, req.Refresh)
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return fmt.Sprintf("No contacts matching %q.", req.Query), nil
	}
	parts := make([]string, 0, len(found))
	for _, c := range found {
		parts = append(parts, formatContact(c))
	}
	return fmt.Sprintf("Contacts (%d):\n\n%s", len(found), strings.Join(parts, "\n\n")), nil
}

// flexInt accepts a count argument as either a JSON number or a
// numeric string, since tool callers send both.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("not a whole number: %q", s)
	}
	*f = flexInt(v)
	return nil
}

// numberOr converts a count argument to uint32 with a default.
func numberOr(n flexInt, fallback uint32) uint32 {
	if n <= 0 {
		return fallback
	}
	return uint32(n)
}
