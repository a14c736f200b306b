package model

// Standard JMAP keywords (RFC 8621 §10.4).
const (
	KeywordSeen    = "$seen"
	KeywordFlagged = "$flagged"
	KeywordDraft   = "$draft"
)

// EmailBodyPart describes one part of a message body or an attachment.
// BlobID, Size and Type come from server metadata and are untrusted;
// attachment payloads are re-sniffed before any decoding.
type EmailBodyPart struct {
	PartID      string `json:"partId,omitempty"`
	BlobID      string `json:"blobId,omitempty"`
	Size        uint64 `json:"size"`
	Name        string `json:"name,omitempty"`
	Type        string `json:"type,omitempty"`
	Charset     string `json:"charset,omitempty"`
	Disposition string `json:"disposition,omitempty"`
	CID         string `json:"cid,omitempty"`
}

// EmailBodyValue holds the decoded text of a body part.
type EmailBodyValue struct {
	Value             string `json:"value"`
	IsEncodingProblem bool   `json:"isEncodingProblem,omitempty"`
	IsTruncated       bool   `json:"isTruncated,omitempty"`
}

// Email is a JMAP email record. Which fields are populated depends on
// the properties requested: listings carry headers and preview only,
// single-message fetches carry bodies and attachments too.
type Email struct {
	ID            string                    `json:"id"`
	BlobID        string                    `json:"blobId,omitempty"`
	ThreadID      string                    `json:"threadId,omitempty"`
	MailboxIDs    map[string]bool           `json:"mailboxIds,omitempty"`
	Keywords      map[string]bool           `json:"keywords,omitempty"`
	Size          uint64                    `json:"size,omitempty"`
	ReceivedAt    string                    `json:"receivedAt,omitempty"`
	MessageID     []string                  `json:"messageId,omitempty"`
	InReplyTo     []string                  `json:"inReplyTo,omitempty"`
	References    []string                  `json:"references,omitempty"`
	From          []EmailAddress            `json:"from,omitempty"`
	To            []EmailAddress            `json:"to,omitempty"`
	CC            []EmailAddress            `json:"cc,omitempty"`
	BCC           []EmailAddress            `json:"bcc,omitempty"`
	ReplyTo       []EmailAddress            `json:"replyTo,omitempty"`
	Subject       string                    `json:"subject,omitempty"`
	SentAt        string                    `json:"sentAt,omitempty"`
	Preview       string                    `json:"preview,omitempty"`
	HasAttachment bool                      `json:"hasAttachment,omitempty"`
	TextBody      []EmailBodyPart           `json:"textBody,omitempty"`
	HTMLBody      []EmailBodyPart           `json:"htmlBody,omitempty"`
	Attachments   []EmailBodyPart           `json:"attachments,omitempty"`
	BodyValues    map[string]EmailBodyValue `json:"bodyValues,omitempty"`
}

// IsUnread reports whether the message lacks the $seen keyword.
func (e *Email) IsUnread() bool {
	return !e.Keywords[KeywordSeen]
}

// IsFlagged reports whether the message carries the $flagged keyword.
func (e *Email) IsFlagged() bool {
	return e.Keywords[KeywordFlagged]
}

// IsDraft reports whether the message carries the $draft keyword.
func (e *Email) IsDraft() bool {
	return e.Keywords[KeywordDraft]
}

// SenderDisplay returns the first From address formatted for display,
// or "(unknown)" when the message has no From header.
func (e *Email) SenderDisplay() string {
	if len(e.From) == 0 {
		return "(unknown)"
	}
	return e.From[0].String()
}

// TextContent returns the decoded text of the first plain-text body
// part, if the body values were fetched.
func (e *Email) TextContent() string {
	return e.bodyContent(e.TextBody)
}

// HTMLContent returns the decoded text of the first HTML body part, if
// the body values were fetched.
func (e *Email) HTMLContent() string {
	return e.bodyContent(e.HTMLBody)
}

func (e *Email) bodyContent(parts []EmailBodyPart) string {
	if len(parts) == 0 || e.BodyValues == nil {
		return ""
	}
	if v, ok := e.BodyValues[parts[0].PartID]; ok {
		return v.Value
	}
	return ""
}

// Attachment returns the attachment descriptor with the given blob id,
// or nil when the message has no such attachment.
func (e *Email) Attachment(blobID string) *EmailBodyPart {
	for i := range e.Attachments {
		if e.Attachments[i].BlobID == blobID {
			return &e.Attachments[i]
		}
	}
	return nil
}
