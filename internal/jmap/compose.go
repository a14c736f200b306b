package jmap

import (
	"fmt"
	"strings"

	"github.com/fastmailctl/fastmailctl/internal/model"
)

// Draft is an outgoing message under construction. It exists only in
// memory until submitted; the submission sequence never leaves it
// visible as a mailbox item on success.
type Draft struct {
	To      []model.EmailAddress
	CC      []model.EmailAddress
	BCC     []model.EmailAddress
	Subject string
	Body    string

	// Threading headers, set only for replies. Forwards and fresh
	// sends start a new logical thread and leave both empty.
	InReplyTo  []string
	References []string
}

// ComposeNew builds a fresh outgoing message. The to list must be
// non-empty.
func ComposeNew(to, cc, bcc []model.EmailAddress, subject, body string) (Draft, error) {
	if len(to) == 0 {
		return Draft{}, fmt.Errorf("compose: at least one recipient required")
	}
	return Draft{To: to, CC: cc, BCC: bcc, Subject: subject, Body: body}, nil
}

// ComposeReply builds a reply to source. The reply targets the
// source's from-address. With replyAll, the source's to and cc
// recipients are carried into cc, always excluding callerAddr: the
// caller must never mail themselves. extraCc and extraBcc are appended
// by the caller on top of the derived set.
//
// Threading: inReplyTo is the source's messageId; references is the
// source's references with the messageId appended unless already
// present.
func ComposeReply(source *model.Email, callerAddr, body string, replyAll bool, extraCc, extraBcc []model.EmailAddress) (Draft, error) {
	if len(source.From) == 0 {
		return Draft{}, fmt.Errorf("compose reply: source email has no from address")
	}

	to := append([]model.EmailAddress(nil), source.From...)

	cc := append([]model.EmailAddress(nil), extraCc...)
	if replyAll {
		for _, addr := range source.To {
			if !strings.EqualFold(addr.Email, callerAddr) && !containsAddress(to, addr) && !containsAddress(cc, addr) {
				cc = append(cc, addr)
			}
		}
		for _, addr := range source.CC {
			if !strings.EqualFold(addr.Email, callerAddr) && !containsAddress(to, addr) && !containsAddress(cc, addr) {
				cc = append(cc, addr)
			}
		}
	}

	references := append([]string(nil), source.References...)
	for _, id := range source.MessageID {
		if !containsString(references, id) {
			references = append(references, id)
		}
	}

	return Draft{
		To:         to,
		CC:         cc,
		BCC:        extraBcc,
		Subject:    replySubject(source.Subject),
		Body:       body,
		InReplyTo:  append([]string(nil), source.MessageID...),
		References: references,
	}, nil
}

// ComposeForward builds a forward of source to new recipients. No
// threading headers are propagated: a forward starts a new thread. The
// body is the caller's message followed by a fixed attribution block
// and the original text body.
func ComposeForward(source *model.Email, to, cc, bcc []model.EmailAddress, body string) (Draft, error) {
	if len(to) == 0 {
		return Draft{}, fmt.Errorf("compose forward: at least one recipient required")
	}

	date := source.ReceivedAt
	if date == "" {
		date = "unknown date"
	}
	full := fmt.Sprintf(
		"%s\n\n---------- Forwarded message ---------\nFrom: %s\nDate: %s\nSubject: %s\n\n%s",
		body, source.SenderDisplay(), date, source.Subject, source.TextContent(),
	)

	return Draft{
		To:      to,
		CC:      cc,
		BCC:     bcc,
		Subject: forwardSubject(source.Subject),
		Body:    full,
	}, nil
}

// replySubject prefixes "Re: " unless an existing prefix is already
// there (case-insensitive).
func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

// forwardSubject prefixes "Fwd: " unless already present.
func forwardSubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "fwd:") {
		return subject
	}
	return "Fwd: " + subject
}

func containsAddress(list []model.EmailAddress, addr model.EmailAddress) bool {
	for _, a := range list {
		if a.Equal(addr) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
