package jmap

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fastmailctl/fastmailctl/internal/model"
)

// summaryProperties is fetched for listings and search results.
var summaryProperties = []string{
	"id", "threadId", "mailboxIds", "keywords",
	"size", "receivedAt", "from", "to", "cc",
	"subject", "preview", "hasAttachment",
}

// fullProperties is fetched for single-message reads, including
// decoded body values and attachment descriptors.
var fullProperties = []string{
	"id", "blobId", "threadId", "mailboxIds", "keywords",
	"size", "receivedAt", "messageId", "inReplyTo", "references",
	"from", "to", "cc", "bcc", "replyTo", "subject", "sentAt",
	"preview", "hasAttachment", "textBody", "htmlBody", "attachments",
	"bodyValues",
}

// receivedAtDesc is the default listing sort.
var receivedAtDesc = []map[string]any{{"property": "receivedAt", "isAscending": false}}

type emailGetResult struct {
	List     []model.Email `json:"list"`
	NotFound []string      `json:"notFound"`
}

// Mailboxes fetches all mailbox records for the primary account.
func (c *Client) Mailboxes(ctx context.Context) ([]model.Mailbox, error) {
	accountID, err := c.AccountID()
	if err != nil {
		return nil, err
	}

	batch := NewBatch()
	batch.MustAdd("m0", "Mailbox/get", map[string]any{
		"accountId": accountID,
		"properties": []string{
			"id", "name", "parentId", "role",
			"totalEmails", "unreadEmails",
			"totalThreads", "unreadThreads", "sortOrder",
		},
	})

	resp, err := c.Do(ctx, batch)
	if err != nil {
		return nil, err
	}

	var result struct {
		List []model.Mailbox `json:"list"`
	}
	if err := resp.DecodeGet("m0", &result); err != nil {
		return nil, err
	}
	return result.List, nil
}

// FindMailbox resolves a mailbox by name, then by role, matching
// case-insensitively.
func (c *Client) FindMailbox(ctx context.Context, name string) (*model.Mailbox, error) {
	mailboxes, err := c.Mailboxes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range mailboxes {
		if strings.EqualFold(mailboxes[i].Name, name) {
			return &mailboxes[i], nil
		}
	}
	for i := range mailboxes {
		if strings.EqualFold(mailboxes[i].Role, name) {
			return &mailboxes[i], nil
		}
	}
	return nil, &NotFoundError{Kind: "mailbox", Name: name}
}

// ListEmails returns the newest messages in a mailbox. The query and
// the record fetch travel in one batch, the fetch taking its ids from
// the query result by reference, so a listing costs one round trip.
func (c *Client) ListEmails(ctx context.Context, mailboxID string, limit uint32) ([]model.Email, error) {
	accountID, err := c.AccountID()
	if err != nil {
		return nil, err
	}

	batch := NewBatch()
	batch.MustAdd("q0", "Email/query", map[string]any{
		"accountId": accountID,
		"filter":    map[string]any{"inMailbox": mailboxID},
		"sort":      receivedAtDesc,
		"limit":     limit,
	})
	batch.MustAdd("g0", "Email/get", map[string]any{
		"accountId":  accountID,
		"ids":        ResultReference{ResultOf: "q0", Name: "Email/query", Path: "/ids"},
		"properties": summaryProperties,
	})

	resp, err := c.Do(ctx, batch)
	if err != nil {
		return nil, err
	}

	var result emailGetResult
	if err := resp.DecodeGet("g0", &result); err != nil {
		return nil, err
	}
	return result.List, nil
}

// Search compiles the options into a conjunctive filter and runs the
// query/get pair in one batch.
func (c *Client) Search(ctx context.Context, opts SearchOptions, limit uint32) ([]model.Email, error) {
	accountID, err := c.AccountID()
	if err != nil {
		return nil, err
	}

	preds, err := opts.Predicates()
	if err != nil {
		return nil, err
	}

	queryArgs := map[string]any{
		"accountId": accountID,
		"sort":      receivedAtDesc,
		"limit":     limit,
	}
	if node := CompileFilter(preds); node != nil {
		queryArgs["filter"] = node.MarshalArgs()
	}

	batch := NewBatch()
	batch.MustAdd("q0", "Email/query", queryArgs)
	batch.MustAdd("g0", "Email/get", map[string]any{
		"accountId":  accountID,
		"ids":        ResultReference{ResultOf: "q0", Name: "Email/query", Path: "/ids"},
		"properties": summaryProperties,
	})

	resp, err := c.Do(ctx, batch)
	if err != nil {
		return nil, err
	}

	var result emailGetResult
	if err := resp.DecodeGet("g0", &result); err != nil {
		return nil, err
	}
	return result.List, nil
}

// GetEmail fetches one message with full properties and decoded
// bodies.
func (c *Client) GetEmail(ctx context.Context, emailID string) (*model.Email, error) {
	accountID, err := c.AccountID()
	if err != nil {
		return nil, err
	}

	batch := NewBatch()
	batch.MustAdd("g0", "Email/get", map[string]any{
		"accountId":           accountID,
		"ids":                 []string{emailID},
		"properties":          fullProperties,
		"fetchTextBodyValues": true,
		"fetchHTMLBodyValues": true,
	})

	resp, err := c.Do(ctx, batch)
	if err != nil {
		return nil, err
	}

	var result emailGetResult
	if err := resp.DecodeGet("g0", &result); err != nil {
		return nil, err
	}
	if len(result.NotFound) > 0 || len(result.List) == 0 {
		return nil, &NotFoundError{Kind: "email", Name: emailID}
	}
	return &result.List[0], nil
}

// GetThread fetches every message in the conversation emailID belongs
// to. Three dependent calls travel as one batch: the thread id comes
// off the seed message, the email ids come off the thread, and the
// final fetch takes those ids, each step wired by reference.
func (c *Client) GetThread(ctx context.Context, emailID string) ([]model.Email, error) {
	accountID, err := c.AccountID()
	if err != nil {
		return nil, err
	}

	batch := NewBatch()
	batch.MustAdd("seed", "Email/get", map[string]any{
		"accountId":  accountID,
		"ids":        []string{emailID},
		"properties": []string{"threadId"},
	})
	batch.MustAdd("thread", "Thread/get", map[string]any{
		"accountId": accountID,
		"ids":       ResultReference{ResultOf: "seed", Name: "Email/get", Path: "/list/*/threadId"},
	})
	batch.MustAdd("emails", "Email/get", map[string]any{
		"accountId":           accountID,
		"ids":                 ResultReference{ResultOf: "thread", Name: "Thread/get", Path: "/list/*/emailIds"},
		"properties":          fullProperties,
		"fetchTextBodyValues": true,
	})

	resp, err := c.Do(ctx, batch)
	if err != nil {
		return nil, err
	}

	var seed emailGetResult
	if err := resp.DecodeGet("seed", &seed); err != nil {
		return nil, err
	}
	if len(seed.NotFound) > 0 || len(seed.List) == 0 {
		return nil, &NotFoundError{Kind: "email", Name: emailID}
	}

	var result emailGetResult
	if err := resp.DecodeGet("emails", &result); err != nil {
		return nil, err
	}
	return result.List, nil
}

// Identities fetches the sending identities for the account.
func (c *Client) Identities(ctx context.Context) ([]model.Identity, error) {
	if err := c.RequireCapability(model.CapabilitySubmission); err != nil {
		return nil, err
	}
	accountID, err := c.AccountID()
	if err != nil {
		return nil, err
	}

	batch := NewBatch()
	batch.MustAdd("i0", "Identity/get", map[string]any{"accountId": accountID})

	resp, err := c.Do(ctx, batch)
	if err != nil {
		return nil, err
	}

	var result struct {
		List []model.Identity `json:"list"`
	}
	if err := resp.DecodeGet("i0", &result); err != nil {
		return nil, err
	}
	return result.List, nil
}

// PrimaryIdentity returns the first sending identity, which callers
// use as the caller's own address for reply derivation.
func (c *Client) PrimaryIdentity(ctx context.Context) (*model.Identity, error) {
	identities, err := c.Identities(ctx)
	if err != nil {
		return nil, err
	}
	if len(identities) == 0 {
		return nil, &SessionError{Message: "no sending identity configured"}
	}
	return &identities[0], nil
}

// Submit sends a composed draft: Email/set create followed by
// EmailSubmission/set in the same batch, the submission referencing
// the created object by creation id. On submission success the server
// moves the message to Sent and clears $draft via onSuccessUpdateEmail,
// so no intermediate draft is ever visible. When the create succeeds
// but the submission fails, Submit returns SubmissionIncomplete
// carrying the created object's id.
func (c *Client) Submit(ctx context.Context, draft Draft) (string, error) {
	if err := c.RequireCapability(model.CapabilitySubmission); err != nil {
		return "", err
	}
	accountID, err := c.AccountID()
	if err != nil {
		return "", err
	}

	identity, err := c.PrimaryIdentity(ctx)
	if err != nil {
		return "", err
	}
	drafts, err := c.FindMailbox(ctx, "drafts")
	if err != nil {
		return "", err
	}
	sent, err := c.FindMailbox(ctx, "sent")
	if err != nil {
		return "", err
	}

	creationID := "draft-" + uuid.NewString()

	create := map[string]any{
		"mailboxIds": map[string]bool{drafts.ID: true},
		"from":       []model.EmailAddress{{Name: identity.Name, Email: identity.Email}},
		"to":         draft.To,
		"subject":    draft.Subject,
		"keywords":   map[string]bool{model.KeywordDraft: true},
		"bodyValues": map[string]any{
			"body": map[string]any{"value": draft.Body, "charset": "utf-8"},
		},
		"textBody": []map[string]any{{"partId": "body", "type": "text/plain"}},
	}
	if len(draft.CC) > 0 {
		create["cc"] = draft.CC
	}
	if len(draft.BCC) > 0 {
		create["bcc"] = draft.BCC
	}
	if len(draft.InReplyTo) > 0 {
		create["inReplyTo"] = draft.InReplyTo
	}
	if len(draft.References) > 0 {
		create["references"] = draft.References
	}

	batch := NewBatch()
	batch.MustAdd("e0", "Email/set", map[string]any{
		"accountId": accountID,
		"create":    map[string]any{creationID: create},
	})
	batch.MustAdd("s0", "EmailSubmission/set", map[string]any{
		"accountId": accountID,
		"create": map[string]any{
			"submission": map[string]any{
				"identityId": identity.ID,
				"emailId":    "#" + creationID,
			},
		},
		"onSuccessUpdateEmail": map[string]any{
			"#submission": map[string]any{
				"mailboxIds": map[string]bool{sent.ID: true},
				"keywords":   map[string]any{model.KeywordDraft: nil, model.KeywordSeen: true},
			},
		},
	})

	resp, err := c.Do(ctx, batch)
	if err != nil {
		return "", err
	}

	var emailSet struct {
		Created map[string]struct {
			ID string `json:"id"`
		} `json:"created"`
		NotCreated map[string]setError `json:"notCreated"`
	}
	if err := resp.DecodeGet("e0", &emailSet); err != nil {
		return "", err
	}
	if se, ok := emailSet.NotCreated[creationID]; ok {
		return "", se.toMethodError("e0", "Email/set")
	}
	created, ok := emailSet.Created[creationID]
	if !ok || created.ID == "" {
		return "", &ProtocolError{Message: "Email/set returned no id for created message"}
	}

	var subSet struct {
		Created map[string]struct {
			ID string `json:"id"`
		} `json:"created"`
		NotCreated map[string]setError `json:"notCreated"`
	}
	if err := resp.DecodeGet("s0", &subSet); err != nil {
		// The message object exists but was not handed to the mail
		// queue; never report this as a plain failure.
		return "", &SubmissionIncomplete{EmailID: created.ID, Err: err}
	}
	if se, ok := subSet.NotCreated["submission"]; ok {
		return "", &SubmissionIncomplete{EmailID: created.ID, Err: se.toMethodError("s0", "EmailSubmission/set")}
	}
	if len(subSet.Created) == 0 {
		return "", &SubmissionIncomplete{EmailID: created.ID, Err: fmt.Errorf("no submission object created")}
	}

	return created.ID, nil
}

// MoveEmail reassigns the message's mailbox membership to exactly the
// target mailbox.
func (c *Client) MoveEmail(ctx context.Context, emailID, mailboxID string) error {
	return c.updateEmail(ctx, emailID, map[string]any{
		"mailboxIds": map[string]bool{mailboxID: true},
	})
}

// SetKeywords replaces the message's keyword set.
func (c *Client) SetKeywords(ctx context.Context, emailID string, keywords map[string]bool) error {
	return c.updateEmail(ctx, emailID, map[string]any{"keywords": keywords})
}

// MarkRead sets or clears the $seen keyword, preserving the message's
// other keywords.
func (c *Client) MarkRead(ctx context.Context, emailID string, read bool) error {
	email, err := c.GetEmail(ctx, emailID)
	if err != nil {
		return err
	}
	keywords := make(map[string]bool, len(email.Keywords)+1)
	for k, v := range email.Keywords {
		keywords[k] = v
	}
	if read {
		keywords[model.KeywordSeen] = true
	} else {
		delete(keywords, model.KeywordSeen)
	}
	return c.SetKeywords(ctx, emailID, keywords)
}

// MarkSpam moves the message to the junk mailbox; the server trains
// its filter on the move.
func (c *Client) MarkSpam(ctx context.Context, emailID string) error {
	junk, err := c.FindMailbox(ctx, "junk")
	if err != nil {
		return err
	}
	return c.MoveEmail(ctx, emailID, junk.ID)
}

// updateEmail applies a single Email/set update and surfaces a
// per-object failure as a MethodError.
func (c *Client) updateEmail(ctx context.Context, emailID string, update map[string]any) error {
	accountID, err := c.AccountID()
	if err != nil {
		return err
	}

	batch := NewBatch()
	batch.MustAdd("u0", "Email/set", map[string]any{
		"accountId": accountID,
		"update":    map[string]any{emailID: update},
	})

	resp, err := c.Do(ctx, batch)
	if err != nil {
		return err
	}

	var result struct {
		NotUpdated map[string]setError `json:"notUpdated"`
	}
	if err := resp.DecodeGet("u0", &result); err != nil {
		return err
	}
	if se, ok := result.NotUpdated[emailID]; ok {
		return se.toMethodError("u0", "Email/set")
	}
	return nil
}
