package jmap

import (
	"context"

	"github.com/fastmailctl/fastmailctl/internal/model"
)

// maskedAccountID resolves the primary account for the maskedemail
// capability, verifying the server advertises it first.
func (c *Client) maskedAccountID() (string, error) {
	if err := c.RequireCapability(model.CapabilityMaskedEmail); err != nil {
		return "", err
	}
	session, err := c.Session()
	if err != nil {
		return "", err
	}
	if id := session.PrimaryAccountID(model.CapabilityMaskedEmail); id != "" {
		return id, nil
	}
	// Fastmail serves masked email from the mail account.
	return c.AccountID()
}

// MaskedEmails lists every masked address in the account.
func (c *Client) MaskedEmails(ctx context.Context) ([]model.MaskedEmail, error) {
	accountID, err := c.maskedAccountID()
	if err != nil {
		return nil, err
	}

	batch := NewBatch()
	batch.MustAdd("me0", "MaskedEmail/get", map[string]any{
		"accountId": accountID,
		"ids":       nil,
	})

	resp, err := c.Do(ctx, batch)
	if err != nil {
		return nil, err
	}

	var result struct {
		List []model.MaskedEmail `json:"list"`
	}
	if err := resp.DecodeGet("me0", &result); err != nil {
		return nil, err
	}
	return result.List, nil
}

// CreateMaskedEmail creates a new masked address in the enabled state.
// Domain, description and prefix are optional metadata.
func (c *Client) CreateMaskedEmail(ctx context.Context, forDomain, description, prefix string) (*model.MaskedEmail, error) {
	accountID, err := c.maskedAccountID()
	if err != nil {
		return nil, err
	}

	create := map[string]any{"state": model.MaskedStateEnabled}
	if forDomain != "" {
		create["forDomain"] = forDomain
	}
	if description != "" {
		create["description"] = description
	}
	if prefix != "" {
		create["emailPrefix"] = prefix
	}

	batch := NewBatch()
	batch.MustAdd("me0", "MaskedEmail/set", map[string]any{
		"accountId": accountID,
		"create":    map[string]any{"new": create},
	})

	resp, err := c.Do(ctx, batch)
	if err != nil {
		return nil, err
	}

	var result struct {
		Created    map[string]model.MaskedEmail `json:"created"`
		NotCreated map[string]setError          `json:"notCreated"`
	}
	if err := resp.DecodeGet("me0", &result); err != nil {
		return nil, err
	}
	if se, ok := result.NotCreated["new"]; ok {
		return nil, se.toMethodError("me0", "MaskedEmail/set")
	}
	masked, ok := result.Created["new"]
	if !ok {
		return nil, &ProtocolError{Message: "MaskedEmail/set returned no created object"}
	}
	return &masked, nil
}

// SetMaskedEmailState transitions a masked address to the given state.
// Enable, disable and delete are all state transitions; nothing else
// ever mutates a masked address.
func (c *Client) SetMaskedEmailState(ctx context.Context, id, state string) error {
	accountID, err := c.maskedAccountID()
	if err != nil {
		return err
	}

	batch := NewBatch()
	batch.MustAdd("me0", "MaskedEmail/set", map[string]any{
		"accountId": accountID,
		"update":    map[string]any{id: map[string]any{"state": state}},
	})

	resp, err := c.Do(ctx, batch)
	if err != nil {
		return err
	}

	var result struct {
		NotUpdated map[string]setError `json:"notUpdated"`
	}
	if err := resp.DecodeGet("me0", &result); err != nil {
		return err
	}
	if se, ok := result.NotUpdated[id]; ok {
		return se.toMethodError("me0", "MaskedEmail/set")
	}
	return nil
}
