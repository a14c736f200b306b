package carddav

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/emersion/go-vcard"
)

// Contact is one entry parsed from a vCard.
type Contact struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Emails       []ContactEmail `json:"emails"`
	Phones       []ContactPhone `json:"phones"`
	Organization string         `json:"organization,omitempty"`
	Title        string         `json:"title,omitempty"`
	Notes        string         `json:"notes,omitempty"`
}

// ContactEmail is an email address with its optional TYPE label.
type ContactEmail struct {
	Email string `json:"email"`
	Label string `json:"label,omitempty"`
}

// ContactPhone is a phone number with its optional TYPE label.
type ContactPhone struct {
	Number string `json:"number"`
	Label  string `json:"label,omitempty"`
}

// ParseVCard decodes a single vCard into a Contact. A card without a
// formatted name is rejected; a card without a UID gets a stable ID
// derived from its name.
func ParseVCard(data string) (Contact, error) {
	card, err := vcard.NewDecoder(strings.NewReader(data)).Decode()
	if err != nil {
		return Contact{}, fmt.Errorf("decoding vcard: %w", err)
	}

	name := strings.TrimSpace(card.Value(vcard.FieldFormattedName))
	if name == "" {
		return Contact{}, fmt.Errorf("vcard has no formatted name")
	}

	contact := Contact{
		ID:           strings.TrimSpace(card.Value(vcard.FieldUID)),
		Name:         name,
		Organization: strings.TrimSpace(card.Value(vcard.FieldOrganization)),
		Title:        strings.TrimSpace(card.Value(vcard.FieldTitle)),
		Notes:        strings.TrimSpace(card.Value(vcard.FieldNote)),
	}
	if contact.ID == "" {
		sum := sha1.Sum([]byte(name))
		contact.ID = hex.EncodeToString(sum[:8])
	}

	for _, field := range card[vcard.FieldEmail] {
		email := strings.TrimSpace(field.Value)
		if email == "" {
			continue
		}
		contact.Emails = append(contact.Emails, ContactEmail{
			Email: email,
			Label: fieldLabel(field),
		})
	}
	for _, field := range card[vcard.FieldTelephone] {
		number := strings.TrimSpace(field.Value)
		if number == "" {
			continue
		}
		contact.Phones = append(contact.Phones, ContactPhone{
			Number: number,
			Label:  fieldLabel(field),
		})
	}
	return contact, nil
}

// Matches reports whether the contact matches a case-insensitive
// substring query over name, email addresses, and organization.
func (c Contact) Matches(query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(c.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(c.Organization), q) {
		return true
	}
	for _, e := range c.Emails {
		if strings.Contains(strings.ToLower(e.Email), q) {
			return true
		}
	}
	return false
}

// PrimaryEmail returns the contact's first email address, or "".
func (c Contact) PrimaryEmail() string {
	if len(c.Emails) == 0 {
		return ""
	}
	return c.Emails[0].Email
}

func fieldLabel(field *vcard.Field) string {
	if field.Params == nil {
		return ""
	}
	return strings.ToLower(field.Params.Get(vcard.ParamType))
}
