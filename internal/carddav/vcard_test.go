package carddav

import (
	"strings"
	"testing"
)

const sampleVCard = `BEGIN:VCARD
VERSION:3.0
UID:abc-123
FN:Ada Lovelace
EMAIL;TYPE=work:ada@example.com
EMAIL:ada@home.example
TEL;TYPE=cell:+1-555-0100
ORG:Analytical Engines Ltd
TITLE:Programmer
NOTE:First.
END:VCARD
`

func TestParseVCard(t *testing.T) {
	contact, err := ParseVCard(sampleVCard)
	if err != nil {
		t.Fatal(err)
	}

	if contact.ID != "abc-123" {
		t.Errorf("id = %q", contact.ID)
	}
	if contact.Name != "Ada Lovelace" {
		t.Errorf("name = %q", contact.Name)
	}
	if len(contact.Emails) != 2 {
		t.Fatalf("emails = %+v", contact.Emails)
	}
	if contact.Emails[0].Email != "ada@example.com" || contact.Emails[0].Label != "work" {
		t.Errorf("emails[0] = %+v", contact.Emails[0])
	}
	if contact.Emails[1].Label != "" {
		t.Errorf("unlabeled email got label %q", contact.Emails[1].Label)
	}
	if len(contact.Phones) != 1 || contact.Phones[0].Number != "+1-555-0100" || contact.Phones[0].Label != "cell" {
		t.Errorf("phones = %+v", contact.Phones)
	}
	if contact.Organization != "Analytical Engines Ltd" {
		t.Errorf("organization = %q", contact.Organization)
	}
	if contact.Title != "Programmer" {
		t.Errorf("title = %q", contact.Title)
	}
	if contact.Notes != "First." {
		t.Errorf("notes = %q", contact.Notes)
	}
	if contact.PrimaryEmail() != "ada@example.com" {
		t.Errorf("primary email = %q", contact.PrimaryEmail())
	}
}

func TestParseVCardNoName(t *testing.T) {
	card := "BEGIN:VCARD\nVERSION:3.0\nUID:x\nEMAIL:x@example.com\nEND:VCARD\n"
	if _, err := ParseVCard(card); err == nil {
		t.Fatal("expected error for card without FN")
	}
}

func TestParseVCardMissingUID(t *testing.T) {
	card := "BEGIN:VCARD\nVERSION:3.0\nFN:No Uid\nEND:VCARD\n"
	first, err := ParseVCard(card)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == "" {
		t.Fatal("expected a generated id")
	}
	second, err := ParseVCard(card)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Errorf("generated id not stable: %q vs %q", first.ID, second.ID)
	}
}

func TestContactMatches(t *testing.T) {
	contact := Contact{
		Name:         "Grace Hopper",
		Organization: "Navy",
		Emails:       []ContactEmail{{Email: "grace@example.mil"}},
	}

	tests := []struct {
		query string
		want  bool
	}{
		{"grace", true},
		{"HOPPER", true},
		{"example.mil", true},
		{"navy", true},
		{"lovelace", false},
	}
	for _, tt := range tests {
		if got := contact.Matches(tt.query); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestParseVCardFoldedLine(t *testing.T) {
	card := strings.Join([]string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"FN:Long",
		"NOTE:first part",
		"  and the rest",
		"END:VCARD",
		"",
	}, "\r\n")
	contact, err := ParseVCard(card)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(contact.Notes, "and the rest") {
		t.Errorf("folded note not joined: %q", contact.Notes)
	}
}
