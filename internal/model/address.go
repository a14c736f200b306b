package model

import "strings"

// EmailAddress is a single addressee as JMAP represents it: an address
// plus an optional display name.
type EmailAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// String renders the address in "Name <addr>" form when a display name
// is present.
func (a EmailAddress) String() string {
	if a.Name != "" {
		return a.Name + " <" + a.Email + ">"
	}
	return a.Email
}

// Equal reports whether two addresses refer to the same mailbox,
// comparing the address part case-insensitively. Display names are
// ignored.
func (a EmailAddress) Equal(other EmailAddress) bool {
	return strings.EqualFold(a.Email, other.Email)
}

// ParseAddressList parses a comma-separated list of addresses. Entries
// may be bare addresses or "Display Name <addr>" pairs. Empty entries
// are skipped.
func ParseAddressList(input string) []EmailAddress {
	var out []EmailAddress
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start >= 0 && end > start {
			out = append(out, EmailAddress{
				Name:  strings.TrimSpace(part[:start]),
				Email: strings.TrimSpace(part[start+1 : end]),
			})
			continue
		}
		out = append(out, EmailAddress{Email: part})
	}
	return out
}

// FormatAddressList joins addresses for display, returning "(none)"
// for an empty list.
func FormatAddressList(addrs []EmailAddress) string {
	if len(addrs) == 0 {
		return "(none)"
	}
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}
