package model

import "encoding/json"

// Capability URNs the client understands. A command that needs one of
// these checks the session advertises it before building any request.
const (
	CapabilityCore        = "urn:ietf:params:jmap:core"
	CapabilityMail        = "urn:ietf:params:jmap:mail"
	CapabilitySubmission  = "urn:ietf:params:jmap:submission"
	CapabilityMaskedEmail = "https://www.fastmail.com/dev/maskedemail"
)

// Session is the JMAP session object fetched once per invocation. It is
// read-only after resolution; every other component receives it as an
// explicit parameter.
type Session struct {
	Capabilities    map[string]json.RawMessage `json:"capabilities"`
	Accounts        map[string]Account         `json:"accounts"`
	PrimaryAccounts map[string]string          `json:"primaryAccounts"`
	Username        string                     `json:"username"`
	APIURL          string                     `json:"apiUrl"`
	DownloadURL     string                     `json:"downloadUrl"`
	UploadURL       string                     `json:"uploadUrl"`
	EventSourceURL  string                     `json:"eventSourceUrl,omitempty"`
	State           string                     `json:"state,omitempty"`
}

// Account describes one account reachable through the session.
type Account struct {
	Name                string                     `json:"name"`
	IsPersonal          bool                       `json:"isPersonal"`
	IsReadOnly          bool                       `json:"isReadOnly"`
	AccountCapabilities map[string]json.RawMessage `json:"accountCapabilities,omitempty"`
}

// PrimaryAccountID returns the primary account id advertised for the
// given capability URN, or "" when the capability has no primary
// account.
func (s *Session) PrimaryAccountID(capability string) string {
	return s.PrimaryAccounts[capability]
}

// HasCapability reports whether the server advertises the capability
// URN at the session level.
func (s *Session) HasCapability(urn string) bool {
	_, ok := s.Capabilities[urn]
	return ok
}
