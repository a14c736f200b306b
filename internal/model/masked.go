package model

// Masked email lifecycle states. A masked address only changes state
// through an explicit enable/disable/delete call.
const (
	MaskedStateEnabled  = "enabled"
	MaskedStateDisabled = "disabled"
	MaskedStatePending  = "pending"
	MaskedStateDeleted  = "deleted"
)

// MaskedEmail is a disposable, revocable alias managed through the
// Fastmail maskedemail capability.
type MaskedEmail struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	State         string `json:"state,omitempty"`
	ForDomain     string `json:"forDomain,omitempty"`
	Description   string `json:"description,omitempty"`
	EmailPrefix   string `json:"emailPrefix,omitempty"`
	URL           string `json:"url,omitempty"`
	LastMessageAt string `json:"lastMessageAt,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
	CreatedBy     string `json:"createdBy,omitempty"`
}
