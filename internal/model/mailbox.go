package model

// Mailbox is a JMAP mailbox (folder) record.
type Mailbox struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ParentID      string `json:"parentId,omitempty"`
	Role          string `json:"role,omitempty"`
	TotalEmails   uint32 `json:"totalEmails"`
	UnreadEmails  uint32 `json:"unreadEmails"`
	TotalThreads  uint32 `json:"totalThreads"`
	UnreadThreads uint32 `json:"unreadThreads"`
	SortOrder     uint32 `json:"sortOrder"`
}
