package models

// Prompt statuses as stored by the CMS. Only published prompts participate
// in the free-tier ordering.
const (
	PromptPublished = "published"
	PromptDraft     = "draft"
	PromptArchived  = "archived"
)

// Prompt is a unit of gated content. The canonical ordering of prompts is
// by id descending (newest first), restricted to published status.
type Prompt struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

// License is the entitlement view returned by the license endpoint.
type License struct {
	IsPremium bool    `json:"is_premium"`
	ExpiresAt *string `json:"expires_at"`
	License   *string `json:"license"`
}
