package entities

import "time"

// ContextItem is a piece of curated tenant content eligible for sharing.
// CopiedFrom carries the source item id when the row was materialized by
// an approved sharing request.
type ContextItem struct {
	ItemID         string
	OrganizationID string
	FeatureKey     string
	Title          string
	Content        string
	CopiedFrom     string
	CreatedAt      time.Time
}
