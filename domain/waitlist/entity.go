// Package waitlist collects email addresses of prospective users.
package waitlist

import (
	"time"

	"github.com/uptrace/bun"
)

// Join outcomes reported to the client.
const (
	StatusSubscribed        = "subscribed"
	StatusAlreadySubscribed = "already_subscribed"
)

// Signup is a waitlist_signups row. Email is unique and lower-case.
type Signup struct {
	bun.BaseModel `bun:"table:waitlist_signups,alias:ws"`

	ID               string         `bun:"id,pk,type:uuid" json:"id"`
	Email            string         `bun:"email,notnull" json:"email"`
	Source           string         `bun:"source,notnull" json:"source"`
	MarketingConsent bool           `bun:"marketing_consent,notnull" json:"marketingConsent"`
	Metadata         map[string]any `bun:"metadata,type:jsonb,notnull" json:"metadata"`
	CreatedAt        time.Time      `bun:"created_at,notnull,default:now()" json:"createdAt"`
}

// JoinRequest is the body of POST /api/waitlist.
type JoinRequest struct {
	Email            string         `json:"email"`
	Source           string         `json:"source"`
	MarketingConsent bool           `json:"marketingConsent"`
	Metadata         map[string]any `json:"metadata"`
}

// JoinResult is the response body. ID is set only for new signups.
type JoinResult struct {
	Status string `json:"status"`
	ID     string `json:"id,omitempty"`
}

// Created reports whether the request added a row.
func (r *JoinResult) Created() bool {
	return r.Status == StatusSubscribed
}
