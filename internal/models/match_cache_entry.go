package models

import (
	"time"
)

// MatchCacheEntry is one serialized MatchResult in the database-backed match
// cache. Entries are never invalidated piecemeal; they simply expire.
type MatchCacheEntry struct {
	Key       string    `gorm:"type:varchar(128);primaryKey" json:"key"`
	Payload   string    `gorm:"type:text;not null" json:"payload"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// Expired reports whether the entry's TTL has elapsed
func (e *MatchCacheEntry) Expired() bool {
	return time.Now().After(e.ExpiresAt)
}
