package models

import "time"

// ActivityLog entries are append-only; CreatedAt is always set server-side.
type ActivityLog struct {
	ID        string
	DeviceID  string
	ImageURL  *string
	CreatedAt time.Time
}
