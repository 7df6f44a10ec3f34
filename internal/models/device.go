package models

import "time"

// Device is a registered sensing unit ("System" in the mobile client).
// ConnectedUserIDs mirrors the isConnected flag on each listed user; the two
// are written in separate steps and may diverge, see service.PartialApplyError.
type Device struct {
	ID                   string
	AlarmEnabled         bool
	NotificationsEnabled bool
	AlarmSounding        bool
	ConnectedUserIDs     []string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (d Device) HasMember(userID string) bool {
	for _, id := range d.ConnectedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
