// Package profile defines user profiles and the preferences store
// collaborator. The core never mutates profiles; it reads them through a
// cache that fans preference changes out to interest recomputation.
package profile

import (
	"context"
	"time"
)

// Profile is one user's device registration and preferences.
type Profile struct {
	DeviceID           string          `json:"deviceId"`
	Competitions       []string        `json:"competitions"` // labels, possibly suffixed ": Top teams"
	ClubTeams          []string        `json:"clubTeams"`
	InternationalTeams []string        `json:"internationalTeams"`
	PushToken          string          `json:"pushToken,omitempty"`
	NotificationTypes  map[string]bool `json:"notificationOptions"` // message type -> enabled
	NotificationSpeed  string          `json:"notificationSpeed,omitempty"`
	PredictorSpeed     string          `json:"predictorSpeed,omitempty"`
	LastUpdated        time.Time       `json:"lastUpdated"`
}

// FollowedTeams returns the club and international followed teams flattened
// into one list.
func (p *Profile) FollowedTeams() []string {
	out := make([]string, 0, len(p.ClubTeams)+len(p.InternationalTeams))
	out = append(out, p.ClubTeams...)
	out = append(out, p.InternationalTeams...)
	return out
}

// WantsType reports whether the user has enabled notifications of the given
// message type. Absent entries mean disabled.
func (p *Profile) WantsType(messageType string) bool {
	return p != nil && p.NotificationTypes[messageType]
}

// HasPushToken reports whether the device has registered for push delivery.
func (p *Profile) HasPushToken() bool {
	return p != nil && p.PushToken != ""
}

// Store is the persistence collaborator for profiles.
type Store interface {
	Get(ctx context.Context, deviceID string) (*Profile, error)
	Set(ctx context.Context, p *Profile) error
	All(ctx context.Context) ([]*Profile, error)
}
