package model

import "time"

// ProfileState tracks the enrichment lifecycle for one sender address.
type ProfileState int

const (
	// ProfileAbsent means no lookup has been attempted yet.
	ProfileAbsent ProfileState = iota

	// ProfileLoading means the first lookup or research request is
	// in flight.
	ProfileLoading

	// ProfilePolling means the backend reported the research was
	// initiated and the poller is re-checking on an interval.
	ProfilePolling

	// ProfileResolved means researched details are available.
	ProfileResolved

	// ProfileError means the lookup failed or timed out; the state is
	// retry-eligible.
	ProfileError
)

// String returns the lowercase state name for status lines and logs.
func (s ProfileState) String() string {
	switch s {
	case ProfileAbsent:
		return "absent"
	case ProfileLoading:
		return "loading"
	case ProfilePolling:
		return "polling"
	case ProfileResolved:
		return "resolved"
	case ProfileError:
		return "error"
	default:
		return "unknown"
	}
}

// ProfileDetails holds the researched information about a sender, as
// returned by the backend's user details service.
type ProfileDetails struct {
	Email       string    `json:"email"`
	Name        string    `json:"name,omitempty"`
	Company     string    `json:"company,omitempty"`
	Role        string    `json:"role,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	LinkedInURL string    `json:"linkedin_url,omitempty"`
	TwitterURL  string    `json:"twitter_url,omitempty"`
	Website     string    `json:"website,omitempty"`
	Location    string    `json:"location,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Source      string    `json:"source"`
}

// SenderProfile is the enrichment slot for a single sender address.
// Profiles are keyed by lowercased address and shared across every email
// from the same sender; they are not part of the Email entity.
type SenderProfile struct {
	// Email is the lowercased sender address this profile belongs to.
	Email string

	// State is the current enrichment state.
	State ProfileState

	// Details is set only when State is ProfileResolved.
	Details *ProfileDetails

	// Message carries the error text when State is ProfileError.
	Message string
}
