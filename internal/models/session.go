package models

import "time"

// UserProfile is the GitHub identity attached to a session.
type UserProfile struct {
	Login     string `json:"login"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Session is the authenticated identity for this desktop instance:
// an opaque access token plus the profile the server resolved for it.
type Session struct {
	AccessToken string      `json:"access_token"`
	User        UserProfile `json:"user"`
	CreatedAt   time.Time   `json:"createdAt,omitempty"`
}

// AuthMode reports which handshake strategies the server has configured.
type AuthMode struct {
	Authenticated bool   `json:"authenticated"`
	Mode          string `json:"mode"` // "oauth" | "device" | "token" | "app"
	AppSlug       string `json:"app_slug,omitempty"`
}

// DeviceAuthorization is the server's device-flow bootstrap payload.
type DeviceAuthorization struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	// Interval is the minimum polling interval in seconds. The poller
	// must never tick faster than this.
	Interval int `json:"interval"`
	// ExpiresIn is the lifetime of the device code in seconds.
	ExpiresIn int `json:"expires_in,omitempty"`
}
