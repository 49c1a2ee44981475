package session

import "time"

// UserSummary is the persisted view of the authenticated user.
//
//	Roles: "client" (citizen) or "admin" (reviewing officer).
type UserSummary struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Record is the unit of session persistence: the access token, the refresh
// credential, and the user summary, stored and cleared together.
//
// A Record with an empty AccessToken is never persisted; [Store.Set]
// rejects it.
type Record struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	User         *UserSummary `json:"user,omitempty"`
	SavedAt      time.Time    `json:"savedAt"`
}

// Empty reports whether the record carries no credential.
func (r Record) Empty() bool {
	return r.AccessToken == ""
}
