package domain

import "time"

// Profile is the broker's own account details, stored one key per username.
type Profile struct {
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Agency    string    `json:"agency,omitempty"`
	City      string    `json:"city,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileKey is the key-value key holding username's profile.
func ProfileKey(username string) string {
	return "profile:" + username
}
