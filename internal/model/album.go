package model

import "time"

// Album belongs to a User and holds Songs.
// URL points at stored cover media and may be null.
type Album struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       *string   `json:"url"`
	UserID    string    `json:"UserId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User  *User  `json:"User,omitempty"`
	Songs []Song `json:"Songs,omitzero"`
}
