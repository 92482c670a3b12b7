package model

import "time"

// Song belongs to an Album; its effective owner is the album's user.
type Song struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	URL       *string   `json:"url"`
	AlbumID   string    `json:"AlbumId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Album *Album `json:"Album,omitempty"`
}
