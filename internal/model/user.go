// Package model defines the data structures used throughout the application.
//
// JSON TAGS:
// Attribute names mirror the public wire format the API has always used:
// camelCase for plain attributes ("createdAt"), the model name plus "Id" for
// foreign keys ("UserId"), and capitalized model names for eager-loaded
// associations ("User", "Songs"). Associations are pointers or slices so that
// rows loaded without them serialize without the key; a loaded has-many
// association with no rows serializes as [].
package model

import "time"

// User is a registered account. Password holds the bcrypt hash and is never
// serialized; default reads do not even select it.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Albums []Album `json:"Albums,omitzero"`
}
