package entity

// ColumnType tells the repository how to coerce and validate a payload value.
type ColumnType int

const (
	Text ColumnType = iota
	Integer
	Email
	Reference // string id of a row of Column.References
)

// Column describes one writable attribute of a kind.
type Column struct {
	Field        string // payload / JSON attribute name
	Name         string // SQL column name
	Type         ColumnType
	Required     bool // NOT NULL
	NotEmpty     bool // "" rejected
	Unique       bool
	Hidden       bool // never selected by default reads
	References   Kind // set when Type == Reference
	NullMessage  string
	EmptyMessage string
}

var userColumns = []Column{
	{
		Field:        "name",
		Name:         "name",
		Type:         Text,
		Required:     true,
		NotEmpty:     true,
		Unique:       true,
		NullMessage:  "Must provide a name",
		EmptyMessage: "The name cannot be empty",
	},
	{
		Field:        "email",
		Name:         "email",
		Type:         Email,
		Required:     true,
		NotEmpty:     true,
		Unique:       true,
		NullMessage:  "Must provide an email",
		EmptyMessage: "The email cannot be empty",
	},
	{
		Field:        "password",
		Name:         "password",
		Type:         Text,
		Required:     true,
		NotEmpty:     true,
		Hidden:       true,
		NullMessage:  "Must provide a password",
		EmptyMessage: "The password cannot be empty",
	},
}

var albumColumns = []Column{
	{
		Field:        "name",
		Name:         "name",
		Type:         Text,
		Required:     true,
		NotEmpty:     true,
		NullMessage:  "Must provide an album name",
		EmptyMessage: "The album name cannot be empty",
	},
	{
		Field: "url",
		Name:  "url",
		Type:  Text,
	},
	{
		Field:       "UserId",
		Name:        "user_id",
		Type:        Reference,
		Required:    true,
		References:  User,
		NullMessage: "Album.UserId cannot be null",
	},
}

var songColumns = []Column{
	{
		Field:        "name",
		Name:         "name",
		Type:         Text,
		Required:     true,
		NotEmpty:     true,
		NullMessage:  "Must provide a song name",
		EmptyMessage: "The song name cannot be empty",
	},
	{
		Field:        "position",
		Name:         "position",
		Type:         Integer,
		Required:     true,
		NotEmpty:     true,
		NullMessage:  "Must provide a song position",
		EmptyMessage: "The position cannot be empty",
	},
	{
		Field: "url",
		Name:  "url",
		Type:  Text,
	},
	{
		Field:       "AlbumId",
		Name:        "album_id",
		Type:        Reference,
		Required:    true,
		References:  Album,
		NullMessage: "Song.AlbumId cannot be null",
	},
}
