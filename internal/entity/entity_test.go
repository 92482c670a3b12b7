package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindNames(t *testing.T) {
	tests := []struct {
		kind  Kind
		name  string
		model string
		table string
	}{
		{User, "user", "User", "users"},
		{Album, "album", "Album", "albums"},
		{Song, "song", "Song", "songs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.kind.String())
			assert.Equal(t, tt.model, tt.kind.Model())
			assert.Equal(t, tt.table, tt.kind.Table())
		})
	}
}

func TestEveryKindIsRegistered(t *testing.T) {
	for _, k := range Kinds {
		assert.NotEmpty(t, k.Table(), "kind %d has no table", k)
		assert.NotEmpty(t, k.Columns(), "kind %s has no columns", k)
		assert.NotEmpty(t, k.Shape().Order, "kind %s has no ordering", k)
	}
}

func TestUnknownKind(t *testing.T) {
	var k Kind

	assert.Equal(t, "unknown", k.String())
	assert.Empty(t, k.Table())
	assert.Nil(t, k.Columns())
	assert.Equal(t, Shape{}, k.Shape())
}

func TestReferencesPointAtRegisteredKinds(t *testing.T) {
	for _, k := range Kinds {
		for _, c := range k.Columns() {
			if c.Type != Reference {
				continue
			}
			assert.NotEmpty(t, c.References.Table(), "%s.%s references an unknown kind", k, c.Field)
		}
	}
}

func TestColumnLookup(t *testing.T) {
	c, ok := Song.Column("AlbumId")
	require.True(t, ok)
	assert.Equal(t, "album_id", c.Name)
	assert.Equal(t, Album, c.References)

	_, ok = Song.Column("UserId")
	assert.False(t, ok)
}

func TestForeignKeyViolation(t *testing.T) {
	c, _ := Song.Column("AlbumId")
	assert.Equal(t,
		`insert or update on table "Songs" violates foreign key constraint "Songs_AlbumId_fkey"`,
		Song.ForeignKeyViolation(c),
	)
}

func TestShapes(t *testing.T) {
	t.Run("user loads albums newest first, then songs by position", func(t *testing.T) {
		s := User.Shape()
		require.Len(t, s.Include, 1)
		albums := s.Include[0]
		assert.Equal(t, Album, albums.Kind)
		assert.Equal(t, "created_at DESC", albums.Order[0].SQL())
		require.Len(t, albums.Include, 1)
		assert.Equal(t, Song, albums.Include[0].Kind)
		assert.Equal(t, "position ASC", albums.Include[0].Order[0].SQL())
	})

	t.Run("album loads user and songs", func(t *testing.T) {
		s := Album.Shape()
		require.Len(t, s.Include, 2)
		assert.Equal(t, User, s.Include[0].Kind)
		assert.Equal(t, Song, s.Include[1].Kind)
		assert.Equal(t, "position ASC", s.Include[1].Order[0].SQL())
	})

	t.Run("song loads album and its user", func(t *testing.T) {
		s := Song.Shape()
		require.Len(t, s.Include, 1)
		assert.Equal(t, Album, s.Include[0].Kind)
		require.Len(t, s.Include[0].Include, 1)
		assert.Equal(t, User, s.Include[0].Include[0].Kind)
	})

	t.Run("all kinds default to newest first", func(t *testing.T) {
		for _, k := range Kinds {
			assert.Equal(t, "created_at DESC", k.Shape().Order[0].SQL())
		}
	})
}
