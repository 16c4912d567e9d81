package lsb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger(t *testing.T) {
	db, err := NewLedger(filepath.Join(t.TempDir(), "lsb.db"))
	require.NoError(t, err)
	defer db.Close()

	e, err := db.FindBySHA1("ABCD")
	require.NoError(t, err)
	assert.Nil(t, e)

	created := time.Unix(1600000000, 0)
	_, err = db.Record(Entry{SHA1: "ABCD", Name: "a.png", Stride: 3, Length: 5, Thumbnail: []byte{1, 2, 3}, Created: created})
	require.NoError(t, err)
	_, err = db.Record(Entry{SHA1: "EF01", Name: "b.png", Stride: 4, Length: 0})
	require.NoError(t, err)

	e, err = db.FindBySHA1("ABCD")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "a.png", e.Name)
	assert.Equal(t, 3, e.Stride)
	assert.Equal(t, 5, e.Length)
	assert.Equal(t, []byte{1, 2, 3}, e.Thumbnail)
	assert.True(t, created.Equal(e.Created))

	// Same image recorded again replaces the earlier entry
	_, err = db.Record(Entry{SHA1: "ABCD", Name: "c.png", Stride: 3, Length: 7})
	require.NoError(t, err)

	entries, err := db.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b.png", entries[0].Name)
	assert.Equal(t, "c.png", entries[1].Name)
	assert.Equal(t, 7, entries[1].Length)
	assert.False(t, entries[0].Created.IsZero())
}
