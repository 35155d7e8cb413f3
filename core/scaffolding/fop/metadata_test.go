package fop

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct{ id uuid.UUID }

func rowID(r row) uuid.UUID { return r.id }

func TestNewMetadataEmpty(t *testing.T) {
	md := NewMetadata(nil, rowID)
	assert.Equal(t, Metadata{}, md)
}

func TestNewMetadata(t *testing.T) {
	first, last := uuid.New(), uuid.New()
	md := NewMetadata([]row{{first}, {last}}, rowID)

	assert.Equal(t, 2, md.ResponseLength)
	assert.True(t, md.Next)
	require.NotNil(t, md.LastSeen)
	assert.Equal(t, last, *md.LastSeen)
}

func TestParsePageSize(t *testing.T) {
	size, err := ParsePageSize("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, size)

	size, err = ParsePageSize("100")
	require.NoError(t, err)
	assert.Equal(t, 100, size)

	for _, bad := range []string{"0", "-1", "101", "ten"} {
		_, err := ParsePageSize(bad)
		assert.Error(t, err, bad)
	}
}
