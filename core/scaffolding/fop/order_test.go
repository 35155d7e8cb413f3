package fop

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFields = map[string]string{
	"id":         "id",
	"name":       "name",
	"created_at": "created_at",
}

func TestParseOrderBy(t *testing.T) {
	tests := []struct {
		name       string
		directives []string
		want       []By
	}{
		{"empty", nil, []By{}},
		{"bare field is descending", []string{"name"}, []By{{"name", DESC}}},
		{"dash is ascending", []string{"-created_at"}, []By{{"created_at", ASC}}},
		{
			"order and duplicates preserved",
			[]string{"-name", "created_at", "name"},
			[]By{{"name", ASC}, {"created_at", DESC}, {"name", DESC}},
		},
		{"surrounding spaces ignored", []string{" -id "}, []By{{"id", ASC}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOrderBy(testFields, tt.directives)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOrderByUnknownField(t *testing.T) {
	for _, d := range []string{"password", "-password", "-", "", "name; DROP TABLE users"} {
		_, err := ParseOrderBy(testFields, []string{"name", d})
		assert.True(t, errors.Is(err, ErrUnknownOrderField), "directive %q", d)
	}
}

func TestByString(t *testing.T) {
	assert.Equal(t, "-id", NewBy("id", ASC).String())
	assert.Equal(t, "id", NewBy("id", DESC).String())
	assert.Equal(t, ASC, NewBy("id", "sideways").Direction)
}

func TestSplitOrderBy(t *testing.T) {
	assert.Nil(t, SplitOrderBy(""))
	assert.Equal(t, []string{"-name", "id"}, SplitOrderBy("-name, ,id,"))
}
