package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTags_Lenient(t *testing.T) {
	cases := map[string][]string{
		`["#a","#b"]`:     {"#a", "#b"},
		`[]`:              {},
		``:                {},
		`not json`:        {},
		`{"a":1}`:         {},
		`["#a", 3, null]`: {"#a"},
	}
	for blob, want := range cases {
		assert.Equal(t, want, decodeTags(blob), "blob %q", blob)
	}
}

func TestEncodeTags_NilIsEmptyArray(t *testing.T) {
	got, err := encodeTags(nil)

	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}
