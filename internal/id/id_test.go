package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Format(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"note", PrefixNote},
		{"tag", PrefixTag},
		{"task", PrefixTask},
		{"user", PrefixUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate(tt.prefix)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(got, tt.prefix+"-"))
			// Default NanoID is 21 URL-safe characters after the prefix.
			assert.Len(t, got, len(tt.prefix)+1+21)
		})
	}
}

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		got, err := Generate(PrefixTag)
		require.NoError(t, err)
		assert.False(t, seen[got], "id should be unique: %s", got)
		seen[got] = true
	}
}

func TestMustGenerate(t *testing.T) {
	got := MustGenerate(PrefixNote)
	assert.True(t, strings.HasPrefix(got, "note-"))
}
