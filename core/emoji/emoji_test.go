package emoji

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_SystemEmoji(t *testing.T) {
	m := NewMap()

	assert.True(t, m.Has("smile"))
	assert.True(t, m.Has("+1"), "aliases resolve")
	assert.False(t, m.Has("not_an_emoji"))

	e, ok := m.Get("thinking")
	require.True(t, ok)
	assert.Equal(t, "thinking_face", e.Name)
	assert.False(t, e.IsCustom())
}

func TestMap_CustomEmoji(t *testing.T) {
	m := NewMap(
		Emoji{ID: "e1", Name: "gopher", ImageURL: "https://cdn.example.com/gopher.png"},
		Emoji{ID: "e2", Name: "smile", ImageURL: "https://cdn.example.com/other.png"},
	)

	e, ok := m.Get("gopher")
	require.True(t, ok)
	assert.True(t, e.IsCustom())

	e, ok = m.Get("smile")
	require.True(t, ok)
	assert.False(t, e.IsCustom(), "system emoji win over custom ones")

	assert.Contains(t, m.Names(), "gopher")
}

func TestMap_NilIsSystemOnly(t *testing.T) {
	var m *Map
	assert.True(t, m.Has("tada"))
	assert.False(t, m.Has("gopher"))
}

func TestLoadYAML(t *testing.T) {
	list, err := LoadYAML(strings.NewReader(`
- name: gopher
  image_url: https://cdn.example.com/gopher.png
- name: party_parrot
  aliases: [parrot]
`))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "https://cdn.example.com/gopher.png", list[0].ImageURL)
	assert.Equal(t, []string{"parrot"}, list[1].Aliases)

	empty, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = LoadYAML(strings.NewReader("- unicode: 1f600\n"))
	assert.Error(t, err)
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"gopher", nil},
		{"party-parrot_2+", nil},
		{"", ErrInvalidName},
		{"has space", ErrInvalidName},
		{"emoji:colon", ErrInvalidName},
		{strings.Repeat("a", MaxNameLength+1), ErrInvalidName},
		{"smile", ErrSystemName},
		{"+1", ErrSystemName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.name)
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.err), "got %v", err)
		})
	}
}
