// Package emoji provides the emoji map consulted while formatting text:
// the built-in system emoji plus any custom emoji uploaded to the server.
package emoji

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// Emoji is the metadata known about one emoji.
type Emoji struct {
	ID       string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string   `json:"name" yaml:"name"`
	Unicode  string   `json:"unicode,omitempty" yaml:"unicode,omitempty"`
	Category string   `json:"category,omitempty" yaml:"category,omitempty"`
	Aliases  []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty" yaml:"image_url,omitempty"`
}

// IsCustom reports whether e was uploaded rather than built in.
func (e Emoji) IsCustom() bool {
	return e.Unicode == ""
}

//go:embed system.yaml
var systemYAML []byte

var systemEmoji = mustLoadSystem()

func mustLoadSystem() map[string]Emoji {
	list, err := LoadYAML(bytes.NewReader(systemYAML))
	if err != nil {
		panic(fmt.Sprintf("emoji: invalid system table: %v", err))
	}
	return index(list)
}

func index(list []Emoji) map[string]Emoji {
	m := make(map[string]Emoji, len(list))
	for _, e := range list {
		m[e.Name] = e
		for _, alias := range e.Aliases {
			m[alias] = e
		}
	}
	return m
}

// LoadYAML decodes a YAML list of emoji.
func LoadYAML(r io.Reader) ([]Emoji, error) {
	var list []Emoji
	if err := yaml.NewDecoder(r).Decode(&list); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode emoji yaml: %w", err)
	}
	for i, e := range list {
		if e.Name == "" {
			return nil, fmt.Errorf("emoji %d has no name", i)
		}
	}
	return list, nil
}

// Map is a read-only lookup from short name to emoji. System emoji take
// precedence over custom emoji with the same name.
type Map struct {
	custom map[string]Emoji
}

// NewMap returns a map of the system emoji plus custom.
func NewMap(custom ...Emoji) *Map {
	return &Map{custom: index(custom)}
}

// Has reports whether name is a known emoji.
func (m *Map) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Get returns the emoji for name.
func (m *Map) Get(name string) (Emoji, bool) {
	if e, ok := systemEmoji[name]; ok {
		return e, true
	}
	if m == nil {
		return Emoji{}, false
	}
	e, ok := m.custom[name]
	return e, ok
}

// Names returns every known name, aliases included, sorted.
func (m *Map) Names() []string {
	names := make([]string, 0, len(systemEmoji))
	for name := range systemEmoji {
		names = append(names, name)
	}
	if m != nil {
		for name := range m.custom {
			if _, ok := systemEmoji[name]; !ok {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// MaxNameLength is the longest custom emoji name accepted.
const MaxNameLength = 64

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9_+-]+$`)

var (
	ErrInvalidName = errors.New("invalid emoji name")
	ErrSystemName  = errors.New("emoji name is reserved by a system emoji")
)

// ValidateName checks that name can be used for a new custom emoji.
func ValidateName(name string) error {
	if name == "" || len(name) > MaxNameLength || !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if _, ok := systemEmoji[name]; ok {
		return fmt.Errorf("%w: %q", ErrSystemName, name)
	}
	return nil
}
