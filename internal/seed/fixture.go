package seed

import (
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/default.yaml
var defaultFixture []byte

// Fixture describes one user's bookmark library.
// Lists are in display order.
type Fixture struct {
	User    UserFixture     `yaml:"user"`
	Tags    []string        `yaml:"tags"` // global tags
	Folders []FolderFixture `yaml:"folders"`
}

// UserFixture identifies the owner of the seeded data
type UserFixture struct {
	Email string  `yaml:"email"`
	Name  string  `yaml:"name"`
	Image *string `yaml:"image,omitempty"`
}

// FolderFixture is a folder with its folder-scoped tags, websites and children
type FolderFixture struct {
	Name     string           `yaml:"name"`
	Tags     []string         `yaml:"tags"`
	Websites []WebsiteFixture `yaml:"websites"`
	Folders  []FolderFixture  `yaml:"folders"`
}

// WebsiteFixture is a website inside its first folder.
// Tags name either a tag of that folder or a global tag.
type WebsiteFixture struct {
	Title       string   `yaml:"title"`
	Link        string   `yaml:"link"`
	Description *string  `yaml:"description,omitempty"`
	Image       *string  `yaml:"image,omitempty"`
	Color       *string  `yaml:"color,omitempty"`
	Tags        []string `yaml:"tags"`
	Starred     bool     `yaml:"starred"`
	AlsoIn      []string `yaml:"also_in"` // names of other folders to add it to
}

// ParseFixture decodes a fixture, rejecting unknown keys
func ParseFixture(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if f.User.Email == "" {
		return nil, fmt.Errorf("parse fixture: user.email is required")
	}
	return &f, nil
}

// DefaultFixture returns the built-in sample library
func DefaultFixture() (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(defaultFixture, &f); err != nil {
		return nil, fmt.Errorf("parse default fixture: %w", err)
	}
	return &f, nil
}
