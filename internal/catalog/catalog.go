// Package catalog holds the curriculum tree the learner picks topics from:
// boards, classes, subjects and topics.
package catalog

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtin []byte

// Topic is one teachable unit, e.g. "Theme 3: Force and Pressure".
type Topic struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Subject groups topics. A subject may have no topics yet.
type Subject struct {
	Name   string  `yaml:"name" json:"name"`
	Topics []Topic `yaml:"topics,omitempty" json:"topics,omitempty"`
}

// Class is a grade within a board.
type Class struct {
	Name     string    `yaml:"name" json:"name"`
	Subjects []Subject `yaml:"subjects" json:"subjects"`
}

// Board is an examination board such as ICSE.
type Board struct {
	Name    string  `yaml:"name" json:"name"`
	Title   string  `yaml:"title,omitempty" json:"title,omitempty"`
	Classes []Class `yaml:"classes" json:"classes"`
}

// DisplayName returns the board's title, or its name when untitled.
func (b Board) DisplayName() string {
	if b.Title != "" {
		return b.Title
	}
	return b.Name
}

type document struct {
	Boards []Board `yaml:"boards"`
}

// Catalog is a read-only curriculum tree. It is safe for concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	boards []Board
}

// Parse decodes a catalogue YAML document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for _, b := range doc.Boards {
		if b.Name == "" {
			return nil, fmt.Errorf("parse catalog: board without a name")
		}
	}
	return &Catalog{boards: doc.Boards}, nil
}

var loadBuiltin = sync.OnceValues(func() (*Catalog, error) { return Parse(builtin) })

// Default returns a copy of the built-in catalogue.
func Default() *Catalog {
	c, err := loadBuiltin()
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return &Catalog{boards: slices.Clone(c.boards)}
}

// Load returns the built-in catalogue with every *.yaml or *.yml file in dir
// merged on top. A board in an override file replaces the built-in board of
// the same name. An empty dir returns the built-in catalogue.
func Load(dir string) (*Catalog, error) {
	c := Default()
	if dir == "" {
		return c, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("loading catalog overrides: %w", err)
	}
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		override, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, b := range override.boards {
			c.put(b)
		}
	}

	slog.Info("catalog loaded", "dir", dir, "boards", len(c.boards))
	return c, nil
}

func (c *Catalog) put(b Board) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.boards {
		if strings.EqualFold(c.boards[i].Name, b.Name) {
			c.boards[i] = b
			return
		}
	}
	c.boards = append(c.boards, b)
}

// Boards returns every board in catalogue order.
func (c *Catalog) Boards() []Board {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.boards)
}

// Board looks a board up by name, ignoring case.
func (c *Catalog) Board(name string) (Board, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, b := range c.boards {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}
	return Board{}, false
}

// Classes lists the classes of a board.
func (c *Catalog) Classes(board string) []Class {
	b, ok := c.Board(board)
	if !ok {
		return nil
	}
	return b.Classes
}

// Subjects lists the subjects taught in a class.
func (c *Catalog) Subjects(board, class string) []Subject {
	for _, cl := range c.Classes(board) {
		if strings.EqualFold(cl.Name, class) {
			return cl.Subjects
		}
	}
	return nil
}

// Topics lists the topics of a subject.
func (c *Catalog) Topics(board, class, subject string) []Topic {
	for _, s := range c.Subjects(board, class) {
		if strings.EqualFold(s.Name, subject) {
			return s.Topics
		}
	}
	return nil
}

// Topic finds a topic by exact name.
func (c *Catalog) Topic(board, class, subject, name string) (Topic, bool) {
	for _, t := range c.Topics(board, class, subject) {
		if t.Name == name {
			return t, true
		}
	}
	return Topic{}, false
}

// Resolve matches a user-supplied topic: an exact name, a theme number
// ("3" or "Theme 3"), or a case-insensitive substring of exactly one name.
func (c *Catalog) Resolve(board, class, subject, query string) (Topic, error) {
	topics := c.Topics(board, class, subject)
	if len(topics) == 0 {
		return Topic{}, fmt.Errorf("no topics for %s %s %s", board, class, subject)
	}
	q := strings.TrimSpace(query)
	if t, ok := c.Topic(board, class, subject, q); ok {
		return t, nil
	}

	prefix := "theme " + strings.TrimPrefix(strings.ToLower(q), "theme ") + ":"
	var matches []Topic
	for _, t := range topics {
		name := strings.ToLower(t.Name)
		if strings.HasPrefix(name, prefix) {
			return t, nil
		}
		if strings.Contains(name, strings.ToLower(q)) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return Topic{}, fmt.Errorf("no topic matches %q", query)
	default:
		return Topic{}, fmt.Errorf("topic %q is ambiguous (%d matches)", query, len(matches))
	}
}
