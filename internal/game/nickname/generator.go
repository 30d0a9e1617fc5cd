// Package nickname assigns readable display names to anonymous connections.
// Word lists can be loaded from YAML content files, with compiled-in
// defaults when none are provided.
package nickname

import (
	"fmt"
	"math/rand"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

var defaultAdjectives = []string{
	"Brave", "Calm", "Clever", "Daring", "Eager", "Fierce", "Gentle",
	"Jolly", "Keen", "Lucky", "Nimble", "Quick", "Silent", "Sly", "Swift",
	"Witty",
}

var defaultAnimals = []string{
	"Badger", "Crane", "Falcon", "Fox", "Heron", "Lynx", "Marten", "Otter",
	"Owl", "Panther", "Raven", "Stoat", "Tiger", "Viper", "Wolf", "Wren",
}

// WordLists is the YAML schema for a nickname content file.
type WordLists struct {
	Adjectives []string `yaml:"adjectives"`
	Animals    []string `yaml:"animals"`
}

// Generator produces unique adjective+animal display names.
// Safe for concurrent use.
type Generator struct {
	mu         sync.Mutex
	rng        *rand.Rand
	adjectives []string
	animals    []string
	taken      map[string]bool
}

// NewGenerator creates a Generator over the compiled-in word lists.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng:        rand.New(rand.NewSource(seed)),
		adjectives: defaultAdjectives,
		animals:    defaultAnimals,
		taken:      make(map[string]bool),
	}
}

// NewGeneratorFromFile creates a Generator with word lists loaded from a
// YAML file.
//
// Precondition: path must name a readable YAML file matching WordLists.
// Postcondition: Returns an error when the file is unreadable, malformed,
// or either list is empty.
func NewGeneratorFromFile(path string, seed int64) (*Generator, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading nickname words %s: %w", path, err)
	}
	var lists WordLists
	if err := yaml.Unmarshal(raw, &lists); err != nil {
		return nil, fmt.Errorf("parsing nickname words %s: %w", path, err)
	}
	if len(lists.Adjectives) == 0 || len(lists.Animals) == 0 {
		return nil, fmt.Errorf("nickname words %s: both adjectives and animals must be non-empty", path)
	}
	g := NewGenerator(seed)
	g.adjectives = lists.Adjectives
	g.animals = lists.Animals
	return g, nil
}

// Generate returns a display name not handed out since the last Release.
// When the plain combinations run out it disambiguates with a numeric
// suffix, so Generate never fails.
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	for attempt := 0; attempt < 32; attempt++ {
		name := fmt.Sprintf("%s %s",
			g.adjectives[g.rng.Intn(len(g.adjectives))],
			g.animals[g.rng.Intn(len(g.animals))],
		)
		if !g.taken[name] {
			g.taken[name] = true
			return name
		}
	}

	for i := 2; ; i++ {
		name := fmt.Sprintf("%s %s %d",
			g.adjectives[g.rng.Intn(len(g.adjectives))],
			g.animals[g.rng.Intn(len(g.animals))],
			i,
		)
		if !g.taken[name] {
			g.taken[name] = true
			return name
		}
	}
}

// Release returns a name to the pool once its connection is gone.
// Idempotent.
func (g *Generator) Release(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.taken, name)
}
