package cows

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Animal holds what every barn animal shares.
type Animal struct {
	Name string `json:"name"`
}

// Cow is the output payload. MotherID is resolved into the mother field.
type Cow struct {
	Animal
	ID       string    `json:"id"`
	Breed    string    `json:"breed"`
	Color    string    `graphql:"color,description=Coat color"`
	BornAt   time.Time `json:"bornAt"`
	MotherID string    `graphql:"-"`
}

// NewCowInput is the addCow mutation input.
type NewCowInput struct {
	Name     string
	Breed    string
	MotherID string
}

// CowFilter narrows the cows query.
type CowFilter struct {
	Breed string `json:"breed"`
}

var ErrCowNotFound = errors.New("cow not found")

// Barn is an in-memory cow store shared by the resolvers.
type Barn struct {
	mu    sync.RWMutex
	cows  map[string]*Cow
	color string
	now   func() time.Time
}

// NewBarn returns a barn painted color and seeded with a mother and a calf.
func NewBarn(color string) *Barn {
	b := &Barn{
		cows:  map[string]*Cow{},
		color: color,
		now:   time.Now,
	}
	born := time.Date(2019, 4, 1, 0, 0, 0, 0, time.UTC)
	b.cows["c1"] = &Cow{Animal: Animal{Name: "Daisy"}, ID: "c1", Breed: "Jersey", Color: color, BornAt: born}
	b.cows["c2"] = &Cow{Animal: Animal{Name: "Bluebell"}, ID: "c2", Breed: "Jersey", Color: color, BornAt: born.AddDate(2, 0, 0), MotherID: "c1"}
	return b
}

func (b *Barn) Color() string { return b.color }

// Cows returns the cows ordered by ID, keeping only filter.Breed when set.
func (b *Barn) Cows(filter *CowFilter) []*Cow {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*Cow, 0, len(b.cows))
	for _, c := range b.cows {
		if filter != nil && filter.Breed != "" && c.Breed != filter.Breed {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *Barn) Cow(id string) (*Cow, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	c, ok := b.cows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCowNotFound, id)
	}
	return c, nil
}

// Mother returns the mother of c, or nil when unknown.
func (b *Barn) Mother(c *Cow) *Cow {
	if c == nil || c.MotherID == "" {
		return nil
	}
	m, err := b.Cow(c.MotherID)
	if err != nil {
		return nil
	}
	return m
}

// Add stores a new cow with a random ID.
func (b *Barn) Add(in *NewCowInput) (*Cow, error) {
	if in == nil || in.Name == "" {
		return nil, errors.New("cow name is required")
	}
	if in.MotherID != "" {
		if _, err := b.Cow(in.MotherID); err != nil {
			return nil, err
		}
	}

	c := &Cow{
		Animal:   Animal{Name: in.Name},
		ID:       uuid.New().String(),
		Breed:    in.Breed,
		Color:    b.color,
		BornAt:   b.now().UTC(),
		MotherID: in.MotherID,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.cows[c.ID] = c
	return c, nil
}

// Remove deletes a cow and reports whether it existed.
func (b *Barn) Remove(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.cows[id]; !ok {
		return false
	}
	delete(b.cows, id)
	return true
}

func (b *Barn) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.cows)
}

// CowQueries backs the Query fields.
type CowQueries struct {
	barn *Barn
}

func NewCowQueries(barn *Barn) *CowQueries {
	return &CowQueries{barn: barn}
}

func (q *CowQueries) Cows(filter *CowFilter) []*Cow { return q.barn.Cows(filter) }

func (q *CowQueries) Cow(id string) (*Cow, error) { return q.barn.Cow(id) }

func (q *CowQueries) BarnColor() string { return q.barn.Color() }

// CowMutations backs the Mutation fields.
type CowMutations struct {
	barn *Barn
}

func (m *CowMutations) AddCow(input *NewCowInput) (*Cow, error) { return m.barn.Add(input) }

func (m *CowMutations) RemoveCow(id string) bool { return m.barn.Remove(id) }

// HerdStats is attached to the Query root as a plugin.
type HerdStats struct {
	barn *Barn
}

func NewHerdStats(barn *Barn) *HerdStats {
	return &HerdStats{barn: barn}
}

func (s *HerdStats) HerdSize() int { return s.barn.Count() }

func (s *HerdStats) Breeds() []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range s.barn.Cows(nil) {
		if c.Breed != "" && !seen[c.Breed] {
			seen[c.Breed] = true
			out = append(out, c.Breed)
		}
	}
	sort.Strings(out)
	return out
}
