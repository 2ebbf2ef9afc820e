// Package photos owns the user-attached pictures and their on-screen frames.
package photos

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/arixlabs/treemorph/internal/models"
)

var (
	ErrDuplicateID = errors.New("duplicate photo id")
	ErrNotFound    = errors.New("photo not found")
	ErrEmptyID     = errors.New("photo id is empty")
)

// Collection is the ordered photo list, newest first, unique by id.
type Collection struct {
	items []models.Photo
}

func NewCollection() *Collection {
	return &Collection{}
}

func (c *Collection) Len() int {
	return len(c.items)
}

// At returns the i-th photo in display order.
func (c *Collection) At(i int) models.Photo {
	return c.items[i]
}

// All returns a copy of the photos in display order.
func (c *Collection) All() []models.Photo {
	return slices.Clone(c.items)
}

func (c *Collection) index(id string) int {
	return slices.IndexFunc(c.items, func(p models.Photo) bool { return p.ID == id })
}

func (c *Collection) Get(id string) (models.Photo, bool) {
	i := c.index(id)
	if i < 0 {
		return models.Photo{}, false
	}
	return c.items[i], true
}

func (c *Collection) Contains(id string) bool {
	return c.index(id) >= 0
}

// Prepend adds p in front of the existing photos.
func (c *Collection) Prepend(p models.Photo) error {
	if p.ID == "" {
		return ErrEmptyID
	}
	if c.Contains(p.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
	}
	c.items = slices.Insert(c.items, 0, p)
	return nil
}

func (c *Collection) Remove(id string) error {
	i := c.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.items = slices.Delete(c.items, i, i+1)
	return nil
}

// Replace swaps in a whole new list. The current list is kept when the new
// one is invalid.
func (c *Collection) Replace(ps []models.Photo) error {
	seen := make(map[string]bool, len(ps))
	for _, p := range ps {
		if p.ID == "" {
			return ErrEmptyID
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
		}
		seen[p.ID] = true
	}
	c.items = slices.Clone(ps)
	return nil
}

// Random picks a uniformly random photo.
func (c *Collection) Random(rng *rand.Rand) (models.Photo, bool) {
	if len(c.items) == 0 {
		return models.Photo{}, false
	}
	var i int
	if rng == nil {
		i = rand.IntN(len(c.items))
	} else {
		i = rng.IntN(len(c.items))
	}
	return c.items[i], true
}
