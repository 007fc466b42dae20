package models

import (
	"fmt"
	"sort"
)

// CategoryCatalog maps expense category ids to their names.
// It is supplied by the caller and treated as read-only.
type CategoryCatalog map[int]string

// IDs returns the catalog ids in ascending order.
func (c CategoryCatalog) IDs() []int {
	ids := make([]int, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Lookup returns the suggestion for id, or nil when id is not in the catalog.
func (c CategoryCatalog) Lookup(id int) *CategorySuggestion {
	name, ok := c[id]
	if !ok {
		return nil
	}
	return &CategorySuggestion{ID: id, Name: name}
}

// Clone returns an independent copy of the catalog.
func (c CategoryCatalog) Clone() CategoryCatalog {
	out := make(CategoryCatalog, len(c))
	for id, name := range c {
		out[id] = name
	}
	return out
}

// CategorySuggestion is a classifier's advisory category for a movement.
// A nil *CategorySuggestion means "no category".
type CategorySuggestion struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

func (s CategorySuggestion) String() string {
	return fmt.Sprintf("%s (ID: %d)", s.Name, s.ID)
}
