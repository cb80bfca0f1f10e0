// Package model defines the core domain types shared across the triage engine.
package model

import "fmt"

// Category represents one medical specialty the classifier can assign.
// The full set is fixed at load time; IDs are dense in [0, len(categories)).
type Category struct {
	InternalLabel string
	DisplayName   string
	ID            int
}

// Validate checks that the category is well-formed.
func (c Category) Validate() error {
	if c.ID < 0 {
		return fmt.Errorf("category id must be non-negative, got %d", c.ID)
	}
	if c.InternalLabel == "" {
		return fmt.Errorf("category %d: internal label is required", c.ID)
	}
	if c.DisplayName == "" {
		return fmt.Errorf("category %q: display name is required", c.InternalLabel)
	}
	return nil
}
