package render

import (
	"fmt"
	"sort"
	"strings"
)

// Spacing holds the gaps a variant uses, in line units of the line they
// follow.
type Spacing struct {
	// Tight separates lines inside a block.
	Tight float64
	// Loose follows captions and emphasised lines.
	Loose float64
	// Teacher separates consecutive teacher entries.
	Teacher float64
	// Block follows the header and course blocks.
	Block float64
	// Section follows the assignment and Submitted To blocks.
	Section float64
}

// Variant is a named template. All variants share one block order and
// differ only in styling and spacing.
type Variant struct {
	Name string
	// Cacheable is false when output depends on more than the record.
	Cacheable bool
	// Labelled renders fields as left-aligned rows with bold labels.
	Labelled bool
	// Footer appends a "Generated on" line stamped at render time.
	Footer   bool
	BodySize float64
	Spacing  Spacing
}

// Built-in variants.
var (
	Classic = Variant{
		Name:      "classic",
		Cacheable: true,
		BodySize:  11,
		Spacing:   Spacing{Tight: 0.3, Loose: 0.5, Teacher: 0.5, Block: 2, Section: 3},
	}
	Labelled = Variant{
		Name:      "labelled",
		Cacheable: true,
		Labelled:  true,
		BodySize:  12,
		Spacing:   Spacing{Tight: 0.2, Loose: 0.3, Teacher: 0.3, Block: 1, Section: 1.5},
	}
	Stamped = Variant{
		Name:      "stamped",
		Cacheable: false,
		Footer:    true,
		BodySize:  11,
		Spacing:   Spacing{Tight: 0.3, Loose: 0.5, Teacher: 0.5, Block: 2, Section: 3},
	}
)

// DefaultVariant is used when no variant is requested.
var DefaultVariant = Classic

var variants = map[string]Variant{
	Classic.Name:  Classic,
	Labelled.Name: Labelled,
	Stamped.Name:  Stamped,
}

// LookupVariant returns the variant with the given name. An empty name
// selects DefaultVariant.
func LookupVariant(name string) (Variant, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DefaultVariant, nil
	}
	v, ok := variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %q", ErrUnknownVariant, name)
	}
	return v, nil
}

// VariantNames returns the registered variant names in sorted order.
func VariantNames() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the variant's spacing invariants.
func (v Variant) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidVariant)
	}
	if v.BodySize <= 0 {
		return fmt.Errorf("%w: %s: body size must be positive", ErrInvalidVariant, v.Name)
	}
	s := v.Spacing
	if s.Tight < 0 || s.Loose < 0 || s.Teacher < 0 || s.Block < 0 || s.Section < 0 {
		return fmt.Errorf("%w: %s: gaps must not be negative", ErrInvalidVariant, v.Name)
	}
	if s.Teacher >= s.Section {
		return fmt.Errorf("%w: %s: teacher gap must be smaller than section gap", ErrInvalidVariant, v.Name)
	}
	return nil
}
