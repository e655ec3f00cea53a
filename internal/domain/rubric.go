// Package domain holds the core evaluation model: rubrics, essays,
// per-judge results, consolidated scores, the failure taxonomy, and the
// statistics backing the meta-analysis. It has no infrastructure
// dependencies.
package domain

import (
	"fmt"
)

// RubricCategory is one scoring dimension with its point ceiling.
type RubricCategory struct {
	// Name identifies the category; unique within a rubric.
	Name string `yaml:"name" json:"name" validate:"required,min=1"`

	// MaxPoints is the inclusive score ceiling for the category.
	MaxPoints int `yaml:"max_points" json:"max_points" validate:"required,min=1"`
}

// Rubric is an ordered list of scoring categories. Order matters: the
// first category with the maximal point ceiling breaks ranking ties.
type Rubric []RubricCategory

// DefaultRubric returns the standard contest rubric.
func DefaultRubric() Rubric {
	return Rubric{
		{Name: "effectiveness", MaxPoints: 25},
		{Name: "creativity", MaxPoints: 25},
		{Name: "scholarship", MaxPoints: 25},
		{Name: "effort", MaxPoints: 10},
	}
}

// Validate checks the rubric for configuration errors: it must be
// non-empty with unique category names and positive point ceilings.
func (r Rubric) Validate() error {
	if len(r) == 0 {
		return fmt.Errorf("%w: rubric has no categories", ErrInvalidConfiguration)
	}

	seen := make(map[string]struct{}, len(r))
	for _, cat := range r {
		if cat.Name == "" {
			return fmt.Errorf("%w: rubric category with empty name", ErrInvalidConfiguration)
		}
		if cat.MaxPoints <= 0 {
			return fmt.Errorf("%w: category %q has non-positive max points %d",
				ErrInvalidConfiguration, cat.Name, cat.MaxPoints)
		}
		if _, dup := seen[cat.Name]; dup {
			return fmt.Errorf("%w: duplicate rubric category %q", ErrInvalidConfiguration, cat.Name)
		}
		seen[cat.Name] = struct{}{}
	}
	return nil
}

// MaxTotal returns the highest total a single judge can award.
func (r Rubric) MaxTotal() int {
	total := 0
	for _, cat := range r {
		total += cat.MaxPoints
	}
	return total
}

// Category looks up a category by name.
func (r Rubric) Category(name string) (RubricCategory, bool) {
	for _, cat := range r {
		if cat.Name == name {
			return cat, true
		}
	}
	return RubricCategory{}, false
}

// HighestWeighted returns the tie-break category: the first category in
// rubric order carrying the maximal point ceiling.
func (r Rubric) HighestWeighted() RubricCategory {
	var best RubricCategory
	for _, cat := range r {
		if cat.MaxPoints > best.MaxPoints {
			best = cat
		}
	}
	return best
}
