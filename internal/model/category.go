// Package model defines the domain types shared across the relay.
package model

import "strings"

// Category is a budget label drawn from a fixed, closed set.
type Category string

// The closed category set, in display order.
const (
	CategoryGroceries      Category = "Groceries"
	CategoryTransportation Category = "Transportation"
	CategoryEatingOut      Category = "Eating Out"
	CategoryBills          Category = "Bills"
	CategoryEntertainment  Category = "Entertainment"
	CategoryHealth         Category = "Health"
	CategoryPersonalCare   Category = "Personal Care"
	CategoryEducation      Category = "Education"
	CategoryClothing       Category = "Clothing"
	CategoryTravel         Category = "Travel"
	CategoryGifts          Category = "Gifts"
	CategorySubscriptions  Category = "Subscriptions"
	// CategoryOther is the fallback for any label outside the set.
	CategoryOther Category = "Other"
)

var categories = []Category{
	CategoryGroceries,
	CategoryTransportation,
	CategoryEatingOut,
	CategoryBills,
	CategoryEntertainment,
	CategoryHealth,
	CategoryPersonalCare,
	CategoryEducation,
	CategoryClothing,
	CategoryTravel,
	CategoryGifts,
	CategorySubscriptions,
	CategoryOther,
}

// Categories returns a copy of the closed category set in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryNames returns the category labels as plain strings.
func CategoryNames() []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return names
}

// ParseCategory maps a label to its category. The match is exact after
// trimming surrounding whitespace; anything else becomes CategoryOther.
func ParseCategory(label string) Category {
	c := Category(strings.TrimSpace(label))
	if c.Valid() {
		return c
	}
	return CategoryOther
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}
