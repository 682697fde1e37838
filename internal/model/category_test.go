package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategories(t *testing.T) {
	cats := Categories()
	assert.Len(t, cats, 13)
	assert.Equal(t, CategoryGroceries, cats[0])
	assert.Equal(t, CategoryOther, cats[len(cats)-1])

	// Returned slice is a copy.
	cats[0] = "Mutated"
	assert.Equal(t, CategoryGroceries, Categories()[0])
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Category
	}{
		{name: "exact match", input: "Eating Out", want: CategoryEatingOut},
		{name: "surrounding whitespace", input: "  Travel\n", want: CategoryTravel},
		{name: "wrong case", input: "eating out", want: CategoryOther},
		{name: "trailing punctuation", input: "Groceries.", want: CategoryOther},
		{name: "unknown label", input: "Food & Dining", want: CategoryOther},
		{name: "empty", input: "", want: CategoryOther},
		{name: "other itself", input: "Other", want: CategoryOther},
		{name: "prose", input: "The category is Health", want: CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCategory(tt.input)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestCategoryNames(t *testing.T) {
	names := CategoryNames()
	assert.Contains(t, names, "Personal Care")
	assert.Contains(t, names, "Subscriptions")
	assert.Len(t, names, len(Categories()))
}
