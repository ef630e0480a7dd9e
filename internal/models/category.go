package models

import "strings"

// Category is one of the four closed expense categories.
type Category string

const (
	CategoryFood    Category = "food"
	CategoryTravel  Category = "travel"
	CategoryFriends Category = "friends"
	CategoryOthers  Category = "others"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryFood, CategoryTravel, CategoryFriends, CategoryOthers}

// ParseCategory lower-cases and trims s. Anything outside the closed set,
// including the empty string, resolves to CategoryOthers.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c
	}
	return CategoryOthers
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryTravel, CategoryFriends, CategoryOthers:
		return true
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// CategoryResult is what categorization produces for a description.
type CategoryResult struct {
	Category    Category `json:"category"`
	Subcategory string   `json:"subcategory"`
	// Source names the strategy that produced the result ("AI", "Keyword").
	Source string `json:"-"`
}
