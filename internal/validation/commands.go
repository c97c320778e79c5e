package validation

import (
	"strings"

	"github.com/automagictv/remy/internal/errors"
)

// TagSet is the allow-list of tags accepted by /random.
type TagSet map[string]struct{}

// NewTagSet builds a TagSet from tags, lowercased and trimmed. The empty
// no-op tag is always allowed.
func NewTagSet(tags []string) TagSet {
	set := TagSet{"": {}}
	for _, tag := range tags {
		set[normalize(tag)] = struct{}{}
	}
	return set
}

// Contains reports whether tag is allowed.
func (s TagSet) Contains(tag string) bool {
	_, ok := s[normalize(tag)]
	return ok
}

// Spoonacular's documented tag vocabulary.
var (
	diets = []string{
		"gluten free", "ketogenic", "vegetarian", "lacto-vegetarian", "ovo-vegetarian",
		"vegan", "pescetarian", "paleo", "primal", "low fodmap", "whole30",
	}

	intolerances = []string{
		"dairy", "egg", "gluten", "grain", "peanut", "seafood", "sesame",
		"shellfish", "soy", "sulfite", "tree nut", "wheat",
	}

	cuisines = []string{
		"african", "asian", "american", "british", "cajun", "caribbean", "chinese",
		"eastern european", "european", "french", "german", "greek", "indian", "irish",
		"italian", "japanese", "jewish", "korean", "latin american", "mediterranean",
		"mexican", "middle eastern", "nordic", "southern", "spanish", "thai", "vietnamese",
	}

	mealTypes = []string{
		"main course", "side dish", "dessert", "appetizer", "salad", "bread", "breakfast",
		"soup", "beverage", "sauce", "marinade", "fingerfood", "snack", "drink",
	}
)

// DefaultTags returns the diet, intolerance, cuisine and meal type vocabulary.
func DefaultTags() []string {
	tags := make([]string, 0, len(diets)+len(intolerances)+len(cuisines)+len(mealTypes))
	tags = append(tags, diets...)
	tags = append(tags, intolerances...)
	tags = append(tags, cuisines...)
	tags = append(tags, mealTypes...)
	return tags
}

// ParseIngredients turns "/recipe" arguments into the comma separated list
// the provider expects.
func ParseIngredients(args string) (string, error) {
	parts := splitList(args)
	if len(parts) == 0 {
		return "", errors.NewMissingIngredientError()
	}
	return strings.Join(parts, ","), nil
}

// ParseTags validates "/random" arguments against allowed and returns the
// non-empty tags in input order. Validation happens before any provider call.
func ParseTags(args string, allowed TagSet) ([]string, error) {
	tags := make([]string, 0)
	for _, raw := range strings.Split(args, ",") {
		tag := normalize(raw)
		if !allowed.Contains(tag) {
			return nil, errors.NewInvalidTagError(tag)
		}
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

func splitList(args string) []string {
	var parts []string
	for _, raw := range strings.Split(args, ",") {
		if item := normalize(raw); item != "" {
			parts = append(parts, item)
		}
	}
	return parts
}

// normalize lowercases, trims, and collapses inner whitespace so that
// "Main   Course" matches "main course".
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
