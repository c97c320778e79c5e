package recipe

import "context"

// ID is the opaque recipe identifier issued by the provider.
type ID int64

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	OriginalString string `json:"originalString"`
	// Original is the field newer API versions populate instead of OriginalString.
	Original string `json:"original"`
}

// Text returns the ingredient line as the provider wrote it.
func (i Ingredient) Text() string {
	if i.OriginalString != "" {
		return i.OriginalString
	}
	return i.Original
}

// Recipe is the subset of the provider's recipe record the bot renders.
type Recipe struct {
	ID                  ID           `json:"id"`
	Title               string       `json:"title"`
	SourceURL           string       `json:"sourceUrl"`
	ReadyInMinutes      int          `json:"readyInMinutes"`
	ExtendedIngredients []Ingredient `json:"extendedIngredients"`
	Instructions        string       `json:"instructions"`
}

// Provider is the recipe data source used by the bot's command handlers.
type Provider interface {
	// SearchIDsByIngredients returns at most limit recipe ids, in provider order,
	// for a comma separated ingredient list.
	SearchIDsByIngredients(ctx context.Context, ingredients string, limit int) ([]ID, error)
	// RandomRecipe returns one random recipe matching all tags. No tags means no filter.
	RandomRecipe(ctx context.Context, tags []string) (*Recipe, error)
	// RandomAlcoholicBeverageID returns the id of one random alcoholic drink.
	RandomAlcoholicBeverageID(ctx context.Context) (ID, error)
	// RecipesByIDs fetches full records for ids in a single call.
	RecipesByIDs(ctx context.Context, ids []ID) ([]Recipe, error)
}
