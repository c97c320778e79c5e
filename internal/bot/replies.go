package bot

import (
	"github.com/automagictv/remy/internal/errors"
)

const (
	startText = "We're up! You can use the following commands to talk to me:\n" +
		"/recipe [ingredients,to,search]\n" +
		"/random\n" +
		"/happyhour\n" +
		"/taco\nMake something delicious!"

	helpText = "Commands:\n" +
		"\t/recipe [ingredients,to,search] -> separted by commas, no brackets\n" +
		"\t/random [optional:tags] -> returns a random recipe\n" +
		"\t/happyhour -> returns a random cocktail recipe\n" +
		"\t/taco -> returns a random taco recipe"

	tacoText = "[Taco\\!](https://taco-randomizer.herokuapp.com)"

	unknownText = "I'm sorry, I don't understand. Please use /help to see commands."

	quotaText             = "We've hit our recipe quota for today! Come back tomorrow."
	missingIngredientText = "I need ingredients to search!"
	noRecipesText         = "Yikes! I couldn't find anything for those ingredients. " +
		"Sorry about that. Please try some different ones."
	invalidTagText = "Only the following are allowed as tags: " +
		"[Diets](https://spoonacular.com/food-api/docs#Diets), " +
		"[Intolerances](https://spoonacular.com/food-api/docs#Intolerances), " +
		"[Cuisines](https://spoonacular.com/food-api/docs#Cuisines), " +
		"and [Meal Types](https://spoonacular.com/food-api/docs#Meal-Types)\\." +
		" Please try your search again with a valid tag\\."
	genericErrorText = "Something went wrong with that last one! Try again or use /help"
)

// ReplyForError maps a command failure to the single message shown to the user.
// The second result is false for failures that are not classified.
func ReplyForError(err error) (Reply, bool) {
	switch errors.TypeOf(err) {
	case errors.ErrorTypeQuotaExceeded:
		return Reply{Text: quotaText}, true
	case errors.ErrorTypeMissingIngredient:
		return Reply{Text: missingIngredientText}, true
	case errors.ErrorTypeNoRecipesFound:
		return Reply{Text: noRecipesText}, true
	case errors.ErrorTypeInvalidTag:
		return Reply{Text: invalidTagText, ParseMode: ParseModeMarkdownV2}, true
	default:
		return Reply{Text: genericErrorText}, false
	}
}
