package recipe

import (
	"github.com/automagictv/remy/internal/config"
)

// NewProvider creates the recipe provider described by the configuration.
func NewProvider(cfg *config.Config) Provider {
	return NewSpoonacularClient(cfg.SpoonacularKey, WithBaseURL(cfg.SpoonacularBaseURL))
}
