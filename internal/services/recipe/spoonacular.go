package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/automagictv/remy/internal/errors"
	"github.com/automagictv/remy/internal/httpclient"
	"github.com/automagictv/remy/internal/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// DefaultLimit is the number of recipes an ingredient search returns.
	DefaultLimit = 3

	defaultBaseURL = "https://api.spoonacular.com"

	endpointFindByIngredients = "/recipes/findByIngredients"
	endpointRandom            = "/recipes/random"
	endpointComplexSearch     = "/recipes/complexSearch"
	endpointInformationBulk   = "/recipes/informationBulk"

	minBeverageAlcohol = 7
)

// SpoonacularClient implements Provider against the Spoonacular food API.
// It holds no per-call state and is safe for concurrent use.
type SpoonacularClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a SpoonacularClient.
type Option func(*SpoonacularClient)

// WithBaseURL overrides the API root, e.g. for a proxy or a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *SpoonacularClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithHTTPClient overrides the instrumented default client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *SpoonacularClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewSpoonacularClient creates a new Spoonacular client
func NewSpoonacularClient(apiKey string, opts ...Option) *SpoonacularClient {
	c := &SpoonacularClient{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: httpclient.InstrumentedClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	slog.Info("Spoonacular client created", "base_url", c.baseURL)
	return c
}

// SearchIDsByIngredients calls findByIngredients and keeps the first limit ids.
// A negative limit falls back to DefaultLimit.
func (c *SpoonacularClient) SearchIDsByIngredients(ctx context.Context, ingredients string, limit int) ([]ID, error) {
	if limit < 0 {
		limit = DefaultLimit
	}

	slog.InfoContext(ctx, "Calling Spoonacular to search by ingredients", "ingredients", ingredients)

	p, err := c.get(ctx, endpointFindByIngredients, url.Values{"ingredients": {ingredients}})
	if err != nil {
		return nil, err
	}

	items, err := p.items()
	if err != nil {
		return nil, errors.NewProviderError("unexpected ingredient search response", "UNEXPECTED_RESPONSE_SHAPE", err)
	}

	slog.InfoContext(ctx, "Retrieved recipes", "count", len(items), "limit", limit)

	if len(items) > limit {
		items = items[:limit]
	}

	ids := make([]ID, 0, len(items))
	for i, raw := range items {
		var result struct {
			ID *ID `json:"id"`
		}
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, errors.NewProviderError("failed to parse ingredient search result", "PARSE_RESPONSE_ERROR", err)
		}
		if result.ID == nil {
			return nil, errors.NewProviderError(fmt.Sprintf("ingredient search result %d has no id", i), "PARSE_RESPONSE_ERROR", nil)
		}
		ids = append(ids, *result.ID)
	}

	return ids, nil
}

// RandomRecipe returns the first recipe of a random search filtered by tags.
func (c *SpoonacularClient) RandomRecipe(ctx context.Context, tags []string) (*Recipe, error) {
	slog.InfoContext(ctx, "Calling Spoonacular to get a random recipe", "tags", tags)

	params := url.Values{"number": {"1"}}
	if len(tags) > 0 {
		params.Set("tags", strings.Join(tags, ","))
	}

	p, err := c.get(ctx, endpointRandom, params)
	if err != nil {
		return nil, err
	}

	raw, err := p.field("recipes")
	if err != nil {
		return nil, errors.NewProviderError("unexpected random recipe response", "UNEXPECTED_RESPONSE_SHAPE", err)
	}

	var recipes []Recipe
	if err := json.Unmarshal(raw, &recipes); err != nil {
		return nil, errors.NewProviderError("failed to parse random recipes", "PARSE_RESPONSE_ERROR", err)
	}
	if len(recipes) == 0 {
		return nil, errors.NewProviderError("random recipe response has no recipes", "EMPTY_RESPONSE", nil)
	}

	return &recipes[0], nil
}

// RandomAlcoholicBeverageID runs a complex search for one random drink with
// at least minBeverageAlcohol grams of alcohol.
func (c *SpoonacularClient) RandomAlcoholicBeverageID(ctx context.Context) (ID, error) {
	slog.InfoContext(ctx, "Calling Spoonacular to get a random cocktail")

	params := url.Values{
		"query":      {""},
		"type":       {"drink"},
		"minAlcohol": {strconv.Itoa(minBeverageAlcohol)},
		"sort":       {"random"},
		"number":     {"1"},
	}

	p, err := c.get(ctx, endpointComplexSearch, params)
	if err != nil {
		return 0, err
	}

	raw, err := p.field("results")
	if err != nil {
		return 0, errors.NewProviderError("unexpected complex search response", "UNEXPECTED_RESPONSE_SHAPE", err)
	}

	var results []struct {
		ID ID `json:"id"`
	}
	if err := json.Unmarshal(raw, &results); err != nil {
		return 0, errors.NewProviderError("failed to parse complex search results", "PARSE_RESPONSE_ERROR", err)
	}
	if len(results) == 0 {
		return 0, errors.NewProviderError("complex search returned no beverages", "EMPTY_RESPONSE", nil)
	}

	return results[0].ID, nil
}

// RecipesByIDs fetches all ids in one bulk call. Records come back in the
// order the provider returns them.
func (c *SpoonacularClient) RecipesByIDs(ctx context.Context, ids []ID) ([]Recipe, error) {
	if len(ids) == 0 {
		return nil, errors.NewValidationError("at least one recipe id is required", "EMPTY_RECIPE_IDS", "Pass one or more recipe ids.")
	}

	slog.InfoContext(ctx, "Getting recipes for ids", "ids", ids)

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}

	p, err := c.get(ctx, endpointInformationBulk, url.Values{"ids": {strings.Join(parts, ",")}})
	if err != nil {
		return nil, err
	}

	items, err := p.items()
	if err != nil {
		return nil, errors.NewProviderError("unexpected bulk recipe response", "UNEXPECTED_RESPONSE_SHAPE", err)
	}

	recipes := make([]Recipe, 0, len(items))
	for _, raw := range items {
		var r Recipe
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, errors.NewProviderError("failed to parse recipe", "PARSE_RESPONSE_ERROR", err)
		}
		recipes = append(recipes, r)
	}

	slog.InfoContext(ctx, "Retrieved recipe data", "count", len(recipes))
	return recipes, nil
}

// get performs one GET and returns the decoded payload. Quota exhaustion is
// checked before the HTTP status and before any field is read.
func (c *SpoonacularClient) get(ctx context.Context, endpoint string, params url.Values) (payload, error) {
	startTime := time.Now()
	attrs := []attribute.KeyValue{
		attribute.String("provider", "spoonacular"),
		attribute.String("endpoint", endpoint),
	}
	defer func() {
		duration := time.Since(startTime).Seconds()
		metrics.ExternalAPIDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
		metrics.ExternalAPICallsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	}()

	reqURL := c.baseURL + endpoint
	if encoded := params.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(httpclient.WithProvider(ctx, "Spoonacular"), http.MethodGet, reqURL, nil)
	if err != nil {
		return payload{}, fmt.Errorf("failed to create Spoonacular request: %w", err)
	}
	// Header auth keeps the key out of *url.Error messages and logs.
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return payload{}, fmt.Errorf("spoonacular %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return payload{}, fmt.Errorf("failed to read Spoonacular response: %w", err)
	}

	p, decodeErr := decodePayload(body)
	if decodeErr == nil && p.quotaExceeded() {
		metrics.QuotaExhaustedTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
		slog.WarnContext(ctx, "Spoonacular daily quota exhausted", "endpoint", endpoint, "message", p.message())
		msg := "spoonacular daily quota exhausted"
		if detail := p.message(); detail != "" {
			msg += ": " + detail
		}
		return payload{}, errors.NewQuotaError(msg)
	}

	if resp.StatusCode >= 400 {
		return payload{}, errors.NewProviderError(
			fmt.Sprintf("Spoonacular API error (status %d): %s", resp.StatusCode, string(body)),
			"SPOONACULAR_HTTP_ERROR",
			nil,
		)
	}

	if decodeErr != nil {
		return payload{}, errors.NewProviderError("failed to parse Spoonacular response", "PARSE_RESPONSE_ERROR", decodeErr)
	}

	return p, nil
}
