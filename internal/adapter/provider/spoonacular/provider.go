// Package spoonacular fetches per-100g nutrition from the Spoonacular
// ingredients API.
package spoonacular

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

	"github.com/heartmarshall/macrotrack-backend/internal/config"
	"github.com/heartmarshall/macrotrack-backend/internal/domain"
	"github.com/heartmarshall/macrotrack-backend/internal/provider"
)

const maxBodyBytes = 1 << 20

// Provider is a Spoonacular client. Every call is a single attempt.
type Provider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider from configuration.
func NewProvider(cfg config.ProviderConfig, logger *slog.Logger) *Provider {
	return NewProviderWithURL(cfg.BaseURL, cfg, logger)
}

// NewProviderWithURL creates a Provider with a custom base URL (for testing).
func NewProviderWithURL(baseURL string, cfg config.ProviderConfig, logger *slog.Logger) *Provider {
	return &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.With("adapter", "spoonacular"),
	}
}

// Search returns up to limit ingredient candidates for query.
// Transport failures and non-2xx statuses wrap provider.ErrUnavailable.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]provider.FoodCandidate, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("number", strconv.Itoa(limit))
	params.Set("apiKey", p.apiKey)

	body, status, err := p.get(ctx, "/food/ingredients/search", params)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		p.log.WarnContext(ctx, "spoonacular search rejected",
			slog.String("query", query), slog.Int("status", status))
		return nil, fmt.Errorf("spoonacular: search status %d: %w", status, provider.ErrUnavailable)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("spoonacular: decode search: %w", provider.ErrUnavailable)
	}

	out := make([]provider.FoodCandidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, provider.FoodCandidate{ID: r.ID, Name: r.Name})
	}

	p.log.DebugContext(ctx, "spoonacular search",
		slog.String("query", query), slog.Int("candidates", len(out)))

	return out, nil
}

// FetchNutrition returns the nutrition of 100 grams of ingredient id.
// Returns nil, nil when the provider answers with a non-2xx status; a
// transport failure wraps provider.ErrUnavailable.
func (p *Provider) FetchNutrition(ctx context.Context, id int64) (*provider.NutritionResult, error) {
	params := url.Values{}
	params.Set("amount", "100")
	params.Set("unit", "grams")
	params.Set("apiKey", p.apiKey)

	path := "/food/ingredients/" + strconv.FormatInt(id, 10) + "/information"
	body, status, err := p.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		p.log.WarnContext(ctx, "spoonacular detail skipped",
			slog.Int64("external_id", id), slog.Int("status", status))
		return nil, nil
	}

	var resp informationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		p.log.WarnContext(ctx, "spoonacular detail undecodable",
			slog.Int64("external_id", id), slog.String("error", err.Error()))
		return nil, nil
	}

	if resp.ID == 0 {
		resp.ID = id
	}

	return &provider.NutritionResult{
		ID:      resp.ID,
		Name:    resp.Name,
		Per100g: extractMacros(resp.Nutrition.Nutrients),
		Raw:     body,
	}, nil
}

func (p *Provider) get(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	reqURL := p.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("spoonacular: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.WarnContext(ctx, "spoonacular request failed",
			slog.String("path", path), slog.String("error", redact(err.Error(), p.apiKey)))
		return nil, 0, fmt.Errorf("spoonacular: %s: %w", path, provider.ErrUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("spoonacular: read body: %w", provider.ErrUnavailable)
	}

	return body, resp.StatusCode, nil
}

// extractMacros picks Calories, Protein, Carbohydrates and Fat by name.
// Missing nutrients stay zero.
func extractMacros(nutrients []apiNutrient) domain.Macros {
	var m domain.Macros
	for _, n := range nutrients {
		switch n.Name {
		case "Calories":
			m.Calories = n.Amount
		case "Protein":
			m.Protein = n.Amount
		case "Carbohydrates":
			m.Carbs = n.Amount
		case "Fat":
			m.Fats = n.Amount
		}
	}
	return m
}

// redact keeps the API key out of logged URLs.
func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "***")
}
