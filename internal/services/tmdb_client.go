package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// TMDBClient is a thin client for the TMDB v3 API. Responses are returned
// as raw provider-shaped documents; the catalog layer decides how failures
// degrade.
type TMDBClient struct {
	APIKey  string
	BaseURL string
	client  *http.Client
}

// TMDBPage is the common paged-results envelope.
type TMDBPage struct {
	Page         int               `json:"page"`
	Results      []json.RawMessage `json:"results"`
	TotalPages   int               `json:"total_pages"`
	TotalResults int               `json:"total_results"`
}

func NewTMDBClient(apiKey, baseURL string) *TMDBClient {
	if baseURL == "" {
		baseURL = "https://api.themoviedb.org/3"
	}
	return &TMDBClient{
		APIKey:  apiKey,
		BaseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *TMDBClient) makeRequest(ctx context.Context, endpoint string, params map[string]string) (*http.Response, error) {
	u, err := url.Parse(c.BaseURL + endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	query := u.Query()
	query.Set("api_key", c.APIKey)
	for key, value := range params {
		query.Set(key, value)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	return resp, nil
}

func (c *TMDBClient) getDocument(ctx context.Context, endpoint string, params map[string]string) (json.RawMessage, error) {
	resp, err := c.makeRequest(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var doc json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return doc, nil
}

func (c *TMDBClient) getPage(ctx context.Context, endpoint string, params map[string]string) (*TMDBPage, error) {
	resp, err := c.makeRequest(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var page TMDBPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &page, nil
}

// GetMovie fetches movie details with credits and release dates appended.
func (c *TMDBClient) GetMovie(ctx context.Context, movieID string) (json.RawMessage, error) {
	return c.getDocument(ctx, "/movie/"+url.PathEscape(movieID), map[string]string{
		"append_to_response": "credits,release_dates",
	})
}

func (c *TMDBClient) SearchMovies(ctx context.Context, query string, page int) (*TMDBPage, error) {
	if page <= 0 {
		page = 1
	}
	return c.getPage(ctx, "/search/movie", map[string]string{
		"query": query,
		"page":  strconv.Itoa(page),
	})
}

func (c *TMDBClient) SearchPeople(ctx context.Context, query string, page int) (*TMDBPage, error) {
	if page <= 0 {
		page = 1
	}
	return c.getPage(ctx, "/search/person", map[string]string{
		"query": query,
		"page":  strconv.Itoa(page),
	})
}

// GetTrending fetches this week's trending movies.
func (c *TMDBClient) GetTrending(ctx context.Context) (*TMDBPage, error) {
	return c.getPage(ctx, "/trending/movie/week", nil)
}

func (c *TMDBClient) GetTopRated(ctx context.Context) (*TMDBPage, error) {
	return c.getPage(ctx, "/movie/top_rated", nil)
}

func (c *TMDBClient) GetPerson(ctx context.Context, personID string) (json.RawMessage, error) {
	return c.getDocument(ctx, "/person/"+url.PathEscape(personID), nil)
}

func (c *TMDBClient) GetPersonCredits(ctx context.Context, personID string) (json.RawMessage, error) {
	return c.getDocument(ctx, "/person/"+url.PathEscape(personID)+"/movie_credits", nil)
}
