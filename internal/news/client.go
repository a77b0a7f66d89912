package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultBaseURL = "https://newsapi.org/v2/everything"
	requestTimeout = 6 * time.Second

	// searchQuery matches the upstream feed the dashboard expects:
	// vehicle accident coverage, newest first.
	searchQuery = "accident"
)

// Client fetches headlines from newsapi.org.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a newsapi.org client. An empty apiKey is allowed; the
// service layer treats it as a disabled feed.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type apiResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// Fetch returns up to limit articles, newest first.
func (c *Client) Fetch(ctx context.Context, limit int) ([]Article, error) {
	q := url.Values{}
	q.Set("q", searchQuery)
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", strconv.Itoa(limit))
	q.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build news request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	defer resp.Body.Close()

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode news response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		return nil, fmt.Errorf("news upstream status %d: %s", resp.StatusCode, body.Message)
	}

	articles := make([]Article, 0, len(body.Articles))
	for _, a := range body.Articles {
		articles = append(articles, Article{
			Source:      a.Source.Name,
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}
	return articles, nil
}
