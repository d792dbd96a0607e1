package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://newsapi.org/v2"

// rawSource tolerates both shapes NewsAPI hands back for an article
// source: a plain string, or an object with id and name.
type rawSource struct {
	ID   string
	Name string
	bare string
}

func (s *rawSource) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.bare = str
		return nil
	}
	var obj struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("parsing article source: %w", err)
	}
	s.ID = obj.ID
	s.Name = obj.Name
	return nil
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// SourceID resolves the canonical id used for weighting and the
// allow-list check. Bare strings are lowercased; for objects the id
// wins, falling back to the name with whitespace runs replaced by
// hyphens. Unresolvable sources get an empty id and the default weight.
func (s rawSource) SourceID() string {
	if s.bare != "" {
		return strings.ToLower(s.bare)
	}
	if s.ID != "" {
		return strings.ToLower(s.ID)
	}
	if s.Name != "" {
		return whitespaceRe.ReplaceAllString(strings.ToLower(s.Name), "-")
	}
	return ""
}

// DisplayName returns the human-readable source label.
func (s rawSource) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.bare
}

type rawArticle struct {
	Source      rawSource `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt string    `json:"publishedAt"`
}

type everythingResponse struct {
	Status   string       `json:"status"`
	Articles []rawArticle `json:"articles"`
}

// Client is a thin NewsAPI /v2/everything client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a NewsAPI client. An empty key is allowed; callers
// check HasKey before issuing requests.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// NewClientWithBaseURL creates a client against a custom API endpoint.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

// HasKey reports whether the client holds an API key.
func (c *Client) HasKey() bool {
	return c.apiKey != ""
}

// Everything runs a /v2/everything search. When sources is non-empty the
// query is restricted to those source ids.
func (c *Client) Everything(ctx context.Context, query string, pageSize int, sources []string) ([]rawArticle, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("apiKey", c.apiKey)
	if len(sources) > 0 {
		params.Set("sources", strings.Join(sources, ","))
	}

	reqURL := c.baseURL + "/everything?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating news request: %w", err)
	}
	req.Header.Set("User-Agent", "PolTracker/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching news: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading news response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("NewsAPI returned status %d: %s", resp.StatusCode, truncate(string(body), 500))
		return nil, fmt.Errorf("news API status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var parsed everythingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing news response: %w", err)
	}
	return parsed.Articles, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
