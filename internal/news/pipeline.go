package news

import (
	"context"
	"log"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/poltracker/poltracker/internal/cache"
)

// Coverage selects which sources a query may draw from.
type Coverage string

const (
	// CoverageMajor restricts results to the major-outlet allow-list.
	CoverageMajor Coverage = "major"
	// CoverageAll accepts any source NewsAPI returns.
	CoverageAll Coverage = "all"
)

// ParseCoverage maps a request parameter to a Coverage, defaulting to major.
func ParseCoverage(s string) Coverage {
	if s == string(CoverageAll) {
		return CoverageAll
	}
	return CoverageMajor
}

// SortMode selects the ordering applied to results.
type SortMode string

const (
	SortCredibility SortMode = "credibility"
	SortDate        SortMode = "date"
	SortNone        SortMode = "none"
)

// ParseSort maps a request parameter to a SortMode, defaulting to credibility.
func ParseSort(s string) SortMode {
	switch s {
	case string(SortDate):
		return SortDate
	case string(SortNone):
		return SortNone
	default:
		return SortCredibility
	}
}

// Reason explains why a Result carries the articles it does.
type Reason string

const (
	ReasonOK           Reason = "ok"
	ReasonNoCredential Reason = "no_credential"
	ReasonNoSubject    Reason = "no_subject"
	ReasonUpstream     Reason = "upstream_error"
)

// Metadata carries the scoring attached to each article.
type Metadata struct {
	SourceID  string  `json:"sourceId"`
	Weight    float64 `json:"weight"`
	IsPrimary bool    `json:"isPrimary"`
}

// Article is a scored, deduplicated news article.
type Article struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Source      string   `json:"source"`
	PublishedAt string   `json:"publishedAt"`
	Metadata    Metadata `json:"_metadata"`
}

// Result is the outcome of a news query. Articles is never nil; Reason
// is ReasonOK when the articles came from upstream or cache, otherwise
// it names why the list is empty.
type Result struct {
	Articles []Article
	Reason   Reason
}

const (
	newsCacheTTL = 10 * time.Minute

	legislatorPageSize = 20
	legislatorLimit    = 10
	statePageSize      = 30
	stateLimit         = 20
)

// Query describes one news lookup.
type Query struct {
	// SubjectID keys the cache, combined with coverage.
	SubjectID string
	// Terms are quoted and OR-joined into the search query.
	Terms []string
	// Prefix, when set, is prepended before the quoted terms.
	Prefix   string
	Coverage Coverage
	Sort     SortMode
	PageSize int
	Limit    int
}

// LegislatorQuery builds the query for news about a single legislator.
func LegislatorQuery(bioguideID, fullName string, coverage Coverage, sortMode SortMode) Query {
	return Query{
		SubjectID: bioguideID,
		Terms:     []string{fullName},
		Coverage:  coverage,
		Sort:      sortMode,
		PageSize:  legislatorPageSize,
		Limit:     legislatorLimit,
	}
}

// StateQuery builds the query for political news about a state. At most
// the first five member names are included to keep the query bounded.
func StateQuery(stateCode, stateName string, memberNames []string) Query {
	names := memberNames
	if len(names) > 5 {
		names = names[:5]
	}
	return Query{
		SubjectID: "state:" + stateCode,
		Terms:     names,
		Prefix:    stateName + " politics",
		Coverage:  CoverageMajor,
		Sort:      SortNone,
		PageSize:  statePageSize,
		Limit:     stateLimit,
	}
}

// Pipeline fetches, filters, scores, and caches news articles.
type Pipeline struct {
	client *Client
	cache  *cache.Store[[]Article]
}

// NewPipeline creates a pipeline with a 10-minute result cache.
func NewPipeline(client *Client) *Pipeline {
	return &Pipeline{
		client: client,
		cache:  cache.New[[]Article](newsCacheTTL),
	}
}

// NewPipelineWithClock is NewPipeline with an injected clock for the cache.
func NewPipelineWithClock(client *Client, now func() time.Time) *Pipeline {
	return &Pipeline{
		client: client,
		cache:  cache.NewWithClock[[]Article](newsCacheTTL, now),
	}
}

// Fetch runs the query. Cached results skip the upstream call but still
// get the requested sort applied, so the same cache entry can serve
// requests asking for different orderings.
func (p *Pipeline) Fetch(ctx context.Context, q Query) Result {
	cacheKey := q.SubjectID + ":" + string(q.Coverage)
	if cached, ok := p.cache.Get(cacheKey); ok {
		articles := make([]Article, len(cached))
		copy(articles, cached)
		sortArticles(articles, q.Sort)
		return Result{Articles: articles, Reason: ReasonOK}
	}

	if !p.client.HasKey() {
		log.Printf("news lookup for %s skipped: no NewsAPI key configured", q.SubjectID)
		return Result{Articles: []Article{}, Reason: ReasonNoCredential}
	}
	if len(q.Terms) == 0 {
		return Result{Articles: []Article{}, Reason: ReasonNoSubject}
	}

	var sources []string
	if q.Coverage == CoverageMajor {
		sources = MajorSources
	}

	raw, err := p.client.Everything(ctx, buildQuery(q), q.PageSize, sources)
	if err != nil {
		log.Printf("news lookup for %s failed: %v", q.SubjectID, err)
		return Result{Articles: []Article{}, Reason: ReasonUpstream}
	}

	articles := processArticles(raw, q.Coverage)
	sortArticles(articles, q.Sort)
	if len(articles) > q.Limit {
		articles = articles[:q.Limit]
	}
	p.cache.Set(cacheKey, articles)
	return Result{Articles: articles, Reason: ReasonOK}
}

func buildQuery(q Query) string {
	quoted := make([]string, len(q.Terms))
	for i, t := range q.Terms {
		quoted[i] = `"` + t + `"`
	}
	joined := strings.Join(quoted, " OR ")
	if q.Prefix != "" {
		return q.Prefix + " " + joined
	}
	return joined
}

// processArticles filters junk, scores sources, and deduplicates by
// normalized title. For major coverage the list is pre-sorted by
// credibility before deduplication so that when the same story comes
// from several outlets the most credible copy survives; for all
// coverage the first copy in upstream order survives.
func processArticles(raw []rawArticle, coverage Coverage) []Article {
	articles := make([]Article, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Title) == "" || filteredURL(r.URL) {
			continue
		}
		sourceID := r.Source.SourceID()
		if coverage == CoverageMajor && !IsMajorSource(sourceID) {
			continue
		}
		articles = append(articles, Article{
			Title:       r.Title,
			Description: r.Description,
			URL:         r.URL,
			Source:      r.Source.DisplayName(),
			PublishedAt: r.PublishedAt,
			Metadata: Metadata{
				SourceID:  sourceID,
				Weight:    SourceWeight(sourceID),
				IsPrimary: IsPrimarySource(sourceID),
			},
		})
	}

	if coverage == CoverageMajor {
		sortArticles(articles, SortCredibility)
	}

	seen := make(map[string]bool, len(articles))
	deduped := articles[:0]
	for _, a := range articles {
		key := normalizeTitle(a.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, a)
	}
	return deduped
}

// filteredURL drops opinion and blog pieces. Articles with no URL are
// dropped too.
func filteredURL(rawURL string) bool {
	if rawURL == "" {
		return true
	}
	lower := strings.ToLower(rawURL)
	return strings.Contains(lower, "opinion") || strings.Contains(lower, "/blog")
}

var titlePunctRe = regexp.MustCompile(`[^\w\s]`)

// normalizeTitle reduces a headline to a dedup key: lowercase, strip
// punctuation, collapse whitespace.
func normalizeTitle(title string) string {
	t := strings.ToLower(title)
	t = titlePunctRe.ReplaceAllString(t, "")
	t = whitespaceRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

func sortArticles(articles []Article, mode SortMode) {
	switch mode {
	case SortCredibility:
		sort.SliceStable(articles, func(i, j int) bool {
			if articles[i].Metadata.Weight != articles[j].Metadata.Weight {
				return articles[i].Metadata.Weight > articles[j].Metadata.Weight
			}
			return publishedUnix(articles[i]) > publishedUnix(articles[j])
		})
	case SortDate:
		sort.SliceStable(articles, func(i, j int) bool {
			return publishedUnix(articles[i]) > publishedUnix(articles[j])
		})
	}
}

// publishedUnix parses the RFC 3339 timestamp, treating missing or
// malformed values as the epoch so they sort last.
func publishedUnix(a Article) int64 {
	t, err := time.Parse(time.RFC3339, a.PublishedAt)
	if err != nil {
		return 0
	}
	return t.Unix()
}
