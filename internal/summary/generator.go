package summary

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/poltracker/poltracker/internal/cache"
	"github.com/poltracker/poltracker/internal/congress"
)

const (
	summaryCacheTTL = 60 * time.Minute

	// minSourceLength is the threshold below which the chosen source
	// text is replaced by a concatenation of all available fields.
	minSourceLength = 100

	systemInstruction = "You are a nonpartisan policy analyst. Summarize legislation clearly and factually. Avoid political persuasion or opinion."
)

// ErrInvalidBillID is returned for identifiers not in congress-type-number form.
var ErrInvalidBillID = errors.New("invalid bill ID format, expected congress-type-number (e.g. 118-hr-1234)")

// ErrInsufficientData is returned when the bill record yields no text
// to summarize.
var ErrInsufficientData = errors.New("not enough bill data to generate a summary")

// ErrBillUnavailable is returned when the bill record cannot be fetched
// and no cached summary exists to serve instead.
var ErrBillUnavailable = errors.New("unable to fetch bill data")

// BillInfo carries the display fields returned alongside a summary.
type BillInfo struct {
	Congress       string `json:"congress"`
	Type           string `json:"type"`
	Number         string `json:"number"`
	Title          string `json:"title"`
	IntroducedDate string `json:"introducedDate,omitempty"`
	LatestAction   string `json:"latestAction,omitempty"`
	URL            string `json:"url,omitempty"`
}

// Summary is the result of a summarize call.
type Summary struct {
	Text     string    `json:"summary"`
	Fallback bool      `json:"fallback"`
	BillInfo *BillInfo `json:"billInfo,omitempty"`
}

// cachedSummary is the cached portion of a Summary. BillInfo is looked
// up fresh on every request so display fields never go stale.
type cachedSummary struct {
	Text     string
	Fallback bool
}

type billFetcher interface {
	Bill(ctx context.Context, congress, billType, number string) (*congress.RawBill, error)
}

// Generator produces bill summaries, preferring the language model and
// degrading to extractive text assembled from structured fields.
type Generator struct {
	bills billFetcher
	llm   TextGenerator
	cache *cache.Store[cachedSummary]
}

func NewGenerator(bills billFetcher, llm TextGenerator) *Generator {
	return &Generator{
		bills: bills,
		llm:   llm,
		cache: cache.New[cachedSummary](summaryCacheTTL),
	}
}

// NewGeneratorWithClock is NewGenerator with an injected clock for the cache.
func NewGeneratorWithClock(bills billFetcher, llm TextGenerator, now func() time.Time) *Generator {
	return &Generator{
		bills: bills,
		llm:   llm,
		cache: cache.NewWithClock[cachedSummary](summaryCacheTTL, now),
	}
}

// ParseBillID splits an identifier like "118-hr-1234" into its parts.
func ParseBillID(billID string) (congressNum, billType, number string, err error) {
	parts := strings.Split(billID, "-")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", ErrInvalidBillID
	}
	return parts[0], strings.ToLower(parts[1]), parts[2], nil
}

// Summarize produces a summary for one bill. The summary text is cached
// for an hour per bill id; bill display info is refreshed on every call.
func (g *Generator) Summarize(ctx context.Context, congressNum, billType, number string) (*Summary, error) {
	key := congressNum + "-" + billType + "-" + number

	bill, err := g.bills.Bill(ctx, congressNum, billType, number)
	if err != nil {
		log.Printf("bill lookup for %s failed: %v", key, err)
		// A cached summary is still served with identifier-only info;
		// otherwise the upstream failure surfaces to the caller.
		if cached, ok := g.cache.Get(key); ok {
			info := buildBillInfo(congressNum, billType, number, nil)
			return &Summary{Text: cached.Text, Fallback: cached.Fallback, BillInfo: info}, nil
		}
		return nil, ErrBillUnavailable
	}
	info := buildBillInfo(congressNum, billType, number, bill)

	if cached, ok := g.cache.Get(key); ok {
		return &Summary{Text: cached.Text, Fallback: cached.Fallback, BillInfo: info}, nil
	}

	source := sourceText(bill)
	if source == "" {
		return nil, ErrInsufficientData
	}

	if g.llm.Available() {
		text, genErr := g.llm.Generate(ctx, systemInstruction, userInstruction(source))
		if genErr == nil {
			g.cache.Set(key, cachedSummary{Text: text})
			return &Summary{Text: text, BillInfo: info}, nil
		}
		if IsQuotaError(genErr) {
			log.Printf("summary generation for %s hit quota, using fallback: %v", key, genErr)
		} else {
			log.Printf("summary generation for %s failed, using fallback: %v", key, genErr)
		}
	}

	text := fallbackText(congressNum, bill, source)
	g.cache.Set(key, cachedSummary{Text: text, Fallback: true})
	return &Summary{Text: text, Fallback: true, BillInfo: info}, nil
}

func buildBillInfo(congressNum, billType, number string, bill *congress.RawBill) *BillInfo {
	info := &BillInfo{
		Congress: congressNum,
		Type:     billType,
		Number:   number,
	}
	if bill == nil {
		info.Title = "Untitled"
		return info
	}
	info.Title = bill.DisplayTitle()
	info.IntroducedDate = bill.IntroducedDate
	if bill.LatestAction != nil {
		info.LatestAction = bill.LatestAction.Text
	}
	info.URL = congress.PublicBillURL(bill)
	return info
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

func stripHTML(s string) string {
	return htmlTagRe.ReplaceAllString(s, "")
}

// sourceText assembles the best available text for one bill, by
// priority: official summary text, summary stage designation, latest
// action, title plus distinct short title. A result under 100
// characters is replaced by a concatenation of every available field
// when that yields more material.
func sourceText(bill *congress.RawBill) string {
	if bill == nil {
		return ""
	}

	var text string
	switch {
	case bill.Summary != nil && strings.TrimSpace(stripHTML(bill.Summary.Text)) != "":
		text = strings.TrimSpace(stripHTML(bill.Summary.Text))
	case bill.Summary != nil && strings.TrimSpace(bill.Summary.As) != "":
		text = strings.TrimSpace(bill.Summary.As)
	case bill.LatestAction != nil && bill.LatestAction.Text != "":
		text = bill.LatestAction.Text
	default:
		text = bill.Title
		if bill.ShortTitle != "" && bill.ShortTitle != bill.Title {
			if text != "" {
				text += ". "
			}
			text += bill.ShortTitle
		}
	}

	if len(text) < minSourceLength {
		if assembled := assembleFields(bill); len(assembled) > len(text) {
			text = assembled
		}
	}
	return strings.TrimSpace(text)
}

func assembleFields(bill *congress.RawBill) string {
	var parts []string
	if bill.Title != "" {
		parts = append(parts, "Title: "+bill.Title)
	}
	if bill.ShortTitle != "" && bill.ShortTitle != bill.Title {
		parts = append(parts, "Short title: "+bill.ShortTitle)
	}
	if bill.IntroducedDate != "" {
		parts = append(parts, "Introduced: "+bill.IntroducedDate)
	}
	if bill.LatestAction != nil && bill.LatestAction.Text != "" {
		parts = append(parts, "Latest action: "+bill.LatestAction.Text)
	}
	if names := bill.SponsorNames(); len(names) > 0 {
		parts = append(parts, "Sponsors: "+strings.Join(names, ", "))
	}
	return strings.Join(parts, ". ")
}

func userInstruction(source string) string {
	return "Summarize the following bill in plain English. Include:\n- What the bill does\n- Who it affects\n- Major provisions\n- Potential impacts\n\nAvoid political persuasion or opinion.\n\nBill Information:\n" + source
}

// fallbackText is the deterministic summary used when generation is
// unavailable: the official summary verbatim when present, otherwise a
// paragraph assembled from structured fields, always prefixed with a
// disclosure naming the Congress.
func fallbackText(congressNum string, bill *congress.RawBill, source string) string {
	prefix := fmt.Sprintf("This bill was introduced in the %sth Congress.", congressNum)
	if bill != nil && bill.Summary != nil {
		if official := strings.TrimSpace(stripHTML(bill.Summary.Text)); official != "" {
			return prefix + " " + official
		}
	}

	var parts []string
	if bill != nil {
		if bill.Title != "" {
			parts = append(parts, fmt.Sprintf("The bill is titled %q.", bill.Title))
		}
		if bill.IntroducedDate != "" {
			parts = append(parts, fmt.Sprintf("It was introduced on %s.", bill.IntroducedDate))
		}
		if names := bill.SponsorNames(); len(names) > 0 {
			parts = append(parts, fmt.Sprintf("It is sponsored by %s.", strings.Join(names, ", ")))
		}
		if bill.LatestAction != nil && bill.LatestAction.Text != "" {
			parts = append(parts, "Latest action: "+bill.LatestAction.Text)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, source)
	}
	return prefix + " " + strings.Join(parts, " ")
}
