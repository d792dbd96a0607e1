package congress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.congress.gov/v3"

// ErrMissingAPIKey is returned when no Congress.gov credential is configured.
var ErrMissingAPIKey = errors.New("missing API key. Set API_DATA_GOV_KEY environment variable")

// Client handles Congress.gov v3 API operations
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Congress.gov API client
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

// HasKey reports whether a credential is configured.
func (c *Client) HasKey() bool {
	return c.apiKey != ""
}

// get issues an authenticated GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("building request URL: %w", err)
	}
	q := u.Query()
	q.Set("api_key", c.apiKey)
	q.Set("format", "json")
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Never assume JSON on a failed response.
		body, _ := io.ReadAll(resp.Body)
		log.Printf("Congress API error %d for %s: %s", resp.StatusCode, path, truncate(string(body), 500))
		return fmt.Errorf("congress API error %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response for %s: %w", path, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

type memberListResponse struct {
	Members []RawMember `json:"members"`
}

// CurrentMembers fetches all current members of Congress, paging through the
// list endpoint. The page limit is capped upstream; paging stays safe if the
// cap changes.
func (c *Client) CurrentMembers(ctx context.Context) ([]RawMember, error) {
	var all []RawMember
	offset := 0
	const limit = 250

	for i := 0; i < 10; i++ {
		var page memberListResponse
		err := c.get(ctx, "/member", url.Values{
			"currentMember": {"true"},
			"offset":        {strconv.Itoa(offset)},
			"limit":         {strconv.Itoa(limit)},
		}, &page)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Members...)
		if len(page.Members) < limit {
			break
		}
		offset += limit
	}

	return all, nil
}

// MembersByState fetches the current members for a two-letter state code.
func (c *Client) MembersByState(ctx context.Context, stateCode string) ([]RawMember, error) {
	var resp memberListResponse
	err := c.get(ctx, "/member/"+url.PathEscape(stateCode), url.Values{
		"currentMember": {"true"},
		"limit":         {"250"},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Members, nil
}

// Member fetches one member by Bioguide ID. The detail endpoint wraps the
// record in {"member": ...}; some deployments return it bare.
func (c *Client) Member(ctx context.Context, bioguideID string) (*RawMember, error) {
	var body json.RawMessage
	if err := c.get(ctx, "/member/"+url.PathEscape(bioguideID), nil, &body); err != nil {
		return nil, err
	}

	var wrapped struct {
		Member *RawMember `json:"member"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Member != nil {
		return wrapped.Member, nil
	}
	var m RawMember
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("unmarshaling member %s: %w", bioguideID, err)
	}
	return &m, nil
}

// Bill fetches one bill by congress, type, and number.
func (c *Client) Bill(ctx context.Context, congress, billType, number string) (*RawBill, error) {
	path := fmt.Sprintf("/bill/%s/%s/%s",
		url.PathEscape(congress), url.PathEscape(billType), url.PathEscape(number))

	var body json.RawMessage
	if err := c.get(ctx, path, nil, &body); err != nil {
		return nil, err
	}

	var wrapped struct {
		Bill *RawBill `json:"bill"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Bill != nil {
		return wrapped.Bill, nil
	}
	var b RawBill
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, fmt.Errorf("unmarshaling bill: %w", err)
	}
	return &b, nil
}

// SponsoredLegislation fetches bills sponsored by a member.
func (c *Client) SponsoredLegislation(ctx context.Context, bioguideID string, limit int) ([]RawBill, error) {
	return c.legislation(ctx, bioguideID, "sponsored-legislation", limit)
}

// CosponsoredLegislation fetches bills cosponsored by a member.
func (c *Client) CosponsoredLegislation(ctx context.Context, bioguideID string, limit int) ([]RawBill, error) {
	return c.legislation(ctx, bioguideID, "cosponsored-legislation", limit)
}

func (c *Client) legislation(ctx context.Context, bioguideID, kind string, limit int) ([]RawBill, error) {
	path := "/member/" + url.PathEscape(bioguideID) + "/" + kind

	var resp struct {
		SponsoredLegislation   nestedBills `json:"sponsoredLegislation"`
		CosponsoredLegislation nestedBills `json:"cosponsoredLegislation"`
		Bills                  BillList    `json:"bills"`
	}
	err := c.get(ctx, path, url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {"0"},
	}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.SponsoredLegislation) > 0 {
		return resp.SponsoredLegislation, nil
	}
	if len(resp.CosponsoredLegislation) > 0 {
		return resp.CosponsoredLegislation, nil
	}
	return resp.Bills, nil
}

// BillList accepts a bare array, an {"item": ...} wrapper, or a single object.
type BillList []RawBill

func (l *BillList) UnmarshalJSON(data []byte) error {
	items, err := itemTolerant(data)
	if err != nil {
		return err
	}
	bills := make([]RawBill, 0, len(items))
	for _, raw := range items {
		var b RawBill
		if err := json.Unmarshal(raw, &b); err != nil {
			return fmt.Errorf("unmarshaling bill: %w", err)
		}
		bills = append(bills, b)
	}
	*l = bills
	return nil
}

// nestedBills accepts the legislation list's payload under either
// {"bills": [...]} or directly as a (possibly item-wrapped) list.
type nestedBills BillList

func (n *nestedBills) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = nil
		return nil
	}
	if data[0] == '{' {
		var wrapped struct {
			Bills BillList `json:"bills"`
		}
		if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Bills) > 0 {
			*n = nestedBills(wrapped.Bills)
			return nil
		}
	}
	var list BillList
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*n = nestedBills(list)
	return nil
}
