package congress

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// The Congress.gov v3 API is loosely shaped: numbers arrive as strings or
// numbers, list fields arrive as arrays, {"item": [...]} wrappers, or single
// objects, and most fields are simply absent. The raw types below accept all
// of that; the normalizers at the bottom are the only place the defensive
// access logic lives.

// FlexString unmarshals from a JSON string, number, or null.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("unmarshaling flexible string: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

// RawTerm is one entry of a member's service history.
type RawTerm struct {
	Chamber     string     `json:"chamber"`
	ChamberName string     `json:"chamberName"`
	MemberType  string     `json:"memberType"`
	StartYear   FlexString `json:"startYear"`
	EndYear     FlexString `json:"endYear"`
	EndDate     string     `json:"endDate"`
	PartyName   string     `json:"partyName"`
	Party       string     `json:"party"`
}

// current reports whether the term has no recorded end.
func (t RawTerm) current() bool {
	return t.EndYear == "" && t.EndDate == ""
}

// TermList accepts a bare array, an {"item": ...} wrapper, or a single object.
type TermList []RawTerm

func (l *TermList) UnmarshalJSON(data []byte) error {
	items, err := itemTolerant(data)
	if err != nil {
		return err
	}
	terms := make([]RawTerm, 0, len(items))
	for _, raw := range items {
		var t RawTerm
		if err := json.Unmarshal(raw, &t); err != nil {
			return fmt.Errorf("unmarshaling term: %w", err)
		}
		terms = append(terms, t)
	}
	*l = terms
	return nil
}

// RawSponsor is one bill sponsor entry.
type RawSponsor struct {
	FullName string `json:"fullName"`
	Name     string `json:"name"`
}

// SponsorList accepts a bare array, an {"item": ...} wrapper, or a single object.
type SponsorList []RawSponsor

func (l *SponsorList) UnmarshalJSON(data []byte) error {
	items, err := itemTolerant(data)
	if err != nil {
		return err
	}
	sponsors := make([]RawSponsor, 0, len(items))
	for _, raw := range items {
		var s RawSponsor
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("unmarshaling sponsor: %w", err)
		}
		sponsors = append(sponsors, s)
	}
	*l = sponsors
	return nil
}

// itemTolerant splits data into element messages, accepting a JSON array, an
// {"item": ...} wrapper around an array or single object, a lone object, or
// null.
func itemTolerant(data []byte) ([]json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var wrapper struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}
	if len(wrapper.Item) > 0 && !bytes.Equal(bytes.TrimSpace(wrapper.Item), []byte("null")) {
		return itemTolerant(wrapper.Item)
	}
	// A single object with no "item" key is one element.
	return []json.RawMessage{data}, nil
}

// RawAction accepts {"text": ..., "actionDate": ...} or a bare string.
type RawAction struct {
	Text       string `json:"text"`
	ActionDate string `json:"actionDate"`
}

func (a *RawAction) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		a.Text = s
		return nil
	}
	type plain RawAction
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = RawAction(p)
	return nil
}

// RawBillSummary is the official summary attached to a bill.
type RawBillSummary struct {
	Text string `json:"text"`
	As   string `json:"as"`
}

// RawMember is a member record as returned by the list, detail, and
// by-state endpoints. Every field is optional.
type RawMember struct {
	BioguideID      string   `json:"bioguideId"`
	BioguideIDAlt   string   `json:"bioguide_id"`
	ID              string   `json:"id"`
	DirectOrderName string   `json:"directOrderName"`
	Name            string   `json:"name"`
	FullName        string   `json:"fullName"`
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	PartyName       string   `json:"partyName"`
	Party           string   `json:"party"`
	State           string   `json:"state"`
	Chamber         string   `json:"chamber"`
	CurrentChamber  string   `json:"currentChamber"`
	Terms           TermList `json:"terms"`
}

// Bioguide returns the member's stable identifier under any of its spellings.
func (m *RawMember) Bioguide() string {
	if m.BioguideID != "" {
		return m.BioguideID
	}
	if m.BioguideIDAlt != "" {
		return m.BioguideIDAlt
	}
	return m.ID
}

// DisplayName resolves the member's display name by field priority.
func (m *RawMember) DisplayName() string {
	if m.DirectOrderName != "" {
		return m.DirectOrderName
	}
	if m.Name != "" {
		return m.Name
	}
	if m.FullName != "" {
		return m.FullName
	}
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// ResolveParty returns the member's party: the direct field when present,
// otherwise the current term's party, otherwise the most recent term's.
func (m *RawMember) ResolveParty() string {
	if m.PartyName != "" {
		return m.PartyName
	}
	if m.Party != "" {
		return m.Party
	}
	for _, t := range m.Terms {
		if t.current() {
			if t.PartyName != "" {
				return t.PartyName
			}
			if t.Party != "" {
				return t.Party
			}
			break
		}
	}
	if n := len(m.Terms); n > 0 {
		last := m.Terms[n-1]
		if last.PartyName != "" {
			return last.PartyName
		}
		return last.Party
	}
	return ""
}

// IsSenator reports whether the member currently serves in the Senate:
// any current term in the Senate, with the chamber fields as fallback.
func (m *RawMember) IsSenator() bool {
	for _, t := range m.Terms {
		chamber := strings.ToLower(t.Chamber + t.ChamberName + t.MemberType)
		if strings.Contains(chamber, "senate") && t.current() {
			return true
		}
	}
	chamber := strings.ToLower(m.Chamber + m.CurrentChamber)
	return strings.Contains(chamber, "senate")
}

// Member is the normalized internal member record.
type Member struct {
	BioguideID string `json:"bioguideId"`
	Name       string `json:"name"`
	Party      string `json:"party"`
	State      string `json:"state"`
	Chamber    string `json:"chamber"`
}

// Normalize reduces the raw record to the internal strict model.
func (m *RawMember) Normalize() Member {
	chamber := m.Chamber
	if chamber == "" {
		chamber = m.CurrentChamber
	}
	return Member{
		BioguideID: m.Bioguide(),
		Name:       m.DisplayName(),
		Party:      m.ResolveParty(),
		State:      m.State,
		Chamber:    chamber,
	}
}

// RawBill is a bill record from the bill detail and legislation list
// endpoints. Every field is optional.
type RawBill struct {
	Title          string          `json:"title"`
	ShortTitle     string          `json:"shortTitle"`
	Congress       FlexString      `json:"congress"`
	Type           string          `json:"type"`
	Number         FlexString      `json:"number"`
	IntroducedDate string          `json:"introducedDate"`
	LatestAction   *RawAction      `json:"latestAction"`
	Summary        *RawBillSummary `json:"summary"`
	Sponsors       SponsorList     `json:"sponsors"`
	URL            string          `json:"url"`
}

// DisplayTitle resolves the bill's title with "Untitled" as the placeholder.
func (b *RawBill) DisplayTitle() string {
	if b.Title != "" {
		return b.Title
	}
	if b.ShortTitle != "" {
		return b.ShortTitle
	}
	return "Untitled"
}

// SponsorNames returns the non-empty sponsor display names.
func (b *RawBill) SponsorNames() []string {
	var names []string
	for _, s := range b.Sponsors {
		name := s.FullName
		if name == "" {
			name = s.Name
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Bill is the normalized internal bill record.
type Bill struct {
	Title          string `json:"title"`
	Congress       string `json:"congress"`
	Type           string `json:"type"`
	Number         string `json:"number"`
	IntroducedDate string `json:"introducedDate,omitempty"`
	LatestAction   string `json:"latestAction,omitempty"`
	URL            string `json:"url"`
}

// NormalizeBill reduces the raw record to the internal strict model.
func NormalizeBill(b *RawBill) Bill {
	var action string
	if b.LatestAction != nil {
		action = b.LatestAction.Text
	}
	return Bill{
		Title:          b.DisplayTitle(),
		Congress:       string(b.Congress),
		Type:           b.Type,
		Number:         string(b.Number),
		IntroducedDate: b.IntroducedDate,
		LatestAction:   action,
		URL:            PublicBillURL(b),
	}
}

var apiBillURLRe = regexp.MustCompile(`/bill/(\d+)/([sh])/(\d+)`)

// PublicBillURL converts a bill record to a public congress.gov URL, or ""
// when not determinable.
func PublicBillURL(b *RawBill) string {
	if b.Congress != "" && b.Type != "" && b.Number != "" {
		chamber := "house"
		if strings.HasPrefix(strings.ToLower(b.Type), "s") {
			chamber = "senate"
		}
		return fmt.Sprintf("https://www.congress.gov/bill/%sth-congress/%s-bill/%s", b.Congress, chamber, b.Number)
	}
	if b.URL != "" {
		if strings.Contains(b.URL, "www.congress.gov") {
			return b.URL
		}
		if m := apiBillURLRe.FindStringSubmatch(b.URL); m != nil {
			chamber := "house"
			if strings.ToLower(m[2]) == "s" {
				chamber = "senate"
			}
			return fmt.Sprintf("https://www.congress.gov/bill/%sth-congress/%s-bill/%s", m[1], chamber, m[3])
		}
	}
	return ""
}

// MemberImageURL returns the public-domain portrait for a Bioguide ID.
// See https://github.com/unitedstates/images. Sizes: 225x275, 450x550, original.
func MemberImageURL(bioguideID, size string) string {
	if size == "" {
		size = "225x275"
	}
	return fmt.Sprintf("https://unitedstates.github.io/images/congress/%s/%s.jpg", size, bioguideID)
}
