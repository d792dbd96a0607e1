package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/mux"
	"github.com/poltracker/poltracker/internal/congress"
	"github.com/poltracker/poltracker/internal/news"
	"github.com/poltracker/poltracker/internal/states"
	"github.com/poltracker/poltracker/internal/summary"
)

const (
	// legislationFetchLimit is the page size for per-member bill lookups.
	legislationFetchLimit = 20

	// stateMemberCap bounds the sequential per-member fetches in state
	// aggregation to keep latency and upstream rate usage bounded.
	stateMemberCap = 10

	// stateBillCap bounds each bill list in a state response.
	stateBillCap = 20
)

// senatorProfile is the display payload for one senator.
type senatorProfile struct {
	BioguideID string `json:"bioguideId"`
	Name       string `json:"name"`
	Party      string `json:"party"`
	State      string `json:"state"`
	ImageURL   string `json:"imageUrl"`
}

func profileFor(m congress.Member, imageSize string) senatorProfile {
	return senatorProfile{
		BioguideID: m.BioguideID,
		Name:       m.Name,
		Party:      m.Party,
		State:      m.State,
		ImageURL:   congress.MemberImageURL(m.BioguideID, imageSize),
	}
}

// healthHandler reports service status and credential presence
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status": "ok",
		"hasKey": s.congress.HasKey(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// senatorsHandler lists all current senators
func (s *Server) senatorsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	members, err := s.congress.CurrentMembers(ctx)
	if err != nil {
		if errors.Is(err, congress.ErrMissingAPIKey) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		log.Printf("Error fetching senators: %v", err)
		http.Error(w, "Failed to fetch senators", http.StatusInternalServerError)
		return
	}

	var senators []senatorProfile
	for i := range members {
		if !members[i].IsSenator() {
			continue
		}
		senators = append(senators, profileFor(members[i].Normalize(), ""))
	}
	sort.Slice(senators, func(i, j int) bool {
		if senators[i].State != senators[j].State {
			return senators[i].State < senators[j].State
		}
		return senators[i].Name < senators[j].Name
	})

	response := map[string]interface{}{
		"senators": senators,
		"count":    len(senators),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// senatorHandler returns one member with a display profile
func (s *Server) senatorHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bioguideID := mux.Vars(r)["bioguideId"]

	raw, err := s.congress.Member(ctx, bioguideID)
	if err != nil {
		if errors.Is(err, congress.ErrMissingAPIKey) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		log.Printf("Error fetching member %s: %v", bioguideID, err)
		http.Error(w, "Failed to fetch member", http.StatusInternalServerError)
		return
	}

	profile := raw.Normalize()
	if profile.BioguideID == "" {
		profile.BioguideID = bioguideID
	}

	// the raw upstream record is returned as-is beside the display profile
	response := map[string]interface{}{
		"member":  raw,
		"profile": profileFor(profile, "450x550"),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// sponsoredBillsHandler lists bills sponsored by a member
func (s *Server) sponsoredBillsHandler(w http.ResponseWriter, r *http.Request) {
	s.legislationHandler(w, r, s.congress.SponsoredLegislation)
}

// cosponsoredBillsHandler lists bills cosponsored by a member
func (s *Server) cosponsoredBillsHandler(w http.ResponseWriter, r *http.Request) {
	s.legislationHandler(w, r, s.congress.CosponsoredLegislation)
}

func (s *Server) legislationHandler(w http.ResponseWriter, r *http.Request, fetch func(ctx context.Context, bioguideID string, limit int) ([]congress.RawBill, error)) {
	ctx := r.Context()
	bioguideID := mux.Vars(r)["bioguideId"]

	raws, err := fetch(ctx, bioguideID, legislationFetchLimit)
	if err != nil {
		if errors.Is(err, congress.ErrMissingAPIKey) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		// degrade to an empty list rather than failing the page
		log.Printf("Error fetching legislation for %s: %v", bioguideID, err)
		raws = nil
	}

	bills := make([]congress.Bill, 0, len(raws))
	for i := range raws {
		bills = append(bills, congress.NormalizeBill(&raws[i]))
	}

	response := map[string]interface{}{
		"bills": bills,
		"count": len(bills),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// senatorNewsHandler returns ranked news for one member. The response
// is always 200; failures degrade to an empty article list.
func (s *Server) senatorNewsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bioguideID := mux.Vars(r)["bioguideId"]

	coverage := news.ParseCoverage(r.URL.Query().Get("coverage"))
	sortMode := news.ParseSort(r.URL.Query().Get("sort"))

	var name string
	if raw, err := s.congress.Member(ctx, bioguideID); err != nil {
		log.Printf("Error fetching member %s for news: %v", bioguideID, err)
	} else {
		name = raw.DisplayName()
	}

	var result news.Result
	if name == "" {
		result = news.Result{Articles: []news.Article{}, Reason: news.ReasonNoSubject}
	} else {
		result = s.news.Fetch(ctx, news.LegislatorQuery(bioguideID, name, coverage, sortMode))
	}

	response := map[string]interface{}{
		"sourceType": string(coverage),
		"articles":   result.Articles,
		"reason":     string(result.Reason),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// stateHandler aggregates a state's senators, news, and recent bills
func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stateCode := strings.ToUpper(mux.Vars(r)["stateCode"])

	stateName, ok := states.Name(stateCode)
	if !ok {
		http.Error(w, "Invalid state code", http.StatusBadRequest)
		return
	}
	if !s.congress.HasKey() {
		http.Error(w, congress.ErrMissingAPIKey.Error(), http.StatusInternalServerError)
		return
	}

	raws, err := s.congress.MembersByState(ctx, stateCode)
	if err != nil {
		log.Printf("Error fetching members for %s: %v", stateCode, err)
		http.Error(w, "Failed to fetch state members", http.StatusInternalServerError)
		return
	}

	var members []congress.Member
	var names []string
	for i := range raws {
		if !raws[i].IsSenator() {
			continue
		}
		m := raws[i].Normalize()
		members = append(members, m)
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}

	newsResult := s.news.Fetch(ctx, news.StateQuery(stateCode, stateName, names))
	sponsored, cosponsored := s.aggregateStateBills(ctx, members)

	response := map[string]interface{}{
		"stateCode": stateCode,
		"stateName": stateName,
		"color":     states.Classify(members),
		"members":   members,
		"news":      newsResult.Articles,
		"bills": map[string]interface{}{
			"sponsored":   sponsored,
			"cosponsored": cosponsored,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// aggregateStateBills collects sponsored and cosponsored bills across a
// state's delegation. Fetches run sequentially, capped at the first ten
// members; a failing member is skipped, not fatal.
func (s *Server) aggregateStateBills(ctx context.Context, members []congress.Member) (sponsored, cosponsored []congress.Bill) {
	capped := members
	if len(capped) > stateMemberCap {
		capped = capped[:stateMemberCap]
	}

	var rawSponsored, rawCosponsored []congress.RawBill
	for _, m := range capped {
		if bills, err := s.congress.SponsoredLegislation(ctx, m.BioguideID, legislationFetchLimit); err != nil {
			log.Printf("Skipping sponsored bills for %s: %v", m.BioguideID, err)
		} else {
			rawSponsored = append(rawSponsored, bills...)
		}
		if bills, err := s.congress.CosponsoredLegislation(ctx, m.BioguideID, legislationFetchLimit); err != nil {
			log.Printf("Skipping cosponsored bills for %s: %v", m.BioguideID, err)
		} else {
			rawCosponsored = append(rawCosponsored, bills...)
		}
	}

	return dedupeBills(rawSponsored), dedupeBills(rawCosponsored)
}

// dedupeBills normalizes, removes duplicate bills by identity, sorts by
// introduced date descending, and caps the list.
func dedupeBills(raws []congress.RawBill) []congress.Bill {
	seen := make(map[string]bool, len(raws))
	bills := make([]congress.Bill, 0, len(raws))
	for i := range raws {
		b := congress.NormalizeBill(&raws[i])
		key := b.Congress + "-" + strings.ToLower(b.Type) + "-" + b.Number
		if seen[key] {
			continue
		}
		seen[key] = true
		bills = append(bills, b)
	}

	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].IntroducedDate > bills[j].IntroducedDate
	})
	if len(bills) > stateBillCap {
		bills = bills[:stateBillCap]
	}
	return bills
}

// stateColorsHandler maps every state code to its partisan color
func (s *Server) stateColorsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !s.congress.HasKey() {
		http.Error(w, congress.ErrMissingAPIKey.Error(), http.StatusInternalServerError)
		return
	}

	colors := make(map[string]states.Color, len(states.Names))
	for _, code := range states.Codes() {
		colors[code] = states.ColorGray
	}

	members, err := s.congress.CurrentMembers(ctx)
	if err != nil {
		// degrade to an all-gray map rather than failing the page
		log.Printf("Error fetching members for state colors: %v", err)
	} else {
		byState := make(map[string][]congress.Member)
		for i := range members {
			if !members[i].IsSenator() {
				continue
			}
			m := members[i].Normalize()
			code := resolveStateCode(m.State)
			if code == "" {
				continue
			}
			byState[code] = append(byState[code], m)
		}
		for code, roster := range byState {
			colors[code] = states.Classify(roster)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(colors)
}

// resolveStateCode accepts either a 2-letter code or a full state name.
func resolveStateCode(state string) string {
	if len(state) == 2 {
		code := strings.ToUpper(state)
		if _, ok := states.Names[code]; ok {
			return code
		}
		return ""
	}
	for code, name := range states.Names {
		if strings.EqualFold(name, state) {
			return code
		}
	}
	return ""
}

// billSummaryHandler produces a summary for one bill
func (s *Server) billSummaryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	billID := mux.Vars(r)["billId"]

	congressNum, billType, number, err := summary.ParseBillID(billID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.summaries.Summarize(ctx, congressNum, billType, number)
	if err != nil {
		if errors.Is(err, summary.ErrInsufficientData) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, summary.ErrBillUnavailable) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		log.Printf("Error summarizing bill %s: %v", billID, err)
		http.Error(w, "Failed to generate summary", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"summary":  result.Text,
		"fallback": result.Fallback,
		"billInfo": result.BillInfo,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// getMemoryHandler reads a user's brand context
func (s *Server) getMemoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := mux.Vars(r)["userId"]

	mem, err := s.memories.Get(ctx, userID)
	if err != nil {
		log.Printf("Error reading memory for %s: %v", userID, err)
		http.Error(w, "Failed to read memory", http.StatusInternalServerError)
		return
	}

	writeMemory(w, mem.BrandContext)
}

// setMemoryHandler stores a user's brand context
func (s *Server) setMemoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := mux.Vars(r)["userId"]

	var body struct {
		BrandContext *string `json:"brand_context"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.BrandContext == nil {
		http.Error(w, "brand_context must be a string", http.StatusBadRequest)
		return
	}

	mem, err := s.memories.SetBrandContext(ctx, userID, *body.BrandContext)
	if err != nil {
		log.Printf("Error writing memory for %s: %v", userID, err)
		http.Error(w, "Failed to write memory", http.StatusInternalServerError)
		return
	}

	writeMemory(w, mem.BrandContext)
}

// clearMemoryHandler nulls out a user's brand context
func (s *Server) clearMemoryHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := mux.Vars(r)["userId"]

	mem, err := s.memories.ClearBrandContext(ctx, userID)
	if err != nil {
		log.Printf("Error clearing memory for %s: %v", userID, err)
		http.Error(w, "Failed to clear memory", http.StatusInternalServerError)
		return
	}

	writeMemory(w, mem.BrandContext)
}

func writeMemory(w http.ResponseWriter, brandContext *string) {
	response := map[string]interface{}{
		"brand_context": brandContext,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
