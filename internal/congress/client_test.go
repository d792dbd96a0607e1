package congress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-key")
	c.baseURL = srv.URL
	return c
}

func TestGetRequiresAPIKey(t *testing.T) {
	c := NewClient("")
	_, err := c.Member(context.Background(), "A000001")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
}

func TestGetSendsKeyAndFormat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("Expected api_key query param, got %q", r.URL.Query().Get("api_key"))
		}
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("Expected format=json, got %q", r.URL.Query().Get("format"))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"member": map[string]string{"bioguideId": "A000001"}})
	})

	m, err := c.Member(context.Background(), "A000001")
	if err != nil {
		t.Fatalf("Member failed: %v", err)
	}
	if m.Bioguide() != "A000001" {
		t.Errorf("Expected A000001, got %s", m.Bioguide())
	}
}

func TestGetNon2xxIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	})

	_, err := c.Member(context.Background(), "A000001")
	if err == nil {
		t.Fatal("Expected error on 502")
	}
}

func TestMemberBareResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"bioguideId": "B000002", "directOrderName": "Jane Smith"})
	})

	m, err := c.Member(context.Background(), "B000002")
	if err != nil {
		t.Fatalf("Member failed: %v", err)
	}
	if m.DisplayName() != "Jane Smith" {
		t.Errorf("Expected Jane Smith, got %s", m.DisplayName())
	}
}

func TestCurrentMembersPaging(t *testing.T) {
	var requests int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		offset := r.URL.Query().Get("offset")

		members := make([]map[string]string, 0)
		if offset == "0" {
			// Full first page forces a second request.
			for i := 0; i < 250; i++ {
				members = append(members, map[string]string{"bioguideId": fmt.Sprintf("M%06d", i)})
			}
		} else {
			members = append(members, map[string]string{"bioguideId": "LAST"})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"members": members})
	})

	members, err := c.CurrentMembers(context.Background())
	if err != nil {
		t.Fatalf("CurrentMembers failed: %v", err)
	}
	if requests != 2 {
		t.Errorf("Expected 2 page requests, got %d", requests)
	}
	if len(members) != 251 {
		t.Errorf("Expected 251 members, got %d", len(members))
	}
}

func TestSponsoredLegislationShapes(t *testing.T) {
	bodies := []string{
		`{"sponsoredLegislation": {"bills": [{"title": "A"}]}}`,
		`{"sponsoredLegislation": [{"title": "A"}]}`,
		`{"bills": [{"title": "A"}]}`,
		`{"bills": {"item": [{"title": "A"}]}}`,
	}

	for _, body := range bodies {
		body := body
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		})
		bills, err := c.SponsoredLegislation(context.Background(), "A000001", 20)
		if err != nil {
			t.Fatalf("body %s: SponsoredLegislation failed: %v", body, err)
		}
		if len(bills) != 1 || bills[0].Title != "A" {
			t.Errorf("body %s: expected one bill titled A, got %+v", body, bills)
		}
	}
}

func TestBillWrappedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bill/118/s/1234" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"bill": {"title": "Clean Water Act", "congress": 118, "type": "S", "number": 1234}}`)
	})

	b, err := c.Bill(context.Background(), "118", "s", "1234")
	if err != nil {
		t.Fatalf("Bill failed: %v", err)
	}
	if b.Title != "Clean Water Act" {
		t.Errorf("Expected Clean Water Act, got %s", b.Title)
	}
	if b.Congress != "118" || b.Number != "1234" {
		t.Errorf("Expected numeric fields normalized, got congress=%s number=%s", b.Congress, b.Number)
	}
}
