package googleplaces

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
}

func TestSearchNearbyParsesResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/nearbysearch/json" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("key") != "test-key" {
			t.Fatalf("expected api key on request")
		}
		if q.Get("keyword") != "Blue Bottle" || q.Get("type") != "cafe" {
			t.Fatalf("unexpected keyword/type: %q/%q", q.Get("keyword"), q.Get("type"))
		}
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [
				{
					"place_id": "p1",
					"name": "Blue Bottle Coffee",
					"vicinity": "66 Mint St",
					"geometry": {"location": {"lat": 37.7825, "lng": -122.4078}},
					"rating": 4.5,
					"types": ["cafe", "food"]
				}
			]
		}`))
	})

	places, err := client.SearchNearby(context.Background(), 37.78, -122.41, "Blue Bottle", "cafe", 50)
	if err != nil {
		t.Fatalf("search nearby: %v", err)
	}
	if len(places) != 1 {
		t.Fatalf("expected 1 place, got %d", len(places))
	}
	p := places[0]
	if p.PlaceID != "p1" || p.Name != "Blue Bottle Coffee" || p.Address != "66 Mint St" {
		t.Fatalf("unexpected place: %+v", p)
	}
	if p.Rating == nil || *p.Rating != 4.5 {
		t.Fatalf("expected rating 4.5, got %v", p.Rating)
	}
}

func TestSearchNearbyZeroResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	})

	places, err := client.SearchNearby(context.Background(), 0, 0, "", "cafe", 50)
	if err != nil {
		t.Fatalf("expected no error for zero results, got %v", err)
	}
	if len(places) != 0 {
		t.Fatalf("expected empty slice, got %d places", len(places))
	}
}

func TestSearchTextErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "OVER_QUERY_LIMIT", "results": []}`))
	})

	if _, err := client.SearchText(context.Background(), "cafe", nil, nil); err == nil {
		t.Fatalf("expected error for OVER_QUERY_LIMIT status")
	}
}

func TestDetailsMapsFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/details/json" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("place_id") != "p1" {
			t.Fatalf("expected place_id p1")
		}
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"result": {
				"place_id": "p1",
				"name": "Blue Bottle Coffee",
				"formatted_address": "66 Mint St, San Francisco, CA",
				"formatted_phone_number": "(510) 653-3394",
				"website": "https://bluebottlecoffee.com",
				"geometry": {"location": {"lat": 37.7825, "lng": -122.4078}},
				"rating": 4.5,
				"user_ratings_total": 1200,
				"types": ["cafe"],
				"opening_hours": {"open_now": true, "weekday_text": ["Monday: 7AM-5PM"]},
				"reviews": [{"author_name": "A", "rating": 5, "text": "great", "time": 1700000000}]
			}
		}`))
	})

	details, err := client.Details(context.Background(), "p1")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if details.Phone != "(510) 653-3394" || details.Website == "" {
		t.Fatalf("unexpected contact fields: %+v", details)
	}
	if details.OpenNow == nil || !*details.OpenNow {
		t.Fatalf("expected open_now true")
	}
	if len(details.Reviews) != 1 || details.Reviews[0].Rating != 5 {
		t.Fatalf("unexpected reviews: %+v", details.Reviews)
	}
	if details.UserRatingCount != 1200 {
		t.Fatalf("expected 1200 ratings, got %d", details.UserRatingCount)
	}
}

func TestDetailsNotFoundStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "NOT_FOUND"}`))
	})

	if _, err := client.Details(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for NOT_FOUND status")
	}
}
