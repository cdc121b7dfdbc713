// Package googleplaces provides a REST client for the Google Places Web
// Service (nearby search, text search, place details).
package googleplaces

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// detailsFields limits the details payload to what the application consumes.
const detailsFields = "place_id,name,formatted_address,formatted_phone_number,website,geometry,rating,user_ratings_total,types,opening_hours,reviews"

// Client is an HTTP client for the Places Web Service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Config configures the Places client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond throttles outbound calls; zero means 10 rps.
	RequestsPerSecond float64
}

// NewClient creates a new Places client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	rps := cfg.RequestsPerSecond
	if rps == 0 {
		rps = 10
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// SearchNearby runs a nearby search around lat/lng with the given radius.
// keyword and placeType are both optional; either narrows the result set.
func (c *Client) SearchNearby(ctx context.Context, lat, lng float64, keyword, placeType string, radiusMeters float64) ([]Place, error) {
	params := url.Values{}
	params.Set("location", formatLatLng(lat, lng))
	params.Set("radius", strconv.FormatFloat(radiusMeters, 'f', 0, 64))
	if keyword != "" {
		params.Set("keyword", keyword)
	}
	if placeType != "" {
		params.Set("type", placeType)
	}

	var payload placesResponse
	if err := c.get(ctx, "/nearbysearch/json", params, &payload); err != nil {
		return nil, err
	}
	return convertResults(payload)
}

// SearchText runs a free-text search, optionally biased toward a coordinate.
func (c *Client) SearchText(ctx context.Context, query string, biasLat, biasLng *float64) ([]Place, error) {
	params := url.Values{}
	params.Set("query", query)
	if biasLat != nil && biasLng != nil {
		params.Set("location", formatLatLng(*biasLat, *biasLng))
		params.Set("radius", "1000")
	}

	var payload placesResponse
	if err := c.get(ctx, "/textsearch/json", params, &payload); err != nil {
		return nil, err
	}
	return convertResults(payload)
}

// Details fetches the full detail record for a place ID.
func (c *Client) Details(ctx context.Context, placeID string) (*PlaceDetails, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", detailsFields)

	var payload detailsResponse
	if err := c.get(ctx, "/details/json", params, &payload); err != nil {
		return nil, err
	}
	if payload.Status != "OK" {
		return nil, fmt.Errorf("places details status: %s", payload.Status)
	}

	r := payload.Result
	details := &PlaceDetails{
		Place: Place{
			PlaceID: r.PlaceID,
			Name:    r.Name,
			Address: r.FormattedAddress,
			Lat:     r.Geometry.Location.Lat,
			Lng:     r.Geometry.Location.Lng,
			Rating:  r.Rating,
			Types:   r.Types,
		},
		Phone:   r.FormattedPhoneNumber,
		Website: r.Website,
	}
	if r.UserRatingsTotal != nil {
		details.UserRatingCount = *r.UserRatingsTotal
	}
	if r.OpeningHours != nil {
		details.OpenNow = r.OpeningHours.OpenNow
		details.OpeningHours = r.OpeningHours.WeekdayText
	}
	for _, rev := range r.Reviews {
		details.Reviews = append(details.Reviews, Review{
			AuthorName: rev.AuthorName,
			Rating:     rev.Rating,
			Text:       rev.Text,
			PostedUnix: rev.Time,
		})
	}

	return details, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("places request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("places api returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding places response: %w", err)
	}

	return nil
}

func convertResults(payload placesResponse) ([]Place, error) {
	switch payload.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	default:
		return nil, fmt.Errorf("places api status: %s", payload.Status)
	}

	places := make([]Place, 0, len(payload.Results))
	for _, r := range payload.Results {
		address := r.Vicinity
		if address == "" {
			address = r.FormattedAddress
		}
		places = append(places, Place{
			PlaceID: r.PlaceID,
			Name:    r.Name,
			Address: address,
			Lat:     r.Geometry.Location.Lat,
			Lng:     r.Geometry.Location.Lng,
			Rating:  r.Rating,
			Types:   r.Types,
		})
	}
	return places, nil
}

func formatLatLng(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', 7, 64) + "," + strconv.FormatFloat(lng, 'f', 7, 64)
}
