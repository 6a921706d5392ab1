package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client calls the Google Geocoding and Distance Matrix APIs.
// https://developers.google.com/maps/documentation/geocoding
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: "https://maps.googleapis.com/maps/api",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetBaseURL overrides the API host, used in tests.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode converts an address into coordinates. It returns (nil, nil, nil)
// for an empty address so callers can treat coordinates as optional.
func (c *Client) Geocode(ctx context.Context, address string) (*float64, *float64, error) {
	if address == "" {
		return nil, nil, nil
	}
	if c.apiKey == "" {
		return nil, nil, fmt.Errorf("google maps API key not configured")
	}

	params := url.Values{}
	params.Add("address", address)
	params.Add("key", c.apiKey)
	requestURL := fmt.Sprintf("%s/geocode/json?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to call geocoding API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("geocoding API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result geocodeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Status != "OK" || len(result.Results) == 0 {
		return nil, nil, fmt.Errorf("no results found for address: %s", address)
	}

	lat := result.Results[0].Geometry.Location.Lat
	lng := result.Results[0].Geometry.Location.Lng
	return &lat, &lng, nil
}

type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Text  string `json:"text"`
				Value int    `json:"value"` // meters
			} `json:"distance"`
			Duration struct {
				Text  string `json:"text"`
				Value int    `json:"value"` // seconds
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// RouteEstimate is a driving distance and duration between two points.
type RouteEstimate struct {
	DistanceText string `json:"distance_text"`
	DistanceM    int    `json:"distance_m"`
	DurationText string `json:"duration_text"`
	DurationS    int    `json:"duration_s"`
}

// EstimateRoute returns the driving distance and time from the origin to
// the destination coordinates.
func (c *Client) EstimateRoute(ctx context.Context, originLat, originLng, destLat, destLng float64) (*RouteEstimate, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("google maps API key not configured")
	}

	params := url.Values{}
	params.Add("origins", fmt.Sprintf("%f,%f", originLat, originLng))
	params.Add("destinations", fmt.Sprintf("%f,%f", destLat, destLng))
	params.Add("mode", "driving")
	params.Add("key", c.apiKey)
	requestURL := fmt.Sprintf("%s/distancematrix/json?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call distance matrix API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("distance matrix API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result distanceMatrixResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Status != "OK" || len(result.Rows) == 0 || len(result.Rows[0].Elements) == 0 {
		return nil, fmt.Errorf("no route found")
	}

	element := result.Rows[0].Elements[0]
	if element.Status != "OK" {
		return nil, fmt.Errorf("no route found: %s", element.Status)
	}

	return &RouteEstimate{
		DistanceText: element.Distance.Text,
		DistanceM:    element.Distance.Value,
		DurationText: element.Duration.Text,
		DurationS:    element.Duration.Value,
	}, nil
}
