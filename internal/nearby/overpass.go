package nearby

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultOverpassURL = "https://overpass-api.de/api/interpreter"
	defaultHTTPTimeout = 25 * time.Second
	userAgent          = "AIvory-Dental-App/1.0"
)

// Client queries the Overpass interpreter for dental amenities around a
// point. The source tags dentists inconsistently, so the query matches
// amenity=dentist, healthcare=dentist and clinic+healthcare=dentist across
// nodes, ways and relations.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = defaultOverpassURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type overpassResponse struct {
	Elements []Element `json:"elements"`
}

func (c *Client) FindDentists(ctx context.Context, lat, lon float64, radiusM int) ([]Element, error) {
	query := buildQuery(lat, lon, radiusM)

	reqURL := c.baseURL + "?data=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build overpass request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass returned status %d", resp.StatusCode)
	}

	var body overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}

	return body.Elements, nil
}

func buildQuery(lat, lon float64, radiusM int) string {
	around := fmt.Sprintf("(around:%d,%f,%f)", radiusM, lat, lon)
	return fmt.Sprintf(`[out:json][timeout:25];
(
  node["amenity"="dentist"]%[1]s;
  way["amenity"="dentist"]%[1]s;
  relation["amenity"="dentist"]%[1]s;
  node["healthcare"="dentist"]%[1]s;
  way["healthcare"="dentist"]%[1]s;
  relation["healthcare"="dentist"]%[1]s;
  node["amenity"="clinic"]["healthcare"="dentist"]%[1]s;
  way["amenity"="clinic"]["healthcare"="dentist"]%[1]s;
);
out center;
`, around)
}
