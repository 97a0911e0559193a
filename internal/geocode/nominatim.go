package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client performs reverse-geocoding lookups against a Nominatim-style
// HTTP server. Lookups are best-effort display sugar; callers are
// expected to ignore failures.
type Client struct {
	Endpoint  string
	UserAgent string
	HTTP      *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{Endpoint: endpoint, UserAgent: "transport-tracking-agent", HTTP: &http.Client{Timeout: 2 * time.Second}}
}

// PlaceName resolves coordinates into a human-readable place name.
func (c *Client) PlaceName(ctx context.Context, lat, lon float64) (string, error) {
	url := fmt.Sprintf("%s/reverse?format=jsonv2&lat=%.6f&lon=%.6f", c.Endpoint, lat, lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var out struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.DisplayName == "" {
		return "", fmt.Errorf("geocode: no place name for %.6f,%.6f", lat, lon)
	}
	return out.DisplayName, nil
}
