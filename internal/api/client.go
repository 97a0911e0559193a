package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/example/transport-tracking/internal/models"
)

// Client talks to the remote transport API. All persistent state lives
// on the server; this client only proposes changes and reads back
// whatever the server acknowledges.
//
// The position and progress calls deliberately carry no client-side
// timeout: the deadline, if any, comes from the caller's context.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{BaseURL: baseURL, Token: token, HTTP: &http.Client{}}
}

// Error is a non-2xx or success=false response from the API.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("api: %s", e.Body)
}

// UpdatePosition reports the chauffeur's current coordinates.
// PUT /api/Chauffeur/UpdatePosition/{driverId} — the response body is
// not consumed; only the status code matters.
func (c *Client) UpdatePosition(ctx context.Context, driverID int, p models.Coord) error {
	path := fmt.Sprintf("/api/Chauffeur/UpdatePosition/%d", driverID)
	resp, err := c.do(ctx, http.MethodPut, path, p)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Body: readSnippet(resp.Body)}
	}
	return nil
}

// UpdateMissionProgress submits a status transition as a progress value
// (50 = started, 100 = finished) and returns the statut the server
// echoes back. The echoed value is the only authoritative status.
func (c *Client) UpdateMissionProgress(ctx context.Context, missionID, progress int) (models.Statut, error) {
	path := fmt.Sprintf("/api/Chauffeur/UpdateMissionProgress/%d", missionID)
	body := map[string]int{"progress": progress}
	resp, err := c.do(ctx, http.MethodPut, path, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{Status: resp.StatusCode, Body: readSnippet(resp.Body)}
	}
	var out struct {
		Success bool          `json:"success"`
		Statut  models.Statut `json:"statut"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("api: decode progress response: %w", err)
	}
	if !out.Success {
		return "", &Error{Status: resp.StatusCode, Body: "server rejected transition"}
	}
	return out.Statut, nil
}

// GetDemande fetches one mission record, including the assigned
// chauffeur's last-known position when present.
func (c *Client) GetDemande(ctx context.Context, id int) (*models.Demande, error) {
	path := fmt.Sprintf("/api/DemandeTransports/%d", id)
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Status: resp.StatusCode, Body: readSnippet(resp.Body)}
	}
	var out struct {
		Success bool            `json:"success"`
		Demande *models.Demande `json:"demande"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("api: decode demande response: %w", err)
	}
	if !out.Success || out.Demande == nil {
		return nil, &Error{Status: resp.StatusCode, Body: "demande not found"}
	}
	return out.Demande, nil
}

// ListMissions fetches the missions currently assigned to a chauffeur.
func (c *Client) ListMissions(ctx context.Context, chauffeurID int) ([]models.Demande, error) {
	path := fmt.Sprintf("/api/Chauffeur/%d/Missions", chauffeurID)
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Status: resp.StatusCode, Body: readSnippet(resp.Body)}
	}
	var out struct {
		Success  bool             `json:"success"`
		Missions []models.Demande `json:"missions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("api: decode missions response: %w", err)
	}
	return out.Missions, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return c.HTTP.Do(req)
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return string(b)
}
