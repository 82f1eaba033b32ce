package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/wtx/internal/shared"
)

const (
	plexTVBaseURL = "https://plex.tv/api/v2"
	plexAuthURL   = "https://app.plex.tv/auth/#!"
	plexVersion   = "Plex OAuth"
)

// PlexDevice describes this client to plex.tv.
type PlexDevice struct {
	Product         string
	Platform        string
	PlatformVersion string
	Device          string
	DeviceName      string
}

// PlexDeviceFromConfig builds the device description from configuration.
func PlexDeviceFromConfig(cfg shared.PlexConfig) PlexDevice {
	return PlexDevice{
		Product:         cfg.Product,
		Platform:        cfg.Platform,
		PlatformVersion: cfg.PlatformVersion,
		Device:          cfg.Device,
		DeviceName:      cfg.DeviceName,
	}
}

// PlexPin is a plex.tv login PIN. AuthToken is empty until the user approves it.
type PlexPin struct {
	ID        int    `json:"id"`
	Code      string `json:"code"`
	AuthToken string `json:"authToken,omitempty"`
}

// PlexClient talks to plex.tv's PIN endpoints. It never carries the backend
// credential.
type PlexClient struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	device     PlexDevice
}

// NewPlexClient creates a client identified by clientID. An empty baseURL
// means plex.tv.
func NewPlexClient(baseURL, clientID string, device PlexDevice, client *http.Client) *PlexClient {
	if baseURL == "" {
		baseURL = plexTVBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &PlexClient{httpClient: client, baseURL: strings.TrimRight(baseURL, "/"), clientID: clientID, device: device}
}

// ClientID returns the device identifier sent to plex.tv.
func (c *PlexClient) ClientID() string { return c.clientID }

func (c *PlexClient) setPlexHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Plex-Product", c.device.Product)
	req.Header.Set("X-Plex-Client-Identifier", c.clientID)
	req.Header.Set("X-Plex-Version", plexVersion)
	req.Header.Set("X-Plex-Model", plexVersion)
	req.Header.Set("X-Plex-Platform", c.device.Platform)
	req.Header.Set("X-Plex-Platform-Version", c.device.PlatformVersion)
	req.Header.Set("X-Plex-Device", c.device.Device)
	req.Header.Set("X-Plex-Device-Name", c.device.DeviceName)
}

// CreatePin requests a new strong PIN.
func (c *PlexClient) CreatePin(ctx context.Context) (*PlexPin, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pins?strong=true", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setPlexHeaders(req)

	var pin PlexPin
	if err := c.send(req, &pin, http.StatusOK, http.StatusCreated); err != nil {
		return nil, fmt.Errorf("plex pin creation failed: %w", err)
	}
	return &pin, nil
}

// CheckPin fetches pin's current state.
func (c *PlexClient) CheckPin(ctx context.Context, pin *PlexPin) (*PlexPin, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/pins/%d", c.baseURL, pin.ID), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setPlexHeaders(req)
	req.Header.Set("code", pin.Code)

	var out PlexPin
	if err := c.send(req, &out, http.StatusOK); err != nil {
		return nil, fmt.Errorf("plex pin check failed: %w", err)
	}
	return &out, nil
}

func (c *PlexClient) send(req *http.Request, out any, ok ...int) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	accepted := false
	for _, code := range ok {
		accepted = accepted || resp.StatusCode == code
	}
	if !accepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s - %s", shared.ErrHTTPStatus, resp.Status, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// AuthURL is the page where the user approves the PIN with the given code.
func (c *PlexClient) AuthURL(code string) string {
	q := []struct{ k, v string }{
		{"clientID", c.clientID},
		{"code", code},
		{"context", "Watcharr"},
		{"context[device][device]", c.device.Device},
		{"context[device][deviceName]", c.device.DeviceName},
		{"context[device][platform]", c.device.Platform},
		{"context[device][platformVersion]", c.device.PlatformVersion},
		{"context[device][product]", c.device.Product},
	}

	var b strings.Builder
	b.WriteString(plexAuthURL)
	b.WriteByte('?')
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.k)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.v))
	}
	return b.String()
}
