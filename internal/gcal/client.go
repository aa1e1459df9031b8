package gcal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Client wraps the Google Calendar API client
type Client struct {
	mu         sync.RWMutex
	service    *calendar.Service
	config     *oauth2.Config
	tokenFile  string
	token      *oauth2.Token
	calendarID string
}

// NewClient creates a new Google Calendar client. A missing or expired token
// is not an error; the client stays unauthenticated until ExchangeCode.
func NewClient(credentialsFile, tokenFile, redirectURL string) (*Client, error) {
	config, err := loadOAuthConfig(credentialsFile, redirectURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth config: %w", err)
	}

	client := &Client{
		config:     config,
		tokenFile:  tokenFile,
		calendarID: "primary",
	}

	if token, err := loadToken(tokenFile); err == nil {
		client.token = token
		if err := client.initService(context.Background()); err != nil {
			slog.Warn("could not initialize calendar service with existing token", "error", err)
		}
	}

	return client, nil
}

// NewClientWithService wraps an already constructed service.
func NewClientWithService(service *calendar.Service) *Client {
	return &Client{service: service, calendarID: "primary"}
}

// IsAuthenticated returns true if the client is authenticated
func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.service != nil
}

// HTTPClient returns an OAuth client sharing the calendar token, for other
// Google APIs such as Gmail. It returns nil when not authenticated.
func (c *Client) HTTPClient(ctx context.Context) *http.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.config == nil || c.token == nil {
		return nil
	}
	return c.config.Client(ctx, c.token)
}

// initService initializes the Calendar service with the current token.
// The oauth2 transport refreshes an expired access token on first use.
func (c *Client) initService(ctx context.Context) error {
	httpClient := c.HTTPClient(ctx)
	if httpClient == nil {
		return fmt.Errorf("no token available")
	}

	service, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return fmt.Errorf("failed to create calendar service: %w", err)
	}

	c.mu.Lock()
	c.service = service
	c.mu.Unlock()
	return nil
}

func (c *Client) calendarService() (*calendar.Service, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.service == nil {
		return nil, ErrNotAuthenticated
	}
	return c.service, nil
}
