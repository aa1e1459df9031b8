package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Client wraps the Gmail API client
type Client struct {
	service *gmail.Service
}

// NewClient creates a Gmail client on top of an authorized HTTP client, the
// same one used for Google Calendar.
func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	service, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{service: service}, nil
}

// NewClientWithService wraps an already constructed service.
func NewClientWithService(service *gmail.Service) *Client {
	return &Client{service: service}
}

// ListMessageIDs returns the ids of messages matching query, newest first.
// query follows Gmail search syntax (e.g., "is:unread subject:meeting")
func (c *Client) ListMessageIDs(ctx context.Context, query string, maxResults int64) ([]string, error) {
	resp, err := c.service.Users.Messages.List("me").Q(query).MaxResults(maxResults).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// GetRaw returns the full RFC 5322 text of a message.
func (c *Client) GetRaw(ctx context.Context, messageID string) (string, error) {
	msg, err := c.service.Users.Messages.Get("me", messageID).Format("raw").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get message: %w", err)
	}
	return decodeBase64(msg.Raw)
}

// MarkRead removes the UNREAD label from a message.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	_, err := c.service.Users.Messages.Modify("me", messageID, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	return nil
}

// decodeBase64 decodes Gmail's URL-safe base64, with or without padding.
func decodeBase64(data string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
		if err != nil {
			return "", fmt.Errorf("failed to decode message body: %w", err)
		}
	}
	return string(decoded), nil
}
