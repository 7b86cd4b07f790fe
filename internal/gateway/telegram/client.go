// Package telegram implements the platform gateway against the Telegram Bot
// API over HTTPS. It covers the methods the moderation core needs: message
// deletion, banning, private and chat messages, owner lookup, and the
// getUpdates long-poll feed.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultAPIURL is the production Telegram Bot API endpoint.
const DefaultAPIURL = "https://api.telegram.org"

// Client is a Telegram Bot API client implementing gateway.Gateway.
// Safe for concurrent use.
type Client struct {
	base string // <api url>/bot<token>
	http *retryablehttp.Client
}

// NewClient creates a client for the production API.
func NewClient(token string) *Client {
	return NewClientWithURL(token, DefaultAPIURL)
}

// NewClientWithURL creates a client against a custom API endpoint.
// Used by tests to point at a local stub server.
func NewClientWithURL(token, apiURL string) *Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 250 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = nil

	return &Client{
		base: apiURL + "/bot" + token,
		http: client,
	}
}

// apiResponse is the Bot API envelope.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

// call POSTs params as JSON to a Bot API method and decodes the result
// payload into out (when out is non-nil). An ok=false envelope becomes an
// error carrying the API's error code and description.
func (c *Client) call(ctx context.Context, method string, params, out any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("telegram: marshal %s params: %w", method, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.base+"/"+method, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: %s: %w", method, err)
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("telegram: decode %s response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram: %s failed: %d %s", method, envelope.ErrorCode, envelope.Description)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("telegram: decode %s result: %w", method, err)
		}
	}
	return nil
}

// DeleteMessage removes a message from a chat.
func (c *Client) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return c.call(ctx, "deleteMessage", map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	}, nil)
}

// BanMember removes a user from a chat.
func (c *Client) BanMember(ctx context.Context, chatID, userID int64) error {
	return c.call(ctx, "banChatMember", map[string]any{
		"chat_id": chatID,
		"user_id": userID,
	}, nil)
}

// UnbanMember lifts a ban. only_if_banned keeps the call from kicking a
// member who is currently in the chat.
func (c *Client) UnbanMember(ctx context.Context, chatID, userID int64) error {
	return c.call(ctx, "unbanChatMember", map[string]any{
		"chat_id":        chatID,
		"user_id":        userID,
		"only_if_banned": true,
	}, nil)
}

// SendPrivate delivers a direct message to a user. Telegram addresses
// private chats by the user id.
func (c *Client) SendPrivate(ctx context.Context, userID int64, text string) error {
	return c.SendChat(ctx, userID, text)
}

// SendChat posts a message into a chat.
func (c *Client) SendChat(ctx context.Context, chatID int64, text string) error {
	return c.call(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	}, nil)
}

// IsChatOwner reports whether userID is the owner ("creator") of chatID.
func (c *Client) IsChatOwner(ctx context.Context, chatID, userID int64) (bool, error) {
	admins, err := c.ChatAdministrators(ctx, chatID)
	if err != nil {
		return false, err
	}
	for _, member := range admins {
		if member.User.ID == userID && member.Status == "creator" {
			return true, nil
		}
	}
	return false, nil
}

// ChatAdministrators returns the platform-level administrators of a chat.
func (c *Client) ChatAdministrators(ctx context.Context, chatID int64) ([]ChatMember, error) {
	var admins []ChatMember
	if err := c.call(ctx, "getChatAdministrators", map[string]any{
		"chat_id": chatID,
	}, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

// GetUpdates long-polls for updates after offset. timeout is the server-side
// hold time; the request context should allow for it plus slack.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	var updates []Update
	if err := c.call(ctx, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message"},
	}, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}
