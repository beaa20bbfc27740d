package wrike

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Webhook is a registered Wrike webhook.
type Webhook struct {
	ID        string `json:"id"`
	AccountID string `json:"accountId"`
	FolderID  string `json:"folderId,omitempty"`
	HookURL   string `json:"hookUrl"`
	Status    string `json:"status"`
}

// RegisterWebhook creates a webhook delivering to hookURL. An empty
// folderID registers an account-wide webhook. Wrike verifies the hook
// URL synchronously, so the relay must already be reachable.
func (c *Client) RegisterWebhook(ctx context.Context, hookURL, folderID string) (*Webhook, error) {
	path := "/webhooks"
	if folderID != "" {
		path = "/folders/" + url.PathEscape(folderID) + "/webhooks"
	}

	body, err := c.call(ctx, "create_webhook", http.MethodPost, path, url.Values{"hookUrl": {hookURL}})
	if err != nil {
		return nil, fmt.Errorf("wrike create webhook: %w", err)
	}

	hooks, err := decode[Webhook](body)
	if err != nil {
		return nil, fmt.Errorf("wrike create webhook: %w", err)
	}
	if len(hooks) == 0 {
		return nil, fmt.Errorf("wrike create webhook: empty response")
	}
	return &hooks[0], nil
}

// ListWebhooks returns the webhooks registered on the account.
func (c *Client) ListWebhooks(ctx context.Context) ([]Webhook, error) {
	body, err := c.call(ctx, "list_webhooks", http.MethodGet, "/webhooks", nil)
	if err != nil {
		return nil, fmt.Errorf("wrike list webhooks: %w", err)
	}
	hooks, err := decode[Webhook](body)
	if err != nil {
		return nil, fmt.Errorf("wrike list webhooks: %w", err)
	}
	return hooks, nil
}
