package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"mediavault/models"
)

// Client talks to a mediavault server. The base URL is fixed at
// construction time; nothing reads ambient globals.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New builds a client for the given base URL, e.g. "http://localhost:4545".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// StreamURL builds the streaming URL for an item, optionally pinned to a
// quality variant. This is the only contract the player engine needs from
// the metadata API.
func (c *Client) StreamURL(itemID, quality string) string {
	u := fmt.Sprintf("%s/api/items/%s/stream", c.baseURL, url.PathEscape(itemID))
	if quality != "" {
		u += "?quality=" + url.QueryEscape(quality)
	}
	return u
}

// TrackView reports one accrued view for an item. Transient server errors
// are retried a few times; the caller decides whether a final failure
// matters (the player ignores it).
func (c *Client) TrackView(ctx context.Context, itemID string) error {
	endpoint := fmt.Sprintf("%s/api/items/%s/view", c.baseURL, url.PathEscape(itemID))

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusOK:
				return nil
			case resp.StatusCode == http.StatusNotFound:
				return retry.Unrecoverable(fmt.Errorf("item %s not found", itemID))
			default:
				return fmt.Errorf("track view: unexpected status %d", resp.StatusCode)
			}
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}

// Items fetches the full item list.
func (c *Client) Items(ctx context.Context) ([]models.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/items", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list items: unexpected status %d", resp.StatusCode)
	}

	var items []models.Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

// Item fetches a single item by id.
func (c *Client) Item(ctx context.Context, itemID string) (*models.Item, error) {
	endpoint := fmt.Sprintf("%s/api/items/%s", c.baseURL, url.PathEscape(itemID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("item %s not found", itemID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get item: unexpected status %d", resp.StatusCode)
	}

	var item models.Item
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, err
	}
	return &item, nil
}
