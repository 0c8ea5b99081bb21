package crafting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// XPAwarder credits experience points on the player's XP ledger.
type XPAwarder interface {
	IncrementXP(ctx context.Context, playerID uuid.UUID, amount int) error
}

// HTTPXPClient awards XP through the user service HTTP API.
type HTTPXPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPXPClient creates an XP client for the user service with the given
// request timeout.
func NewHTTPXPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPXPClient {
	return &HTTPXPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// IncrementXP calls POST /users/{id}/xp/increment.
func (c *HTTPXPClient) IncrementXP(ctx context.Context, playerID uuid.UUID, amount int) error {
	url := fmt.Sprintf("%s/users/%s/xp/increment", c.baseURL, playerID)

	payload := map[string]int{"amount": amount}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("xp increment failed: status %d", resp.StatusCode)
	}

	return nil
}
