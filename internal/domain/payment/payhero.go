// internal/domain/payment/payhero.go
package payment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sokohub/sokohub-backend/internal/config"
)

var ErrProviderRejected = errors.New("payment provider rejected the request")

// PayheroClient talks to the Payhero STK push API
type PayheroClient struct {
	username   string
	password   string
	channelID  string
	provider   string
	baseURL    string
	callback   string
	httpClient *http.Client
}

// NewPayheroClient creates a Payhero client from config
func NewPayheroClient(cfg *config.PayheroConfig) *PayheroClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &PayheroClient{
		username:  cfg.Username,
		password:  cfg.Password,
		channelID: cfg.ChannelID,
		provider:  cfg.Provider,
		baseURL:   cfg.BaseURL,
		callback:  cfg.CallbackURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// STKPushRequest is the payload sent to Payhero
type STKPushRequest struct {
	Amount            int64  `json:"amount"`
	PhoneNumber       string `json:"phone_number"`
	ChannelID         string `json:"channel_id"`
	Provider          string `json:"provider"`
	ExternalReference string `json:"external_reference"`
	CallbackURL       string `json:"callback_url"`
}

// STKPushResponse is Payhero's reply to an STK push request
type STKPushResponse struct {
	Success           bool   `json:"success"`
	Status            string `json:"status"`
	Reference         string `json:"reference"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

// InitiateSTKPush asks Payhero to push an M-Pesa prompt to the phone.
// The returned CheckoutRequestID identifies the transaction in later
// callbacks; a response without one is treated as a rejection.
func (c *PayheroClient) InitiateSTKPush(amount int64, phone, externalRef string) (*STKPushResponse, error) {
	payload := &STKPushRequest{
		Amount:            amount,
		PhoneNumber:       phone,
		ChannelID:         c.channelID,
		Provider:          c.provider,
		ExternalReference: externalRef,
		CallbackURL:       c.callback,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal STK push request: %w", err)
	}

	url := c.baseURL + "/payments"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrProviderRejected, resp.StatusCode)
	}

	var pushResp STKPushResponse
	if err := json.Unmarshal(respBody, &pushResp); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	if pushResp.CheckoutRequestID == "" {
		return nil, fmt.Errorf("%w: no checkout request id", ErrProviderRejected)
	}

	return &pushResp, nil
}
