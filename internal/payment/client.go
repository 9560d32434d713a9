// Package payment talks to the Pesapal-style payment gateway.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnreachable covers network failures and timeouts. Always safe to
	// retry from the caller's side: status checks are idempotent reads.
	ErrUnreachable = errors.New("payment gateway unreachable")
)

// GatewayError is a non-2xx or error-payload response from the gateway.
type GatewayError struct {
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error %s: %s", e.Code, e.Message)
}

// TransactionStatus is the gateway's view of one payment. Read-only snapshot;
// the reconciler translates it into order fields.
type TransactionStatus struct {
	PaymentStatusDescription string          `json:"payment_status_description"`
	Amount                   decimal.Decimal `json:"amount"`
	Currency                 string          `json:"currency"`
	PaymentAccount           string          `json:"payment_account"`
	ConfirmationCode         string          `json:"confirmation_code"`
}

// Client queries transaction status. The HTTP client's timeout bounds every
// call; the client itself never retries — retry policy belongs to the caller.
type Client struct {
	HTTP           *http.Client
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
}

func NewClient(baseURL, consumerKey, consumerSecret string, timeout time.Duration) *Client {
	return &Client{
		HTTP:           &http.Client{Timeout: timeout},
		BaseURL:        baseURL,
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
	}
}

type authResponse struct {
	Token string `json:"token"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// requestToken obtains a short-lived bearer token for the status call.
func (c *Client) requestToken(ctx context.Context) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"consumer_key":    c.ConsumerKey,
		"consumer_secret": c.ConsumerSecret,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/Auth/RequestToken", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return "", ErrUnreachable
	}
	defer res.Body.Close()

	var out authResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode auth response: %w", err)
	}
	if out.Error != nil {
		return "", &GatewayError{Code: out.Error.Code, Message: out.Error.Message}
	}
	if res.StatusCode != http.StatusOK || out.Token == "" {
		return "", &GatewayError{Code: res.Status, Message: "auth token not granted"}
	}
	return out.Token, nil
}

type statusResponse struct {
	TransactionStatus
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GetTransactionStatus fetches the gateway's status for one tracking id.
func (c *Client) GetTransactionStatus(ctx context.Context, trackingID string) (*TransactionStatus, error) {
	token, err := c.requestToken(ctx)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/api/Transactions/GetTransactionStatus?orderTrackingId=%s",
		c.BaseURL, url.QueryEscape(trackingID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, ErrUnreachable
	}
	defer res.Body.Close()

	var out statusResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	if out.Error != nil {
		return nil, &GatewayError{Code: out.Error.Code, Message: out.Error.Message}
	}
	if res.StatusCode != http.StatusOK {
		return nil, &GatewayError{Code: res.Status, Message: "status lookup failed"}
	}
	st := out.TransactionStatus
	return &st, nil
}
