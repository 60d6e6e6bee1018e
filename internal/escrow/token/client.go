// Package token talks to the external fungible-token custody service that
// actually holds value and claim assets. The escrow engine only records
// positions; every movement of funds goes through this client.
package token

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type (
	// Metrics records duration and status of custody calls.
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

// Client is an instrumented HTTP client for one asset held by the custody
// service. The escrow vault account is fixed at construction; TransferInto
// moves funds from a depositor to the vault, TransferOut the other way.
type Client struct {
	httpClient *http.Client
	baseURL    string
	asset      string
	vault      string
	metrics    Metrics
}

func NewClient(baseURL, asset, vault string, timeout time.Duration, metrics Metrics) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("custody base url is required")
	}
	if asset == "" {
		return nil, errors.New("custody asset is required")
	}
	if vault == "" {
		return nil, errors.New("custody vault account is required")
	}
	if metrics == nil {
		return nil, errors.New("custody metrics is required")
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		asset:      asset,
		vault:      vault,
		metrics:    metrics,
	}, nil
}

type transferRequest struct {
	Asset  string `json:"asset"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type balanceResponse struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
	Balance uint64 `json:"balance"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// TransferInto moves amount from the depositor account into the vault.
func (c *Client) TransferInto(ctx context.Context, from string, amount uint64) (err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe("transfer_into", err, started)
	}()
	return c.transfer(ctx, from, c.vault, amount)
}

// TransferOut moves amount from the vault to the given account.
func (c *Client) TransferOut(ctx context.Context, to string, amount uint64) (err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe("transfer_out", err, started)
	}()
	return c.transfer(ctx, c.vault, to, amount)
}

// BalanceOf returns the custody balance of the given account for this
// client's asset. An empty account queries the vault itself.
func (c *Client) BalanceOf(ctx context.Context, account string) (balance uint64, err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe("balance_of", err, started)
	}()

	if account == "" {
		account = c.vault
	}

	endpoint := fmt.Sprintf("%s/v1/accounts/%s/balance?asset=%s",
		c.baseURL, url.PathEscape(account), url.QueryEscape(c.asset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build balance request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("query balance: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("query balance: %w", decodeError(resp))
	}

	var body balanceResponse
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode balance response: %w", err)
	}
	return body.Balance, nil
}

func (c *Client) transfer(ctx context.Context, from, to string, amount uint64) error {
	payload, err := json.Marshal(transferRequest{
		Asset:  c.asset,
		From:   from,
		To:     to,
		Amount: amount,
	})
	if err != nil {
		return fmt.Errorf("encode transfer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/transfers", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build transfer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute transfer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("execute transfer: %w", decodeError(resp))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func decodeError(resp *http.Response) error {
	var body errorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil && body.Error != "" {
		return fmt.Errorf("custody service status %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("custody service status %d", resp.StatusCode)
}
