package remoteledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rsinghdev/storekhata-backend/internal/ledger"
	pkgerrors "github.com/rsinghdev/storekhata-backend/pkg/errors"
)

const (
	defaultTimeout             = 10 * time.Second
	errorBodyReadLimit   int64 = 1024
	authorizationHeader        = "Authorization"
)

// Client talks to the authoritative ledger API. It implements both the read
// source and the write surface the reconciliation engine consumes.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds a remote ledger client for the given base URL.
func NewClient(baseURL, apiToken string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("remote ledger base url required")
	}

	client := &Client{
		baseURL:    trimmed,
		apiToken:   strings.TrimSpace(apiToken),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// History returns the raw ledger rows for one account.
func (c *Client) History(ctx context.Context, accountID string) ([]ledger.RawRecord, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	path := fmt.Sprintf("accounts/%s/entries", url.PathEscape(accountID))
	var records []ledger.RawRecord
	if err := c.getJSON(ctx, path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// All returns raw ledger rows across every account, optionally filtered by
// account kind.
func (c *Client) All(ctx context.Context, kind string) ([]ledger.RawRecord, error) {
	path := "entries"
	if kind != "" {
		path += "?kind=" + url.QueryEscape(kind)
	}
	var records []ledger.RawRecord
	if err := c.getJSON(ctx, path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Balance returns the server's own view of an account balance.
func (c *Client) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if strings.TrimSpace(accountID) == "" {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	path := fmt.Sprintf("accounts/%s/balance", url.PathEscape(accountID))
	var payload struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return decimal.Zero, err
	}
	return payload.Balance, nil
}

// ConfirmedPurchaseOrders returns the purchase orders considered financially
// final. The distributor id is optional; without one the call spans every
// distributor, which the all-accounts view relies on.
func (c *Client) ConfirmedPurchaseOrders(ctx context.Context, distributorID string) ([]ledger.ConfirmedOrder, error) {
	path := "purchase-orders"
	if id := strings.TrimSpace(distributorID); id != "" {
		path = fmt.Sprintf("distributors/%s/purchase-orders", url.PathEscape(id))
	}
	var orders []ledger.ConfirmedOrder
	if err := c.getJSON(ctx, path, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Add writes one transaction to the remote ledger and returns the row the
// server created.
func (c *Client) Add(ctx context.Context, accountID string, input ledger.AddTransaction) (ledger.RawRecord, error) {
	if strings.TrimSpace(accountID) == "" {
		return ledger.RawRecord{}, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return ledger.RawRecord{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal transaction")
	}

	path := fmt.Sprintf("accounts/%s/entries", url.PathEscape(accountID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path), bytes.NewReader(payload))
	if err != nil {
		return ledger.RawRecord{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build write request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ledger.RawRecord{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute write request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return ledger.RawRecord{}, c.statusError(resp, "ledger write failed")
	}

	var record ledger.RawRecord
	if err := decodeEnvelope(resp.Body, &record); err != nil {
		return ledger.RawRecord{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode write response")
	}
	return record, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path), nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build request")
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return c.statusError(resp, "ledger read failed")
	}
	if err := decodeEnvelope(resp.Body, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiToken != "" {
		req.Header.Set(authorizationHeader, "Bearer "+c.apiToken)
	}
}

// statusError maps HTTP failures onto typed errors. 401 keeps its own code so
// callers can reset the session; everything else is a dependency failure the
// engine degrades around.
func (c *Client) statusError(resp *http.Response, msg string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	if resp.StatusCode == http.StatusUnauthorized {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, cause, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, msg)
}

func (c *Client) buildURL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// decodeEnvelope tolerates both response shapes the ledger API has shipped: a
// bare JSON value and a {"data": ...} wrapper.
func decodeEnvelope(body io.Reader, out any) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}

	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if bytes.HasPrefix(trimmed, []byte("{")) {
		if err := json.Unmarshal(trimmed, &wrapped); err == nil && len(wrapped.Data) > 0 {
			return json.Unmarshal(wrapped.Data, out)
		}
	}
	return json.Unmarshal(trimmed, out)
}
